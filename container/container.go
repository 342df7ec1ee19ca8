package container

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mohitkumar/flowrt/action"
	"github.com/mohitkumar/flowrt/analytics"
	"github.com/mohitkumar/flowrt/cluster"
	"github.com/mohitkumar/flowrt/config"
	"github.com/mohitkumar/flowrt/executor"
	"github.com/mohitkumar/flowrt/flownode"
	"github.com/mohitkumar/flowrt/model"
	"github.com/mohitkumar/flowrt/persistence"
	"github.com/mohitkumar/flowrt/persistence/memory"
	rd "github.com/mohitkumar/flowrt/persistence/redis"
	"github.com/mohitkumar/flowrt/timers"
	"github.com/mohitkumar/flowrt/trigger"
	"github.com/mohitkumar/flowrt/util"
	"github.com/mohitkumar/flowrt/work"
)

const REDIS_PING_INTERVAL = 500 * time.Millisecond
const REDIS_PING_RETRIES = 5

type DIContainer struct {
	initialized bool
	storage     persistence.Storage
	collector   analytics.WorkDataCollector
	ring        *cluster.Ring
	timers      *timers.TimerManager
	sequences   *flownode.SequenceRegistry
	states      *flownode.DefaultStateManager
	behaviors   *executor.StateBehaviorContainer
	scheduler   *work.RetryingWorkScheduler
	executor    *executor.FlowNodeExecutor
	retrier     *flownode.FlowNodeRetrier
	triggers    *trigger.Service
	codecs      rd.Codecs
}

func (d *DIContainer) setInitialized() {
	d.initialized = true
}

func NewDiContainer(ring *cluster.Ring) *DIContainer {
	return &DIContainer{
		initialized: false,
		ring:        ring,
	}
}

func (d *DIContainer) Init(conf config.Config) error {
	switch conf.EncoderDecoderType {
	case config.PROTO_ENCODER_DECODER:
		d.codecs = rd.Codecs{
			Work:      util.NewProtoEncoderDecoder[model.WorkRecord](),
			FlowNode:  util.NewProtoEncoderDecoder[model.FlowNodeInstance](),
			Connector: util.NewProtoEncoderDecoder[model.ConnectorInstance](),
		}
	default:
		d.codecs = rd.Codecs{
			Work:      util.NewJsonEncoderDecoder[model.WorkRecord](),
			FlowNode:  util.NewJsonEncoderDecoder[model.FlowNodeInstance](),
			Connector: util.NewJsonEncoderDecoder[model.ConnectorInstance](),
		}
	}

	switch conf.StorageType {
	case config.STORAGE_TYPE_REDIS:
		rdConf := rd.Config{
			Addrs:     conf.RedisConfig.Addrs,
			Namespace: conf.RedisConfig.Namespace,
			PoolSize:  conf.RedisConfig.PoolSize,
			Password:  conf.RedisConfig.Password,
		}
		st := rd.NewRedisStorage(rdConf, d.ring, d.codecs)
		ping := func() error { return st.Ping(context.Background()) }
		b := backoff.WithMaxRetries(backoff.NewConstantBackOff(REDIS_PING_INTERVAL), REDIS_PING_RETRIES)
		if err := backoff.Retry(ping, b); err != nil {
			return fmt.Errorf("redis not reachable at %v: %w", rdConf.Addrs, err)
		}
		d.storage = st
	default:
		d.storage = memory.NewMemoryStorage(conf.InMemoryConfig.CleanupInterval)
	}

	collector, err := analytics.NewDataCollector(conf.AnalyticsConfig)
	if err != nil {
		return err
	}
	d.collector = collector

	d.sequences = flownode.DefaultSequences()
	d.states, err = flownode.NewDefaultStateManagerFor(d.sequences)
	if err != nil {
		return err
	}

	d.timers = timers.NewTimerManager(conf.SchedulerConfig.TimerTick, conf.SchedulerConfig.TimerWheelLen)
	registry := work.NewRegistry()
	d.ring.Join(conf.NodeName)
	d.scheduler = work.NewRetryingWorkScheduler(registry, d.storage, d.timers, d.collector, work.Options{
		Workers:     conf.SchedulerConfig.Workers,
		Capacity:    conf.SchedulerConfig.Capacity,
		DelayMillis: conf.SchedulerConfig.DelayMillis,
		Backoff:     work.ToBackoffPolicy(string(conf.SchedulerConfig.Backoff)),
		MaxDelay:    conf.SchedulerConfig.MaxDelay,
		Partitioner: d.ring,
		NodeName:    conf.NodeName,
	})

	d.behaviors = executor.NewStateBehaviorContainer()
	d.behaviors.Register(model.STATE_EXECUTING, executor.ConnectorBehavior(d.storage, action.NewScriptConnectorRunner(conf.ConnectorScripts)))

	registry.Register(executor.EXECUTE_FLOW_NODE_WORK, executor.NewExecuteFlowNodeWorkFactory(d.storage, d.sequences, d.states, d.behaviors))
	action.Register(registry)

	d.executor = executor.NewFlowNodeExecutor(d.storage, d.scheduler)
	d.retrier = flownode.NewFlowNodeRetrier(d.executor, d.executor, executor.NewConnectorResetter(d.storage), d.states, d.collector)
	d.triggers = trigger.NewService(d.scheduler, conf.TriggerConfig.Tick)

	d.setInitialized()
	return nil
}

func (d *DIContainer) check() {
	if !d.initialized {
		panic("container not initalized")
	}
}

func (d *DIContainer) GetStorage() persistence.Storage {
	d.check()
	return d.storage
}

func (d *DIContainer) GetCollector() analytics.WorkDataCollector {
	d.check()
	return d.collector
}

// GetMetricsHandler is nil unless metrics go to prometheus.
func (d *DIContainer) GetMetricsHandler() http.Handler {
	d.check()
	if pc, ok := d.collector.(*analytics.PrometheusDataCollector); ok {
		return pc.Handler()
	}
	return nil
}

func (d *DIContainer) GetTimerManager() *timers.TimerManager {
	d.check()
	return d.timers
}

func (d *DIContainer) GetSequences() *flownode.SequenceRegistry {
	d.check()
	return d.sequences
}

func (d *DIContainer) GetStateManager() *flownode.DefaultStateManager {
	d.check()
	return d.states
}

func (d *DIContainer) GetStateBehaviors() *executor.StateBehaviorContainer {
	d.check()
	return d.behaviors
}

func (d *DIContainer) GetScheduler() *work.RetryingWorkScheduler {
	d.check()
	return d.scheduler
}

func (d *DIContainer) GetExecutor() *executor.FlowNodeExecutor {
	d.check()
	return d.executor
}

func (d *DIContainer) GetRetrier() *flownode.FlowNodeRetrier {
	d.check()
	return d.retrier
}

func (d *DIContainer) GetTriggerService() *trigger.Service {
	d.check()
	return d.triggers
}

// Close releases the storage and flushes the data collector.
func (d *DIContainer) Close() error {
	d.check()
	if s, ok := d.collector.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
	return d.storage.Close()
}
