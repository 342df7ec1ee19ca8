package agent

import (
	"sync"

	"github.com/mohitkumar/flowrt/cluster"
	"github.com/mohitkumar/flowrt/config"
	"github.com/mohitkumar/flowrt/container"
	"github.com/mohitkumar/flowrt/logger"
	"github.com/mohitkumar/flowrt/rest"
	"github.com/mohitkumar/flowrt/work"
	"go.uber.org/zap"
)

type Agent struct {
	Config       config.Config
	ring         *cluster.Ring
	diContainer  *container.DIContainer
	httpServer   *rest.Server
	shutdown     bool
	shutdowns    chan struct{}
	shutdownLock sync.Mutex
	wg           sync.WaitGroup
}

func New(config config.Config) (*Agent, error) {
	a := &Agent{
		Config:    config,
		shutdowns: make(chan struct{}),
	}
	setup := []func() error{
		a.setupRing,
		a.setupContainer,
		a.setupHttpServer,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupRing() error {
	a.ring = cluster.NewRing(cluster.RingConfig{PartitionCount: a.Config.PartitionCount})
	a.ring.Join(a.Config.NodeName)
	return nil
}

func (a *Agent) setupContainer() error {
	a.diContainer = container.NewDiContainer(a.ring)
	return a.diContainer.Init(a.Config)
}

func (a *Agent) setupHttpServer() error {
	var err error
	a.httpServer, err = rest.NewServer(a.Config.HttpPort,
		a.diContainer.GetRetrier(),
		a.diContainer.GetScheduler(),
		a.diContainer.GetTriggerService(),
		a.diContainer.GetMetricsHandler(),
	)
	return err
}

func (a *Agent) Scheduler() *work.RetryingWorkScheduler {
	return a.diContainer.GetScheduler()
}

func (a *Agent) Container() *container.DIContainer {
	return a.diContainer
}

func (a *Agent) Start() error {
	start := []func() error{
		func() error {
			a.diContainer.GetTimerManager().Start()
			return nil
		},
		a.diContainer.GetScheduler().Start,
		a.diContainer.GetTriggerService().Start,
	}
	for _, fn := range start {
		if err := fn(); err != nil {
			return err
		}
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.Start(); err != nil {
			logger.Error("http server failed", zap.Error(err))
			go a.Shutdown()
		}
	}()
	logger.Info("agent started", zap.String("node", a.Config.NodeName), zap.Int("httpPort", a.Config.HttpPort))
	return nil
}

// Done is closed once the agent shut down.
func (a *Agent) Done() <-chan struct{} {
	return a.shutdowns
}

func (a *Agent) Shutdown() error {
	logger.Info("shutting down server")
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true
	close(a.shutdowns)

	shutdown := []func() error{
		a.httpServer.Stop,
		a.diContainer.GetTriggerService().Stop,
		a.diContainer.GetScheduler().Stop,
		func() error {
			a.diContainer.GetTimerManager().Stop()
			a.ring.Leave(a.Config.NodeName)
			return nil
		},
		a.diContainer.Close,
	}
	for _, fn := range shutdown {
		if err := fn(); err != nil {
			return err
		}
	}
	logger.Info("waiting for all services to shutdown...")
	a.wg.Wait()
	return nil
}
