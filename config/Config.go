package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mohitkumar/flowrt/analytics"
)

type StorageType string

const STORAGE_TYPE_REDIS StorageType = "redis"
const STORAGE_TYPE_INMEM StorageType = "memory"

type EncoderDecoderType string

const JSON_ENCODER_DECODER EncoderDecoderType = "JSON"
const PROTO_ENCODER_DECODER EncoderDecoderType = "PROTO"

type BackoffPolicy string

const BACKOFF_FIXED BackoffPolicy = "FIXED"
const BACKOFF_EXPONENTIAL BackoffPolicy = "EXPONENTIAL"

type Config struct {
	NodeName           string
	RedisConfig        RedisStorageConfig
	InMemoryConfig     InmemStorageConfig
	HttpPort           int
	StorageType        StorageType
	EncoderDecoderType EncoderDecoderType
	PartitionCount     int
	SchedulerConfig    SchedulerConfig
	TriggerConfig      TriggerConfig
	LogConfig          LogConfig
	AnalyticsConfig    analytics.DataCollectorConfig
	// ConnectorScripts maps a connector name to the script it runs.
	ConnectorScripts   map[string]string
}

type RedisStorageConfig struct {
	Addrs     []string
	Namespace string
	PoolSize  int
	Password  string
}

type InmemStorageConfig struct {
	CleanupInterval time.Duration
}

type SchedulerConfig struct {
	Workers       int
	Capacity      int
	DelayMillis   int64
	Backoff       BackoffPolicy
	MaxDelay      time.Duration
	TimerTick     time.Duration
	TimerWheelLen int64
}

type TriggerConfig struct {
	Tick time.Duration
}

type LogConfig struct {
	Level string
	Json  bool
}

func Default() Config {
	return Config{
		NodeName:           "flowrt-1",
		HttpPort:           8080,
		StorageType:        STORAGE_TYPE_INMEM,
		EncoderDecoderType: JSON_ENCODER_DECODER,
		PartitionCount:     8,
		RedisConfig: RedisStorageConfig{
			Addrs:     []string{"localhost:6379"},
			Namespace: "flowrt",
		},
		SchedulerConfig: SchedulerConfig{
			Workers:       4,
			Capacity:      1024,
			DelayMillis:   1000,
			Backoff:       BACKOFF_FIXED,
			MaxDelay:      5 * time.Minute,
			TimerTick:     10 * time.Millisecond,
			TimerWheelLen: 512,
		},
		TriggerConfig: TriggerConfig{
			Tick: 100 * time.Millisecond,
		},
		LogConfig: LogConfig{
			Level: "info",
		},
		AnalyticsConfig: analytics.DataCollectorConfig{
			CollectorType: analytics.PROMETHEUS_DATA_COLLECTOR,
		},
	}
}

func (c Config) Validate() error {
	switch c.StorageType {
	case STORAGE_TYPE_REDIS:
		if len(c.RedisConfig.Addrs) == 0 {
			return fmt.Errorf("redis storage needs at least one address")
		}
	case STORAGE_TYPE_INMEM:
	default:
		return fmt.Errorf("unsupported storage type %s", c.StorageType)
	}
	switch c.EncoderDecoderType {
	case JSON_ENCODER_DECODER, PROTO_ENCODER_DECODER:
	default:
		return fmt.Errorf("unsupported encoder %s", c.EncoderDecoderType)
	}
	switch c.SchedulerConfig.Backoff {
	case BACKOFF_FIXED, BACKOFF_EXPONENTIAL:
	default:
		return fmt.Errorf("unsupported backoff policy %s", c.SchedulerConfig.Backoff)
	}
	if c.SchedulerConfig.Workers <= 0 {
		return fmt.Errorf("scheduler workers should be positive, got %d", c.SchedulerConfig.Workers)
	}
	if c.SchedulerConfig.Capacity <= 0 {
		return fmt.Errorf("scheduler capacity should be positive, got %d", c.SchedulerConfig.Capacity)
	}
	if c.SchedulerConfig.DelayMillis < 0 {
		return fmt.Errorf("scheduler delay can not be negative, got %d", c.SchedulerConfig.DelayMillis)
	}
	switch c.AnalyticsConfig.CollectorType {
	case analytics.PROMETHEUS_DATA_COLLECTOR, analytics.NOOP_DATA_COLLECTOR, "":
	case analytics.LOG_FILE_DATA_COLLECTOR:
		if len(c.AnalyticsConfig.FileName) == 0 {
			return fmt.Errorf("log file data collector needs a file name")
		}
	default:
		return fmt.Errorf("unsupported data collector %s", c.AnalyticsConfig.CollectorType)
	}
	if c.PartitionCount <= 0 {
		return fmt.Errorf("partition count should be positive, got %d", c.PartitionCount)
	}
	return nil
}

func ToStorageType(s string) StorageType {
	return StorageType(strings.ToLower(s))
}

func ToEncoderDecoderType(s string) EncoderDecoderType {
	return EncoderDecoderType(strings.ToUpper(s))
}

func ToBackoffPolicy(s string) BackoffPolicy {
	return BackoffPolicy(strings.ToUpper(s))
}
