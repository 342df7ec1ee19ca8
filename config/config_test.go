package config

import (
	"testing"

	"github.com/mohitkumar/flowrt/analytics"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	for name, mutate := range map[string]func(c *Config){
		"unknown storage":   func(c *Config) { c.StorageType = "dynamo" },
		"redis no address":  func(c *Config) { c.StorageType = STORAGE_TYPE_REDIS; c.RedisConfig.Addrs = nil },
		"unknown encoder":   func(c *Config) { c.EncoderDecoderType = "XML" },
		"unknown backoff":   func(c *Config) { c.SchedulerConfig.Backoff = "LINEAR" },
		"no workers":        func(c *Config) { c.SchedulerConfig.Workers = 0 },
		"no capacity":       func(c *Config) { c.SchedulerConfig.Capacity = 0 },
		"negative delay":    func(c *Config) { c.SchedulerConfig.DelayMillis = -1 },
		"no partitions":     func(c *Config) { c.PartitionCount = 0 },
		"unknown collector": func(c *Config) { c.AnalyticsConfig.CollectorType = "STATSD" },
		"log file no name":  func(c *Config) { c.AnalyticsConfig.CollectorType = analytics.LOG_FILE_DATA_COLLECTOR },
	} {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}

func TestConversions(t *testing.T) {
	require.Equal(t, STORAGE_TYPE_REDIS, ToStorageType("Redis"))
	require.Equal(t, PROTO_ENCODER_DECODER, ToEncoderDecoderType("proto"))
	require.Equal(t, BACKOFF_EXPONENTIAL, ToBackoffPolicy("exponential"))
}
