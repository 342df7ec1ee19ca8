package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mohitkumar/flowrt/agent"
	"github.com/mohitkumar/flowrt/analytics"
	"github.com/mohitkumar/flowrt/config"
	"github.com/mohitkumar/flowrt/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cfg struct {
	config.Config
}
type cli struct {
	cfg cfg
}

func setupFlags(cmd *cobra.Command) error {
	defaults := config.Default()
	cmd.Flags().String("config-file", "", "Path to config file.")
	cmd.Flags().String("node-name", defaults.NodeName, "name of this node in the partition ring")
	cmd.Flags().String("redis-addr", "localhost:6379", "comma separated list of redis host:port")
	cmd.Flags().String("redis-password", "", "redis password")
	cmd.Flags().Int("redis-pool-size", 0, "redis connection pool size, 0 uses the client default")
	cmd.Flags().String("namespace", defaults.RedisConfig.Namespace, "namespace used in storage")
	cmd.Flags().Int("partitions", defaults.PartitionCount, "number of storage partitions")
	cmd.Flags().Int("http-port", defaults.HttpPort, "http port for rest endpoints")
	cmd.Flags().String("storage-impl", string(defaults.StorageType), "implementation of underline storage, redis or memory")
	cmd.Flags().String("encoder-decoder", string(defaults.EncoderDecoderType), "encoder decoder used to serialize data, JSON or PROTO")
	cmd.Flags().Int("scheduler-workers", defaults.SchedulerConfig.Workers, "number of work scheduler worker lanes")
	cmd.Flags().Int("scheduler-capacity", defaults.SchedulerConfig.Capacity, "capacity of each worker lane")
	cmd.Flags().Int64("retry-delay", defaults.SchedulerConfig.DelayMillis, "delay between work attempts in milliseconds")
	cmd.Flags().String("backoff", string(defaults.SchedulerConfig.Backoff), "backoff policy, FIXED or EXPONENTIAL")
	cmd.Flags().Duration("max-delay", defaults.SchedulerConfig.MaxDelay, "upper bound of the exponential backoff")
	cmd.Flags().Duration("timer-tick", defaults.SchedulerConfig.TimerTick, "tick of the timer wheel")
	cmd.Flags().Int64("timer-wheel-size", defaults.SchedulerConfig.TimerWheelLen, "number of slots of the timer wheel")
	cmd.Flags().Duration("trigger-tick", defaults.TriggerConfig.Tick, "polling interval of the trigger service")
	cmd.Flags().String("data-collector", string(defaults.AnalyticsConfig.CollectorType), "work data collector, PROMETHEUS, LOG_FILE or NOOP")
	cmd.Flags().String("data-collector-file", "", "file written by the LOG_FILE data collector")
	cmd.Flags().String("log-level", defaults.LogConfig.Level, "log level")
	cmd.Flags().Bool("log-json", false, "log in json")
	return viper.BindPFlags(cmd.Flags())
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	var err error

	configFile, err := cmd.Flags().GetString("config-file")
	if err != nil {
		return err
	}
	viper.SetConfigFile(configFile)

	if err = viper.ReadInConfig(); err != nil {
		// it's ok if config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configFile != "" {
			return err
		}
	}

	c.cfg.Config = config.Default()
	c.cfg.NodeName = viper.GetString("node-name")
	c.cfg.RedisConfig.Addrs = strings.Split(viper.GetString("redis-addr"), ",")
	c.cfg.RedisConfig.Password = viper.GetString("redis-password")
	c.cfg.RedisConfig.PoolSize = viper.GetInt("redis-pool-size")
	c.cfg.RedisConfig.Namespace = viper.GetString("namespace")
	c.cfg.PartitionCount = viper.GetInt("partitions")
	c.cfg.HttpPort = viper.GetInt("http-port")
	c.cfg.StorageType = config.ToStorageType(viper.GetString("storage-impl"))
	c.cfg.EncoderDecoderType = config.ToEncoderDecoderType(viper.GetString("encoder-decoder"))
	c.cfg.SchedulerConfig.Workers = viper.GetInt("scheduler-workers")
	c.cfg.SchedulerConfig.Capacity = viper.GetInt("scheduler-capacity")
	c.cfg.SchedulerConfig.DelayMillis = viper.GetInt64("retry-delay")
	c.cfg.SchedulerConfig.Backoff = config.ToBackoffPolicy(viper.GetString("backoff"))
	c.cfg.SchedulerConfig.MaxDelay = viper.GetDuration("max-delay")
	c.cfg.SchedulerConfig.TimerTick = viper.GetDuration("timer-tick")
	c.cfg.SchedulerConfig.TimerWheelLen = viper.GetInt64("timer-wheel-size")
	c.cfg.TriggerConfig.Tick = viper.GetDuration("trigger-tick")
	c.cfg.AnalyticsConfig.CollectorType = analytics.DataCollectorType(strings.ToUpper(viper.GetString("data-collector")))
	c.cfg.AnalyticsConfig.FileName = viper.GetString("data-collector-file")
	c.cfg.ConnectorScripts = viper.GetStringMapString("connector-scripts")
	c.cfg.LogConfig.Level = viper.GetString("log-level")
	c.cfg.LogConfig.Json = viper.GetBool("log-json")

	if err := c.cfg.Validate(); err != nil {
		return err
	}
	return logger.Init(c.cfg.LogConfig.Level, c.cfg.LogConfig.Json)
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	var err error
	agent, err := agent.New(c.cfg.Config)
	if err != nil {
		return err
	}
	err = agent.Start()
	if err != nil {
		return err
	}
	defer logger.Sync()
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
	case <-agent.Done():
	}
	return agent.Shutdown()
}

func main() {
	cli := &cli{}

	cmd := &cobra.Command{
		Use:     "flowrt",
		Short:   "flow node runtime with a retrying work scheduler",
		PreRunE: cli.setupConfig,
		RunE:    cli.run,
	}

	if err := setupFlags(cmd); err != nil {
		log.Fatal(err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
