package config

import (
	"time"

	"github.com/pulsewatch/pulsewatch/internal/obs"
	pginfra "github.com/pulsewatch/pulsewatch/internal/repository/postgres"
	"github.com/pulsewatch/pulsewatch/internal/services/monitor"
	"github.com/pulsewatch/pulsewatch/internal/services/notifier"
)

type HTTPCfg struct {
	Addr        string `mapstructure:"addr"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type KafkaCfg struct {
	Enable  bool     `mapstructure:"enable"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type NotifyCfg struct {
	Enable     bool          `mapstructure:"enable"`
	Cron       string        `mapstructure:"cron"`
	Timezone   string        `mapstructure:"timezone"`
	WebhookURL string        `mapstructure:"webhook_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

func (n NotifyCfg) AsRunnerConfig() notifier.RunnerConfig {
	return notifier.RunnerConfig{CronSpec: n.Cron, Timezone: n.Timezone}
}

type CacheCfg struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type Config struct {
	DB      pginfra.Config       `mapstructure:"db"`
	HTTP    HTTPCfg              `mapstructure:"http"`
	Engine  monitor.RunnerConfig `mapstructure:"engine"`
	Notify  NotifyCfg            `mapstructure:"notify"`
	Kafka   KafkaCfg             `mapstructure:"kafka"`
	Cache   CacheCfg             `mapstructure:"cache"`
	Log     obs.LogConfig        `mapstructure:"log"`
	OTEL    obs.OTELConfig       `mapstructure:"otel"`
}
