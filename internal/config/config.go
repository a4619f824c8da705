package config

import (
	"os"
	"strings"

	"codeberg.org/mutker/homedash/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultEnvPrefix      = "HOMEDASH"
	DefaultLogLevel       = "info"
	DefaultBroker         = "tcp://broker.mqttdashboard.com:1883"
	DefaultClientID       = "homedash"
	DefaultSensorTopic    = "home/dashboard/sensores"
	DefaultInterval       = 4
	DefaultListen         = ":8050"
	DefaultPublishTimeout = 5
	DefaultJournalDB      = "/var/lib/homedash/journal.db"
	DefaultJournalBatch   = 10
	DefaultJournalFlush   = 5

	configName = "homedash"
	configType = "toml"
)

// Topics holds the outbound actuator topics
type Topics struct {
	Light1 string `mapstructure:"light1"`
	Light2 string `mapstructure:"light2"`
	Door1  string `mapstructure:"door1"`
	Door2  string `mapstructure:"door2"`
	Fan1   string `mapstructure:"fan1"`
	Fan2   string `mapstructure:"fan2"`
}

type Config struct {
	Broker         string `mapstructure:"broker"`
	ClientID       string `mapstructure:"client_id"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	SensorTopic    string `mapstructure:"sensor_topic"`
	Topics         Topics `mapstructure:"topics"`
	PublishTimeout int    `mapstructure:"publish_timeout"`

	Interval   int  `mapstructure:"interval"`
	PollAppend bool `mapstructure:"poll_append"`

	Listen   string `mapstructure:"listen"`
	LogLevel string `mapstructure:"log_level"`

	Journal             bool   `mapstructure:"journal"`
	JournalDB           string `mapstructure:"journal_db"`
	JournalBatchSize    int    `mapstructure:"journal_batch_size"`
	JournalBatchTimeout int    `mapstructure:"journal_batch_timeout"`
}

var defaults = map[string]any{
	"broker":                DefaultBroker,
	"client_id":             DefaultClientID,
	"username":              "",
	"password":              "",
	"sensor_topic":          DefaultSensorTopic,
	"topics.light1":         "home/dashboard/led1",
	"topics.light2":         "home/dashboard/led2",
	"topics.door1":          "home/dashboard/servo1",
	"topics.door2":          "home/dashboard/servo2",
	"topics.fan1":           "home/dashboard/stepper1",
	"topics.fan2":           "home/dashboard/stepper2",
	"publish_timeout":       DefaultPublishTimeout,
	"interval":              DefaultInterval,
	"poll_append":           false,
	"listen":                DefaultListen,
	"log_level":             DefaultLogLevel,
	"journal":               false,
	"journal_db":            DefaultJournalDB,
	"journal_batch_size":    DefaultJournalBatch,
	"journal_batch_timeout": DefaultJournalFlush,
}

// Load reads configuration from defaults, the config file, the environment
// and command line flags, in increasing order of precedence.
func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{
		envPrefix: DefaultEnvPrefix,
		args:      os.Args[1:],
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	fs := newFlagSet()
	if err := fs.Parse(o.args); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidArgument, err)
	}
	if err := bindFlags(v, fs); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, configPath(o, fs)); err != nil {
		return nil, err
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	fs.String("config", "", "Path to the configuration file")
	fs.String("broker", DefaultBroker, "MQTT broker URL")
	fs.String("sensor-topic", DefaultSensorTopic, "Topic carrying sensor telemetry")
	fs.Int("interval", DefaultInterval, "Seconds between dashboard refreshes")
	fs.Bool("poll-append", false, "Append the current snapshot to history on every refresh")
	fs.String("listen", DefaultListen, "HTTP listen address")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.Bool("journal", false, "Record dispatched actuator commands")
	fs.String("journal-db", DefaultJournalDB, "Path to the command journal database")

	return fs
}

var flagKeys = map[string]string{
	"broker":       "broker",
	"sensor-topic": "sensor_topic",
	"interval":     "interval",
	"poll-append":  "poll_append",
	"listen":       "listen",
	"log-level":    "log_level",
	"journal":      "journal",
	"journal-db":   "journal_db",
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return errors.New().Wrap(errors.ErrInvalidArgument, err)
		}
	}

	return nil
}

func configPath(o *options, fs *pflag.FlagSet) string {
	if path, err := fs.GetString("config"); err == nil && path != "" {
		return path
	}
	if o.configPath != "" {
		return o.configPath
	}

	return os.Getenv(o.envPrefix + "_CONFIG")
}

func readConfigFile(v *viper.Viper, path string) error {
	errFactory := errors.New()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(configType)
		if err := v.ReadInConfig(); err != nil {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}

		return nil
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath("/etc")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	return nil
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}

	if c.Broker == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "broker is empty")
	}

	if c.PublishTimeout <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "publish_timeout must be positive")
	}

	if c.SensorTopic == "" {
		return errFactory.WithMessage(errors.ErrInvalidTopic, "sensor topic is empty")
	}

	for name, topic := range c.Topics.byName() {
		if topic == "" {
			return errFactory.WithData(errors.ErrInvalidTopic, "topics."+name+" is empty")
		}
	}

	if c.Journal && c.JournalDB == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "journal enabled without journal_db")
	}

	return nil
}

func (t Topics) byName() map[string]string {
	return map[string]string{
		"light1": t.Light1,
		"light2": t.Light2,
		"door1":  t.Door1,
		"door2":  t.Door2,
		"fan1":   t.Fan1,
		"fan2":   t.Fan2,
	}
}
