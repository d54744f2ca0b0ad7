package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "KORZINA_CONFIG_FILE"
	envPrefix         = "KORZINA"
	defaultConfigFile = "config.yaml"
)

type tlsFiles struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

func (t tlsFiles) Enabled() bool {
	return t.CA != "" && t.Cert != "" && t.Key != ""
}

type consumers struct {
	ShopStatsGroup string `mapstructure:"shop_stats_group"`
}

type topics struct {
	ShopEvents string `mapstructure:"shop_events"`
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	Topics             topics    `mapstructure:"topics"`
	Consumers          consumers `mapstructure:"consumers"`
	TLS                tlsFiles  `mapstructure:"tls"`
}

// Enabled reports whether shop events go through Kafka.
func (b broker) Enabled() bool {
	return len(b.SeedBrokers) != 0 && len(b.SchemaRegistryURLs) != 0
}

type catalog struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
}

type Config struct {
	LogLevel       slog.Level `mapstructure:"log_level"`
	LogFile        string     `mapstructure:"log_file"`
	Catalog        catalog    `mapstructure:"catalog"`
	HTTPServerAddr string     `mapstructure:"http_server_addr"`
	SQLDB          string     `mapstructure:"sql_db"`
	Broker         broker     `mapstructure:"broker"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("catalog.base_url", "http://127.0.0.1:5000")
	v.SetDefault("catalog.timeout", 10*time.Second)
	v.SetDefault("catalog.retry_attempts", 1)
	v.SetDefault("http_server_addr", ":5000")
	v.SetDefault("sql_db", "")
	v.SetDefault("broker.seed_brokers", []string{})
	v.SetDefault("broker.schema_registry_urls", []string{})
	v.SetDefault("broker.topics.shop_events", "shop_events")
	v.SetDefault("broker.consumers.shop_stats_group", "shop-stats")
	v.SetDefault("broker.tls.ca", "")
	v.SetDefault("broker.tls.cert", "")
	v.SetDefault("broker.tls.key", "")
}

// Load reads the process configuration or exits.
func Load() Config {
	cfg, err := LoadArgs(os.Args[1:])
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadArgs resolves defaults, the optional config file and KORZINA_*
// environment variables, in increasing priority.
func LoadArgs(args []string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, explicit := getConfigFilepath(args)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, err
	}

	if cfg.Catalog.RetryAttempts < 1 {
		cfg.Catalog.RetryAttempts = 1
	}
	return cfg, nil
}

func getConfigFilepath(args []string) (path string, explicit bool) {
	cmdLine := pflag.NewFlagSet("config", pflag.ContinueOnError)
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	cmdLine.Usage = func() {}
	arg := cmdLine.String("config", defaultConfigFile, "config file")
	_ = cmdLine.Parse(args)

	if env, ok := os.LookupEnv(configFileEnvName); ok && env != "" {
		return env, true
	}
	return *arg, cmdLine.Changed("config")
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	LogFile=%q
	HTTPServerAddr=%q
	SQLDB=%q

	Catalog:
	BaseURL=%q
	Timeout=%q
	RetryAttempts=%d

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	Topics:
		ShopEvents=%q
	Consumers:
		ShopStatsGroup=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.LogFile,
		c.HTTPServerAddr,
		redactDSN(c.SQLDB),
		c.Catalog.BaseURL,
		c.Catalog.Timeout,
		c.Catalog.RetryAttempts,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.TLS.Enabled(),
		c.Broker.Topics.ShopEvents,
		c.Broker.Consumers.ShopStatsGroup,
	)
}

// redactDSN hides the password of a postgres URL.
func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	userinfo := dsn[:at]
	colon := strings.LastIndex(userinfo, ":")
	if colon < 0 || strings.HasPrefix(userinfo[colon:], "://") {
		return dsn
	}
	return userinfo[:colon+1] + "***" + dsn[at:]
}
