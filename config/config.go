package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "STOREFRONT_CONFIG_FILE"
	envPrefix         = "STOREFRONT"
)

type catalog struct {
	SourceURL      string        `mapstructure:"source_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	FallbackDelay  time.Duration `mapstructure:"fallback_delay"`
	FallbackFile   string        `mapstructure:"fallback_file"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	Platform       string        `mapstructure:"platform"`
	Category       string        `mapstructure:"category"`
	SortBy         string        `mapstructure:"sort_by"`
	CAFile         string        `mapstructure:"ca_file"`
	CertFile       string        `mapstructure:"cert_file"`
	KeyFile        string        `mapstructure:"key_file"`
}

type detail struct {
	MaxAttempts    int           `mapstructure:"max_attempts"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
	BackoffUnit    time.Duration `mapstructure:"backoff_unit"`
}

type pagination struct {
	PageSize int `mapstructure:"page_size"`
}

type imageProxy struct {
	Endpoint      string   `mapstructure:"endpoint"`
	InternalHosts []string `mapstructure:"internal_hosts"`
}

type payment struct {
	CheckoutBaseURL string `mapstructure:"checkout_base_url"`
}

type tracing struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

type metrics struct {
	OTLPEndpoint   string        `mapstructure:"otlp_endpoint"`
	ExportInterval time.Duration `mapstructure:"export_interval"`
}

type Config struct {
	LogLevel           slog.Level    `mapstructure:"log_level"`
	HTTPServerAddr     string        `mapstructure:"http_server_addr"`
	HTTPHandlerTimeout time.Duration `mapstructure:"http_handler_timeout"`
	StoragePath        string        `mapstructure:"storage_path"`
	Catalog            catalog       `mapstructure:"catalog"`
	Detail             detail        `mapstructure:"detail"`
	Pagination         pagination    `mapstructure:"pagination"`
	ImageProxy         imageProxy    `mapstructure:"image_proxy"`
	Payment            payment       `mapstructure:"payment"`
	Tracing            tracing       `mapstructure:"tracing"`
	Metrics            metrics       `mapstructure:"metrics"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", ":8080")
	v.SetDefault("http_handler_timeout", "90s")
	v.SetDefault("storage_path", "storefront.db")
	v.SetDefault("catalog.source_url", "https://www.freetogame.com/api")
	v.SetDefault("catalog.request_timeout", "15s")
	v.SetDefault("catalog.fallback_delay", "5s")
	v.SetDefault("catalog.fallback_file", "")
	v.SetDefault("catalog.rate_limit", 5)
	v.SetDefault("catalog.platform", "")
	v.SetDefault("catalog.category", "")
	v.SetDefault("catalog.sort_by", "")
	v.SetDefault("catalog.ca_file", "")
	v.SetDefault("catalog.cert_file", "")
	v.SetDefault("catalog.key_file", "")
	v.SetDefault("detail.max_attempts", 5)
	v.SetDefault("detail.attempt_timeout", "10s")
	v.SetDefault("detail.backoff_unit", "1s")
	v.SetDefault("pagination.page_size", 12)
	v.SetDefault("image_proxy.endpoint", "/api/image-proxy")
	v.SetDefault("image_proxy.internal_hosts", []string{})
	v.SetDefault("payment.checkout_base_url", "https://checkout.example.com/session")
	v.SetDefault("tracing.otlp_endpoint", "")
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("metrics.otlp_endpoint", "")
	v.SetDefault("metrics.export_interval", "60s")
}

// Load reads the configuration from the optional .env file, the config file
// and STOREFRONT_ prefixed environment variables, in increasing priority.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		die(err)
	}

	cfg, err := load(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

func load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.UnmarshalExact(&cfg, hook); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Catalog.SourceURL == "" {
		return fmt.Errorf("catalog.source_url: required")
	}
	if c.Catalog.FallbackDelay >= c.Catalog.RequestTimeout {
		return fmt.Errorf(
			"catalog.fallback_delay (%s) must be shorter than catalog.request_timeout (%s)",
			c.Catalog.FallbackDelay, c.Catalog.RequestTimeout,
		)
	}
	if c.Pagination.PageSize <= 0 {
		return fmt.Errorf("pagination.page_size: must be positive")
	}
	if c.Detail.MaxAttempts <= 0 {
		return fmt.Errorf("detail.max_attempts: must be positive")
	}
	if c.Detail.AttemptTimeout <= 0 || c.Detail.BackoffUnit <= 0 {
		return fmt.Errorf("detail.attempt_timeout and detail.backoff_unit: must be positive")
	}
	if worst := c.Detail.worstCase(); c.HTTPHandlerTimeout < worst {
		return fmt.Errorf(
			"http_handler_timeout (%s) must cover the worst-case detail lookup (%s)",
			c.HTTPHandlerTimeout, worst,
		)
	}
	return nil
}

// worstCase is the longest a detail lookup can take: every attempt runs
// to its timeout and the backoff after attempt k is backoff_unit * 2^k.
func (d detail) worstCase() time.Duration {
	total := time.Duration(d.MaxAttempts) * d.AttemptTimeout
	for k := 1; k < d.MaxAttempts; k++ {
		total += d.BackoffUnit << k
	}
	return total
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	HTTPHandlerTimeout=%q
	StoragePath=%q

	Catalog:
	SourceURL=%q
	RequestTimeout=%q
	FallbackDelay=%q
	FallbackFile=%q
	RateLimit=%v
	Query: platform=%q category=%q sort-by=%q
	TLS: ca=%q cert=%q key=%q

	Detail:
	MaxAttempts=%d
	AttemptTimeout=%q
	BackoffUnit=%q

	PageSize=%d
	ImageProxy: endpoint=%q internal_hosts=%q
	Payment: checkout_base_url=%q
	Tracing: otlp_endpoint=%q sample_ratio=%v
	Metrics: otlp_endpoint=%q export_interval=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.HTTPHandlerTimeout,
		c.StoragePath,
		c.Catalog.SourceURL,
		c.Catalog.RequestTimeout,
		c.Catalog.FallbackDelay,
		c.Catalog.FallbackFile,
		c.Catalog.RateLimit,
		c.Catalog.Platform,
		c.Catalog.Category,
		c.Catalog.SortBy,
		c.Catalog.CAFile,
		c.Catalog.CertFile,
		c.Catalog.KeyFile,
		c.Detail.MaxAttempts,
		c.Detail.AttemptTimeout,
		c.Detail.BackoffUnit,
		c.Pagination.PageSize,
		c.ImageProxy.Endpoint,
		c.ImageProxy.InternalHosts,
		c.Payment.CheckoutBaseURL,
		c.Tracing.OTLPEndpoint,
		c.Tracing.SampleRatio,
		c.Metrics.OTLPEndpoint,
		c.Metrics.ExportInterval,
	)
}
