package config

import (
	"net"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr      string
	DBUrl     string
	APIBase   string
	DevAPIKey string
	BasePath  string
	PageSize  int
	Timeout   time.Duration
	Debug     bool
}

// fileConfig mirrors the flags in the optional YAML file.
type fileConfig struct {
	Host      *string        `yaml:"host"`
	Port      *uint          `yaml:"port"`
	DBUrl     *string        `yaml:"dbUrl"`
	APIBase   *string        `yaml:"apiBase"`
	DevAPIKey *string        `yaml:"devApiKey"`
	BasePath  *string        `yaml:"basePath"`
	PageSize  *int           `yaml:"pageSize"`
	Timeout   *time.Duration `yaml:"timeout"`
	Debug     *bool          `yaml:"debug"`
}

// ParseFlags reads the configuration from args (without the program name).
// Precedence: explicit flag, then config file, then environment, then default.
func ParseFlags(args []string) (cfg Config, err error) {
	flags := pflag.NewFlagSet("survey-admin", pflag.ContinueOnError)

	var host string
	flags.StringVar(&host, "host", "0.0.0.0", "listen host name")
	var port uint
	flags.UintVar(&port, "port", 8080, "listen port number")
	flags.StringVar(&cfg.DBUrl, "db-url", "dashboard.sqlite", "path to SQLite3 DB file holding the saved admin key")
	flags.StringVar(&cfg.APIBase, "api-base", os.Getenv("DASHBOARD_API_BASE"), "backend base URL")
	flags.StringVar(&cfg.DevAPIKey, "dev-api-key", os.Getenv("DASHBOARD_PUBLIC_API_KEY"), "static x-api-key header, for local development only")
	flags.StringVar(&cfg.BasePath, "base-path", envOr("DASHBOARD_BASE_PATH", "/"), "path prefix the dashboard is served under")
	flags.IntVar(&cfg.PageSize, "page-size", 20, "default list page size")
	flags.DurationVar(&cfg.Timeout, "timeout", 0, "backend request timeout (0 = none)")
	flags.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")
	configFile := flags.String("config", "", "optional YAML config file")

	if err = flags.Parse(args); err != nil {
		return
	}

	if *configFile != "" {
		var fc fileConfig
		fc, err = readFile(*configFile)
		if err != nil {
			return
		}
		fc.apply(flags, &cfg, &host, &port)
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")

	err = cfg.Validate()
	return
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func readFile(path string) (fc fileConfig, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, errors.Wrap(err, "config.read")
	}
	if err = yaml.Unmarshal(b, &fc); err != nil {
		return fc, errors.Wrapf(err, "config.parse %s", path)
	}
	return fc, nil
}

// apply copies file values over anything not set explicitly on the command line.
func (fc fileConfig) apply(flags *pflag.FlagSet, cfg *Config, host *string, port *uint) {
	set := func(name string) bool { return flags.Changed(name) }

	if fc.Host != nil && !set("host") {
		*host = *fc.Host
	}
	if fc.Port != nil && !set("port") {
		*port = *fc.Port
	}
	if fc.DBUrl != nil && !set("db-url") {
		cfg.DBUrl = *fc.DBUrl
	}
	if fc.APIBase != nil && !set("api-base") {
		cfg.APIBase = *fc.APIBase
	}
	if fc.DevAPIKey != nil && !set("dev-api-key") {
		cfg.DevAPIKey = *fc.DevAPIKey
	}
	if fc.BasePath != nil && !set("base-path") {
		cfg.BasePath = *fc.BasePath
	}
	if fc.PageSize != nil && !set("page-size") {
		cfg.PageSize = *fc.PageSize
	}
	if fc.Timeout != nil && !set("timeout") {
		cfg.Timeout = *fc.Timeout
	}
	if fc.Debug != nil && !set("debug") {
		cfg.Debug = *fc.Debug
	}
}

func (cfg Config) Validate() error {
	var result *multierror.Error

	if cfg.APIBase == "" {
		result = multierror.Append(result, errors.New("missing parameter --api-base"))
	} else if u, err := url.Parse(cfg.APIBase); err != nil || !u.IsAbs() || u.Host == "" {
		result = multierror.Append(result, errors.Errorf("--api-base must be an absolute URL, got %q", cfg.APIBase))
	}
	if cfg.PageSize <= 0 {
		result = multierror.Append(result, errors.Errorf("--page-size must be positive, got %d", cfg.PageSize))
	}
	if !strings.HasPrefix(cfg.BasePath, "/") {
		result = multierror.Append(result, errors.Errorf("--base-path must start with /, got %q", cfg.BasePath))
	}
	if cfg.Timeout < 0 {
		result = multierror.Append(result, errors.Errorf("--timeout must not be negative, got %s", cfg.Timeout))
	}

	return result.ErrorOrNil()
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url + strings.TrimSuffix(cfg.BasePath, "/")
	return
}
