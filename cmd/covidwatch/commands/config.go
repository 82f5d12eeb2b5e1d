package commands

import (
	"covidwatch/internal/components/chrono"
	"covidwatch/internal/components/telemetry"
	"covidwatch/internal/fetch"
	"covidwatch/internal/sources"
	"covidwatch/internal/store"
	"covidwatch/internal/tracker"
	"covidwatch/pkg/configutil"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultConfigPath = "covidwatch.json5"
	DefaultSchedule   = "0 * * * *"
	DefaultTimeout    = 30
)

type Config struct {
	DataDir          string           `json:"data_dir"`
	Schedule         string           `json:"schedule"`
	TimeoutSeconds   int              `json:"timeout_seconds"`
	UserAgent        string           `json:"user_agent"`
	CloudflareBypass bool             `json:"cloudflare_bypass"`
	Sources          []tracker.Source `json:"sources"`
	Telemetry        telemetry.Config `json:"telemetry"`
}

func (c Config) timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// loadConfig reads path (and its .local override) and fills in defaults. With
// recursive set, path is searched for in the cwd and then each parent
// directory.
func loadConfig(path string, recursive bool) (Config, error) {
	read := configutil.ReadConfig[Config]
	if recursive {
		read = configutil.ReadRecursively[Config]
	}
	cfg, err := read(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, cfg.validate()
}

// configFromFlags loads the --config file, a default --config is looked up
// from the cwd upwards.
func configFromFlags() (Config, error) {
	return loadConfig(*configPath, !rootCmd.PersistentFlags().Changed("config"))
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = store.DefaultRoot
	}
	if c.Schedule == "" {
		c.Schedule = DefaultSchedule
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = fetch.DefaultUserAgent
	}
}

func (c Config) validate() error {
	for i, src := range c.Sources {
		if strings.TrimSpace(src.Store) == "" {
			return fmt.Errorf("sources[%d]: missing store", i)
		}
		if strings.TrimSpace(src.ID) == "" {
			return fmt.Errorf("sources[%d]: missing id", i)
		}
		if strings.TrimSpace(src.Kind) == "" {
			return fmt.Errorf("sources[%d]: missing kind", i)
		}
		if strings.TrimSpace(src.Locator) == "" {
			return fmt.Errorf("sources[%d]: missing locator", i)
		}
	}
	return nil
}

// checkDumpDir refuses a dump directory that is or contains the store root.
func checkDumpDir(dump, dataDir string) error {
	absDump, err := filepath.Abs(dump)
	if err != nil {
		return err
	}
	absData, err := filepath.Abs(dataDir)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(absDump, absData)
	if err != nil {
		return nil
	}
	outside := rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
	if !outside {
		return fmt.Errorf("dump directory %s must not hold the data directory %s", dump, dataDir)
	}
	return nil
}

// environment is everything a command needs, built once from the config.
type environment struct {
	tel      telemetry.API
	factory  sources.Factory
	registry *store.Registry
	tracker  tracker.Tracker
}

func newEnvironment(cfg Config, dump string) (environment, error) {
	tel := telemetry.NewSlogAPI(nil)
	clock := chrono.NewStandardImpl()

	opts := fetch.ClientOptions{
		UserAgent:        cfg.UserAgent,
		Timeout:          cfg.timeout(),
		CloudflareBypass: cfg.CloudflareBypass,
	}
	if dump != "" {
		err := checkDumpDir(dump, cfg.DataDir)
		if err != nil {
			return environment{}, err
		}
		output, err := fetch.NewFilesystemOutput(dump, tel)
		if err != nil {
			return environment{}, fmt.Errorf("prepare dump directory: %w", err)
		}
		opts.Dump = output
	}
	fetcher := fetch.NewClient(opts, tel)
	factory := sources.NewFactory(fetcher, tel)
	registry := store.NewRegistry(cfg.DataDir, clock, tel)

	return environment{
		tel:      tel,
		factory:  factory,
		registry: registry,
		tracker:  tracker.New(registry, factory, tel),
	}, nil
}
