package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	defaultAPIURL         = "https://api.github.com"
	defaultTimeout        = 30 * time.Second
	defaultSchedulerEvery = 5 * time.Minute
	defaultLogLevel       = "info"
	envPrefix             = "ORGREPOS"
)

type Config struct {
	GitHub    GitHubConfig    `mapstructure:"github"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Notifier  NotifierConfig  `mapstructure:"notifier"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

// GitHubConfig holds the settings shared by every command that talks to the API.
type GitHubConfig struct {
	APIURL  string `mapstructure:"api_url"`
	Token   string `mapstructure:"token"`
	Org     string `mapstructure:"org"`
	License string `mapstructure:"license"`
	Timeout string `mapstructure:"timeout"`
}

func (g GitHubConfig) GetAPIURL() string {
	if u := strings.TrimSpace(g.APIURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	return defaultAPIURL
}

func (g GitHubConfig) GetTimeout() time.Duration {
	return parseDurationWithDefault(g.Timeout, defaultTimeout, "github.timeout")
}

// WatchedOrg is one organization checked by the watch command.
type WatchedOrg struct {
	Org     string `mapstructure:"org"`
	License string `mapstructure:"license"`
}

type WatchConfig struct {
	Interval string       `mapstructure:"interval"`
	Orgs     []WatchedOrg `mapstructure:"orgs"`
}

// GetInterval returns the watch interval, falling back to globalDefault.
func (w WatchConfig) GetInterval(globalDefault time.Duration) time.Duration {
	return parseDurationWithDefault(w.Interval, globalDefault, "watch.interval")
}

type NotifierConfig struct {
	AppriseAPIURL     string `mapstructure:"apprise_api_url"`
	AppriseServiceURL string `mapstructure:"apprise_service_url"`
}

// GetServiceURLs splits the comma-separated Apprise service list, dropping blanks.
func (n NotifierConfig) GetServiceURLs() []string {
	urls := []string{}
	for _, p := range strings.Split(n.AppriseServiceURL, ",") {
		if p = strings.TrimSpace(p); p != "" {
			urls = append(urls, p)
		}
	}
	return urls
}

type SchedulerConfig struct {
	Interval string `mapstructure:"interval"` // parsed as duration
}

func (s SchedulerConfig) GetInterval() time.Duration {
	return parseDurationWithDefault(s.Interval, defaultSchedulerEvery, "scheduler.interval")
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GetLevel parses Level, defaulting to info on empty or unknown values.
func (l LogConfig) GetLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(l.Level)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// IsJSON reports whether logs should be emitted as JSON instead of console text.
func (l LogConfig) IsJSON() bool {
	return strings.EqualFold(strings.TrimSpace(l.Format), "json")
}

// parseDurationWithDefault parses value, returning defaultDuration when it is
// blank or invalid. key only labels the warning.
func parseDurationWithDefault(value string, defaultDuration time.Duration, key string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Dur("default", defaultDuration).
			Msg("Invalid duration, using default")
		return defaultDuration
	}
	return d
}

// SetDefaults registers default values and environment handling on v.
// Environment variables use the ORGREPOS_ prefix, e.g. ORGREPOS_GITHUB_TOKEN.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("github.api_url", defaultAPIURL)
	v.SetDefault("github.timeout", defaultTimeout.String())
	// Keys without a default still need registering for AutomaticEnv to see them.
	for _, key := range []string{
		"github.token", "github.org", "github.license",
		"watch.interval",
		"notifier.apprise_api_url", "notifier.apprise_service_url",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("scheduler.interval", defaultSchedulerEvery.String())
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", "console")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the config file (cfgFile, or ./config.yaml when empty) into a
// Config. A missing default config file is not an error.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	var cfg Config

	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
