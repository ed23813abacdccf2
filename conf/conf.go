package conf

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ItalyPaleAle/rss-scraper/models"
)

// Config contains the settings for a run
type Config struct {
	DBPath         string
	CSVPath        string
	UserAgent      string
	FetchTimeout   time.Duration
	FeedDelay      time.Duration
	SearchQuery    string
	SearchLimit    int
	StripHTML      bool
	EnrichMetadata bool
	LogLevel       string
	Feeds          []models.FeedSource
}

// DefaultFeeds is the list of feeds used when none is configured
func DefaultFeeds() []models.FeedSource {
	return []models.FeedSource{
		{Name: "BBC World", Url: "https://feeds.bbci.co.uk/news/world/rss.xml"},
		{Name: "CNN Top", Url: "http://rss.cnn.com/rss/edition.rss"},
		{Name: "TechCrunch", Url: "https://techcrunch.com/feed/"},
		{Name: "CNBC Business", Url: "https://www.cnbc.com/id/100003114/device/rss/rss.html"},
		{Name: "ESPN News", Url: "https://www.espn.com/espn/rss/news"},
	}
}

// SetDefaults sets the default values in the viper instance
func SetDefaults(v *viper.Viper) {
	v.SetDefault("DBPath", "rss.db")
	v.SetDefault("CSVPath", "rss_items.csv")
	v.SetDefault("UserAgent", "Mozilla/5.0 (RSS Scraper Practice)")
	v.SetDefault("FetchTimeout", 15*time.Second)
	v.SetDefault("FeedDelay", 500*time.Millisecond)
	v.SetDefault("SearchQuery", "technology OR startup")
	v.SetDefault("SearchLimit", 5)
	v.SetDefault("StripHTML", false)
	v.SetDefault("EnrichMetadata", false)
	v.SetDefault("LogLevel", "info")
}

// Flags returns the command-line flags, which override the config file and env
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("rss-scraper", pflag.ContinueOnError)
	fs.String("config", "", "Path to a config file")
	fs.String("db", "", "Path to the SQLite database")
	fs.String("csv", "", "Path of the CSV snapshot")
	fs.String("query", "", "Search query to run after the import")
	fs.String("log-level", "", "Log level: debug, info, warn, error")
	return fs
}

// Load reads the configuration from (in order of precedence) flags, env, config file and defaults
func Load(args []string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	// Flags
	fs := Flags()
	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	bindings := map[string]string{
		"DBPath":      "db",
		"CSVPath":     "csv",
		"SearchQuery": "query",
		"LogLevel":    "log-level",
	}
	for key, flag := range bindings {
		if f := fs.Lookup(flag); f != nil && f.Changed {
			_ = v.BindPFlag(key, f)
		}
	}

	// Env
	v.SetEnvPrefix("RSSSCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file
	configFile, _ := fs.GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.rss-scraper")
		v.AddConfigPath("/etc/rss-scraper")
	}
	err = v.ReadInConfig()
	if err != nil {
		// Ignore errors if the config file doesn't exist, unless it was requested explicitly
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper builds a Config from a viper instance and validates it
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DBPath:         v.GetString("DBPath"),
		CSVPath:        v.GetString("CSVPath"),
		UserAgent:      v.GetString("UserAgent"),
		FetchTimeout:   v.GetDuration("FetchTimeout"),
		FeedDelay:      v.GetDuration("FeedDelay"),
		SearchQuery:    v.GetString("SearchQuery"),
		SearchLimit:    v.GetInt("SearchLimit"),
		StripHTML:      v.GetBool("StripHTML"),
		EnrichMetadata: v.GetBool("EnrichMetadata"),
		LogLevel:       v.GetString("LogLevel"),
	}

	if v.IsSet("Feeds") {
		err := v.UnmarshalKey("Feeds", &cfg.Feeds)
		if err != nil {
			return nil, fmt.Errorf("invalid feeds list: %w", err)
		}
	} else {
		cfg.Feeds = DefaultFeeds()
	}

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns an error if the configuration can't be used
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("database path is empty")
	}
	if c.CSVPath == "" {
		return errors.New("CSV path is empty")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}
	if c.FeedDelay < 0 {
		return errors.New("feed delay must not be negative")
	}
	if c.SearchLimit < 1 {
		return errors.New("search limit must be at least 1")
	}
	if len(c.Feeds) == 0 {
		return errors.New("no feeds configured")
	}
	for i, f := range c.Feeds {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("feed %d has an empty name", i)
		}
		u, err := url.Parse(f.Url)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("feed '%s' has an invalid URL '%s'", f.Name, f.Url)
		}
	}
	return nil
}

// SetLoggerLevel sets the level of the global logger
func SetLoggerLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	}
}
