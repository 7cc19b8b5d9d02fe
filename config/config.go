package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"sjsage522/listingwatch/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Redis configuration
	RedisAddr            string `yaml:"redis_addr"`
	RedisDB              int    `yaml:"redis_db"`
	RedisStream          string `yaml:"redis_stream"`
	RedisStreamCount     int    `yaml:"redis_stream_count"`
	RedisStreamMaxLength int    `yaml:"redis_stream_max_length"`

	// Memcache configuration
	MemcacheAddr string        `yaml:"memcache_addr"`
	SeenTTL      time.Duration `yaml:"seen_ttl"`

	// Crawler configuration
	CrawlInterval time.Duration `yaml:"crawl_interval"`
	BlockTime     time.Duration `yaml:"block_time"`

	// Site URLs
	EmagURL         string `yaml:"emag_url"`
	TranslationsURL string `yaml:"translations_url"`
	ReviewBatchSize int    `yaml:"review_batch_size"`

	// Metrics listen address, empty disables the endpoint
	MetricsAddr string `yaml:"metrics_addr"`

	Mail MailConfig `yaml:"mail"`

	// Environment
	Environment string `yaml:"environment"`
}

// MailConfig holds the SMTP endpoint and message templates used by the
// email reporter
type MailConfig struct {
	Server         string `yaml:"server"`
	Port           int    `yaml:"port"`
	TLS            bool   `yaml:"tls"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	From           string `yaml:"from"`
	Subject        string `yaml:"subject"`
	GotResultsTag  string `yaml:"got_results_tag"`
	NoResultsTag   string `yaml:"no_results_tag"`
	ReviewsTag     string `yaml:"reviews_tag"`
	ReviewsSubject string `yaml:"reviews_subject"`
	Signature      string `yaml:"signature"`
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	redisStreamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))
	crawlInterval, _ := strconv.Atoi(getEnv("CRAWL_INTERVAL_SECONDS", "3600"))
	blockTime, _ := strconv.Atoi(getEnv("BLOCK_TIME_SECONDS", "500"))
	seenTTL, _ := strconv.Atoi(getEnv("SEEN_TTL_SECONDS", "86400"))
	batchSize, _ := strconv.Atoi(getEnv("REVIEW_BATCH_SIZE", "150"))
	mailPort, _ := strconv.Atoi(getEnv("EMAIL_PORT", "25"))
	mailTLS, _ := strconv.ParseBool(getEnv("EMAIL_TLS", "false"))

	return &Config{
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "listings"),
		RedisStreamCount:     redisStreamCount,
		RedisStreamMaxLength: redisStreamMaxLength,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		SeenTTL:              time.Duration(seenTTL) * time.Second,
		CrawlInterval:        time.Duration(crawlInterval) * time.Second,
		BlockTime:            time.Duration(blockTime) * time.Second,
		EmagURL:              getEnv("EMAG_URL", "http://www.emag.ro"),
		TranslationsURL:      getEnv("TRANSLATIONS_URL", "https://translations.launchpad.net"),
		ReviewBatchSize:      batchSize,
		MetricsAddr:          getEnv("METRICS_ADDR", ""),
		Mail: MailConfig{
			Server:         getEnv("EMAIL_SERVER", "127.0.0.1"),
			Port:           mailPort,
			TLS:            mailTLS,
			Username:       getEnv("EMAIL_USERNAME", ""),
			Password:       getEnv("EMAIL_PASSWORD", ""),
			From:           getEnv("EMAIL_FROM", "Resigilate Script <no-reply@example.com>"),
			Subject:        getEnv("EMAIL_SUBJECT", "Results from eMag resigilate"),
			GotResultsTag:  getEnv("EMAIL_SUBJECT_GOT_RESULTS", "[good news]"),
			NoResultsTag:   getEnv("EMAIL_SUBJECT_NO_RESULTS", "[no news]"),
			ReviewsTag:     getEnv("EMAIL_REVIEWS_TAG", "[lp-new-suggestions]"),
			ReviewsSubject: getEnv("EMAIL_REVIEWS_SUBJECT", "Results from Ubuntu translations reviews"),
			Signature:      getEnv("EMAIL_SIGNATURE", "\n--\nYour faithful servant,\nRobocut"),
		},
		Environment: getEnv("LISTINGWATCH_ENVIRONMENT", "development"),
	}
}

// LoadFile overlays the YAML file at path on top of the environment
// configuration. Keys missing from the file keep their current values.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewConfiguration(fmt.Sprintf("failed to read config file %s", path), err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.NewConfiguration(fmt.Sprintf("failed to parse config file %s", path), err)
	}
	return nil
}

// Validate checks the configuration for values the application can not run with
func (c *Config) Validate() error {
	if c.EmagURL == "" {
		return errors.NewConfiguration("EMAG_URL must not be empty", nil)
	}
	if c.TranslationsURL == "" {
		return errors.NewConfiguration("TRANSLATIONS_URL must not be empty", nil)
	}
	if c.ReviewBatchSize < 1 {
		return errors.NewConfiguration("REVIEW_BATCH_SIZE must be at least 1", nil)
	}
	if c.CrawlInterval <= 0 {
		return errors.NewConfiguration("CRAWL_INTERVAL_SECONDS must be positive", nil)
	}
	if c.RedisStreamCount < 1 {
		return errors.NewConfiguration("REDIS_STREAM_COUNT must be at least 1", nil)
	}
	if c.Mail.Port < 1 || c.Mail.Port > 65535 {
		return errors.NewConfiguration(fmt.Sprintf("EMAIL_PORT %d is out of range", c.Mail.Port), nil)
	}
	return nil
}

// IsProduction reports whether the application runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
