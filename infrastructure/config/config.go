package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"serverAddress" toml:"server_address" json:"serverAddress" validate:"required"`
	Environment   string `yaml:"environment" toml:"environment" json:"environment" validate:"oneof=development test staging production"`

	// Content configuration
	ContentDir       string   `yaml:"contentDir" toml:"content_dir" json:"contentDir" validate:"required"`
	SiteURL          string   `yaml:"siteURL" toml:"site_url" json:"siteURL" validate:"required,url"`
	IgnoredHrefs     []string `yaml:"ignoredHrefs" toml:"ignored_hrefs" json:"ignoredHrefs"`
	IncludeDrafts    bool     `yaml:"includeDrafts" toml:"include_drafts" json:"includeDrafts"`
	RenderCacheDir   string   `yaml:"renderCacheDir" toml:"render_cache_dir" json:"renderCacheDir"`
	BuildConcurrency int      `yaml:"buildConcurrency" toml:"build_concurrency" json:"buildConcurrency" validate:"min=1,max=64"`
	WatchContent     bool     `yaml:"watchContent" toml:"watch_content" json:"watchContent"`
	LayoutSteps      int      `yaml:"layoutSteps" toml:"layout_steps" json:"layoutSteps" validate:"min=0"`

	// Publishing
	PublishBucket string `yaml:"publishBucket" toml:"publish_bucket" json:"publishBucket"`
	PublishKey    string `yaml:"publishKey" toml:"publish_key" json:"publishKey" validate:"required"`
	AWSRegion     string `yaml:"awsRegion" toml:"aws_region" json:"awsRegion"`

	// Logging
	LogLevel string `yaml:"logLevel" toml:"log_level" json:"logLevel" validate:"oneof=debug info warn error"`

	// Feature flags
	EnableMetrics   bool     `yaml:"enableMetrics" toml:"enable_metrics" json:"enableMetrics"`
	EnableTracing   bool     `yaml:"enableTracing" toml:"enable_tracing" json:"enableTracing"`
	TracingEndpoint string   `yaml:"tracingEndpoint" toml:"tracing_endpoint" json:"tracingEndpoint"`
	EnableCORS      bool     `yaml:"enableCORS" toml:"enable_cors" json:"enableCORS"`
	AllowedOrigins  []string `yaml:"allowedOrigins" toml:"allowed_origins" json:"allowedOrigins"`

	// Sources lists where the configuration was loaded from, lowest priority first
	Sources []string `yaml:"-" toml:"-" json:"-"`
}

// DefaultConfig returns the configuration used when nothing overrides it
func DefaultConfig() *Config {
	return &Config{
		ServerAddress:    ":8080",
		Environment:      "development",
		ContentDir:       "content/posts",
		SiteURL:          "https://tomeraberbach.com",
		BuildConcurrency: 8,
		PublishKey:       "graph.json",
		AWSRegion:        "us-west-2",
		LogLevel:         "info",
		EnableMetrics:    true,
		EnableCORS:       true,
		AllowedOrigins:   []string{"*"},
	}
}

// LoadConfig loads configuration from defaults, the optional file named by
// SITE_CONFIG_FILE, and environment variables, in increasing priority
func LoadConfig() (*Config, error) {
	return NewLoader(getEnv("SITE_CONFIG_FILE", "")).Load()
}

// applyEnvironment overlays environment variables on the configuration
func (c *Config) applyEnvironment() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.ContentDir = getEnv("CONTENT_DIR", c.ContentDir)
	c.SiteURL = getEnv("SITE_URL", c.SiteURL)
	c.IgnoredHrefs = getEnvList("IGNORED_HREFS", c.IgnoredHrefs)
	c.IncludeDrafts = getEnvBool("INCLUDE_DRAFTS", c.IncludeDrafts)
	c.RenderCacheDir = getEnv("RENDER_CACHE_DIR", c.RenderCacheDir)
	c.BuildConcurrency = getEnvInt("BUILD_CONCURRENCY", c.BuildConcurrency)
	c.WatchContent = getEnvBool("WATCH_CONTENT", c.WatchContent)
	c.LayoutSteps = getEnvInt("LAYOUT_STEPS", c.LayoutSteps)
	c.PublishBucket = getEnv("PUBLISH_BUCKET", c.PublishBucket)
	c.PublishKey = getEnv("PUBLISH_KEY", c.PublishKey)
	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.TracingEndpoint = getEnv("TRACING_ENDPOINT", c.TracingEndpoint)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
	c.AllowedOrigins = getEnvList("ALLOWED_ORIGINS", c.AllowedOrigins)
}

var validate = validator.New()

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.IsProduction() {
		u, err := url.Parse(c.SiteURL)
		if err != nil || u.Scheme != "https" {
			return fmt.Errorf("SITE_URL must be an https URL in production")
		}
		if c.WatchContent {
			return fmt.Errorf("WATCH_CONTENT cannot be enabled in production")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ShouldWatchContent reports whether content changes trigger a rebuild
func (c *Config) ShouldWatchContent() bool {
	return c.WatchContent || c.IsDevelopment()
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvList gets a comma separated environment variable with a default value
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
