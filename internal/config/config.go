// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	// Telegram settings
	TelegramToken string
	AllowedUserID int64 // 0 = everyone

	// Generative model settings
	LLMProvider       string // gemini | openai
	GeminiAPIKey      string
	GeminiModel       string
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	MaxGeminiRequests int // generation requests per day (0 = unlimited)

	// Scrape provider settings
	AnyCrawlAPIKey  string
	AnyCrawlBaseURL string
	ListingEngines  []string
	ArticleEngine   string
	RequestTimeout  time.Duration

	// News pipeline policy
	SourcesConfigPath  string
	WindowHours        int
	LinksPerListing    int
	ArticlesPerListing int
	MaxDigestArticles  int
	ExcerptChars       int
	PromptChars        int

	// Delivery
	ChunkSize  int
	ChunkPause time.Duration

	// Gmail watcher
	GoogleCredentialsFile string
	GoogleTokenFile       string
	MailQuery             string
	MailInterval          time.Duration

	// Sheets watcher
	SheetsServiceAccountFile string
	SheetID                  string
	SheetRange               string
	SheetsInterval           time.Duration

	// App settings
	Debug                bool
	LogFormat            string
	EnableHTTPMonitoring bool
	MonitoringPort       string
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		LLMProvider:        ProviderGemini,
		GeminiModel:        "gemini-2.0-flash",
		OpenAIModel:        "gpt-4o-mini",
		AnyCrawlBaseURL:    "https://api.anycrawl.dev",
		ListingEngines:     []string{"cheerio", "playwright"},
		ArticleEngine:      "cheerio",
		RequestTimeout:     45 * time.Second,
		SourcesConfigPath:  "configs/sources.yaml",
		WindowHours:        24,
		LinksPerListing:    20,
		ArticlesPerListing: 5,
		MaxDigestArticles:  10,
		ExcerptChars:       4000,
		PromptChars:        25000,
		ChunkSize:          4096,
		ChunkPause:         time.Second,
		MailQuery:          "label:inbox is:unread newer_than:12h",
		MailInterval:       60 * time.Second,
		SheetRange:         "Sheet1!A:B",
		SheetsInterval:     30 * time.Second,
		LogFormat:          "text",
		MonitoringPort:     "8080",
	}

	// Load from environment
	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if cfg.TelegramToken == "" {
		cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	}
	cfg.AllowedUserID = getEnvInt64("ALLOWED_USER_ID")

	cfg.LLMProvider = strings.ToLower(getEnvOrDefault("LLM_PROVIDER", cfg.LLMProvider))
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIModel = getEnvOrDefault("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	if v := getEnvIntOrDefault("MAX_GEMINI_REQUESTS", 0); v > 0 {
		cfg.MaxGeminiRequests = v
	}

	cfg.AnyCrawlAPIKey = os.Getenv("ANYCRAWL_API_KEY")
	cfg.AnyCrawlBaseURL = strings.TrimRight(getEnvOrDefault("ANYCRAWL_BASE_URL", cfg.AnyCrawlBaseURL), "/")
	if v := os.Getenv("ANYCRAWL_ENGINES"); v != "" {
		if engines := splitList(v); len(engines) > 0 {
			cfg.ListingEngines = engines
		}
	}
	cfg.ArticleEngine = getEnvOrDefault("ANYCRAWL_ARTICLE_ENGINE", cfg.ArticleEngine)
	cfg.RequestTimeout = getEnvDurationOrDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)

	cfg.SourcesConfigPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesConfigPath)
	cfg.WindowHours = positiveOr(getEnvIntOrDefault("WINDOW_HOURS", cfg.WindowHours), cfg.WindowHours)
	cfg.LinksPerListing = positiveOr(getEnvIntOrDefault("LINKS_PER_LISTING", cfg.LinksPerListing), cfg.LinksPerListing)
	cfg.ArticlesPerListing = positiveOr(getEnvIntOrDefault("ARTICLES_PER_LISTING", cfg.ArticlesPerListing), cfg.ArticlesPerListing)
	cfg.MaxDigestArticles = positiveOr(getEnvIntOrDefault("MAX_DIGEST_ARTICLES", cfg.MaxDigestArticles), cfg.MaxDigestArticles)
	cfg.ExcerptChars = positiveOr(getEnvIntOrDefault("EXCERPT_CHARS", cfg.ExcerptChars), cfg.ExcerptChars)
	cfg.PromptChars = positiveOr(getEnvIntOrDefault("PROMPT_CHARS", cfg.PromptChars), cfg.PromptChars)

	cfg.ChunkPause = getEnvDurationOrDefault("CHUNK_PAUSE", cfg.ChunkPause)

	cfg.GoogleCredentialsFile = getEnvOrDefault("GOOGLE_CREDENTIALS_FILE", "credentials.json")
	cfg.GoogleTokenFile = getEnvOrDefault("GOOGLE_TOKEN_FILE", "token.json")
	cfg.MailQuery = getEnvOrDefault("MAIL_QUERY", cfg.MailQuery)
	cfg.MailInterval = getEnvDurationOrDefault("MAIL_INTERVAL", cfg.MailInterval)

	cfg.SheetsServiceAccountFile = getEnvOrDefault("SHEETS_SERVICE_ACCOUNT_FILE", "service_account.json")
	cfg.SheetID = os.Getenv("SHEET_ID")
	cfg.SheetRange = getEnvOrDefault("SHEET_RANGE", cfg.SheetRange)
	cfg.SheetsInterval = getEnvDurationOrDefault("SHEETS_INTERVAL", cfg.SheetsInterval)

	cfg.Debug = os.Getenv("DEBUG") == "true"
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.EnableHTTPMonitoring = os.Getenv("ENABLE_HTTP_MONITORING") == "true"
	cfg.MonitoringPort = getEnvOrDefault("MONITORING_PORT", cfg.MonitoringPort)

	return cfg, cfg.Validate()
}

// Window is the recency window as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowHours) * time.Hour
}

// MailEnabled reports whether Gmail credentials are configured at all.
func (c *Config) MailEnabled() bool {
	return fileExists(c.GoogleCredentialsFile)
}

// SheetsEnabled reports whether the shopping list spreadsheet is configured.
func (c *Config) SheetsEnabled() bool {
	return c.SheetID != "" && fileExists(c.SheetsServiceAccountFile)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string) int64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	}
	return 0
}

// getEnvDurationOrDefault accepts Go durations ("45s") or plain seconds ("45").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Validate checks what the news pipeline needs. The bot transport is checked by ValidateBot.
func (c *Config) Validate() error {
	if c.AnyCrawlAPIKey == "" {
		return fmt.Errorf("ANYCRAWL_API_KEY is required")
	}
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be 'gemini' or 'openai', got %q", c.LLMProvider)
	}
	if len(c.ListingEngines) == 0 {
		return fmt.Errorf("ANYCRAWL_ENGINES must list at least one engine")
	}
	return nil
}

func (c *Config) ValidateBot() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}
