package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"PapersDigest/internal/analysis"
	"PapersDigest/internal/chatcard"
	"PapersDigest/internal/format"
	"PapersDigest/pkg/kst"
)

const (
	defaultTimezone = "Asia/Seoul"

	// PathEnv points at the YAML config file.
	PathEnv          = "PAPERS_DIGEST_CONFIG"
	anthropicKeyEnv  = "ANTHROPIC_API_KEY"
	openAIKeyEnv     = "OPENAI_API_KEY"
	aiProviderEnv    = "AI_PROVIDER"
	aiModelEnv       = "AI_MODEL"
	webhookURLEnv    = "GOOGLE_CHAT_WEBHOOK_URL"
	httpAddrEnv      = "HTTP_ADDR"
	logLevelEnv      = "LOG_LEVEL"
	minTopN, maxTopN = 3, 5
)

// Providers understood by the composition root.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"

	defaultAnthropicModel = "claude-3-7-sonnet-20250219"
	defaultOpenAIModel    = "gpt-4o-mini"
)

// Analysis modes.
const (
	ModeStructured = "structured"
	ModeText       = "text"
)

// Config holds high-level settings required across the application.
type Config struct {
	Source        SourceConfig       `yaml:"source"`
	AI            AIConfig           `yaml:"ai"`
	Papers        PapersConfig       `yaml:"papers"`
	Card          CardConfig         `yaml:"card"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Server        ServerConfig       `yaml:"server"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// SourceConfig selects the scanner strategy and its endpoints.
type SourceConfig struct {
	Scanner    string            `yaml:"scanner"`
	ListingURL string            `yaml:"listingUrl"`
	PageURL    string            `yaml:"pageUrl"`
	UserAgent  string            `yaml:"userAgent"`
	Timeout    time.Duration     `yaml:"timeout"`
	Options    map[string]string `yaml:"options"`
}

// AIConfig defines how to contact the language model.
type AIConfig struct {
	Provider            string        `yaml:"provider"`
	Endpoint            string        `yaml:"endpoint"`
	Model               string        `yaml:"model"`
	APIKey              string        `yaml:"apiKey"`
	Temperature         float64       `yaml:"temperature"`
	TextMaxTokens       int           `yaml:"textMaxTokens"`
	StructuredMaxTokens int           `yaml:"structuredMaxTokens"`
	Strategy            string        `yaml:"strategy"`
	Mode                string        `yaml:"mode"`
	Concurrency         int           `yaml:"concurrency"`
	Timeout             time.Duration `yaml:"timeout"`
}

// PapersConfig holds top-N and text truncation limits.
type PapersConfig struct {
	TopN         int `yaml:"topN"`
	AuthorsShort int `yaml:"authorsShort"`
	AuthorsLong  int `yaml:"authorsLong"`
	PreviewShort int `yaml:"previewShort"`
	PreviewLong  int `yaml:"previewLong"`
}

// CardConfig tunes the chat card layout.
type CardConfig struct {
	MaxAuthors       int    `yaml:"maxAuthors"`
	MaxSummaryLength int    `yaml:"maxSummaryLength"`
	MoreURL          string `yaml:"moreUrl"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	GoogleChat GoogleChatConfig `yaml:"googleChat"`
}

// GoogleChatConfig wires the incoming webhook. Empty URL means log-only mode.
type GoogleChatConfig struct {
	WebhookURL string        `yaml:"webhookUrl"`
	Timeout    time.Duration `yaml:"timeout"`
}

// SchedulerConfig defines when the timer trigger should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	return kst.Zone
}

// ServerConfig configures the HTTP trigger surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig carries the slog level name.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration from path (or $PAPERS_DIGEST_CONFIG when path is empty)
// and applies environment overrides.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindModel()
	cfg.Papers.TopN = clampTopN(cfg.Papers.TopN)
	cfg.bindTimezone()

	return cfg
}

// Limits exposes the text truncation settings.
func (c Config) Limits() format.Limits {
	return format.Limits{
		TopN:         c.Papers.TopN,
		AuthorsShort: c.Papers.AuthorsShort,
		AuthorsLong:  c.Papers.AuthorsLong,
		PreviewShort: c.Papers.PreviewShort,
		PreviewLong:  c.Papers.PreviewLong,
	}
}

// CardSettings exposes the card layout settings.
func (c Config) CardSettings() chatcard.Settings {
	return chatcard.Settings{
		MaxAuthors:       c.Card.MaxAuthors,
		MaxSummaryLength: c.Card.MaxSummaryLength,
		MoreURL:          c.Card.MoreURL,
	}
}

// AnalysisOptions exposes the engine settings.
func (c Config) AnalysisOptions() analysis.Options {
	return analysis.Options{
		Strategy:            analysis.Strategy(c.AI.Strategy),
		Limits:              c.Limits(),
		StructuredMaxTokens: c.AI.StructuredMaxTokens,
		TextMaxTokens:       c.AI.TextMaxTokens,
		Concurrency:         c.AI.Concurrency,
	}
}

// Validate rejects strategy and mode values the engine does not know.
func (a AIConfig) Validate() error {
	switch analysis.Strategy(a.Strategy) {
	case analysis.StrategyPerItem, analysis.StrategyBatch:
	default:
		return fmt.Errorf("unknown ai strategy %q", a.Strategy)
	}
	switch a.Mode {
	case ModeStructured, ModeText:
	default:
		return fmt.Errorf("unknown ai mode %q", a.Mode)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(aiProviderEnv); v != "" {
		c.AI.Provider = strings.ToLower(v)
	}

	keyEnv := anthropicKeyEnv
	if c.AI.Provider == ProviderOpenAI {
		keyEnv = openAIKeyEnv
	}
	if v := os.Getenv(keyEnv); v != "" {
		c.AI.APIKey = v
	}

	if v := os.Getenv(aiModelEnv); v != "" {
		c.AI.Model = v
	}

	if v := os.Getenv(webhookURLEnv); v != "" {
		c.Notifications.GoogleChat.WebhookURL = v
	}

	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

// bindModel picks the provider's default model when none was configured.
func (c *Config) bindModel() {
	if c.AI.Model != "" {
		return
	}
	if c.AI.Provider == ProviderOpenAI {
		c.AI.Model = defaultOpenAIModel
		return
	}
	c.AI.Model = defaultAnthropicModel
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to fixed UTC+9", tz)
		loc = kst.Zone
	}
	c.Scheduler.location = loc
}

func clampTopN(n int) int {
	switch {
	case n < minTopN:
		return minTopN
	case n > maxTopN:
		return maxTopN
	default:
		return n
	}
}

func mergeConfig(base, override Config) Config {
	if override.Source.Scanner != "" {
		base.Source.Scanner = override.Source.Scanner
	}
	if override.Source.ListingURL != "" {
		base.Source.ListingURL = override.Source.ListingURL
	}
	if override.Source.PageURL != "" {
		base.Source.PageURL = override.Source.PageURL
	}
	if override.Source.UserAgent != "" {
		base.Source.UserAgent = override.Source.UserAgent
	}
	if override.Source.Timeout > 0 {
		base.Source.Timeout = override.Source.Timeout
	}
	if len(override.Source.Options) > 0 {
		base.Source.Options = override.Source.Options
	}

	if override.AI.Provider != "" {
		base.AI.Provider = strings.ToLower(override.AI.Provider)
	}
	if override.AI.Endpoint != "" {
		base.AI.Endpoint = override.AI.Endpoint
	}
	if override.AI.Model != "" {
		base.AI.Model = override.AI.Model
	}
	if override.AI.APIKey != "" {
		base.AI.APIKey = override.AI.APIKey
	}
	if override.AI.Temperature > 0 {
		base.AI.Temperature = override.AI.Temperature
	}
	if override.AI.TextMaxTokens > 0 {
		base.AI.TextMaxTokens = override.AI.TextMaxTokens
	}
	if override.AI.StructuredMaxTokens > 0 {
		base.AI.StructuredMaxTokens = override.AI.StructuredMaxTokens
	}
	if override.AI.Strategy != "" {
		base.AI.Strategy = override.AI.Strategy
	}
	if override.AI.Mode != "" {
		base.AI.Mode = override.AI.Mode
	}
	if override.AI.Concurrency > 0 {
		base.AI.Concurrency = override.AI.Concurrency
	}
	if override.AI.Timeout > 0 {
		base.AI.Timeout = override.AI.Timeout
	}

	if override.Papers.TopN != 0 {
		base.Papers.TopN = override.Papers.TopN
	}
	if override.Papers.AuthorsShort > 0 {
		base.Papers.AuthorsShort = override.Papers.AuthorsShort
	}
	if override.Papers.AuthorsLong > 0 {
		base.Papers.AuthorsLong = override.Papers.AuthorsLong
	}
	if override.Papers.PreviewShort > 0 {
		base.Papers.PreviewShort = override.Papers.PreviewShort
	}
	if override.Papers.PreviewLong > 0 {
		base.Papers.PreviewLong = override.Papers.PreviewLong
	}

	if override.Card.MaxAuthors > 0 {
		base.Card.MaxAuthors = override.Card.MaxAuthors
	}
	if override.Card.MaxSummaryLength > 0 {
		base.Card.MaxSummaryLength = override.Card.MaxSummaryLength
	}
	if override.Card.MoreURL != "" {
		base.Card.MoreURL = override.Card.MoreURL
	}

	if override.Notifications.GoogleChat.WebhookURL != "" {
		base.Notifications.GoogleChat.WebhookURL = override.Notifications.GoogleChat.WebhookURL
	}
	if override.Notifications.GoogleChat.Timeout > 0 {
		base.Notifications.GoogleChat.Timeout = override.Notifications.GoogleChat.Timeout
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	limits := format.DefaultLimits()
	card := chatcard.DefaultSettings()
	opts := analysis.DefaultOptions()

	return Config{
		Source: SourceConfig{
			Scanner:    "hf-api",
			ListingURL: "https://huggingface.co/api/daily_papers",
			PageURL:    "https://huggingface.co/papers",
			Timeout:    20 * time.Second,
		},
		AI: AIConfig{
			Provider:            ProviderAnthropic,
			Endpoint:            "https://api.openai.com/v1/chat/completions",
			Temperature:         0.7,
			TextMaxTokens:       opts.TextMaxTokens,
			StructuredMaxTokens: opts.StructuredMaxTokens,
			Strategy:            string(opts.Strategy),
			Mode:                ModeStructured,
			Concurrency:         opts.Concurrency,
			Timeout:             60 * time.Second,
		},
		Papers: PapersConfig{
			TopN:         limits.TopN,
			AuthorsShort: limits.AuthorsShort,
			AuthorsLong:  limits.AuthorsLong,
			PreviewShort: limits.PreviewShort,
			PreviewLong:  limits.PreviewLong,
		},
		Card: CardConfig{
			MaxAuthors:       card.MaxAuthors,
			MaxSummaryLength: card.MaxSummaryLength,
			MoreURL:          card.MoreURL,
		},
		Notifications: NotificationConfig{
			GoogleChat: GoogleChatConfig{Timeout: 10 * time.Second},
		},
		Scheduler: SchedulerConfig{CronExpression: "0 9 * * *", Timezone: defaultTimezone},
		Server:    ServerConfig{Addr: ":8080"},
		Logging:   LoggingConfig{Level: "info"},
	}
}
