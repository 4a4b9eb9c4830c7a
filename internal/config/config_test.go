package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"PapersDigest/internal/analysis"
)

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load("")

	if cfg.Source.Scanner != "hf-api" {
		t.Fatalf("unexpected scanner: %s", cfg.Source.Scanner)
	}
	if cfg.AI.Provider != ProviderAnthropic || cfg.AI.Mode != ModeStructured {
		t.Fatalf("unexpected ai defaults: %+v", cfg.AI)
	}
	if cfg.AI.APIKey != "" || cfg.Notifications.GoogleChat.WebhookURL != "" {
		t.Fatalf("credentials must be empty by default")
	}
	if cfg.Papers.TopN != 5 || cfg.Card.MaxAuthors != 2 || cfg.Card.MaxSummaryLength != 300 {
		t.Fatalf("unexpected limits: %+v %+v", cfg.Papers, cfg.Card)
	}
	if cfg.Scheduler.CronExpression != "0 9 * * *" {
		t.Fatalf("unexpected cron: %s", cfg.Scheduler.CronExpression)
	}
	if cfg.Scheduler.Location() == nil {
		t.Fatalf("location must be bound")
	}
	if got := cfg.AnalysisOptions().Strategy; got != analysis.StrategyPerItem {
		t.Fatalf("unexpected strategy: %s", got)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
source:
  scanner: hf-page
ai:
  strategy: batch
  mode: text
  model: from-file
papers:
  topN: 9
notifications:
  googleChat:
    webhookUrl: https://chat.example/file
    timeout: 3s
scheduler:
  timezone: Not/AZone
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(PathEnv, path)
	t.Setenv(anthropicKeyEnv, "sk-test")
	t.Setenv(aiModelEnv, "from-env")
	t.Setenv(webhookURLEnv, "https://chat.example/env")

	cfg := Load("")

	if cfg.Source.Scanner != "hf-page" || cfg.AI.Mode != ModeText || cfg.AI.Strategy != "batch" {
		t.Fatalf("file values not merged: %+v %+v", cfg.Source, cfg.AI)
	}
	if cfg.AI.APIKey != "sk-test" || cfg.AI.Model != "from-env" {
		t.Fatalf("env overrides not applied: %+v", cfg.AI)
	}
	if cfg.Notifications.GoogleChat.WebhookURL != "https://chat.example/env" {
		t.Fatalf("unexpected webhook: %s", cfg.Notifications.GoogleChat.WebhookURL)
	}
	if cfg.Notifications.GoogleChat.Timeout != 3*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.Notifications.GoogleChat.Timeout)
	}
	if cfg.Papers.TopN != 5 {
		t.Fatalf("topN must clamp to 5, got %d", cfg.Papers.TopN)
	}
	if cfg.Papers.PreviewLong != 300 {
		t.Fatalf("unset values must keep defaults: %+v", cfg.Papers)
	}
	if _, offset := time.Date(2025, 1, 15, 0, 0, 0, 0, cfg.Scheduler.Location()).Zone(); offset != 9*3600 {
		t.Fatalf("unknown timezone must fall back to UTC+9, offset %d", offset)
	}
}

func TestLoadOpenAIProviderDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(aiProviderEnv, "OpenAI")
	t.Setenv(anthropicKeyEnv, "sk-ant")
	t.Setenv(openAIKeyEnv, "sk-openai")

	cfg := Load("")

	if cfg.AI.Provider != ProviderOpenAI {
		t.Fatalf("unexpected provider: %s", cfg.AI.Provider)
	}
	if cfg.AI.Model != "gpt-4o-mini" {
		t.Fatalf("openai provider must default to an openai model, got %s", cfg.AI.Model)
	}
	if cfg.AI.APIKey != "sk-openai" {
		t.Fatalf("openai provider must read OPENAI_API_KEY, got %s", cfg.AI.APIKey)
	}
}

func TestLoadAnthropicProviderDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(anthropicKeyEnv, "sk-ant")
	t.Setenv(openAIKeyEnv, "sk-openai")

	cfg := Load("")

	if cfg.AI.Model != "claude-3-7-sonnet-20250219" || cfg.AI.APIKey != "sk-ant" {
		t.Fatalf("unexpected anthropic defaults: %+v", cfg.AI)
	}
}

func TestLoadExplicitModelWins(t *testing.T) {
	clearEnv(t)
	t.Setenv(aiProviderEnv, "openai")
	t.Setenv(aiModelEnv, "my-model")

	if cfg := Load(""); cfg.AI.Model != "my-model" {
		t.Fatalf("explicit model must be kept, got %s", cfg.AI.Model)
	}
}

func TestAIConfigValidate(t *testing.T) {
	t.Parallel()

	valid := AIConfig{Strategy: "batch", Mode: ModeText}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, bad := range []AIConfig{
		{Strategy: "Batch", Mode: ModeStructured},
		{Strategy: "per-item", Mode: "txt"},
		{Strategy: "", Mode: ModeStructured},
	} {
		if err := bad.Validate(); err == nil {
			t.Fatalf("expected error for %+v", bad)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	cfg := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if cfg.Source.Scanner != "hf-api" {
		t.Fatalf("missing file must keep defaults")
	}
}

func TestClampTopN(t *testing.T) {
	t.Parallel()

	cases := map[int]int{-1: 3, 0: 3, 3: 3, 4: 4, 5: 5, 12: 5}
	for in, want := range cases {
		if got := clampTopN(in); got != want {
			t.Fatalf("clampTopN(%d) = %d, want %d", in, got, want)
		}
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{PathEnv, anthropicKeyEnv, openAIKeyEnv, aiProviderEnv, aiModelEnv, webhookURLEnv, httpAddrEnv, logLevelEnv} {
		t.Setenv(key, "")
	}
}
