package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validJSON = `{
  "twitter": {
    "api_key": "k", "api_secret": "s",
    "access_token": "t", "access_token_secret": "ts"
  },
  "input": { "include_likes": true },
  "pacing": { "spacing": "30s" }
}`

func TestLoadJSONWithDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json", validJSON))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Input.Mode != ModeArchive {
		t.Fatalf("mode = %q, want archive default", cfg.Input.Mode)
	}
	if cfg.Input.TweetsFile != "./tweets.js" || cfg.Input.WhitelistFile != "./whitelist.txt" {
		t.Fatalf("input defaults not applied: %+v", cfg.Input)
	}
	if d, _ := cfg.SpacingDuration(); d != 30*time.Second {
		t.Fatalf("spacing = %v, want 30s", d)
	}
	if d, _ := cfg.ThrottleFallbackDuration(); d != DefaultThrottleFallback {
		t.Fatalf("fallback = %v, want default", d)
	}
	if !cfg.Logging.ConsoleEnabled() {
		t.Fatalf("console should default to enabled")
	}
}

func TestLoadYAML(t *testing.T) {
	content := `
twitter:
  api_key: k
  api_secret: s
  access_token: t
  access_token_secret: ts
input:
  mode: api
  include_likes: true
schedule:
  spec: "0 3 1 * *"
  timezone: UTC
`
	cfg, err := Load(writeConfig(t, "config.yaml", content))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Input.Mode != ModeAPI {
		t.Fatalf("mode = %q, want api", cfg.Input.Mode)
	}
	if cfg.Schedule == nil || cfg.Schedule.Spec != "0 3 1 * *" {
		t.Fatalf("schedule = %+v", cfg.Schedule)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	bad := strings.Replace(validJSON, `"pacing"`, `"pacingg"`, 1)
	if _, err := Load(writeConfig(t, "config.json", bad)); err == nil {
		t.Fatalf("expected unknown-field error")
	}
}

func TestValidateRejectsIncompleteCredentials(t *testing.T) {
	content := `{"twitter": {"api_key": "k"}}`
	if _, err := Load(writeConfig(t, "config.json", content)); err == nil {
		t.Fatalf("expected credential error")
	}
}

func TestDryRunSkipsCredentialCheckInArchiveMode(t *testing.T) {
	content := `{"dry_run": true}`
	cfg, err := Load(writeConfig(t, "config.json", content))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.DryRun {
		t.Fatalf("dry_run not set")
	}
}

func TestValidateRejectsBadDuration(t *testing.T) {
	content := `{
  "dry_run": true,
  "pacing": { "spacing": "twenty seconds" }
}`
	if _, err := Load(writeConfig(t, "config.json", content)); err == nil {
		t.Fatalf("expected duration error")
	}
}

func TestValidateRejectsNotifyWithoutTarget(t *testing.T) {
	content := `{
  "dry_run": true,
  "notify": { "enabled": true }
}`
	if _, err := Load(writeConfig(t, "config.json", content)); err == nil {
		t.Fatalf("expected notify validation error")
	}
}

func TestValidateRejectsBadTimezone(t *testing.T) {
	content := `{
  "dry_run": true,
  "schedule": { "spec": "@every 1h", "timezone": "Mars/Olympus" }
}`
	if _, err := Load(writeConfig(t, "config.json", content)); err == nil {
		t.Fatalf("expected timezone error")
	}
}
