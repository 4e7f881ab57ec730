package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const (
	DefaultSpacing          = 20 * time.Second
	DefaultThrottleFallback = 60 * time.Second
	DefaultPollCap          = 5 * time.Second
)

const (
	ModeArchive = "archive"
	ModeAPI     = "api"
)

// Load reads, decodes, and validates the config file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jb, _, err := coerceToJSONBytes(path, b)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, errors.New("invalid config: trailing data")
		}
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Input.Mode) == "" {
		c.Input.Mode = ModeArchive
	}
	if c.Input.TweetsFile == "" {
		c.Input.TweetsFile = "./tweets.js"
	}
	if c.Input.LikesFile == "" {
		c.Input.LikesFile = "./like.js"
	}
	if c.Input.WhitelistFile == "" {
		c.Input.WhitelistFile = "./whitelist.txt"
	}
}

func (c *Config) Validate() error {
	switch c.Input.Mode {
	case ModeArchive, ModeAPI:
	default:
		return fmt.Errorf("input.mode: unknown mode %q", c.Input.Mode)
	}

	if !c.DryRun && !c.Twitter.Complete() {
		return errors.New("twitter: api_key, api_secret, access_token and access_token_secret are all required")
	}
	if c.Input.Mode == ModeAPI && !c.Twitter.Complete() {
		return errors.New("twitter: api mode needs full credentials even for a dry run")
	}

	if _, err := c.SpacingDuration(); err != nil {
		return err
	}
	if _, err := c.ThrottleFallbackDuration(); err != nil {
		return err
	}
	if _, err := c.PollCapDuration(); err != nil {
		return err
	}

	if c.Storage != nil {
		if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
			return err
		}
	}
	if c.Notify != nil && c.Notify.Enabled {
		if strings.TrimSpace(c.Notify.Token) == "" || c.Notify.ChatID == 0 {
			return errors.New("notify: token and chat_id are required when enabled")
		}
	}
	if c.Schedule != nil {
		if strings.TrimSpace(c.Schedule.Spec) == "" {
			return errors.New("schedule.spec is required when schedule is set")
		}
		if tz := strings.TrimSpace(c.Schedule.Timezone); tz != "" {
			if _, err := time.LoadLocation(tz); err != nil {
				return fmt.Errorf("schedule.timezone: %w", err)
			}
		}
	}
	return nil
}

func (c *Config) SpacingDuration() (time.Duration, error) {
	return ParseDurationOrDefault("pacing.spacing", c.Pacing.Spacing, DefaultSpacing)
}

func (c *Config) ThrottleFallbackDuration() (time.Duration, error) {
	return ParseDurationOrDefault("pacing.throttle_fallback", c.Pacing.ThrottleFallback, DefaultThrottleFallback)
}

func (c *Config) PollCapDuration() (time.Duration, error) {
	return ParseDurationOrDefault("pacing.poll_cap", c.Pacing.PollCap, DefaultPollCap)
}
