package config

// Config is birdsweep's root configuration. JSON and YAML are both accepted;
// unknown fields are rejected so typos fail loudly instead of silently using
// defaults.
type Config struct {
	Twitter TwitterConfig `json:"twitter"`
	Input   InputConfig   `json:"input"`
	Pacing  PacingConfig  `json:"pacing"`
	Ledger  LedgerConfig  `json:"ledger"`
	Logging LoggingConfig `json:"logging"`

	Storage  *StorageConfig  `json:"storage,omitempty"`
	Notify   *NotifyConfig   `json:"notify,omitempty"`
	Schedule *ScheduleConfig `json:"schedule,omitempty"`

	// DryRun previews what a run would delete without touching the API.
	DryRun bool `json:"dry_run,omitempty"`
}

// TwitterConfig holds the OAuth 1.0a user-context credentials. All four are
// required to mutate the account; the bearer token alone cannot delete.
type TwitterConfig struct {
	APIKey            string `json:"api_key"`
	APISecret         string `json:"api_secret"`
	AccessToken       string `json:"access_token"`
	AccessTokenSecret string `json:"access_token_secret"`
}

func (t TwitterConfig) Complete() bool {
	return t.APIKey != "" && t.APISecret != "" && t.AccessToken != "" && t.AccessTokenSecret != ""
}

// InputConfig selects where work items come from.
//
// Modes:
//   - "archive": read the account's data export files (default)
//   - "api":     fetch posts/likes live from the API
type InputConfig struct {
	Mode string `json:"mode,omitempty"`

	// Archive mode file paths.
	TweetsFile string `json:"tweets_file,omitempty"`
	LikesFile  string `json:"likes_file,omitempty"`

	WhitelistFile string `json:"whitelist_file,omitempty"`
	// WatchWhitelist reloads the whitelist live during a run.
	WatchWhitelist bool `json:"watch_whitelist,omitempty"`

	// IncludeLikes sweeps likes in addition to posts (api mode fetches them
	// only when set; archive mode reads like.js only when set).
	IncludeLikes bool `json:"include_likes,omitempty"`
}

// PacingConfig holds the scheduler's timing knobs as Go duration strings.
//
// Defaults match the behavior this tool replaced: 20s between same-class
// operations (interleaving makes the effective rate one op per 10s), 60s
// extra pause when a rate limit reports no reset time.
type PacingConfig struct {
	Spacing          string `json:"spacing,omitempty"`
	ThrottleFallback string `json:"throttle_fallback,omitempty"`
	PollCap          string `json:"poll_cap,omitempty"`
}

type LedgerConfig struct {
	PostsPath string `json:"posts_path,omitempty"`
	LikesPath string `json:"likes_path,omitempty"`
}

type LoggingConfig struct {
	Level   string            `json:"level,omitempty"`
	Console *bool             `json:"console,omitempty"` // default true
	File    LoggingFileConfig `json:"file,omitempty"`
}

type LoggingFileConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// StorageConfig controls the optional run-history store.
//
// Driver values:
//   - "file": append-only JSONL
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", run history is disabled.
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// NotifyConfig controls the optional Telegram summary notification.
type NotifyConfig struct {
	Enabled    bool   `json:"enabled"`
	Token      string `json:"token,omitempty"`
	ChatID     int64  `json:"chat_id,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
}

// ScheduleConfig turns the tool into a long-running daemon that sweeps on a
// cron schedule (the shape this tool is deployed in under systemd timers).
type ScheduleConfig struct {
	Spec     string `json:"spec"`               // standard 5-field cron or @every
	Timezone string `json:"timezone,omitempty"` // IANA TZ, e.g. "Europe/Berlin"
}

func (l LoggingConfig) ConsoleEnabled() bool {
	return l.Console == nil || *l.Console
}
