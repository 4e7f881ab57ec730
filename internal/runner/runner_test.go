package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"birdsweep/internal/config"
	logx "birdsweep/pkg/logx"
)

const testTweets = `window.YTD.tweets.part0 = [
  {"tweet": {"id_str": "1", "full_text": "one", "created_at": "Wed Oct 10 20:19:24 +0000 2018"}},
  {"tweet": {"id_str": "2", "full_text": "two", "created_at": "Thu Oct 11 20:19:24 +0000 2018"}}
]`

const testLikes = `window.YTD.like.part0 = [
  {"like": {"tweetId": "9", "fullText": "liked"}}
]`

func testRunConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	cfg := &config.Config{DryRun: true}
	cfg.Input.Mode = config.ModeArchive
	cfg.Input.IncludeLikes = true
	cfg.Input.TweetsFile = write("tweets.js", testTweets)
	cfg.Input.LikesFile = write("like.js", testLikes)
	cfg.Input.WhitelistFile = write("whitelist.txt", "2\n")
	cfg.Ledger.PostsPath = filepath.Join(dir, "progress_posts.txt")
	cfg.Ledger.LikesPath = filepath.Join(dir, "progress_likes.txt")
	return cfg
}

func TestRunOnceDryRunArchive(t *testing.T) {
	cfg := testRunConfig(t)
	r := New(cfg, logx.Nop(), nil, nil)
	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	// Dry run must not write ledger entries.
	if b, err := os.ReadFile(cfg.Ledger.PostsPath); err != nil || len(b) != 0 {
		t.Fatalf("dry run touched the ledger: %q err=%v", b, err)
	}
}

func TestRunOnceNothingToDo(t *testing.T) {
	cfg := testRunConfig(t)
	// Everything already done.
	if err := os.WriteFile(cfg.Ledger.PostsPath, []byte("1\n2\n"), 0o644); err != nil {
		t.Fatalf("seed ledger: %v", err)
	}
	if err := os.WriteFile(cfg.Ledger.LikesPath, []byte("9\n"), 0o644); err != nil {
		t.Fatalf("seed ledger: %v", err)
	}
	r := New(cfg, logx.Nop(), nil, nil)
	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
}
