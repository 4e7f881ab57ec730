package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"birdsweep/internal/sweep"
)

const sampleTweets = `window.YTD.tweets.part0 = [
  {
    "tweet": {
      "id_str": "1001",
      "full_text": "hello world",
      "created_at": "Wed Oct 10 20:19:24 +0000 2018"
    }
  },
  {
    "tweet": {
      "id_str": "1002",
      "full_text": "RT @someone: reposted thing",
      "created_at": "Thu Oct 11 08:00:00 +0000 2018"
    }
  },
  {
    "tweet": {
      "id_str": "1003",
      "full_text": "bad date",
      "created_at": "not a date"
    }
  }
]`

const sampleLikes = `window.YTD.like.part0 = [
  { "like": { "tweetId": "2001", "fullText": "a liked post" } },
  { "like": { "tweetId": "2002" } },
  { "like": {} }
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadTweets(t *testing.T) {
	path := writeFile(t, "tweets.js", sampleTweets)
	items, err := LoadTweets(path)
	if err != nil {
		t.Fatalf("LoadTweets: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}

	if items[0].ID != "1001" || items[0].Kind != sweep.KindPost {
		t.Fatalf("item 0 = %+v", items[0])
	}
	want := time.Date(2018, 10, 10, 20, 19, 24, 0, time.UTC)
	if !items[0].Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v", items[0].Timestamp, want)
	}

	if items[1].Kind != sweep.KindRepost {
		t.Fatalf("RT entry parsed as %s, want repost", items[1].Kind)
	}

	// Unparseable date keeps the item with a zero timestamp.
	if items[2].ID != "1003" || !items[2].Timestamp.IsZero() {
		t.Fatalf("item 2 = %+v", items[2])
	}
}

func TestLoadLikes(t *testing.T) {
	path := writeFile(t, "like.js", sampleLikes)
	items, err := LoadLikes(path)
	if err != nil {
		t.Fatalf("LoadLikes: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != "2001" || items[0].Kind != sweep.KindLike || items[0].Text != "a liked post" {
		t.Fatalf("item 0 = %+v", items[0])
	}
	if items[1].ID != "2002" {
		t.Fatalf("item 1 = %+v", items[1])
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.js")
	items, err := LoadTweets(missing)
	if err != nil || len(items) != 0 {
		t.Fatalf("missing tweets: items=%v err=%v", items, err)
	}
	items, err = LoadLikes(missing)
	if err != nil || len(items) != 0 {
		t.Fatalf("missing likes: items=%v err=%v", items, err)
	}
}

func TestLoadTweetsRejectsGarbage(t *testing.T) {
	path := writeFile(t, "tweets.js", "window.YTD.tweets.part0 = {not an array")
	if _, err := LoadTweets(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
