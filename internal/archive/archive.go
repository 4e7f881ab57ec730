// Package archive reads work items out of a Twitter/X data export.
//
// The export wraps each JSON array in a JS assignment
// (`window.YTD.tweets.part0 = [...]`); the prefix is stripped before
// decoding. Posts come from tweets.js, likes from like.js.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"birdsweep/internal/sweep"
)

var ytdPrefix = regexp.MustCompile(`^window\.YTD\.\w+\.part0\s*=\s*`)

// createdAtLayout is the export's timestamp format, e.g.
// "Wed Oct 10 20:19:24 +0000 2018".
const createdAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

type tweetEntry struct {
	Tweet *tweetData `json:"tweet"`
}

type tweetData struct {
	IDStr     string      `json:"id_str"`
	ID        json.Number `json:"id"`
	FullText  string      `json:"full_text"`
	CreatedAt string      `json:"created_at"`
}

type likeEntry struct {
	Like *likeData `json:"like"`
}

type likeData struct {
	TweetID  string `json:"tweetId"`
	FullText string `json:"fullText"`
}

// LoadTweets parses the posts export. A missing file yields an empty list so
// an operator can run a likes-only sweep.
func LoadTweets(path string) ([]sweep.Item, error) {
	raw, err := readExport(path)
	if err != nil || raw == nil {
		return nil, err
	}

	var entries []tweetEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	items := make([]sweep.Item, 0, len(entries))
	for _, e := range entries {
		t := e.Tweet
		if t == nil {
			continue
		}
		id := t.IDStr
		if id == "" {
			id = t.ID.String()
		}
		if id == "" || id == "0" {
			continue
		}
		kind := sweep.KindPost
		if strings.HasPrefix(t.FullText, "RT @") {
			kind = sweep.KindRepost
		}
		var ts time.Time
		if t.CreatedAt != "" {
			// Unparseable dates keep the item; it just loses its place in
			// the oldest-first ordering.
			if parsed, err := time.Parse(createdAtLayout, t.CreatedAt); err == nil {
				ts = parsed
			}
		}
		items = append(items, sweep.Item{ID: id, Kind: kind, Text: t.FullText, Timestamp: ts})
	}
	return items, nil
}

// LoadLikes parses the likes export. Like entries carry no timestamps, so
// they keep export order.
func LoadLikes(path string) ([]sweep.Item, error) {
	raw, err := readExport(path)
	if err != nil || raw == nil {
		return nil, err
	}

	var entries []likeEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	items := make([]sweep.Item, 0, len(entries))
	for _, e := range entries {
		l := e.Like
		if l == nil || l.TweetID == "" {
			continue
		}
		items = append(items, sweep.Item{ID: l.TweetID, Kind: sweep.KindLike, Text: l.FullText})
	}
	return items, nil
}

func readExport(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return ytdPrefix.ReplaceAll(b, nil), nil
}
