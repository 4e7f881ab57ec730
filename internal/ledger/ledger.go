// Package ledger persists completed work as plain newline-delimited id files,
// one per action class. The format is append-only and human-inspectable;
// files from separate runs can be concatenated safely.
package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"birdsweep/internal/sweep"
)

type Config struct {
	// PostsPath and LikesPath hold the removal and unlike class records.
	PostsPath string
	LikesPath string
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.PostsPath) == "" {
		c.PostsPath = "./progress_posts.txt"
	}
	if strings.TrimSpace(c.LikesPath) == "" {
		c.LikesPath = "./progress_likes.txt"
	}
	return c
}

// Ledger is the single-writer durable progress record. Record flushes to
// disk before returning, so a crash immediately after a successful Record
// never loses the mark.
type Ledger struct {
	mu    sync.Mutex
	files map[sweep.Class]*os.File
	seen  map[sweep.Class]map[string]struct{}
}

// Open loads both class files (creating them as needed) and seeds the
// in-memory exclusion sets used for queue construction.
func Open(cfg Config) (*Ledger, error) {
	cfg = cfg.withDefaults()
	paths := map[sweep.Class]string{
		sweep.ClassRemoval: cfg.PostsPath,
		sweep.ClassUnlike:  cfg.LikesPath,
	}

	l := &Ledger{
		files: map[sweep.Class]*os.File{},
		seen:  map[sweep.Class]map[string]struct{}{},
	}
	for class, path := range paths {
		ids, err := readIDs(path)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("ledger %s: %w", path, err)
		}
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				l.Close()
				return nil, fmt.Errorf("ledger %s: %w", path, err)
			}
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("ledger %s: %w", path, err)
		}
		l.files[class] = f
		l.seen[class] = ids
	}
	return l, nil
}

func readIDs(path string) (map[string]struct{}, error) {
	ids := map[string]struct{}{}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ids, nil
		}
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		ids[line] = struct{}{}
	}
	return ids, sc.Err()
}

// Contains reports whether id is already marked done for class.
func (l *Ledger) Contains(class sweep.Class, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[class][id]
	return ok
}

// Filter returns the queue-construction exclusion filter for class.
func (l *Ledger) Filter(class sweep.Class) sweep.Filter {
	return func(id string) bool { return l.Contains(class, id) }
}

// Record durably appends id to the class file. Recording an id that is
// already present is a no-op.
func (l *Ledger) Record(class sweep.Class, id string) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.seen[class][id]; ok {
		return nil
	}
	f := l.files[class]
	if f == nil {
		return fmt.Errorf("ledger: no file for class %s", class)
	}
	if _, err := f.WriteString(id + "\n"); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	l.seen[class][id] = struct{}{}
	return nil
}

// Count returns how many ids are marked done for class.
func (l *Ledger) Count(class sweep.Class) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen[class])
}

func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var firstErr error
	for class, f := range l.files {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		l.files[class] = nil
	}
	return firstErr
}
