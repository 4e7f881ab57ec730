// Package whitelist loads the protected-ID list. Whitelisting applies to the
// removal class only; likes are always swept.
package whitelist

import (
	"bufio"
	"errors"
	"os"
	"strings"
	"sync"
)

// Set is a threadsafe view of the protected IDs. It stays live for the whole
// run: the Watcher swaps its contents when the file changes, so an operator
// can rescue a post mid-sweep.
type Set struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func (s *Set) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func (s *Set) replace(ids map[string]struct{}) {
	s.mu.Lock()
	s.ids = ids
	s.mu.Unlock()
}

// Load reads the whitelist file. One entry per line; blank lines and
// #-comments are skipped; full status URLs are reduced to their trailing ID.
// A missing file is an empty whitelist, not an error.
func Load(path string) (*Set, error) {
	ids, err := readIDs(path)
	if err != nil {
		return nil, err
	}
	return &Set{ids: ids}, nil
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
		if id := normalize(sc.Text()); id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids, sc.Err()
}

// normalize accepts either a raw ID or a status URL and returns the ID.
func normalize(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ""
	}
	if strings.Contains(line, "/") {
		line = strings.TrimRight(line, "/")
		if i := strings.LastIndex(line, "/"); i >= 0 {
			line = line[i+1:]
		}
		if i := strings.Index(line, "?"); i >= 0 {
			line = line[:i]
		}
	}
	return line
}
