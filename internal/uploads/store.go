// Package uploads stores label images submitted by the browser client.
package uploads

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// URLPrefix is the public path stored files are served under.
const URLPrefix = "/uploads/"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Store writes uploads into a single directory.
type Store struct {
	dir   string
	now   func() time.Time
	newID func() string
}

// NewStore constructs a Store rooted at dir.
func NewStore(dir string) *Store {
	if strings.TrimSpace(dir) == "" {
		dir = "uploads"
	}
	return &Store{
		dir:   dir,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// Dir returns the directory files are written to.
func (s *Store) Dir() string { return s.dir }

// Save persists data under a unique name and returns that name.
func (s *Store) Save(_ context.Context, original string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("uploads: prepare dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s_%s", s.now().Format("20060102_150405"), s.newID(), SanitizeName(original))
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("uploads: write %s: %w", name, err)
	}
	return name, nil
}

// URL returns the public path for a stored file name.
func URL(name string) string { return URLPrefix + name }

// SanitizeName strips any directory part from a client supplied file name
// and replaces characters outside a conservative set.
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "upload"
	}
	return name
}
