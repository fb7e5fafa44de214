package uploads

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "nested", "uploads"))
	s.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }
	s.newID = func() string { return "0f8fad5b-d9cb-469f-a165-70867728950e" }
	return s
}

func TestSaveWritesUniqueName(t *testing.T) {
	s := fixedStore(t)

	name, err := s.Save(context.Background(), "zoloft label.png", []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "20240309_140507_0f8fad5b-d9cb-469f-a165-70867728950e_zoloft_label.png", name)

	data, err := os.ReadFile(filepath.Join(s.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), data)
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"label.jpg":             "label.jpg",
		"../../etc/passwd":      "passwd",
		`C:\scans\front.tiff`:   "front.tiff",
		"étiquette (1).png":     "tiquette_1_.png",
		"":                      "upload",
		"..":                    "upload",
		"box/side panel #2.bmp": "side_panel_2.bmp",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeName(in), in)
	}
}

func TestURL(t *testing.T) {
	assert.Equal(t, "/uploads/a.png", URL("a.png"))
}
