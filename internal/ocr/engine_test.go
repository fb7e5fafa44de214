package ocr

import (
	"bytes"
	"context"
	"image/gif"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct{ text string }

func (s stubEngine) Name() string { return "stub" }

func (s stubEngine) Recognize(context.Context, []byte) (string, error) { return s.text, nil }

func TestNewDefaultsToCommand(t *testing.T) {
	engine, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, CommandEngineName, engine.Name())
}

func TestNewUnknownEngine(t *testing.T) {
	_, err := New(Config{Engine: "abbyy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abbyy")
	assert.Contains(t, err.Error(), CommandEngineName)
}

func TestRegisterIsCaseInsensitive(t *testing.T) {
	Register("Stub", func(Config) (Engine, error) { return stubEngine{text: "hi"}, nil })

	engine, err := New(Config{Engine: "STUB"})
	require.NoError(t, err)
	text, err := engine.Recognize(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", text)
	assert.Contains(t, Available(), "stub")
}

func TestCommandArgs(t *testing.T) {
	assert.Equal(t, []string{"stdin", "stdout"}, NewCommand("", nil).args())
	assert.Equal(t, []string{"stdin", "stdout", "-l", "eng+deu"}, NewCommand("", []string{"eng", "deu"}).args())
	assert.Equal(t, "tesseract", NewCommand("", nil).binPath)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts unavailable")
	}
	path := filepath.Join(t.TempDir(), "fake-tesseract")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestCommandRecognizeReadsStdout(t *testing.T) {
	bin := writeScript(t, "cat > /dev/null\necho \"NDC 12345-678-90 $3 $4\"\n")

	text, err := NewCommand(bin, []string{"eng"}).Recognize(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "NDC 12345-678-90 -l eng\n", text)
}

func TestCommandRecognizeReportsFailure(t *testing.T) {
	bin := writeScript(t, "echo 'Error in pixReadStream' >&2\nexit 1\n")

	_, err := NewCommand(bin, nil).Recognize(context.Background(), []byte("img"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pixReadStream")
}

func TestCommandRecognizeMissingBinary(t *testing.T) {
	_, err := NewCommand(filepath.Join(t.TempDir(), "absent"), nil).Recognize(context.Background(), []byte("img"))
	assert.Error(t, err)
}

func TestCommandRecognizeKeepsRawOutput(t *testing.T) {
	bin := writeScript(t, "cat > /dev/null\nprintf '  ASPIRIN 81 mg\\n\\f'\n")

	text, err := NewCommand(bin, nil).Recognize(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "  ASPIRIN 81 mg\n\f", text)
}

func TestCommandRecognizeSendsPNGForGIF(t *testing.T) {
	bin := writeScript(t, "head -c 4\n")
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, testImage(), nil))

	text, err := NewCommand(bin, nil).Recognize(context.Background(), buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", text)
}
