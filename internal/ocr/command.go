package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandEngineName selects the tesseract CLI engine.
const CommandEngineName = "command"

// Command runs the tesseract binary, feeding the image on stdin.
type Command struct {
	binPath   string
	languages []string
}

// NewCommand creates a CLI engine. If binPath is empty, "tesseract" is used.
func NewCommand(binPath string, languages []string) *Command {
	if binPath == "" {
		binPath = "tesseract"
	}
	return &Command{binPath: binPath, languages: languages}
}

// Name implements Engine.
func (c *Command) Name() string { return CommandEngineName }

// Recognize implements Engine. The output is returned as printed, including
// the trailing newline and form feed tesseract appends.
func (c *Command) Recognize(ctx context.Context, image []byte) (string, error) {
	input, err := StdinImage(image)
	if err != nil {
		return "", err
	}
	cmd := exec.CommandContext(ctx, c.binPath, c.args()...)
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ocr: %s failed: %w: %s", c.binPath, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func (c *Command) args() []string {
	args := []string{"stdin", "stdout"}
	if len(c.languages) > 0 {
		args = append(args, "-l", strings.Join(c.languages, "+"))
	}
	return args
}
