package treatment

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandTranslator pipes deck text through an external command: the source
// text goes to stdin and the English translation is read from stdout. Any
// command-line translation client slots in without code changes.
type CommandTranslator struct {
	Command string
	Args    []string
}

// Translate implements service.Translator.
func (t *CommandTranslator) Translate(ctx context.Context, text string) (string, error) {
	if t.Command == "" {
		return "", fmt.Errorf("translator command is not configured")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.Command, t.Args...)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("translator %s failed: %s: %w", t.Command, msg, err)
		}
		return "", fmt.Errorf("translator %s failed: %w", t.Command, err)
	}
	return stdout.String(), nil
}
