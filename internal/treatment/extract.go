package treatment

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// PDFExtractor pulls deck text out of PDF files by shelling out to
// pdftotext. Page breaks in the tool's output become SlideSeparator lines.
// Files that are not PDFs are read as plain text.
type PDFExtractor struct {
	// Binary overrides the pdftotext executable looked up on PATH.
	Binary string
}

// ExtractText implements service.TextExtractor.
func (e *PDFExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read deck %s: %w", path, err)
		}
		return string(data), nil
	}

	binary := e.Binary
	if binary == "" {
		binary = "pdftotext"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, "-q", "-enc", "UTF-8", path, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("pdftotext failed for %s: %s: %w", path, msg, err)
		}
		return "", fmt.Errorf("pdftotext failed for %s: %w", path, err)
	}

	return replacePageBreaks(stdout.String()), nil
}

// replacePageBreaks swaps the form feed pdftotext emits after every page for
// the slide separator the corpus uses.
func replacePageBreaks(text string) string {
	return strings.ReplaceAll(text, "\f", "\n"+SlideSeparator+"\n")
}
