package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// commandContext is a seam for testing the external converter invocation.
var commandContext = exec.CommandContext

// PDFConverter shells out to a LibreOffice-compatible binary in headless
// mode to produce the PDF rendition.
type PDFConverter struct {
	command string
	timeout time.Duration
}

func NewPDFConverter(command string, timeout time.Duration) *PDFConverter {
	return &PDFConverter{command: command, timeout: timeout}
}

// Convert renders sourcePath to PDF inside outputDir and returns the path
// of the produced file. A run that exceeds the timeout fails with a
// "conversion timed out" error.
func (c *PDFConverter) Convert(ctx context.Context, sourcePath string, outputDir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := commandContext(ctx, c.command,
		"--headless",
		"--convert-to", "pdf",
		"--outdir", outputDir,
		sourcePath,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", errors.New("conversion timed out")
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("converter failed: %s", msg)
		}
		return "", fmt.Errorf("converter failed: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	pdfPath := filepath.Join(outputDir, base+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", errors.New("PDF file not generated")
	}
	return pdfPath, nil
}
