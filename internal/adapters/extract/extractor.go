// Package extract turns attachment files into plain text for the triage
// pipeline. Plain-text formats are read directly; PDFs go through the
// poppler pdftotext binary when it is installed.
package extract

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ewfx/gaied-aivengers/internal/utils"
	"go.uber.org/zap"
)

// Cap on extracted attachment text before sanitizing.
const maxAttachmentBytes = 512 * 1024

var textExtensions = map[string]bool{
	".txt":  true,
	".text": true,
	".md":   true,
	".csv":  true,
	".log":  true,
	".eml":  true,
}

// FileExtractor implements core.DocumentExtractor for local files.
type FileExtractor struct {
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	pdftotextPath string
}

// NewFileExtractor creates an extractor, locating pdftotext if available.
func NewFileExtractor(logger *zap.Logger, textProcessor *utils.TextProcessor) *FileExtractor {
	path, err := exec.LookPath("pdftotext")
	if err != nil {
		logger.Info("pdftotext not found, PDF attachments will be skipped")
		path = ""
	}
	return &FileExtractor{
		logger:        logger,
		textProcessor: textProcessor,
		pdftotextPath: path,
	}
}

// ExtractText returns the plain-text content of the file. Unsupported
// formats return an error; the caller decides whether that fails the email.
func (e *FileExtractor) ExtractText(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case textExtensions[ext]:
		return e.extractPlainText(path)
	case ext == ".pdf":
		return e.extractPDF(path)
	default:
		return "", fmt.Errorf("unsupported attachment format %q", ext)
	}
}

func (e *FileExtractor) extractPlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read attachment: %w", err)
	}
	if len(data) > maxAttachmentBytes {
		data = data[:maxAttachmentBytes]
	}
	return e.textProcessor.SanitizeUTF8(string(data)), nil
}

func (e *FileExtractor) extractPDF(path string) (string, error) {
	if e.pdftotextPath == "" {
		return "", fmt.Errorf("pdftotext is not installed, cannot extract %s", filepath.Base(path))
	}

	// "-" sends the text to stdout.
	out, err := exec.Command(e.pdftotextPath, "-layout", path, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed for %s: %w", filepath.Base(path), err)
	}
	if len(out) > maxAttachmentBytes {
		out = out[:maxAttachmentBytes]
	}
	return e.textProcessor.SanitizeUTF8(string(out)), nil
}
