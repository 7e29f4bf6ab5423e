package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"resume-intel/internal/shared/apperr"
)

// Format identifies a document encoding the dispatcher can read.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatText Format = "txt"
	FormatTeX  Format = "tex"
)

// ErrUnsupportedFormat is returned for format tags outside the supported set.
var ErrUnsupportedFormat = fmt.Errorf("extract: %w", apperr.ErrUnsupportedFormat)

// AllowedExtensions lists the upload file extensions accepted by the dispatcher.
var AllowedExtensions = []string{".pdf", ".doc", ".docx", ".txt", ".tex"}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	switch f {
	case FormatPDF, FormatDOCX, FormatText, FormatTeX:
		return true
	}
	return false
}

// ParseFormat maps a tag, dotted extension or MIME type to a Format.
func ParseFormat(raw string) (Format, error) {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(raw, ";")[0]))
	clean = strings.TrimPrefix(clean, ".")
	switch clean {
	case "pdf", "application/pdf":
		return FormatPDF, nil
	case "doc", "docx", "application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return FormatDOCX, nil
	case "txt", "text", "text/plain":
		return FormatText, nil
	case "tex", "latex", "application/x-tex", "text/x-tex", "application/x-latex":
		return FormatTeX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
}

// FormatFromFileName derives the format from a file extension.
func FormatFromFileName(name string) (Format, error) {
	ext := filepath.Ext(strings.TrimSpace(name))
	if ext == "" {
		return "", fmt.Errorf("%w: file %q has no extension", ErrUnsupportedFormat, name)
	}
	return ParseFormat(ext)
}

// DetectFormat uses the file extension when there is one and sniffs the
// content otherwise.
func DetectFormat(fileName string, data []byte) (Format, error) {
	if filepath.Ext(strings.TrimSpace(fileName)) != "" {
		return FormatFromFileName(fileName)
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if f, err := ParseFormat(m.String()); err == nil {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: cannot detect format of %q", ErrUnsupportedFormat, fileName)
}
