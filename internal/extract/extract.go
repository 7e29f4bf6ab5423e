package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"resume-intel/internal/shared/apperr"
)

// oleMagic prefixes legacy binary Word files (OLE2 compound documents).
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// CorruptDocumentError reports that a document of a supported format could not be read.
type CorruptDocumentError struct {
	Format Format
	Reason string
	Err    error
}

func (e *CorruptDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt %s document: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("corrupt %s document: %s", e.Format, e.Reason)
}

func (e *CorruptDocumentError) Unwrap() []error {
	if e.Err == nil {
		return []error{apperr.ErrCorruptDocument}
	}
	return []error{apperr.ErrCorruptDocument, e.Err}
}

func corrupt(f Format, reason string, err error) error {
	return &CorruptDocumentError{Format: f, Reason: reason, Err: err}
}

// Extract returns the plain text of data interpreted as format.
// Libraries used: github.com/ledongthuc/pdf (PDF) and github.com/nguyenthenguyen/docx (DOCX).
func Extract(ctx context.Context, data []byte, format Format) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		text string
		err  error
	)
	switch format {
	case FormatPDF:
		text, err = extractPDF(data)
	case FormatDOCX:
		text, err = extractDOCX(data)
	case FormatText:
		text, err = decodeText(FormatText, data)
	case FormatTeX:
		text, err = extractTeX(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", corrupt(format, "no extractable text", nil)
	}
	return text, nil
}

func extractPDF(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", corrupt(FormatPDF, "empty file", nil)
	}
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = corrupt(FormatPDF, "parser panic", fmt.Errorf("%v", rec))
		}
	}()

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", corrupt(FormatPDF, "open", err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", corrupt(FormatPDF, "read text", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", corrupt(FormatPDF, "read text", err)
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", corrupt(FormatDOCX, "empty file", nil)
	}
	if bytes.HasPrefix(data, oleMagic) {
		return "", corrupt(FormatDOCX, "binary .doc is not supported; save as .docx", nil)
	}
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = corrupt(FormatDOCX, "reader panic", fmt.Errorf("%v", rec))
		}
	}()

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", corrupt(FormatDOCX, "open", err)
	}

	raw := doc.Editable().GetContent()
	if strings.TrimSpace(raw) == "" {
		return "", corrupt(FormatDOCX, "missing word/document.xml", nil)
	}
	plain, err := stripDocxXML(raw)
	if err != nil {
		return "", corrupt(FormatDOCX, "document.xml", err)
	}
	return plain, nil
}

func stripDocxXML(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

func decodeText(f Format, data []byte) (string, error) {
	if !hasUTF16BOM(data) && !utf8.Valid(data) {
		return "", corrupt(f, "invalid UTF-8", nil)
	}
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", corrupt(f, "decode", err)
	}
	if bytes.IndexByte(decoded, 0) >= 0 {
		return "", corrupt(f, "binary content", nil)
	}
	return string(decoded), nil
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}
