// Package document turns uploaded résumé files into plain text.
package document

import (
	"bytes"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/okian/eventmatch/pkg/metrics"
)

// Format identifies a supported document kind.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
)

var byMediaType = map[string]Format{ //nolint:gochecknoglobals // lookup table
	"text/plain":      FormatText,
	"text/markdown":   FormatText,
	"application/pdf": FormatPDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": FormatDOCX,
	"text/html":             FormatHTML,
	"application/xhtml+xml": FormatHTML,
}

var byExtension = map[string]Format{ //nolint:gochecknoglobals // lookup table
	".txt":  FormatText,
	".md":   FormatText,
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
	".html": FormatHTML,
	".htm":  FormatHTML,
}

// Detect picks a format from the declared content type, falling back to the
// file extension when the type is missing or generic.
func Detect(contentType, filename string) (Format, error) {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if f, ok := byMediaType[strings.ToLower(mt)]; ok {
			return f, nil
		}
	}
	if f, ok := byExtension[strings.ToLower(filepath.Ext(filename))]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q (%s)", ErrUnsupportedType, contentType, filename)
}

// Extract returns the text of data, detecting its format from contentType and filename.
func Extract(contentType, filename string, data []byte) (string, Format, error) {
	f, err := Detect(contentType, filename)
	if err != nil {
		metrics.RecordDocumentExtraction("unknown", "unsupported")
		return "", "", err
	}
	text, err := ExtractFormat(f, data)
	if err != nil {
		metrics.RecordDocumentExtraction(string(f), "error")
		return "", f, err
	}
	metrics.RecordDocumentExtraction(string(f), "success")
	return text, f, nil
}

// ExtractFormat returns the text of data read as format f.
func ExtractFormat(f Format, data []byte) (string, error) {
	switch f {
	case FormatText:
		return string(data), nil
	case FormatPDF:
		return extractPDF(data)
	case FormatDOCX:
		return extractDOCX(data)
	case FormatHTML:
		return extractHTML(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, f)
	}
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: pdf: %v", ErrExtract, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %w", ErrExtract, err)
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		t, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: pdf page %d: %w", ErrExtract, i, err)
		}
		b.WriteString(t)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: docx: %w", ErrExtract, err)
	}
	defer doc.Close()

	// Content is WordprocessingML; end each paragraph with a newline before
	// dropping the markup.
	markup := strings.ReplaceAll(doc.Editable().GetContent(), "</w:p>", "</w:p>\n")
	q, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("%w: docx markup: %w", ErrExtract, err)
	}
	return strings.TrimSpace(q.Text()), nil
}

func extractHTML(data []byte) (string, error) {
	q, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: html: %w", ErrExtract, err)
	}
	q.Find("script, style, noscript").Remove()

	lines := strings.Split(q.Find("body").Text(), "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n"), nil
}
