// Package ingest extracts plain text from uploaded resume files so the
// model can convert them into a structured document.
package ingest

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	pdf "github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
)

// ErrUnsupportedFormat is returned for file types ingestion cannot handle.
var ErrUnsupportedFormat = errors.New("unsupported file format: only pdf, docx, txt and md are allowed")

// ExtractText extracts plain text from a resume file based on its extension.
func ExtractText(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDocx(data)
	case ".txt", ".md":
		return extractPlain(data)
	default:
		return "", ErrUnsupportedFormat
	}
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	r, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", errors.Wrap(err, "failed to open pdf")
	}
	rs, err := r.GetPlainText()
	if err != nil {
		return "", errors.Wrap(err, "failed to read pdf text")
	}
	var buf bytes.Buffer
	if _, err = io.Copy(&buf, rs); err != nil {
		return "", errors.Wrap(err, "failed to copy pdf text")
	}
	return normalizeWhitespace(buf.String()), nil
}

func extractDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.Wrap(err, "failed to open docx archive")
	}
	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", errors.Wrap(err, "failed to open document.xml")
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return "", errors.Wrap(err, "failed to read document.xml")
			}
			break
		}
	}
	if len(docXML) == 0 {
		return "", errors.New("no document.xml found in docx")
	}
	xml := string(docXML)
	// Paragraph and tab markers become whitespace before tags are stripped.
	xml = strings.ReplaceAll(xml, "</w:p>", "\n")
	xml = strings.ReplaceAll(xml, "<w:tab/>", "\t")
	txt := tagRe.ReplaceAllString(xml, " ")
	return normalizeWhitespace(txt), nil
}

func extractPlain(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("text file is not valid UTF-8")
	}
	return normalizeWhitespace(string(data)), nil
}

var (
	tagRe      = regexp.MustCompile(`<[^>]+>`)
	spaceRunRe = regexp.MustCompile(`[ \t\r\f\v]+`)
	lineRunRe  = regexp.MustCompile(`\n+`)
)

func normalizeWhitespace(s string) string {
	s = spaceRunRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, " ", " ")
	// Keep line structure but collapse blank runs.
	s = lineRunRe.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
