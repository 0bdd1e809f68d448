// Package cvinput turns uploaded CV files into analysis input.
package cvinput

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/spigell/jobnado/internal/profile"
)

const (
	MIMEText = "text/plain"
	MIMEPDF  = "application/pdf"
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// MaxFileSize caps uploaded CV files.
const MaxFileSize = 10 << 20

var (
	ErrUnsupported = errors.New("unsupported cv file type")
	ErrNoText      = errors.New("no text could be extracted, the file may be encrypted or image only")
	ErrTooLarge    = errors.New("cv file is too large")
)

var (
	whitespace   = regexp.MustCompile(`\s+`)
	xmlTag       = regexp.MustCompile(`<[^>]*>`)
	paragraphEnd = regexp.MustCompile(`</w:p>`)
)

var extensionTypes = map[string]string{
	".txt":  MIMEText,
	".md":   MIMEText,
	".pdf":  MIMEPDF,
	".docx": MIMEDocx,
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// FromFile reads a CV from disk.
func FromFile(path string) (profile.Input, error) {
	info, err := os.Stat(path)
	if err != nil {
		return profile.Input{}, err
	}
	if info.Size() > MaxFileSize {
		return profile.Input{}, ErrTooLarge
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return profile.Input{}, err
	}

	return FromBytes(filepath.Base(path), data)
}

// FromBytes converts file content into text or image input. The type comes
// from the file extension and falls back to content sniffing.
func FromBytes(name string, data []byte) (profile.Input, error) {
	if len(data) > MaxFileSize {
		return profile.Input{}, ErrTooLarge
	}

	mimeType := DetectType(name, data)

	switch {
	case mimeType == MIMEText:
		return profile.TextInput(string(data)), nil
	case mimeType == MIMEPDF:
		text, err := pdfText(data)
		if err != nil {
			return profile.Input{}, err
		}
		return profile.TextInput(text), nil
	case mimeType == MIMEDocx:
		text, err := docxText(data)
		if err != nil {
			return profile.Input{}, err
		}
		return profile.TextInput(text), nil
	case strings.HasPrefix(mimeType, "image/"):
		return profile.ImageInput(mimeType, data), nil
	default:
		return profile.Input{}, fmt.Errorf("%w: %s", ErrUnsupported, mimeType)
	}
}

// DetectType returns the MIME type used to decode the file.
func DetectType(name string, data []byte) string {
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}

	sniffed := http.DetectContentType(data)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	return sniffed
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	return cleanText(b.String())
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	content := paragraphEnd.ReplaceAllString(doc.Editable().GetContent(), "\n")
	content = html.UnescapeString(xmlTag.ReplaceAllString(content, " "))

	return cleanText(content)
}

func cleanText(s string) (string, error) {
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	if s == "" {
		return "", ErrNoText
	}
	return s, nil
}
