package ingest

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"
)

// DecodeUpload turns an uploaded file into content. PDFs are reduced to
// their plain text; anything else is decoded as UTF-8, falling back to
// Latin-1.
func DecodeUpload(filename string, data []byte) (*Content, error) {
	if len(data) > maxInputSize {
		return nil, collaboratorErr("upload", http.StatusRequestEntityTooLarge,
			"%s is too large (%d MB, max %d MB)", filename, len(data)/(1024*1024), maxInputSize/(1024*1024))
	}

	var text string
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		t, err := pdfText(data)
		if err != nil {
			return nil, collaboratorErr("upload", http.StatusInternalServerError, "could not read PDF %s: %w", filename, err)
		}
		text = t
	} else {
		text = decodeText(data)
	}
	return newContent(text, filename, "Uploaded: "+filename, ""), nil
}

func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	// Every byte is valid Latin-1, so this cannot fail.
	out, _ := charmap.ISO8859_1.NewDecoder().Bytes(data)
	return string(out)
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue // Skip pages that fail to extract
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no extractable text, it may be scanned or image-based")
	}
	return text, nil
}

// DefaultPasteTitle is used when pasted text arrives without a title.
const DefaultPasteTitle = "Pasted Content"

// Paste wraps user-supplied text.
func Paste(text, title string) *Content {
	if title == "" {
		title = DefaultPasteTitle
	}
	return newContent(text, title, "Pasted by user", "")
}
