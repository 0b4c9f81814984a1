package docstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

// ErrNoText indicates the document contained no extractable text.
var ErrNoText = errors.New("document contains no extractable text")

// ErrUnsupportedFormat indicates the file extension is not ingestible.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// SupportedExtension reports whether path has an extension the ingestion
// pipeline understands.
func SupportedExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".html", ".htm", ".md", ".txt":
		return true
	}
	return false
}

// ExtractFile pulls the plain text out of a document on disk. The returned
// title is derived from the file name unless the document carries a better
// one (HTML <title>).
func ExtractFile(path string) (title, text string, err error) {
	title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = extractPDF(path)
	case ".html", ".htm":
		var htmlTitle string
		htmlTitle, text, err = extractHTML(path)
		if htmlTitle != "" {
			title = htmlTitle
		}
	case ".md", ".txt":
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return "", "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", "", ErrNoText
	}
	return title, text, nil
}

// extractPDF joins the text of every page, skipping pages that fail to
// decode rather than aborting the whole document.
func extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF file %s: %w", path, err)
	}
	defer f.Close()

	var sections []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if cleaned := strings.TrimSpace(content); cleaned != "" {
			sections = append(sections, cleaned)
		}
	}
	return strings.Join(sections, "\n\n"), nil
}

// extractHTML converts the page to Markdown so that headings and lists
// survive chunking, and pulls the document title when present.
func extractHTML(path string) (title, text string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}

	if doc, qerr := goquery.NewDocumentFromReader(strings.NewReader(string(data))); qerr == nil {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	converter := md.NewConverter("", true, nil)
	text, err = converter.ConvertString(string(data))
	if err != nil {
		return "", "", fmt.Errorf("failed to convert HTML %s: %w", path, err)
	}
	return title, text, nil
}
