package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/domain"
)

// DocumentExtractor converts uploaded document payloads to plain text. The
// filename extension selects the format. PDF payloads are declined here:
// real PDF text extraction is an external collaborator callers register
// separately for the document kind.
type DocumentExtractor struct{}

// NewDocumentExtractor creates a document extractor.
func NewDocumentExtractor() *DocumentExtractor {
	return &DocumentExtractor{}
}

// Extract returns the plain text of the uploaded payload.
func (e *DocumentExtractor) Extract(_ context.Context, src domain.Source) (string, error) {
	ext := strings.ToLower(filepath.Ext(src.Name))
	switch ext {
	case ".txt", ".md", ".markdown":
		text := string(src.Content)
		if strings.TrimSpace(text) == "" {
			return "", domain.NewDomainError(domain.ErrCodeExtractionFailed, "document is empty")
		}
		return text, nil
	case ".html", ".htm":
		text := stripHTML(string(src.Content))
		if strings.TrimSpace(text) == "" {
			return "", domain.NewDomainError(domain.ErrCodeExtractionFailed, "document contains no text")
		}
		return text, nil
	case ".docx":
		return extractDocx(src.Content)
	case ".pdf":
		return "", domain.NewDomainError(domain.ErrCodeExtractionFailed,
			"pdf extraction requires an external extraction service")
	default:
		return "", domain.NewDomainError(domain.ErrCodeExtractionFailed,
			fmt.Sprintf("unsupported document format %q", ext))
	}
}

// docx payloads are ZIP archives; the text lives in word/document.xml as
// runs of <w:t> elements grouped into paragraphs.
type docxDocument struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

func extractDocx(payload []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtractionFailed, "document is not a valid docx archive", err)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtractionFailed, "could not open document body", err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtractionFailed, "could not read document body", err)
		}

		var doc docxDocument
		if err := xml.Unmarshal(content, &doc); err != nil {
			return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtractionFailed, "could not parse document body", err)
		}

		var b strings.Builder
		for i, para := range doc.Body.Paragraphs {
			if i > 0 {
				b.WriteString("\n")
			}
			for _, run := range para.Runs {
				for _, t := range run.Text {
					b.WriteString(t.Content)
				}
			}
		}
		text := strings.TrimSpace(b.String())
		if text == "" {
			return "", domain.NewDomainError(domain.ErrCodeExtractionFailed, "document contains no text")
		}
		return text, nil
	}
	return "", domain.NewDomainError(domain.ErrCodeExtractionFailed, "docx archive has no document body")
}

var (
	htmlScriptTag = regexp.MustCompile(`(?is)<(script|style|noscript|head)[^>]*>.*?</(script|style|noscript|head)>`)
	htmlBlockEnd  = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>|<br\s*/?>`)
	htmlAnyTag    = regexp.MustCompile(`<[^>]+>`)
	multiBlank    = regexp.MustCompile(`\n{3,}`)
)

func stripHTML(markup string) string {
	text := htmlScriptTag.ReplaceAllString(markup, "")
	text = htmlBlockEnd.ReplaceAllString(text, "\n")
	text = htmlAnyTag.ReplaceAllString(text, "")
	text = multiBlank.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
