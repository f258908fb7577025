package services

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
)

type FileExtractService struct{}

func NewFileExtractService() *FileExtractService {
	return &FileExtractService{}
}

// SupportedExtension reports whether the upload type can be parsed.
func (s *FileExtractService) SupportedExtension(ext string) bool {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf", "txt", "md", "docx":
		return true
	}
	return false
}

// ExtractSections parses an uploaded file into labeled sections. PDFs
// produce one section per page ("Page N"); text-like formats produce a
// single "Section 1".
func (s *FileExtractService) ExtractSections(path string) ([]models.ParsedSection, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".txt", ".md":
		return s.extractTXT(path)
	case ".pdf":
		return s.extractPDF(path)
	case ".docx":
		return s.extractDOCX(path)
	default:
		return nil, fmt.Errorf("unsupported file type for text extraction: %s", ext)
	}
}

func (s *FileExtractService) extractTXT(path string) ([]models.ParsedSection, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text := normalizeExtractedText(string(b))
	if text == "" {
		return nil, fmt.Errorf("text file is empty")
	}

	return []models.ParsedSection{{PageOrSection: "Section 1", Text: text}}, nil
}

func (s *FileExtractService) extractPDF(path string) ([]models.ParsedSection, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sections []models.ParsedSection
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		text := normalizeExtractedText(content)
		if text == "" {
			continue
		}

		sections = append(sections, models.ParsedSection{
			PageOrSection: fmt.Sprintf("Page %d", pageIndex),
			Text:          text,
		})
	}

	if len(sections) == 0 {
		return nil, fmt.Errorf("no extractable text found in pdf")
	}

	return sections, nil
}

func (s *FileExtractService) extractDOCX(path string) ([]models.ParsedSection, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var documentXML []byte
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()

			documentXML, err = io.ReadAll(rc)
			if err != nil {
				return nil, err
			}
			break
		}
	}

	if len(documentXML) == 0 {
		return nil, fmt.Errorf("docx document.xml not found")
	}

	text := normalizeExtractedText(stripDOCXML(documentXML))
	if text == "" {
		return nil, fmt.Errorf("no extractable text found in docx")
	}

	return []models.ParsedSection{{PageOrSection: "Section 1", Text: text}}, nil
}

var xmlTagPattern = regexp.MustCompile(`<[^>]+>`)

func stripDOCXML(src []byte) string {
	s := string(src)

	// DOCX paragraphs and line breaks
	s = strings.ReplaceAll(s, "</w:p>", "\n")
	s = strings.ReplaceAll(s, "<w:br/>", "\n")
	s = strings.ReplaceAll(s, "<w:br />", "\n")
	s = strings.ReplaceAll(s, "<w:tab/>", "\t")

	// Remove all xml tags
	s = xmlTagPattern.ReplaceAllString(s, "")

	// Basic XML entities
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
	s = replacer.Replace(s)

	return s
}

func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	buf := bytes.Buffer{}

	emptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			emptyCount++
			if emptyCount > 1 {
				continue
			}
			buf.WriteString("\n")
			continue
		}
		emptyCount = 0
		buf.WriteString(trimmed)
		buf.WriteString("\n")
	}

	return strings.TrimSpace(buf.String())
}
