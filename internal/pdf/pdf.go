// Package pdf exports rendered lessons as PDF files.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mandolyte/mdtopdf"

	"github.com/at-ishikawa/lessoncraft/internal/lesson"
	"github.com/at-ishikawa/lessoncraft/internal/render"
)

// ConvertMarkdownToPDF converts a markdown file to PDF. The PDF file is
// created next to the markdown file.
func ConvertMarkdownToPDF(markdownPath string) (string, error) {
	if !strings.HasSuffix(markdownPath, ".md") {
		return "", fmt.Errorf("input file must have .md extension: %s", markdownPath)
	}

	content, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", markdownPath, err)
	}

	pdfPath := strings.TrimSuffix(markdownPath, ".md") + ".pdf"

	renderer := mdtopdf.NewPdfRenderer("P", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process(content); err != nil {
		return "", fmt.Errorf("renderer.Process() > %w", err)
	}

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}

	return absPath, nil
}

// WriteLessonPDF renders a lesson document to markdown and converts it to a
// PDF under dir. It returns the markdown and PDF paths.
func WriteLessonPDF(document *lesson.Document, dir, baseName string) (markdownPath, pdfPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
	}

	markdownPath = filepath.Join(dir, baseName+".md")
	if err := os.WriteFile(markdownPath, []byte(render.Markdown(document)), 0o644); err != nil {
		return "", "", fmt.Errorf("os.WriteFile(%s) > %w", markdownPath, err)
	}

	pdfPath, err = ConvertMarkdownToPDF(markdownPath)
	if err != nil {
		return "", "", fmt.Errorf("ConvertMarkdownToPDF() > %w", err)
	}
	return markdownPath, pdfPath, nil
}
