package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/at-ishikawa/lessoncraft/internal/lesson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertMarkdownToPDF(t *testing.T) {
	tests := []struct {
		name         string
		markdownPath string
		setupFile    func(t *testing.T) string
		wantErr      bool
		wantErrMsg   string
	}{
		{
			name:         "invalid extension",
			markdownPath: "lesson.txt",
			wantErr:      true,
			wantErrMsg:   "input file must have .md extension",
		},
		{
			name:         "file not found",
			markdownPath: "nonexistent.md",
			wantErr:      true,
			wantErrMsg:   "os.ReadFile",
		},
		{
			name: "successful conversion",
			setupFile: func(t *testing.T) string {
				mdPath := filepath.Join(t.TempDir(), "lesson.md")
				content := []byte("# City Life\n\nThe city wakes early.\n")
				require.NoError(t, os.WriteFile(mdPath, content, 0644))
				return mdPath
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mdPath string
			if tt.setupFile != nil {
				mdPath = tt.setupFile(t)
			} else {
				mdPath = tt.markdownPath
			}

			pdfPath, err := ConvertMarkdownToPDF(mdPath)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, ".pdf", filepath.Ext(pdfPath))
			_, err = os.Stat(pdfPath)
			assert.NoError(t, err)
		})
	}
}

func TestWriteLessonPDF(t *testing.T) {
	document := &lesson.Document{
		Title: "City Life",
		Sections: []lesson.Section{
			{Type: "reading", Title: "Reading", Paragraphs: []string{"The city wakes early."}},
		},
	}

	dir := filepath.Join(t.TempDir(), "exports")
	markdownPath, pdfPath, err := WriteLessonPDF(document, dir, "city-life")
	require.NoError(t, err)

	markdown, err := os.ReadFile(markdownPath)
	require.NoError(t, err)
	assert.Contains(t, string(markdown), "# City Life")

	_, err = os.Stat(pdfPath)
	assert.NoError(t, err)
}
