// Package testutil provides shared test helpers for config files and lesson
// fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/lessoncraft/internal/lesson"
)

// SetupTestConfig creates a minimal config file and its directories under
// tmpDir. It returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	dirs := []string{"lessons", "output_lessons", "output_images"}
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}

	configContent := fmt.Sprintf(`library:
  driver: yaml
  directory: %s
outputs:
  lesson_directory: %s
  image_directory: %s
`,
		filepath.Join(tmpDir, "lessons"),
		filepath.Join(tmpDir, "output_lessons"),
		filepath.Join(tmpDir, "output_images"),
	)

	configPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	return configPath
}

// ReadingDocument builds a document whose reading section has the given
// paragraph and sentence counts.
func ReadingDocument(paragraphCount, sentencesPerParagraph int) *lesson.Document {
	paragraphs := make([]string, 0, paragraphCount)
	for i := 0; i < paragraphCount; i++ {
		paragraph := ""
		for j := 0; j < sentencesPerParagraph; j++ {
			paragraph += fmt.Sprintf("Sentence %d of paragraph %d. ", j+1, i+1)
		}
		paragraphs = append(paragraphs, paragraph)
	}
	return &lesson.Document{
		Title: "Test Lesson",
		Sections: []lesson.Section{
			{Type: "reading", Title: "Reading", Paragraphs: paragraphs},
		},
	}
}
