package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/lessoncraft/internal/config"
	"github.com/at-ishikawa/lessoncraft/internal/lesson"
)

func TestSetupTestConfig(t *testing.T) {
	configPath := SetupTestConfig(t, t.TempDir())

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Library.Driver)
	assert.DirExists(t, cfg.Library.Directory)
	assert.DirExists(t, cfg.Outputs.LessonDirectory)
	assert.DirExists(t, cfg.Outputs.ImageDirectory)
}

func TestReadingDocument(t *testing.T) {
	document := ReadingDocument(5, 3)

	reading := document.Section(lesson.SectionReading)
	require.NotNil(t, reading)
	require.Len(t, reading.Paragraphs, 5)
	for _, paragraph := range reading.Paragraphs {
		assert.Equal(t, 3, lesson.CountSentences(paragraph))
	}
}
