package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/lessoncraft/internal/generator"
	"github.com/at-ishikawa/lessoncraft/internal/lesson"
	"github.com/at-ishikawa/lessoncraft/internal/library"
	"github.com/at-ishikawa/lessoncraft/internal/pdf"
)

// LevelFlag is a pflag.Value restricted to the supported CEFR levels.
type LevelFlag lesson.Level

func (l *LevelFlag) Set(val string) error {
	for _, level := range lesson.Levels() {
		if strings.EqualFold(val, string(level)) {
			*l = LevelFlag(level)
			return nil
		}
	}
	return fmt.Errorf("invalid level %q, expected one of %v", val, lesson.Levels())
}

func (l LevelFlag) String() string {
	return string(l)
}

func (l *LevelFlag) Type() string {
	return "level"
}

var _ pflag.Value = (*LevelFlag)(nil)

func newGenerateCommand() *cobra.Command {
	level := LevelFlag(lesson.LevelB1)
	var (
		duration        int
		focus           string
		requiredVocab   []string
		knownVocab      []string
		generateImages  bool
		exportDirectory string
	)

	command := &cobra.Command{
		Use:   "generate [topic]",
		Short: "Generate a lesson document for a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			openaiClient, err := newOpenAIClient(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = openaiClient.Close()
			}()

			repository, closeRepository, err := newRepository(cfg)
			if err != nil {
				return err
			}
			defer closeRepository()

			request := lesson.Request{
				Topic:              args[0],
				Level:              lesson.Level(level),
				Focus:              focus,
				DurationMinutes:    duration,
				RequiredVocabulary: requiredVocab,
				KnownVocabulary:    knownVocab,
			}

			fmt.Printf("Generating a %s lesson about %q (model: %s)\n", request.Level, request.Topic, cfg.OpenAI.Model)
			gen := generator.NewGenerator(openaiClient,
				generator.WithMaxAttempts(cfg.Generation.MaxAttempts),
				generator.WithTemperature(cfg.Generation.Temperature),
			)
			document, attempts, err := gen.Generate(cmd.Context(), request)
			if err != nil {
				reportAttempts(attempts)
				return fmt.Errorf("gen.Generate() > %w", err)
			}
			reportAttempts(attempts)

			if generateImages {
				illustrator := generator.NewIllustrator(openaiClient, generator.DirectoryStore{
					Dir: cfg.Outputs.ImageDirectory,
				})
				if err := illustrator.Illustrate(cmd.Context(), document); err != nil {
					return fmt.Errorf("illustrator.Illustrate() > %w", err)
				}
			}

			record := &library.Record{
				Topic:    request.Topic,
				Level:    request.Level,
				Document: *document,
			}
			if err := repository.Create(cmd.Context(), record); err != nil {
				return fmt.Errorf("repository.Create() > %w", err)
			}
			color.Green("Lesson %q stored as %s", document.Title, record.ID)

			if exportDirectory != "" {
				markdownPath, pdfPath, err := pdf.WriteLessonPDF(document, exportDirectory, record.ID)
				if err != nil {
					return fmt.Errorf("pdf.WriteLessonPDF() > %w", err)
				}
				fmt.Printf("Exported %s and %s\n", markdownPath, pdfPath)
			}
			return nil
		},
	}

	command.Flags().Var(&level, "level", "CEFR level of the lesson (A1-C2)")
	command.Flags().IntVar(&duration, "duration", 30, "Target lesson duration in minutes")
	command.Flags().StringVar(&focus, "focus", "", "Optional lesson focus, e.g. everyday conversation")
	command.Flags().StringSliceVar(&requiredVocab, "required-vocab", nil, "Words the reading passage must use")
	command.Flags().StringSliceVar(&knownVocab, "known-vocab", nil, "Words the learner already knows")
	command.Flags().BoolVar(&generateImages, "images", false, "Generate illustrations for the lesson")
	command.Flags().StringVar(&exportDirectory, "export", "", "Directory to export the lesson as markdown and PDF")

	return command
}

func reportAttempts(attempts []generator.Attempt) {
	for _, attempt := range attempts {
		switch attempt.Stage {
		case generator.StageAccepted:
			color.Green("attempt %d: accepted", attempt.Number)
		default:
			color.Red("attempt %d: failed at %s: %v", attempt.Number, attempt.Stage, attempt.Err)
		}
		for _, note := range attempt.Notes {
			fmt.Printf("  note [%s]: %s\n", note.Section, note.Message)
		}
	}
}
