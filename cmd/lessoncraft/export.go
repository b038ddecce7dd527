package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/lessoncraft/internal/pdf"
	"github.com/at-ishikawa/lessoncraft/internal/render"
)

func newExportCommand() *cobra.Command {
	var (
		outputDirectory string
		markdownOnly    bool
	)

	command := &cobra.Command{
		Use:   "export [id]",
		Short: "Export a stored lesson as markdown and PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			repository, closeRepository, err := newRepository(cfg)
			if err != nil {
				return err
			}
			defer closeRepository()

			record, err := repository.Find(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("repository.Find() > %w", err)
			}
			if record == nil {
				return fmt.Errorf("lesson not found: %s", args[0])
			}

			dir := outputDirectory
			if dir == "" {
				dir = cfg.Outputs.LessonDirectory
			}

			if markdownOnly {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
				}
				markdownPath := filepath.Join(dir, record.ID+".md")
				if err := os.WriteFile(markdownPath, []byte(render.Markdown(&record.Document)), 0o644); err != nil {
					return fmt.Errorf("os.WriteFile(%s) > %w", markdownPath, err)
				}
				fmt.Printf("Exported %s\n", markdownPath)
				return nil
			}

			markdownPath, pdfPath, err := pdf.WriteLessonPDF(&record.Document, dir, record.ID)
			if err != nil {
				return fmt.Errorf("pdf.WriteLessonPDF() > %w", err)
			}
			fmt.Printf("Exported %s and %s\n", markdownPath, pdfPath)
			return nil
		},
	}

	command.Flags().StringVar(&outputDirectory, "output", "", "Output directory (default: outputs.lesson_directory)")
	command.Flags().BoolVar(&markdownOnly, "markdown-only", false, "Skip the PDF and write markdown only")
	return command
}
