package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/lessoncraft/internal/database"
	"github.com/at-ishikawa/lessoncraft/internal/lesson"
	"github.com/at-ishikawa/lessoncraft/internal/library"
	"github.com/at-ishikawa/lessoncraft/internal/render"
	"github.com/at-ishikawa/lessoncraft/schemas"
)

func newLibraryCommand() *cobra.Command {
	libraryCommand := &cobra.Command{
		Use:   "library",
		Short: "Manage stored lessons",
	}

	libraryCommand.AddCommand(
		newLibraryListCommand(),
		newLibraryShowCommand(),
		newLibraryDeleteCommand(),
		newLibraryMigrateCommand(),
	)
	return libraryCommand
}

func newLibraryMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the MySQL library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.Library.MySQL)
			if err != nil {
				return fmt.Errorf("database.Open() > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			entries, err := schemas.Migrations.ReadDir("migrations")
			if err != nil {
				return fmt.Errorf("schemas.Migrations.ReadDir() > %w", err)
			}
			for _, entry := range entries {
				statement, err := schemas.Migrations.ReadFile("migrations/" + entry.Name())
				if err != nil {
					return fmt.Errorf("schemas.Migrations.ReadFile(%s) > %w", entry.Name(), err)
				}
				if _, err := db.ExecContext(cmd.Context(), string(statement)); err != nil {
					return fmt.Errorf("db.ExecContext(%s) > %w", entry.Name(), err)
				}
				fmt.Printf("Applied %s\n", entry.Name())
			}
			return nil
		},
	}
}

func newLibraryListCommand() *cobra.Command {
	var (
		levelFilter string
		topicFilter string
	)

	command := &cobra.Command{
		Use:   "list",
		Short: "List stored lessons",
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

			records, err := repository.List(cmd.Context(), library.Filter{
				Level: lesson.Level(levelFilter),
				Topic: topicFilter,
			})
			if err != nil {
				return fmt.Errorf("repository.List() > %w", err)
			}
			if len(records) == 0 {
				fmt.Println("No lessons stored yet.")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tTOPIC\tLEVEL\tTITLE\tCREATED")
			for _, record := range records {
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
					record.ID, record.Topic, record.Level, record.Document.Title,
					record.CreatedAt.Format("2006-01-02 15:04"))
			}
			return writer.Flush()
		},
	}

	command.Flags().StringVar(&levelFilter, "level", "", "Filter by CEFR level")
	command.Flags().StringVar(&topicFilter, "topic", "", "Filter by topic substring")
	return command
}

func newLibraryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Print a stored lesson as markdown",
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

			fmt.Print(render.Markdown(&record.Document))
			return nil
		},
	}
}

func newLibraryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a stored lesson",
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

			if err := repository.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("repository.Delete() > %w", err)
			}
			color.Green("Deleted lesson %s", args[0])
			return nil
		},
	}
}
