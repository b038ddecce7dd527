package generator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/at-ishikawa/lessoncraft/internal/inference"
	"github.com/at-ishikawa/lessoncraft/internal/lesson"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	imageBatchSize  = 4
	imageBatchPause = 2 * time.Second
)

// ImageStore persists one generated image and returns a URL or path for it.
type ImageStore interface {
	Save(requestID string, data []byte) (string, error)
}

// DirectoryStore writes images as PNG files under a directory.
type DirectoryStore struct {
	Dir string
}

func (store DirectoryStore) Save(requestID string, data []byte) (string, error) {
	if err := os.MkdirAll(store.Dir, 0o755); err != nil {
		return "", fmt.Errorf("os.MkdirAll() > %w", err)
	}
	path := filepath.Join(store.Dir, fmt.Sprintf("%s.png", uuid.NewString()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("os.WriteFile() > %w", err)
	}
	slog.Default().Debug("image saved", "requestID", requestID, "path", path)
	return path, nil
}

// Illustrator generates images for discussion questions and vocabulary
// words that carry an image prompt. Failures never fail the lesson: a
// record that cannot get an image is left without one.
type Illustrator struct {
	client     inference.ImageClient
	store      ImageStore
	batchSize  int
	batchPause time.Duration
}

func NewIllustrator(client inference.ImageClient, store ImageStore) *Illustrator {
	return &Illustrator{
		client:     client,
		store:      store,
		batchSize:  imageBatchSize,
		batchPause: imageBatchPause,
	}
}

type imageTask struct {
	requestID   string
	description string
	assign      func(url string)
}

// Illustrate generates images for the document in place. Requests run in
// batches to stay under provider rate limits, with a pause between batches.
func (illustrator *Illustrator) Illustrate(ctx context.Context, document *lesson.Document) error {
	tasks := illustrator.collectTasks(document)
	for start := 0; start < len(tasks); start += illustrator.batchSize {
		end := min(start+illustrator.batchSize, len(tasks))

		group, groupCtx := errgroup.WithContext(ctx)
		for _, task := range tasks[start:end] {
			group.Go(func() error {
				illustrator.run(groupCtx, task)
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return fmt.Errorf("group.Wait() > %w", err)
		}

		if end < len(tasks) {
			select {
			case <-ctx.Done():
				return fmt.Errorf("batch pause > %w", ctx.Err())
			case <-time.After(illustrator.batchPause):
			}
		}
	}
	return nil
}

func (illustrator *Illustrator) run(ctx context.Context, task imageTask) {
	data, err := illustrator.client.GenerateImage(ctx, inference.ImageRequest{
		Description: task.description,
		RequestID:   task.requestID,
	})
	if err != nil {
		slog.Default().Warn("image generation failed",
			"requestID", task.requestID,
			"error", err,
		)
		return
	}
	url, err := illustrator.store.Save(task.requestID, data)
	if err != nil {
		slog.Default().Warn("image save failed",
			"requestID", task.requestID,
			"error", err,
		)
		return
	}
	task.assign(url)
}

func (illustrator *Illustrator) collectTasks(document *lesson.Document) []imageTask {
	var tasks []imageTask
	for sectionIndex := range document.Sections {
		section := &document.Sections[sectionIndex]
		for questionIndex := range section.Discussion {
			question := &section.Discussion[questionIndex]
			if question.ImagePrompt == "" || question.ImageURL != "" {
				continue
			}
			tasks = append(tasks, imageTask{
				requestID:   fmt.Sprintf("%s/discussion/%d", section.Canonical(), questionIndex),
				description: question.ImagePrompt,
				assign:      func(url string) { question.ImageURL = url },
			})
		}
		for wordIndex := range section.Words {
			word := &section.Words[wordIndex]
			if word.ImageURL != "" || word.Term == "" || word.Definition == "" {
				continue
			}
			tasks = append(tasks, imageTask{
				requestID:   fmt.Sprintf("%s/words/%d", section.Canonical(), wordIndex),
				description: fmt.Sprintf("A simple illustration of %q: %s", word.Term, word.Definition),
				assign:      func(url string) { word.ImageURL = url },
			})
		}
	}
	return tasks
}
