// Package server exposes the lesson pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/at-ishikawa/lessoncraft/internal/generator"
	"github.com/at-ishikawa/lessoncraft/internal/inference"
	"github.com/at-ishikawa/lessoncraft/internal/lesson"
	"github.com/at-ishikawa/lessoncraft/internal/library"
)

type LessonHandler struct {
	generator  documentGenerator
	repository library.Repository
}

// documentGenerator matches generator.Generator.Generate.
type documentGenerator interface {
	Generate(ctx context.Context, request lesson.Request) (*lesson.Document, []generator.Attempt, error)
}

func NewLessonHandler(gen documentGenerator, repository library.Repository) *LessonHandler {
	return &LessonHandler{generator: gen, repository: repository}
}

type generateLessonResponse struct {
	Lesson   *library.Record   `json:"lesson"`
	Attempts []attemptResponse `json:"attempts"`
}

type attemptResponse struct {
	Number int           `json:"number"`
	Stage  string        `json:"stage"`
	Error  string        `json:"error,omitempty"`
	Notes  []lesson.Note `json:"notes,omitempty"`
}

func toAttemptResponses(attempts []generator.Attempt) []attemptResponse {
	responses := make([]attemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		response := attemptResponse{
			Number: attempt.Number,
			Stage:  string(attempt.Stage),
			Notes:  attempt.Notes,
		}
		if attempt.Err != nil {
			response.Error = attempt.Err.Error()
		}
		responses = append(responses, response)
	}
	return responses
}

// Generate runs the full pipeline for a lesson request and stores the result.
func (h *LessonHandler) Generate(c *gin.Context) {
	var request lesson.Request
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if err := request.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	document, attempts, err := h.generator.Generate(c.Request.Context(), request)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case inference.IsRefusalError(err):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, generator.ErrGenerationExhausted):
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{
			"error":    err.Error(),
			"attempts": toAttemptResponses(attempts),
		})
		return
	}

	record := &library.Record{
		Topic:    request.Topic,
		Level:    request.Level,
		Document: *document,
	}
	if err := h.repository.Create(c.Request.Context(), record); err != nil {
		slog.Default().Error("failed to store lesson", "topic", request.Topic, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store lesson"})
		return
	}

	c.JSON(http.StatusCreated, generateLessonResponse{
		Lesson:   record,
		Attempts: toAttemptResponses(attempts),
	})
}

// List returns stored lessons, optionally filtered by level and topic.
func (h *LessonHandler) List(c *gin.Context) {
	filter := library.Filter{
		Level: lesson.Level(c.Query("level")),
		Topic: c.Query("topic"),
	}
	records, err := h.repository.List(c.Request.Context(), filter)
	if err != nil {
		slog.Default().Error("failed to list lessons", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list lessons"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lessons": records})
}

// Get returns one stored lesson by ID.
func (h *LessonHandler) Get(c *gin.Context) {
	record, _ := h.findRecord(c)
	if record == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"lesson": record})
}

// Delete removes one stored lesson by ID.
func (h *LessonHandler) Delete(c *gin.Context) {
	record, _ := h.findRecord(c)
	if record == nil {
		return
	}
	if err := h.repository.Delete(c.Request.Context(), record.ID); err != nil {
		slog.Default().Error("failed to delete lesson", "id", record.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete lesson"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Questions extracts questions for one section kind from a stored lesson,
// falling back across extraction strategies when the section is malformed.
func (h *LessonHandler) Questions(c *gin.Context) {
	record, _ := h.findRecord(c)
	if record == nil {
		return
	}

	kind, ok := lesson.CanonicalType(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown section kind: " + c.Param("kind")})
		return
	}

	questions := lesson.ExtractQuestions(kind, &record.Document)
	c.JSON(http.StatusOK, gin.H{
		"kind":      kind,
		"questions": questions,
	})
}

// findRecord loads the lesson named by the :id route parameter, writing the
// error response itself. A nil record means the response is already written.
func (h *LessonHandler) findRecord(c *gin.Context) (*library.Record, error) {
	id := c.Param("id")
	record, err := h.repository.Find(c.Request.Context(), id)
	if err != nil {
		slog.Default().Error("failed to find lesson", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to find lesson"})
		return nil, err
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found: " + id})
		return nil, nil
	}
	return record, nil
}
