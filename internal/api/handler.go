package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kastchile2025-star/-elias-v19-sub004/internal/config"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/importer"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/logger"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/model"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/queue"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/storage"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/store"
	apperrors "github.com/kastchile2025-star/-elias-v19-sub004/pkg/errors"
)

type Handler struct {
	service  *importer.Service
	store    store.DocumentStore
	storage  storage.Storage
	producer *queue.Producer
	cfg      *config.Config
	log      zerolog.Logger
}

func NewHandler(
	service *importer.Service,
	st store.DocumentStore,
	uploadStorage storage.Storage,
	producer *queue.Producer,
	cfg *config.Config,
) *Handler {
	return &Handler{
		service:  service,
		store:    st,
		storage:  uploadStorage,
		producer: producer,
		cfg:      cfg,
		log:      logger.Get(),
	}
}

type uploadForm struct {
	filename string
	data     []byte
	year     int
	jobID    string
	courses  string
	sections string
}

func (h *Handler) readUploadForm(c *gin.Context) (*uploadForm, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, apperrors.ErrMissingFile
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	year := 0
	if yearStr := strings.TrimSpace(c.PostForm("year")); yearStr != "" {
		if y, convErr := strconv.Atoi(yearStr); convErr == nil {
			year = y
		}
	}

	jobID := strings.TrimSpace(c.PostForm("jobId"))
	if jobID == "" {
		jobID = "import-grades-" + uuid.NewString()
	}

	return &uploadForm{
		filename: fileHeader.Filename,
		data:     data,
		year:     year,
		jobID:    jobID,
		courses:  c.PostForm("courses"),
		sections: c.PostForm("sections"),
	}, nil
}

// ImportGrades runs the whole pipeline synchronously and responds with the
// final summary. Input errors map to 400 before any processing; anything
// unrecovered after the job document exists maps to 500 with the job
// already marked failed by the pipeline.
func (h *Handler) ImportGrades(c *gin.Context) {
	form, err := h.readUploadForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error al leer los datos del formulario", "details": err.Error()})
		return
	}

	summary, err := h.service.Run(c.Request.Context(), importer.Params{
		Filename:     form.filename,
		Data:         form.data,
		Year:         form.year,
		JobID:        form.jobID,
		CoursesJSON:  form.courses,
		SectionsJSON: form.sections,
	})
	if err != nil {
		if isInputError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Archivo inválido", "details": err.Error()})
			return
		}
		h.log.Error().Err(err).Str("job_id", form.jobID).Msg("Bulk import failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Error al procesar la carga masiva",
			"details": err.Error(),
			"type":    fmt.Sprintf("%T", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"processed":      summary.Processed,
		"saved":          summary.Saved,
		"activities":     summary.Activities,
		"errors":         summary.Errors,
		"totalErrors":    summary.TotalErrors,
		"year":           summary.Year,
		"yearCountAfter": summary.YearCountAfter,
		"message":        summary.Message,
	})
}

// ImportGradesAsync stages the payload in object storage and queues it for
// the import worker, for files too large to process inside one request.
func (h *Handler) ImportGradesAsync(c *gin.Context) {
	form, err := h.readUploadForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error al leer los datos del formulario", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	objectKey := form.jobID + filepath.Ext(form.filename)
	if err := h.storage.Upload(ctx, objectKey, bytes.NewReader(form.data)); err != nil {
		h.log.Error().Err(err).Str("job_id", form.jobID).Msg("Failed to stage upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al almacenar el archivo", "details": err.Error()})
		return
	}

	job := model.QueuedImport{
		JobID:     form.jobID,
		ObjectKey: objectKey,
		Filename:  form.filename,
		Year:      form.year,
		Courses:   form.courses,
		Sections:  form.sections,
	}
	if err := h.producer.EnqueueImport(ctx, job); err != nil {
		h.log.Error().Err(err).Str("job_id", form.jobID).Msg("Failed to enqueue import")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al encolar la importación", "details": err.Error()})
		return
	}

	// Seed the progress document so the client can poll immediately.
	now := time.Now()
	seed := &model.ImportJob{
		ID:        form.jobID,
		Type:      "grades",
		Status:    model.JobStatusRunning,
		Year:      form.year,
		Message:   "Importación en cola...",
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.Upsert(ctx, store.CollectionImports, []store.Document{seed}, "id"); err != nil {
		h.log.Warn().Err(err).Str("job_id", form.jobID).Msg("Failed to seed progress document")
	}

	c.JSON(http.StatusAccepted, gin.H{"jobId": form.jobID, "message": "Importación encolada"})
}

// GetImportStatus returns the ImportJob progress document.
func (h *Handler) GetImportStatus(c *gin.Context) {
	jobID := c.Param("job_id")
	job, err := h.store.GetImportJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Import job not found"})
			return
		}
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to fetch import job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}

// isInputError distinguishes "the upload itself is unusable" from pipeline
// failures: the former never created a job document and maps to 400.
func isInputError(err error) bool {
	return errors.Is(err, apperrors.ErrMissingFile) ||
		errors.Is(err, apperrors.ErrEmptyInput) ||
		errors.Is(err, apperrors.ErrInvalidFileFormat) ||
		errors.Is(err, apperrors.ErrNoRows)
}
