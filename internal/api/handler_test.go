package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kastchile2025-star/-elias-v19-sub004/internal/config"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/importer"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/model"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/store"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]map[string]store.Document
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]map[string]store.Document)}
}

func (m *memStore) Upsert(ctx context.Context, collection string, docs []store.Document, conflictKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	coll, ok := m.data[collection]
	if !ok {
		coll = make(map[string]store.Document)
		m.data[collection] = coll
	}
	for _, doc := range docs {
		coll[doc.DocumentID()] = doc
	}
	return nil
}

func (m *memStore) GetImportJob(ctx context.Context, jobID string) (*model.ImportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.data[store.CollectionImports][jobID]
	if !ok {
		return nil, store.ErrJobNotFound
	}
	job, ok := doc.(*model.ImportJob)
	if !ok {
		return nil, errors.New("not an import job")
	}
	snapshot := *job
	return &snapshot, nil
}

func (m *memStore) CountGradesByYear(ctx context.Context, year int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, doc := range m.data[store.CollectionGrades] {
		if g, ok := doc.(*model.GradeRecord); ok && g.Year == year {
			n++
		}
	}
	return n, nil
}

func newTestRouter(st store.DocumentStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.App.Name = "grade-import-service"
	cfg.Importer.ApplyDefaults()

	service := importer.NewService(st, cfg.Importer)
	handler := NewHandler(service, st, nil, nil, cfg)

	router := gin.New()
	SetupRoutes(router, handler)
	return router
}

func multipartUpload(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func TestImportGradesEndpoint(t *testing.T) {
	st := newMemStore()
	router := newTestRouter(st)

	csv := "nombre,rut,curso,fecha,nota\nJuan Pérez,11.111.111-1,1A,2025-03-15,6.5\n"
	body, contentType := multipartUpload(t, map[string]string{
		"year":  "2025",
		"jobId": "job-http",
	}, "notas.csv", []byte(csv))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/grades", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success    bool   `json:"success"`
		Processed  int    `json:"processed"`
		Saved      int    `json:"saved"`
		Activities int    `json:"activities"`
		Year       int    `json:"year"`
		Message    string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !resp.Success || resp.Processed != 1 || resp.Saved != 1 || resp.Activities != 1 {
		t.Errorf("response = %+v", resp)
	}
	if resp.Year != 2025 {
		t.Errorf("year = %d", resp.Year)
	}
}

func TestImportGradesMissingFile(t *testing.T) {
	router := newTestRouter(newMemStore())

	body, contentType := multipartUpload(t, map[string]string{"year": "2025"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/grades", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestImportGradesEmptyFile(t *testing.T) {
	router := newTestRouter(newMemStore())

	body, contentType := multipartUpload(t, nil, "notas.csv", []byte("   \n"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/grades", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if resp["error"] == "" {
		t.Error("expected error field")
	}
}

func TestGetImportStatus(t *testing.T) {
	st := newMemStore()
	router := newTestRouter(st)

	job := &model.ImportJob{ID: "job-42", Type: "grades", Status: model.JobStatusRunning, Percent: 40}
	if err := st.Upsert(context.Background(), store.CollectionImports, []store.Document{job}, "id"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports/job-42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got model.ImportJob
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.ID != "job-42" || got.Status != model.JobStatusRunning || got.Percent != 40 {
		t.Errorf("job = %+v", got)
	}
}

func TestGetImportStatusNotFound(t *testing.T) {
	router := newTestRouter(newMemStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(newMemStore())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("status field = %q", resp["status"])
	}
}
