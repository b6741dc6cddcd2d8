package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/google/uuid"

	"github.com/propertyops/compliance-docs/internal/blob"
	"github.com/propertyops/compliance-docs/internal/entity"
	"github.com/propertyops/compliance-docs/internal/export"
	"github.com/propertyops/compliance-docs/internal/extract"
	"github.com/propertyops/compliance-docs/internal/llm"
	"github.com/propertyops/compliance-docs/internal/pipeline"
	"github.com/propertyops/compliance-docs/internal/repository"
	"github.com/propertyops/compliance-docs/internal/taxonomy"
)

type stubFields struct{ out llm.ComplianceFields }

func (s stubFields) ExtractFields(_ context.Context, _ llm.ExtractRequest) (llm.ComplianceFields, []byte, error) {
	return s.out, nil, nil
}

// syncQueue runs jobs inline so handler tests see terminal states.
type syncQueue struct{ orch *pipeline.Orchestrator }

func (q syncQueue) Enqueue(id uuid.UUID) bool {
	_ = q.orch.Run(context.Background(), id)
	return true
}

func newTestServer(t *testing.T) (http.Handler, *repository.MemoryDocumentRepository) {
	t.Helper()
	repo := repository.NewMemoryDocumentRepository()
	orch := pipeline.NewOrchestrator(repo, blob.NewMemoryStore(), extract.NewChain(nil, nil),
		stubFields{out: llm.ComplianceFields{
			DocType:    "Fire Risk Assessment",
			AssetTitle: "Fire Risk Assessment",
			Summary:    "• ok",
			Confidence: 0.9,
		}},
		taxonomy.NewMatcher(nil), pipeline.OrchestratorConfig{}, nil)
	h := NewHandler(orch, syncQueue{orch}, export.NewService(repo, nil), nil)
	return NewRouter(h), repo
}

func multipartUpload(t *testing.T, buildingID, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if err := mw.WriteField("building_id", buildingID); err != nil {
		t.Fatal(err)
	}
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return body, mw.FormDataContentType()
}

func TestUploadAndStatusRoundTrip(t *testing.T) {
	router, _ := newTestServer(t)

	body, ct := multipartUpload(t, uuid.New().String(), "fra.txt", "text/plain",
		[]byte("Fire Risk Assessment carried out"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body)
	}
	var doc entity.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+doc.ID.String()+"/status", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}
	var st entity.JobStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Status != "processed" {
		t.Errorf("status = %s; want processed (sync queue)", st.Status)
	}
	if st.PagesProcessed != st.PagesTotal {
		t.Errorf("pages %d/%d", st.PagesProcessed, st.PagesTotal)
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	router, _ := newTestServer(t)

	body, ct := multipartUpload(t, uuid.New().String(), "x.zip", "application/zip", []byte{1})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d; want 415", rec.Code)
	}
}

func TestUploadRejectsBadBuildingID(t *testing.T) {
	router, _ := newTestServer(t)

	body, ct := multipartUpload(t, "not-a-uuid", "x.txt", "text/plain", []byte("hi"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", rec.Code)
	}
}

func TestStatusUnknownDocument(t *testing.T) {
	router, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+uuid.New().String()+"/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", rec.Code)
	}
}

func TestListAssets(t *testing.T) {
	router, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/assets", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var assets []entity.CanonicalAsset
	if err := json.Unmarshal(rec.Body.Bytes(), &assets); err != nil {
		t.Fatal(err)
	}
	if len(assets) != len(taxonomy.ListAssets()) {
		t.Errorf("assets = %d; want full taxonomy", len(assets))
	}
}

func TestExportRegisterEndpoint(t *testing.T) {
	router, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/buildings/"+uuid.New().String()+"/register.xlsx", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty workbook body")
	}
}
