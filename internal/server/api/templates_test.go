package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/kuchipudi/internal/store"
)

func newTestStoreForAPI(t *testing.T) *store.Store {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "kuchipudi-api-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTemplateHandler_CreateAndList(t *testing.T) {
	s := newTestStoreForAPI(t)
	h := NewTemplateHandler(s.Poses(), "/api/poses")

	body, _ := json.Marshal(createTemplateRequest{Name: "fist", Definition: json.RawMessage(`{"thumb":"curled"}`)})
	req := httptest.NewRequest(http.MethodPost, "/api/poses", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var created templateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.Name != "fist" {
		t.Errorf("name = %q, want fist", created.Name)
	}

	listReq := httptest.NewRequest(http.MethodGet, "/api/poses", nil)
	listRec := httptest.NewRecorder()
	h.ServeHTTP(listRec, listReq)

	var list listTemplatesResponse
	if err := json.Unmarshal(listRec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(list.Templates) != 1 {
		t.Errorf("len(list.Templates) = %d, want 1", len(list.Templates))
	}
}

func TestTemplateHandler_GetNotFound(t *testing.T) {
	s := newTestStoreForAPI(t)
	h := NewTemplateHandler(s.Sequences(), "/api/sequences")

	req := httptest.NewRequest(http.MethodGet, "/api/sequences/missing", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestTemplateHandler_UpdateAndDelete(t *testing.T) {
	s := newTestStoreForAPI(t)
	h := NewTemplateHandler(s.Trajectories(), "/api/trajectories")

	if err := s.Trajectories().Create(&store.TemplateRecord{ID: "t1", Name: "swipe_right", Definition: "{}"}); err != nil {
		t.Fatalf("seed create: %v", err)
	}

	body, _ := json.Marshal(updateTemplateRequest{Definition: json.RawMessage(`{"minScore":0.7}`)})
	req := httptest.NewRequest(http.MethodPut, "/api/trajectories/t1", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	delReq := httptest.NewRequest(http.MethodDelete, "/api/trajectories/t1", nil)
	delRec := httptest.NewRecorder()
	h.ServeHTTP(delRec, delReq)

	if delRec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", delRec.Code)
	}
}

func TestActionHandler_CreateRejectsUnknownCategory(t *testing.T) {
	s := newTestStoreForAPI(t)
	h := NewActionHandler(s)

	body, _ := json.Marshal(createActionRequest{
		Category: "not_a_category", BindingName: "fist", PluginName: "p", ActionName: "a",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/actions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestActionHandler_CreateAndDuplicateBinding(t *testing.T) {
	s := newTestStoreForAPI(t)
	h := NewActionHandler(s)

	body, _ := json.Marshal(createActionRequest{
		Category: "gesture", BindingName: "thumbs_up", PluginName: "obs", ActionName: "scene_next",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/actions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	dupReq := httptest.NewRequest(http.MethodPost, "/api/actions", bytes.NewReader(body))
	dupRec := httptest.NewRecorder()
	h.ServeHTTP(dupRec, dupReq)
	if dupRec.Code != http.StatusConflict {
		t.Errorf("duplicate create status = %d, want 409", dupRec.Code)
	}
}
