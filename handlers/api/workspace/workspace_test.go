package workspace

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kotochan-birthday/stores"
	"kotochan-birthday/stores/memory"

	"github.com/go-chi/chi/v5"
)

func testRouter(reg *Registry, kv stores.KV) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/api/workspace", reg.HandleCreate())
	r.Route("/api/workspace/{id}", func(r chi.Router) {
		r.Post("/snapshots", reg.HandlePush())
		r.Post("/undo", reg.HandleUndo())
		r.Post("/redo", reg.HandleRedo())
		r.Get("/current", reg.HandleCurrent())
		r.Post("/clear", reg.HandleClear())
		r.Post("/save", reg.HandleSave(kv))
	})
	return r
}

func pngDataURL(payload string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func createWorkspace(t *testing.T, router *chi.Mux) string {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/workspace", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", rec.Code)
	}
	var body struct {
		WorkspaceID string `json:"workspaceId"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	if body.WorkspaceID == "" {
		t.Fatal("create returned empty workspace id")
	}
	return body.WorkspaceID
}

func push(t *testing.T, router *chi.Mux, id, dataURL string) StateResponse {
	t.Helper()
	payload := fmt.Sprintf(`{"dataURL":%q}`, dataURL)
	req := httptest.NewRequest(http.MethodPost, "/api/workspace/"+id+"/snapshots", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("push status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}
	var resp StateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode push response: %v", err)
	}
	return resp
}

func step(t *testing.T, router *chi.Mux, id, action string) StateResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/workspace/"+id+"/"+action, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("%s status = %d, want 200", action, rec.Code)
	}
	var resp StateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode %s response: %v", action, err)
	}
	return resp
}

func TestUnknownWorkspace(t *testing.T) {
	router := testRouter(NewRegistry(), memory.NewKV())

	for _, call := range []struct{ method, path string }{
		{http.MethodPost, "/api/workspace/nope/snapshots"},
		{http.MethodPost, "/api/workspace/nope/undo"},
		{http.MethodPost, "/api/workspace/nope/redo"},
		{http.MethodGet, "/api/workspace/nope/current"},
		{http.MethodPost, "/api/workspace/nope/clear"},
		{http.MethodPost, "/api/workspace/nope/save"},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(call.method, call.path, strings.NewReader("{}")))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s: status = %d, want 404", call.method, call.path, rec.Code)
		}
	}
}

func TestPushRejectsNonImage(t *testing.T) {
	router := testRouter(NewRegistry(), memory.NewKV())
	id := createWorkspace(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/workspace/"+id+"/snapshots",
		strings.NewReader(`{"dataURL":"not-a-data-url"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUndoRedoTimeline(t *testing.T) {
	router := testRouter(NewRegistry(), memory.NewKV())
	id := createWorkspace(t, router)

	first := pngDataURL("one")
	second := pngDataURL("two")
	third := pngDataURL("three")

	push(t, router, id, first)
	push(t, router, id, second)
	resp := push(t, router, id, third)
	if resp.Index != 2 || resp.Length != 3 || !resp.CanUndo || resp.CanRedo {
		t.Fatalf("after three pushes: %+v", resp)
	}

	resp = step(t, router, id, "undo")
	if !resp.Applied || resp.DataURL != second || !resp.CanRedo {
		t.Fatalf("first undo: %+v", resp)
	}
	resp = step(t, router, id, "undo")
	if !resp.Applied || resp.DataURL != first || resp.CanUndo {
		t.Fatalf("second undo: %+v", resp)
	}

	// Already at the start: no-op, state unchanged.
	resp = step(t, router, id, "undo")
	if resp.Applied || resp.DataURL != first {
		t.Fatalf("undo at start: %+v", resp)
	}

	resp = step(t, router, id, "redo")
	if !resp.Applied || resp.DataURL != second {
		t.Fatalf("redo: %+v", resp)
	}

	// Pushing from the middle discards the redo branch.
	resp = push(t, router, id, pngDataURL("fork"))
	if resp.Length != 3 || resp.CanRedo {
		t.Fatalf("push after undo: %+v", resp)
	}
	resp = step(t, router, id, "redo")
	if resp.Applied {
		t.Fatalf("redo after branch discard: %+v", resp)
	}
}

func TestCurrentEmptyWorkspace(t *testing.T) {
	router := testRouter(NewRegistry(), memory.NewKV())
	id := createWorkspace(t, router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/workspace/"+id+"/current", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestClear(t *testing.T) {
	router := testRouter(NewRegistry(), memory.NewKV())
	id := createWorkspace(t, router)
	push(t, router, id, pngDataURL("one"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/workspace/"+id+"/clear", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/workspace/"+id+"/current", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("current after clear: status = %d, want 404", rec.Code)
	}
}

func TestSaveToGallery(t *testing.T) {
	kv := memory.NewKV()
	router := testRouter(NewRegistry(), kv)
	id := createWorkspace(t, router)

	snapshot := pngDataURL("final-drawing")
	push(t, router, id, pngDataURL("draft"))
	push(t, router, id, snapshot)

	req := httptest.NewRequest(http.MethodPost, "/api/workspace/"+id+"/save",
		strings.NewReader(`{"name":"かんせい"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}

	data, err := kv.Get(req.Context(), stores.KeyDrawingList)
	if err != nil {
		t.Fatalf("gallery list missing: %v", err)
	}
	var list []struct {
		Name    string `json:"name"`
		DataURL string `json:"dataURL"`
	}
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatalf("failed to decode gallery list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "かんせい" || list[0].DataURL != snapshot {
		t.Errorf("gallery list = %+v", list)
	}
}

func TestSaveEmptyWorkspace(t *testing.T) {
	router := testRouter(NewRegistry(), memory.NewKV())
	id := createWorkspace(t, router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/workspace/"+id+"/save", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
