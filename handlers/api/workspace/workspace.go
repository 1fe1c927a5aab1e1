// Package workspace exposes the drawing undo/redo timeline over HTTP. Each
// workspace is an ephemeral, in-memory history owned by one canvas session;
// nothing here is persisted until an explicit save externalizes the current
// snapshot into the drawings gallery.
package workspace

import (
	"encoding/json"
	"net/http"
	"sync"

	"kotochan-birthday/core"
	"kotochan-birthday/handlers/api/drawings"
	"kotochan-birthday/history"
	"kotochan-birthday/stores"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

var validate = validator.New()

type (
	// workspaceState pairs a history with the lock that serializes the one
	// canvas talking to it. Handlers run concurrently even if the canvas
	// issues operations one at a time.
	workspaceState struct {
		mu      sync.Mutex
		history *history.History
	}

	// Registry tracks live workspaces by id.
	Registry struct {
		mu         sync.RWMutex
		workspaces map[string]*workspaceState
	}

	PushRequest struct {
		DataURL string `json:"dataURL" validate:"required,startswith=data:image/"`
	}

	SaveRequest struct {
		Name string `json:"name"`
	}

	StateResponse struct {
		Applied bool   `json:"applied"`
		Index   int    `json:"index"`
		Length  int    `json:"length"`
		CanUndo bool   `json:"canUndo"`
		CanRedo bool   `json:"canRedo"`
		DataURL string `json:"dataURL,omitempty"`
	}
)

// NewRegistry creates an empty workspace registry.
func NewRegistry() *Registry {
	return &Registry{workspaces: make(map[string]*workspaceState)}
}

func (reg *Registry) get(id string) *workspaceState {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.workspaces[id]
}

func state(h *history.History, applied bool) StateResponse {
	resp := StateResponse{
		Applied: applied,
		Index:   h.Cursor(),
		Length:  h.Len(),
		CanUndo: h.CanUndo(),
		CanRedo: h.CanRedo(),
	}
	if snap, ok := h.Current(); ok {
		resp.DataURL = snap
	}
	return resp
}

func notFound(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, map[string]any{"success": false, "message": "ワークスペースが見つかりません"})
}

// HandleCreate opens a new empty workspace.
func (reg *Registry) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := ulid.Make().String()

		reg.mu.Lock()
		reg.workspaces[id] = &workspaceState{history: history.New()}
		reg.mu.Unlock()

		logrus.WithField("workspace_id", id).Info("Workspace created")
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{"success": true, "workspaceId": id})
	}
}

// HandlePush appends a snapshot after the cursor, discarding redo entries.
func (reg *Registry) HandlePush() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := reg.get(chi.URLParam(r, "id"))
		if ws == nil {
			notFound(w, r)
			return
		}

		var req PushRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]any{"success": false, "message": "無効な画像データです"})
			return
		}
		if err := validate.Struct(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]any{"success": false, "message": "無効な画像データです"})
			return
		}

		ws.mu.Lock()
		ws.history.Push(req.DataURL)
		resp := state(ws.history, true)
		ws.mu.Unlock()

		// No data URL echo on push; the client already has it.
		resp.DataURL = ""
		render.JSON(w, r, resp)
	}
}

// HandleUndo steps the cursor back. Applied is false when at the start.
func (reg *Registry) HandleUndo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := reg.get(chi.URLParam(r, "id"))
		if ws == nil {
			notFound(w, r)
			return
		}

		ws.mu.Lock()
		applied := ws.history.Undo()
		resp := state(ws.history, applied)
		ws.mu.Unlock()

		render.JSON(w, r, resp)
	}
}

// HandleRedo steps the cursor forward. Applied is false when at the end.
func (reg *Registry) HandleRedo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := reg.get(chi.URLParam(r, "id"))
		if ws == nil {
			notFound(w, r)
			return
		}

		ws.mu.Lock()
		applied := ws.history.Redo()
		resp := state(ws.history, applied)
		ws.mu.Unlock()

		render.JSON(w, r, resp)
	}
}

// HandleCurrent returns the snapshot under the cursor.
func (reg *Registry) HandleCurrent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := reg.get(chi.URLParam(r, "id"))
		if ws == nil {
			notFound(w, r)
			return
		}

		ws.mu.Lock()
		snap, ok := ws.history.Current()
		resp := state(ws.history, false)
		ws.mu.Unlock()

		if !ok {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]any{"success": false, "message": "スナップショットがありません"})
			return
		}
		resp.DataURL = snap
		render.JSON(w, r, resp)
	}
}

// HandleClear resets the workspace history to empty.
func (reg *Registry) HandleClear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := reg.get(chi.URLParam(r, "id"))
		if ws == nil {
			notFound(w, r)
			return
		}

		ws.mu.Lock()
		ws.history.Clear()
		ws.mu.Unlock()

		render.JSON(w, r, map[string]any{"success": true})
	}
}

// HandleSave externalizes the current snapshot into the drawings gallery.
func (reg *Registry) HandleSave(kv stores.KV) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := reg.get(chi.URLParam(r, "id"))
		if ws == nil {
			notFound(w, r)
			return
		}

		var req SaveRequest
		if r.Body != nil {
			// An empty body just means "use the default name".
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		ws.mu.Lock()
		snap, ok := ws.history.Current()
		ws.mu.Unlock()

		if !ok {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]any{"success": false, "message": "スナップショットがありません"})
			return
		}

		size := int64(len(snap))
		if size > core.MaxDrawingBytes {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]any{"success": false, "message": "ファイルサイズが大きすぎます（5MB以下にしてください）"})
			return
		}

		drawing, err := drawings.Save(r.Context(), kv, req.Name, snap)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]any{"success": false, "message": "無効な画像データです"})
			return
		}

		render.JSON(w, r, map[string]any{"success": true, "message": "おえかきを保存しました", "drawing": drawing})
	}
}
