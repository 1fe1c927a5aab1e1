package drawings

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"kotochan-birthday/core"
	"kotochan-birthday/stores"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

var validate = validator.New()

// ErrInvalidImage is returned by Save when the data URL payload cannot be
// decoded.
var ErrInvalidImage = errors.New("invalid image data")

type (
	SaveRequest struct {
		Name    string `json:"name"`
		DataURL string `json:"dataURL" validate:"required,startswith=data:image/"`
	}

	ListResponse struct {
		Success  bool           `json:"success"`
		Drawings []core.Drawing `json:"drawings"`
		Count    int            `json:"count"`
	}

	SaveResponse struct {
		Success bool          `json:"success"`
		Message string        `json:"message"`
		Drawing *core.Drawing `json:"drawing,omitempty"`
	}
)

func loadList(ctx context.Context, kv stores.KV) []core.Drawing {
	data, err := kv.Get(ctx, stores.KeyDrawingList)
	if err != nil {
		if !core.IsNotFound(err) {
			logrus.WithField("error", err).Warn("KV storage not available for drawings list")
		}
		return nil
	}

	var drawings []core.Drawing
	if err := json.Unmarshal(data, &drawings); err != nil {
		logrus.WithField("error", err).Warn("Malformed drawing list record")
		return nil
	}
	return drawings
}

func saveList(ctx context.Context, kv stores.KV, drawings []core.Drawing) {
	data, err := json.Marshal(drawings)
	if err != nil {
		logrus.WithField("error", err).Error("Failed to marshal drawing list")
		return
	}
	if err := kv.Set(ctx, stores.KeyDrawingList, data, 0); err != nil {
		logrus.WithField("error", err).Warn("KV storage save failed")
	}
}

func sortAndCap(drawings []core.Drawing) []core.Drawing {
	sort.SliceStable(drawings, func(i, j int) bool {
		return drawings[i].CreatedAt.After(drawings[j].CreatedAt)
	})
	if len(drawings) > core.MaxDrawings {
		drawings = drawings[:core.MaxDrawings]
	}
	return drawings
}

// decodedSize returns the byte size of the base64 payload in a data URL.
func decodedSize(dataURL string) (int64, bool) {
	_, payload, found := strings.Cut(dataURL, ",")
	if !found {
		return 0, false
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return 0, false
	}
	return int64(len(decoded)), true
}

// HandleList returns saved drawings, newest first, capped.
func HandleList(kv stores.KV) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drawings := sortAndCap(loadList(r.Context(), kv))
		if drawings == nil {
			drawings = []core.Drawing{}
		}
		render.JSON(w, r, ListResponse{Success: true, Drawings: drawings, Count: len(drawings)})
	}
}

// Save persists one drawing and updates the gallery list. Shared between
// the POST handler and the workspace save endpoint.
func Save(ctx context.Context, kv stores.KV, name, dataURL string) (*core.Drawing, error) {
	size, ok := decodedSize(dataURL)
	if !ok {
		return nil, ErrInvalidImage
	}

	if name == "" {
		name = "おえかき " + time.Now().Format("2006/01/02")
	}

	drawing := core.Drawing{
		ID:        ulid.Make().String(),
		Name:      name,
		DataURL:   dataURL,
		CreatedAt: time.Now(),
		FileSize:  size,
	}

	list := append([]core.Drawing{drawing}, loadList(ctx, kv)...)
	saveList(ctx, kv, sortAndCap(list))

	if itemData, err := json.Marshal(drawing); err == nil {
		if err := kv.Set(ctx, stores.DrawingKey(drawing.ID), itemData, 0); err != nil {
			logrus.WithField("error", err).Warn("KV storage save failed")
		}
	}

	logrus.WithFields(logrus.Fields{
		"drawing_id": drawing.ID,
		"file_size":  drawing.FileSize,
	}).Info("Drawing saved")
	return &drawing, nil
}

// HandleSave stores a drawing submitted as a data URL.
func HandleSave(kv stores.KV) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SaveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, SaveResponse{Success: false, Message: "無効な画像データです"})
			return
		}
		if err := validate.Struct(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, SaveResponse{Success: false, Message: "無効な画像データです"})
			return
		}

		size, ok := decodedSize(req.DataURL)
		if !ok {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, SaveResponse{Success: false, Message: "無効な画像データです"})
			return
		}
		if size > core.MaxDrawingBytes {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, SaveResponse{Success: false, Message: "ファイルサイズが大きすぎます（5MB以下にしてください）"})
			return
		}

		drawing, err := Save(r.Context(), kv, req.Name, req.DataURL)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, SaveResponse{Success: false, Message: "無効な画像データです"})
			return
		}

		render.JSON(w, r, SaveResponse{Success: true, Message: "おえかきを保存しました", Drawing: drawing})
	}
}

// HandleDelete removes a drawing and its list entry.
func HandleDelete(kv stores.KV) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drawingID := r.URL.Query().Get("id")
		if drawingID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]any{"success": false, "message": "描画IDが必要です"})
			return
		}

		if _, err := kv.Get(r.Context(), stores.DrawingKey(drawingID)); err != nil {
			if !core.IsNotFound(err) {
				logrus.WithField("error", err).Warn("KV storage not available for drawing delete")
			}
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]any{"success": false, "message": "描画が見つかりません"})
			return
		}

		list := loadList(r.Context(), kv)
		kept := list[:0]
		for _, d := range list {
			if d.ID != drawingID {
				kept = append(kept, d)
			}
		}
		saveList(r.Context(), kv, kept)

		if err := kv.Delete(r.Context(), stores.DrawingKey(drawingID)); err != nil {
			logrus.WithField("error", err).Warn("KV storage delete failed")
		}

		logrus.WithField("drawing_id", drawingID).Info("Drawing deleted")
		render.JSON(w, r, map[string]any{"success": true, "message": "描画を削除しました"})
	}
}
