// Package stats backs the admin dashboard's usage numbers.
package stats

import (
	"encoding/json"
	"net/http"

	"kotochan-birthday/core"
	"kotochan-birthday/stores"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type Response struct {
	Success      bool   `json:"success"`
	PhotoCount   int    `json:"photoCount"`
	DrawingCount int    `json:"drawingCount"`
	PhotoBytes   int64  `json:"photoBytes"`
	DrawingBytes int64  `json:"drawingBytes"`
	StorageType  string `json:"storageType"`
}

// HandleGet sums up stored content. Store failures degrade to zeros; the
// dashboard renders whatever it gets.
func HandleGet(kv stores.KV, storageType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := Response{Success: true, StorageType: storageType}

		if data, err := kv.Get(r.Context(), stores.KeyPhotoList); err == nil {
			var photos []core.Photo
			if err := json.Unmarshal(data, &photos); err == nil {
				resp.PhotoCount = len(photos)
				for _, p := range photos {
					resp.PhotoBytes += p.FileSize
				}
			}
		} else if !core.IsNotFound(err) {
			logrus.WithField("error", err).Warn("KV storage not available for stats")
		}

		if data, err := kv.Get(r.Context(), stores.KeyDrawingList); err == nil {
			var drawings []core.Drawing
			if err := json.Unmarshal(data, &drawings); err == nil {
				resp.DrawingCount = len(drawings)
				for _, d := range drawings {
					resp.DrawingBytes += d.FileSize
				}
			}
		} else if !core.IsNotFound(err) {
			logrus.WithField("error", err).Warn("KV storage not available for stats")
		}

		render.JSON(w, r, resp)
	}
}
