package settings

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"kotochan-birthday/core"
	"kotochan-birthday/stores"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var validate = validator.New()

type Response struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message,omitempty"`
	Settings core.Settings `json:"settings"`
}

// load reads the settings record, substituting defaults on a miss or when
// the store is unavailable.
func load(ctx context.Context, kv stores.KV) core.Settings {
	data, err := kv.Get(ctx, stores.KeySettings)
	if err != nil {
		if !core.IsNotFound(err) {
			logrus.WithField("error", err).Warn("KV storage not available, using default settings")
		}
		return core.DefaultSettings()
	}

	var settings core.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		logrus.WithField("error", err).Warn("Malformed settings record, using defaults")
		return core.DefaultSettings()
	}
	return settings
}

// HandleGet returns the current settings. No session required; the whole
// app reads these.
func HandleGet(kv stores.KV) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, Response{Success: true, Settings: load(r.Context(), kv)})
	}
}

// HandleUpdate merges a partial patch into the current settings, clamps the
// volume fields and persists the result. A store write failure is absorbed;
// the merged record is still returned.
func HandleUpdate(kv stores.KV) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch core.SettingsPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]any{"success": false, "message": "エラーが発生しました"})
			return
		}
		if err := validate.Struct(&patch); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]any{"success": false, "message": "不正な設定値です"})
			return
		}

		settings := load(r.Context(), kv)
		patch.Apply(&settings, time.Now())

		data, err := json.Marshal(settings)
		if err != nil {
			logrus.WithField("error", err).Error("Failed to marshal settings")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]any{"success": false, "message": "エラーが発生しました"})
			return
		}
		if err := kv.Set(r.Context(), stores.KeySettings, data, 0); err != nil {
			logrus.WithField("error", err).Warn("KV storage not available for settings save")
		}

		render.JSON(w, r, Response{Success: true, Message: "設定を保存しました", Settings: settings})
	}
}
