package photos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"kotochan-birthday/blob"
	"kotochan-birthday/core"
	"kotochan-birthday/stores"

	"github.com/go-chi/render"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type (
	ListResponse struct {
		Success bool         `json:"success"`
		Photos  []core.Photo `json:"photos"`
		Count   int          `json:"count"`
	}

	UploadResponse struct {
		Success bool        `json:"success"`
		Message string      `json:"message"`
		Photo   *core.Photo `json:"photo,omitempty"`
	}
)

// loadList reads the album list, treating a miss as an empty album and any
// store failure as an empty album too (the read path must stay usable).
func loadList(ctx context.Context, kv stores.KV) []core.Photo {
	data, err := kv.Get(ctx, stores.KeyPhotoList)
	if err != nil {
		if !core.IsNotFound(err) {
			logrus.WithField("error", err).Warn("KV storage not available for photos list")
		}
		return nil
	}

	var photos []core.Photo
	if err := json.Unmarshal(data, &photos); err != nil {
		logrus.WithField("error", err).Warn("Malformed photo list record")
		return nil
	}
	return photos
}

func saveList(ctx context.Context, kv stores.KV, photos []core.Photo) {
	data, err := json.Marshal(photos)
	if err != nil {
		logrus.WithField("error", err).Error("Failed to marshal photo list")
		return
	}
	if err := kv.Set(ctx, stores.KeyPhotoList, data, 0); err != nil {
		logrus.WithField("error", err).Warn("KV storage save failed")
	}
}

// sortAndCap orders newest-first and truncates to the album cap.
func sortAndCap(photos []core.Photo) []core.Photo {
	sort.SliceStable(photos, func(i, j int) bool {
		return photos[i].UploadedAt.After(photos[j].UploadedAt)
	})
	if len(photos) > core.MaxPhotos {
		photos = photos[:core.MaxPhotos]
	}
	return photos
}

// HandleList returns the album, newest first, capped. No session required.
func HandleList(kv stores.KV) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		photos := sortAndCap(loadList(r.Context(), kv))
		if photos == nil {
			photos = []core.Photo{}
		}
		render.JSON(w, r, ListResponse{Success: true, Photos: photos, Count: len(photos)})
	}
}

// HandleUpload stores a photo file in blob storage and prepends its record
// to the album list. Validation happens before anything is written.
func HandleUpload(kv stores.KV, blobStore blob.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(core.MaxPhotoBytes + 1024*1024); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, UploadResponse{Success: false, Message: "ファイルが選択されていません"})
			return
		}

		file, header, err := r.FormFile("photo")
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, UploadResponse{Success: false, Message: "ファイルが選択されていません"})
			return
		}
		defer file.Close()

		mimeType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(mimeType, "image/") {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, UploadResponse{Success: false, Message: "画像ファイルのみアップロード可能です"})
			return
		}

		if header.Size > core.MaxPhotoBytes {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, UploadResponse{Success: false, Message: "ファイルサイズは10MB以下にしてください"})
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, core.MaxPhotoBytes+1))
		if err != nil {
			logrus.WithField("error", err).Error("Failed to read uploaded file")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, UploadResponse{Success: false, Message: "エラーが発生しました"})
			return
		}
		if int64(len(data)) > core.MaxPhotoBytes {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, UploadResponse{Success: false, Message: "ファイルサイズは10MB以下にしてください"})
			return
		}

		photoID := ulid.Make().String()
		ext := strings.TrimPrefix(path.Ext(header.Filename), ".")
		if ext == "" {
			ext = "jpg"
		}
		fileName := fmt.Sprintf("photo-%s.%s", photoID, ext)

		url, err := blobStore.Put(r.Context(), fileName, data, mimeType)
		if err != nil {
			logrus.WithFields(logrus.Fields{"error": err, "photo_id": photoID}).Error("Blob storage not available")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, UploadResponse{Success: false, Message: "ファイルのアップロードに失敗しました"})
			return
		}

		name := r.FormValue("name")
		if name == "" {
			name = "写真 " + time.Now().Format("2006/01/02")
		}

		photo := core.Photo{
			ID:         photoID,
			Name:       name,
			URL:        url,
			UploadedAt: time.Now(),
			FileSize:   int64(len(data)),
			MimeType:   mimeType,
		}

		list := append([]core.Photo{photo}, loadList(r.Context(), kv)...)
		saveList(r.Context(), kv, sortAndCap(list))

		if itemData, err := json.Marshal(photo); err == nil {
			if err := kv.Set(r.Context(), stores.PhotoKey(photoID), itemData, 0); err != nil {
				logrus.WithField("error", err).Warn("KV storage save failed")
			}
		}

		logrus.WithFields(logrus.Fields{
			"photo_id":  photoID,
			"file_size": photo.FileSize,
		}).Info("Photo uploaded")

		render.JSON(w, r, UploadResponse{Success: true, Message: "写真をアップロードしました", Photo: &photo})
	}
}

// HandleDelete removes a photo record, its list entry and, best effort, the
// underlying blob.
func HandleDelete(kv stores.KV, blobStore blob.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		photoID := r.URL.Query().Get("id")
		if photoID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]any{"success": false, "message": "写真IDが必要です"})
			return
		}

		data, err := kv.Get(r.Context(), stores.PhotoKey(photoID))
		if err != nil {
			if !core.IsNotFound(err) {
				logrus.WithField("error", err).Warn("KV storage not available for photo delete")
			}
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]any{"success": false, "message": "写真が見つかりません"})
			return
		}

		var photo core.Photo
		if err := json.Unmarshal(data, &photo); err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]any{"success": false, "message": "写真が見つかりません"})
			return
		}

		list := loadList(r.Context(), kv)
		kept := list[:0]
		for _, p := range list {
			if p.ID != photoID {
				kept = append(kept, p)
			}
		}
		saveList(r.Context(), kv, kept)

		if err := kv.Delete(r.Context(), stores.PhotoKey(photoID)); err != nil {
			logrus.WithField("error", err).Warn("KV storage delete failed")
		}

		// The blob key is derivable from the stored URL's basename.
		if key := path.Base(photo.URL); key != "" && key != "." {
			if err := blobStore.Delete(r.Context(), key); err != nil {
				logrus.WithFields(logrus.Fields{"error": err, "photo_id": photoID}).Warn("Failed to delete photo blob")
			}
		}

		logrus.WithField("photo_id", photoID).Info("Photo deleted")
		render.JSON(w, r, map[string]any{"success": true, "message": "写真を削除しました"})
	}
}
