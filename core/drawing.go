package core

import "time"

// MaxDrawings is the number of saved drawings kept in the gallery list.
const MaxDrawings = 20

// MaxDrawingBytes caps a decoded drawing at 5MB.
const MaxDrawingBytes = 5 * 1024 * 1024

type (
	// Drawing is a saved canvas image, stored inline as a data URL. BlobURL
	// is set instead when the image has been externalized to blob storage.
	Drawing struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		DataURL   string    `json:"dataURL"`
		CreatedAt time.Time `json:"createdAt"`
		FileSize  int64     `json:"fileSize"`
		BlobURL   string    `json:"blobUrl,omitempty"`
	}
)
