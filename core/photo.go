package core

import "time"

// MaxPhotos is the number of album entries kept; older photos fall off the
// end of the list on every write.
const MaxPhotos = 50

// MaxPhotoBytes caps uploads at 10MB.
const MaxPhotoBytes = 10 * 1024 * 1024

type (
	// Photo is one album entry. The image bytes live in blob storage; the
	// record only carries the public URL.
	Photo struct {
		ID         string    `json:"id"`
		Name       string    `json:"name"`
		URL        string    `json:"url"`
		UploadedAt time.Time `json:"uploadedAt"`
		FileSize   int64     `json:"fileSize"`
		MimeType   string    `json:"mimeType"`
	}
)
