package gallery

import "time"

// Bucket is the blob store bucket gallery images live in.
const Bucket = "gallery"

// Item is an uploaded gallery image.
type Item struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	ObjectName string    `json:"object_name"`
	URL        string    `json:"url"`
	UploadedBy int64     `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}
