package models

// UploadResponse describes a stored file
type UploadResponse struct {
	URL          string `json:"url"`
	FileID       string `json:"fileId"`
	Name         string `json:"name"`
	FilePath     string `json:"filePath"`
	ThumbnailURL string `json:"thumbnailUrl"`
}
