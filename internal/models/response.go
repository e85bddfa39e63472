package models

// UploadResponse lists one message per stored (or failed) file.
type UploadResponse struct {
	ProjectName string   `json:"project_name"`
	Messages    []string `json:"messages"`
}
