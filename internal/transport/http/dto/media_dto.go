package dto

type ImageUploadResponse struct {
	ObjectKey string `json:"object_key"`
	URL       string `json:"url"`
}
