package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// 题目附件上传相关常量
const (
	MimeImage       = "image/"
	MimeAudio       = "audio/"
	MimeVideo       = "video/"
	MimeOctetStream = "application/octet-stream"
)

var (
	AllowedImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
)
