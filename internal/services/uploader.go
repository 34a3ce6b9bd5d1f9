package services

// ImageUploader uploads a local file to an external image host and
// returns the durable URL of the stored asset.
type ImageUploader interface {
	Upload(localPath string) (string, error)
}

// UploadFile describes a client-supplied file already saved to local
// disk, awaiting upload to the image host.
type UploadFile struct {
	Path         string // location on local disk
	OriginalName string // file name as sent by the client
	MimeType     string // declared content type
	Size         int64  // raw byte count
}
