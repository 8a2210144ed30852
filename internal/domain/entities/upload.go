package entities

// UploadedFile is the media file selected for transcription
type UploadedFile struct {
	Name     string
	Data     []byte
	MimeType string
}

// Size returns the payload length in bytes
func (f *UploadedFile) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Data))
}
