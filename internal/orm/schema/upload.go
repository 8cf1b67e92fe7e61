package schema

// UploadErr classifies what went wrong while receiving an uploaded file
type UploadErr int

const (
	UploadErrNone UploadErr = iota
	UploadErrTooLarge
	UploadErrPartial
	UploadErrNoFile
	UploadErrStorage
)

// Upload describes a file received by the transport layer. The file itself
// stays where the transport stored it
type Upload struct {
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Size    int64     `json:"size"`
	TmpPath string    `json:"tmp_path"`
	Error   UploadErr `json:"error"`
}
