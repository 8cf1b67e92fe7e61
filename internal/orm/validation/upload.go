package validation

import (
	"github.com/conduit-lang/fieldmeta/internal/orm/schema"
)

// UploadSource hands out the files received with a request, already parsed
// by the transport layer
type UploadSource interface {
	Upload(field string) (schema.Upload, bool)
}

// UploadMap is an UploadSource backed by a map keyed by field name
type UploadMap map[string]schema.Upload

// Upload implements UploadSource
func (m UploadMap) Upload(field string) (schema.Upload, bool) {
	u, ok := m[field]
	return u, ok
}

// fileValue picks the value validated for a file field. An upload
// descriptor passed in the raw values wins over the upload source
func fileValue(field string, raw any, uploads UploadSource) any {
	if _, ok := asUpload(raw); ok {
		return raw
	}
	if uploads != nil {
		if u, ok := uploads.Upload(field); ok {
			return u
		}
	}
	return nil
}
