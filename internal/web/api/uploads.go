package api

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/conduit-lang/fieldmeta/internal/orm/schema"
	"github.com/conduit-lang/fieldmeta/internal/orm/validation"
)

// fieldsPart names the multipart value holding the JSON field descriptors
const fieldsPart = "fields"

// multipartMemory is kept in memory while parsing, the rest spills to disk
const multipartMemory = 8 << 20

// parseMultipart reads a validate request sent as multipart/form-data.
// Plain parts become raw values and file parts become upload descriptors.
// Without a "fields" part every submitted name is validated with its
// registered descriptor
func (a *API) parseMultipart(r *http.Request) (*validateRequest, validation.UploadMap, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}
	form := r.MultipartForm

	req := &validateRequest{Values: make(map[string]any)}
	if parts := form.Value[fieldsPart]; len(parts) > 0 {
		if err := json.Unmarshal([]byte(parts[0]), &req.Fields); err != nil {
			return nil, nil, fmt.Errorf("invalid %s part: %w", fieldsPart, err)
		}
	}

	explicit := req.Fields != nil
	if !explicit {
		req.Fields = make(map[string]*schema.Descriptor)
	}

	for name, values := range form.Value {
		if name == fieldsPart {
			continue
		}

		var value any = values
		if len(values) == 1 {
			value = values[0]
		}

		// checkbox groups post one name[member] entry per checked box
		if base, member, ok := splitMember(name); ok {
			members, _ := req.Values[base].(map[string]any)
			if members == nil {
				members = make(map[string]any)
				req.Values[base] = members
			}
			members[member] = value
			name = base
		} else {
			req.Values[name] = value
		}

		if !explicit {
			req.Fields[name] = nil
		}
	}

	uploads := make(validation.UploadMap, len(form.File))
	for name, headers := range form.File {
		if len(headers) == 0 {
			continue
		}
		uploads[name] = a.describeUpload(headers[0])
		if !explicit {
			req.Fields[name] = nil
		}
	}
	return req, uploads, nil
}

// splitMember splits a form name of the shape base[member]
func splitMember(name string) (base, member string, ok bool) {
	open := strings.IndexByte(name, '[')
	if open <= 0 || !strings.HasSuffix(name, "]") {
		return "", "", false
	}
	member = name[open+1 : len(name)-1]
	if member == "" || strings.ContainsAny(member, "[]") {
		return "", "", false
	}
	return name[:open], member, true
}

// describeUpload checks a received file and reports it the way the
// validator expects. The content is not kept past the request
func (a *API) describeUpload(header *multipart.FileHeader) schema.Upload {
	u := schema.Upload{
		Name: header.Filename,
		Type: header.Header.Get("Content-Type"),
		Size: header.Size,
	}
	if u.Name == "" {
		u.Error = schema.UploadErrNoFile
		return u
	}
	if header.Size > a.maxUploadSize {
		u.Error = schema.UploadErrTooLarge
		return u
	}

	f, err := header.Open()
	if err != nil {
		u.Error = schema.UploadErrPartial
		return u
	}
	f.Close()
	return u
}

// uploadNames returns the names of the received files, sorted
func uploadNames(uploads validation.UploadMap) []string {
	names := make([]string, 0, len(uploads))
	for name := range uploads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
