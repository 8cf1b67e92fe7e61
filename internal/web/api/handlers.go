package api

import (
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/conduit-lang/fieldmeta/internal/orm/query"
	"github.com/conduit-lang/fieldmeta/internal/orm/schema"
	"github.com/conduit-lang/fieldmeta/internal/orm/validation"
	"github.com/conduit-lang/fieldmeta/internal/web/cache"
	"github.com/conduit-lang/fieldmeta/internal/web/markup"
)

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"fields": a.registry.Count(),
		"locale": a.locale.Tag.String(),
	})
}

type fieldsResponse struct {
	Fields   []string `json:"fields"`
	Packages []string `json:"packages"`
	Pending  []string `json:"pending,omitempty"`
}

func (a *API) handleFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &fieldsResponse{
		Fields:   a.registry.Names(),
		Packages: a.registry.Packages(),
		Pending:  a.registry.Pending(),
	})
}

type fieldResponse struct {
	Name       string             `json:"name"`
	Descriptor *schema.Descriptor `json:"descriptor"`
}

func (a *API) handleField(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	desc, ok := a.registry.Get(name, nil)
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown_field", "field "+name+" is not registered")
		return
	}
	writeJSON(w, http.StatusOK, &fieldResponse{Name: name, Descriptor: desc})
}

type validateRequest struct {
	Fields map[string]*schema.Descriptor `json:"fields"`
	Values map[string]any                `json:"values"`
}

type validateResponse struct {
	Valid  bool                    `json:"valid"`
	Values map[string]any          `json:"values"`
	Errors []validation.FieldError `json:"errors"`
}

func (a *API) handleValidate(w http.ResponseWriter, r *http.Request) {
	var (
		req     *validateRequest
		uploads validation.UploadMap
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadSize+a.maxBodySize)
		parsed, up, err := a.parseMultipart(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		defer r.MultipartForm.RemoveAll()
		req, uploads = parsed, up
		a.logger.Debug("multipart validate request", zap.Strings("uploads", uploadNames(uploads)))
	} else {
		req = &validateRequest{}
		if err := decodeJSON(w, r, a.maxBodySize, req); err != nil {
			writeError(w, r, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
	}

	if len(req.Fields) == 0 {
		writeError(w, r, http.StatusBadRequest, "bad_request", "no fields to validate")
		return
	}
	if err := schema.BindCallbacks(req.Fields, validation.Callbacks()); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	res := a.validator.ValidateWithUploads(req.Fields, req.Values, uploads)

	resp := &validateResponse{
		Valid:  res.Valid(),
		Values: res.Values,
		Errors: res.Errors,
	}
	if resp.Errors == nil {
		resp.Errors = []validation.FieldError{}
	}
	for _, fe := range res.Errors {
		a.metrics.fieldErrors.WithLabelValues(fe.Kind.String()).Inc()
	}

	if !resp.Valid {
		a.metrics.validations.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	a.metrics.validations.WithLabelValues("valid").Inc()
	writeJSON(w, http.StatusOK, resp)
}

type renderRequest struct {
	Name       string             `json:"name"`
	Value      any                `json:"value"`
	Mode       string             `json:"mode"`
	Attrs      markup.Attrs       `json:"attrs"`
	Descriptor *schema.Descriptor `json:"descriptor"`
}

type renderResponse struct {
	HTML   string `json:"html"`
	Cached bool   `json:"cached"`
}

func (a *API) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(w, r, a.maxBodySize, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, r, http.StatusBadRequest, "bad_request", "name is required")
		return
	}

	switch req.Mode {
	case "", "static":
		html, cached := a.renderStatic(r, &req)
		writeJSON(w, http.StatusOK, &renderResponse{HTML: html, Cached: cached})
	case "input":
		a.metrics.renders.WithLabelValues("input", "none").Inc()
		html := a.renderer.AsHTMLInput(req.Name, req.Value, req.Attrs, req.Descriptor)
		writeJSON(w, http.StatusOK, &renderResponse{HTML: html})
	default:
		writeError(w, r, http.StatusBadRequest, "bad_request", "mode must be static or input")
	}
}

// renderStatic renders through the fragment cache when one is configured.
// Cache failures only cost a render
func (a *API) renderStatic(r *http.Request, req *renderRequest) (string, bool) {
	if a.cache == nil {
		a.metrics.renders.WithLabelValues("static", "none").Inc()
		return a.renderer.AsHTMLStatic(req.Name, req.Value, req.Descriptor), false
	}

	ctx := r.Context()
	key, err := cache.FragmentKey(a.locale.Tag.String(), req.Name, req.Value, req.Descriptor)
	if err != nil {
		a.logger.Warn("fragment key", zap.Error(err))
		a.metrics.renders.WithLabelValues("static", "none").Inc()
		return a.renderer.AsHTMLStatic(req.Name, req.Value, req.Descriptor), false
	}

	if data, err := a.cache.Get(ctx, key); err == nil {
		a.metrics.renders.WithLabelValues("static", "hit").Inc()
		return string(data), true
	} else if !cache.IsCacheMiss(err) {
		a.logger.Warn("fragment cache read", zap.String("key", key), zap.Error(err))
	}

	a.metrics.renders.WithLabelValues("static", "miss").Inc()
	html := a.renderer.AsHTMLStatic(req.Name, req.Value, req.Descriptor)
	if err := a.cache.Set(ctx, key, []byte(html), a.cacheTTL); err != nil {
		a.logger.Warn("fragment cache write", zap.String("key", key), zap.Error(err))
	}
	return html, false
}

type sqlRequest struct {
	Filters map[string]any `json:"filters"`
}

type sqlResponse struct {
	Where   string   `json:"where"`
	Dialect string   `json:"dialect"`
	Columns []string `json:"columns,omitempty"`
}

func (a *API) handleSQL(w http.ResponseWriter, r *http.Request) {
	var req sqlRequest
	if err := decodeJSON(w, r, a.maxBodySize, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	where, err := a.compiler.Filter(req.Filters)
	if err != nil {
		a.metrics.predicates.WithLabelValues("rejected").Inc()
		var ferr *query.FilterError
		if errors.As(err, &ferr) {
			writeFieldsError(w, r, http.StatusBadRequest, "invalid_filter", err.Error(), ferr.Fields())
			return
		}
		writeError(w, r, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	resp := &sqlResponse{Where: where, Dialect: a.dialect.Name()}
	if where == "" {
		a.metrics.predicates.WithLabelValues("empty").Inc()
		writeJSON(w, http.StatusOK, resp)
		return
	}

	if a.dialect == query.MySQL {
		columns, err := query.Verify(where)
		if err != nil {
			a.logger.Error("compiled filter does not parse", zap.String("where", where), zap.Error(err))
			writeError(w, r, http.StatusInternalServerError, "internal_server_error", "compiled filter does not parse")
			return
		}
		resp.Columns = columns
	}

	a.metrics.predicates.WithLabelValues("compiled").Inc()
	writeJSON(w, http.StatusOK, resp)
}
