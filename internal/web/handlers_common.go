package web

// Shared request parsing and response encoding used across handlers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/backoffice/internal/core"
	"github.com/JonMunkholm/backoffice/internal/logging"
	"github.com/a-h/templ"
	"github.com/vmihailenco/msgpack/v5"
)

// MaxBodySize caps JSON request bodies (1MB).
const MaxBodySize = 1 << 20

const (
	contentTypeMsgpack = "application/msgpack"
	contentTypeHTML    = "text/html; charset=utf-8"
)

// decodeJSON reads a size-limited JSON body into v. Decode failures come
// back as bad-request errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return &core.Error{Kind: core.KindBadRequest, Message: "Request body too large", Cause: err}
		case errors.Is(err, io.EOF):
			return &core.Error{Kind: core.KindBadRequest, Message: "Request body is empty", Cause: err}
		}
		return &core.Error{Kind: core.KindBadRequest, Message: "Invalid request body", Cause: err}
	}
	return nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// isHTMX reports whether r was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func wantsMsgpack(r *http.Request) bool {
	return acceptsType(r, "application/msgpack") || acceptsType(r, "application/x-msgpack")
}

func wantsHTML(r *http.Request) bool {
	return isHTMX(r) || acceptsType(r, "text/html")
}

// acceptsType reports whether the Accept header lists mediaType.
func acceptsType(r *http.Request, mediaType string) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, _ := strings.Cut(part, ";")
		if strings.EqualFold(strings.TrimSpace(mt), mediaType) {
			return true
		}
	}
	return false
}

// writeMsgpack encodes v as MessagePack. Fields without a msgpack tag use
// their json name so both encodings share one wire vocabulary.
func writeMsgpack(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", contentTypeMsgpack)
	w.WriteHeader(status)

	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("msgpack encode error", "error", err)
	}
}

// writeHTML renders c as an HTML fragment.
func writeHTML(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error", "error", err)
	}
}

// writeNegotiated writes v as msgpack or JSON depending on the Accept header.
func writeNegotiated(w http.ResponseWriter, r *http.Request, status int, v any) {
	if wantsMsgpack(r) {
		writeMsgpack(w, r, status, v)
		return
	}
	writeJSON(w, status, v)
}

// attachment sets the download headers for a file response.
func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
}

// respondWriteFailure logs a body write that failed after headers were sent.
func respondWriteFailure(r *http.Request, err error) {
	logging.FromContext(r.Context()).Warn("response write failed", "path", r.URL.Path, "error", err)
}
