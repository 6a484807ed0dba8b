package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, fallback)
//  3. core.KindOf selects the status; core.MapError supplies the support code
//  4. Technical error + context is logged with request ID for correlation
//  5. The client gets the domain message, or fallback for internal failures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/backoffice/internal/core"
	"github.com/JonMunkholm/backoffice/internal/logging"
	"github.com/a-h/templ"
)

var errRateLimited = errors.New("rate limit exceeded")

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
	Code   string `json:"code"`
}

var kindStatus = map[core.Kind]int{
	core.KindUnauthorized: http.StatusUnauthorized,
	core.KindBadRequest:   http.StatusBadRequest,
	core.KindNotFound:     http.StatusNotFound,
	core.KindForbidden:    http.StatusForbidden,
	core.KindConflict:     http.StatusConflict,
	core.KindUnavailable:  http.StatusServiceUnavailable,
	core.KindInternal:     http.StatusInternalServerError,
}

// statusFor returns the HTTP status for err.
func statusFor(err error) int {
	if errors.Is(err, errRateLimited) {
		return http.StatusTooManyRequests
	}
	if status, ok := kindStatus[core.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// clientMessage returns the text shown to the client. Internal failures
// never expose their cause.
func clientMessage(err error, fallback string) string {
	userMsg := core.MapError(err)

	var de *core.Error
	switch {
	case errors.As(err, &de) && de.Message != "":
		return de.Message
	case errors.Is(err, errRateLimited):
		return userMsg.Message
	case core.KindOf(err) != core.KindInternal:
		return err.Error()
	case fallback != "":
		return fallback
	}
	return userMsg.Message
}

// respondError logs err and writes the client response in the format the
// request asked for.
func respondError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}

	resp := ErrorResponse{
		Error:  clientMessage(err, fallback),
		Action: userMsg.Action,
		Code:   userMsg.Code,
	}

	if isHTMX(r) {
		renderErrorPartial(r.Context(), w, resp, status)
		return
	}
	writeJSON(w, status, resp)
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(ctx context.Context, w http.ResponseWriter, resp ErrorResponse, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := errorAlert(resp).Render(ctx, w); err != nil {
		logging.FromContext(ctx).Error("render error partial", "error", err)
	}
}

func errorAlert(resp ErrorResponse) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert alert-error" role="alert"><p>%s</p><p class="alert-action">%s</p><span class="alert-code">%s</span></div>`,
			html.EscapeString(resp.Error), html.EscapeString(resp.Action), html.EscapeString(resp.Code))
		return err
	})
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
