package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/backoffice/internal/core"
	mw "github.com/JonMunkholm/backoffice/internal/web/middleware"
)

// WithRequestMetadata adds IP and User-Agent to context for audit logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, mw.ClientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
