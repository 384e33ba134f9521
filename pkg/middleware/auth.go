package middleware

import (
	"context"
	"net/http"
	"strings"

	httputil "medbook/pkg/http"

	apperrors "medbook/pkg/errors"
	"medbook/pkg/logger"
	"medbook/pkg/model"
	"medbook/pkg/token"
)

const RequesterKey contextKey = "requester"

// PathSkipper reports whether a request bypasses authentication entirely
// (signup, login, health probes).
type PathSkipper func(r *http.Request) bool

// Authentication verifies the bearer token and injects the Requester into
// the request context.
func Authentication(tokens *token.Manager, skip PathSkipper, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip != nil && skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := extractBearerToken(r)
			if err != nil {
				_ = httputil.WriteError(w, err)
				return
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				log.Warn("Token verification failed",
					"request_id", requestIDFromContext(r),
					"path", r.URL.Path,
					"error", err,
				)
				_ = httputil.WriteError(w, apperrors.Unauthorized("Invalid or expired token"))
				return
			}

			requester := model.Requester{ID: claims.UserID, Role: claims.Role}
			ctx := context.WithValue(r.Context(), RequesterKey, requester)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperrors.Unauthorized("Authorization header required")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", apperrors.Unauthorized("Invalid authorization header format")
	}

	return parts[1], nil
}

func RequesterFromContext(ctx context.Context) (model.Requester, bool) {
	requester, ok := ctx.Value(RequesterKey).(model.Requester)
	return requester, ok
}

// MustRequester is for handlers behind Authentication: a missing requester
// means the middleware chain is miswired.
func MustRequester(r *http.Request) (model.Requester, error) {
	requester, ok := RequesterFromContext(r.Context())
	if !ok {
		return model.Requester{}, apperrors.Unauthorized("Authentication required")
	}
	return requester, nil
}
