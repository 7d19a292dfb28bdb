package rest

import (
	"errors"
	"log/slog"
	"net/http"

	producterrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/pkg/web"
)

const serverErrorMessage = "Server Error"

// HandlerFunc is an HTTP handler that reports failures as errors instead of writing them.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts fn to an http.HandlerFunc. Any error returned by fn is rendered by RespondDomainError.
func Handle(logger *slog.Logger, fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			RespondDomainError(w, r, logger, err)
		}
	}
}

// RespondDomainError maps err to a status code and writes {"error": message}.
// Unclassified errors are logged and rendered as a generic 500 so no internals reach the client.
func RespondDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, message := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		logger.ErrorContext(r.Context(), "Request failed", "error", err)
	case status == http.StatusUnauthorized:
		logger.WarnContext(r.Context(), "Unauthorized request", "path", r.URL.Path)
	default:
		logger.DebugContext(r.Context(), "Request rejected", "status", status, "error", err)
	}
	web.RespondError(w, logger, status, message)
}

func mapError(err error) (int, string) {
	var domainErr *producterrors.Error
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError, serverErrorMessage
	}
	switch domainErr.Kind {
	case producterrors.KindNotFound:
		return http.StatusNotFound, domainErr.Message
	case producterrors.KindInvalidPayload:
		return http.StatusBadRequest, domainErr.Message
	case producterrors.KindUnauthorized:
		return http.StatusUnauthorized, "Unauthorized"
	default:
		if domainErr.Message == "" {
			return http.StatusInternalServerError, serverErrorMessage
		}
		return http.StatusInternalServerError, domainErr.Message
	}
}
