package httpapi

import (
	"errors"
	"net/http"

	"github.com/giantswarm/mcp-gateway/internal/auth"
	"github.com/giantswarm/mcp-gateway/internal/router"
)

// statusForRouteError maps a router.Error's Kind to an HTTP status.
func statusForRouteError(err error) int {
	var routeErr *router.Error
	if errors.As(err, &routeErr) {
		switch routeErr.Kind {
		case router.KindNotFound:
			return http.StatusNotFound
		case router.KindBadRequest:
			return http.StatusBadRequest
		case router.KindServiceUnavailable:
			return http.StatusServiceUnavailable
		case router.KindBadGateway:
			return http.StatusBadGateway
		case router.KindInternalError:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

// statusForAuthError maps a Gate error to the HTTP status table.
func statusForAuthError(err error) int {
	switch {
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusUnauthorized
	}
}

func writeRouteError(w http.ResponseWriter, err error) {
	writeError(w, statusForRouteError(err), err.Error())
}

func writeAuthError(w http.ResponseWriter, err error) {
	writeError(w, statusForAuthError(err), err.Error())
}
