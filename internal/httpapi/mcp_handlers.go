package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
)

// decodeParams reads request parameters for an MCP call. POST requests with
// a body are decoded as a JSON object; GET requests (and POST requests with
// no body) yield params built from the query string.
func decodeParams(r *http.Request) (map[string]interface{}, error) {
	if r.Method == http.MethodPost {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		if len(body) > 0 {
			var params map[string]interface{}
			if err := json.Unmarshal(body, &params); err != nil {
				return nil, err
			}
			return params, nil
		}
	}

	params := map[string]interface{}{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params, nil
}

func (s *Server) mcpMethodHandler(method string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		template := r.PathValue("template")
		params, err := decodeParams(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
			return
		}

		principal := principalFromContext(r.Context())
		result, err := s.router.Route(r.Context(), template, method, params, principal)
		if err != nil {
			writeRouteError(w, err)
			return
		}
		writeRaw(w, http.StatusOK, result)
	}
}

// handleTemplateHealth reports the registered instances for one template
// and their current status, without going through the Request Router (a
// health check must never trigger a dispatch or a stdio fallback).
func (s *Server) handleTemplateHealth(w http.ResponseWriter, r *http.Request) {
	template := r.PathValue("template")
	tmpl, err := s.registry.GetTemplate(template)
	if err != nil {
		writeError(w, http.StatusNotFound, "template not found: "+template)
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}
