package config

import "github.com/giantswarm/mcp-gateway/internal/backend"

// BuildBackendDriver converts the configured stdio allow-list into the one
// concrete backend.Driver this repository ships.
func BuildBackendDriver(entries []BackendEntry) *backend.StaticBackendDriver {
	templates := make([]backend.StdioTemplate, 0, len(entries))
	for _, e := range entries {
		templates = append(templates, backend.StdioTemplate{
			TemplateName: e.TemplateName,
			Command:      e.Command,
			WorkingDir:   e.WorkingDir,
			Env:          e.Env,
		})
	}
	return backend.NewStaticBackendDriver(templates)
}
