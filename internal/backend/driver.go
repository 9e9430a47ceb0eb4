package backend

import "context"

// Driver answers the one question the Request Router needs about a
// template it found no healthy instances for: can it be reached via a
// stdio fallback at all?
type Driver interface {
	SupportsStdio(ctx context.Context, templateName string) (bool, error)
}

// StdioTemplate is a single entry in a StaticBackendDriver's allow-list:
// the command used to spawn an ephemeral stdio session for templateName.
type StdioTemplate struct {
	TemplateName string
	Command      []string
	WorkingDir   string
	Env          map[string]string
}

// StaticBackendDriver is a config-driven Driver: an operator lists, in the
// gateway's configuration file, which templates may fall back to a
// statically-known stdio command. It never spawns or manages anything
// itself — that remains the Request Router's and MCP Client Layer's job.
type StaticBackendDriver struct {
	templates map[string]StdioTemplate
}

// NewStaticBackendDriver builds a driver from a fixed allow-list.
func NewStaticBackendDriver(entries []StdioTemplate) *StaticBackendDriver {
	templates := make(map[string]StdioTemplate, len(entries))
	for _, e := range entries {
		templates[e.TemplateName] = e
	}
	return &StaticBackendDriver{templates: templates}
}

// SupportsStdio reports whether templateName is in the allow-list.
func (d *StaticBackendDriver) SupportsStdio(_ context.Context, templateName string) (bool, error) {
	_, ok := d.templates[templateName]
	return ok, nil
}

// Lookup returns the stdio command configured for templateName, if any.
func (d *StaticBackendDriver) Lookup(templateName string) (StdioTemplate, bool) {
	t, ok := d.templates[templateName]
	return t, ok
}

var _ Driver = (*StaticBackendDriver)(nil)
