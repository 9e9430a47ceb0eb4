package mcpclient

import "context"

// Transport is the collaborator contract the Request Router dispatches
// through. Two free functions (DispatchHTTP, DispatchStdioEphemeral) and
// one stateful type (*Dispatcher, for pooled stdio) implement it from the
// router's point of view; Transport exists so router code can depend on
// an interface instead of three free functions wired ad hoc.
type Transport interface {
	DispatchHTTP(ctx context.Context, endpoint, method string, params map[string]interface{}) ([]byte, error)
	DispatchStdio(ctx context.Context, templateName string, poolSize int, command []string, workingDir string, env map[string]string, method string, params map[string]interface{}) ([]byte, error)
	DispatchStdioEphemeral(ctx context.Context, command []string, workingDir string, env map[string]string, method string, params map[string]interface{}) ([]byte, error)
}

// Layer adapts package-level DispatchHTTP/DispatchStdioEphemeral and a
// *Dispatcher's pooled DispatchStdio into the single Transport interface
// the router depends on.
type Layer struct {
	dispatcher *Dispatcher
}

// NewLayer constructs a Layer backed by a fresh Dispatcher (and therefore
// a fresh set of stdio pools).
func NewLayer() *Layer {
	return &Layer{dispatcher: NewDispatcher()}
}

func (l *Layer) DispatchHTTP(ctx context.Context, endpoint, method string, params map[string]interface{}) ([]byte, error) {
	return DispatchHTTP(ctx, endpoint, method, params)
}

func (l *Layer) DispatchStdio(ctx context.Context, templateName string, poolSize int, command []string, workingDir string, env map[string]string, method string, params map[string]interface{}) ([]byte, error) {
	return l.dispatcher.DispatchStdio(ctx, templateName, poolSize, command, workingDir, env, method, params)
}

func (l *Layer) DispatchStdioEphemeral(ctx context.Context, command []string, workingDir string, env map[string]string, method string, params map[string]interface{}) ([]byte, error) {
	return DispatchStdioEphemeral(ctx, command, workingDir, env, method, params)
}

// Shutdown tears down every pooled stdio subprocess.
func (l *Layer) Shutdown() {
	l.dispatcher.Shutdown()
}

var _ Transport = (*Layer)(nil)
