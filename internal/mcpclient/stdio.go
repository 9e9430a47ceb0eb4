package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/client"

	"github.com/giantswarm/mcp-gateway/pkg/logging"
)

func envSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	return out
}

func spawnStdioClient(ctx context.Context, command []string, workingDir string, env map[string]string) (client.MCPClient, error) {
	if len(command) == 0 {
		return nil, &TransportError{Reason: "stdio transport has an empty command"}
	}

	// mark3labs/mcp-go's stdio client does not take a working directory
	// directly. A non-empty workingDir is passed only as a PWD entry in the
	// subprocess environment; the subprocess itself still starts in the
	// gateway's own working directory.
	args := command[1:]
	envStrings := envSlice(env)
	if workingDir != "" {
		envStrings = append(envStrings, "PWD="+workingDir)
	}

	c, err := client.NewStdioMCPClient(command[0], envStrings, args...)
	if err != nil {
		return nil, &TransportError{Reason: "spawn stdio subprocess", Err: err}
	}
	if err := initializeSession(ctx, c); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// stdioPool is a bounded, lazily-filled pool of live stdio MCP sessions
// for one template. Acquire blocks once poolSize sessions are in flight;
// a dead session is discarded rather than returned to the pool.
type stdioPool struct {
	command    []string
	workingDir string
	env        map[string]string
	poolSize   int

	mu      sync.Mutex
	spawned int
	idle    chan client.MCPClient
}

func newStdioPool(command []string, workingDir string, env map[string]string, poolSize int) *stdioPool {
	if poolSize <= 0 {
		poolSize = 1
	}
	return &stdioPool{
		command:    command,
		workingDir: workingDir,
		env:        env,
		poolSize:   poolSize,
		idle:       make(chan client.MCPClient, poolSize),
	}
}

func (p *stdioPool) acquire(ctx context.Context) (client.MCPClient, error) {
	select {
	case c := <-p.idle:
		return c, nil
	default:
	}

	p.mu.Lock()
	if p.spawned < p.poolSize {
		p.spawned++
		p.mu.Unlock()
		c, err := spawnStdioClient(ctx, p.command, p.workingDir, p.env)
		if err != nil {
			p.mu.Lock()
			p.spawned--
			p.mu.Unlock()
			return nil, err
		}
		return c, nil
	}
	p.mu.Unlock()

	select {
	case c := <-p.idle:
		return c, nil
	case <-ctx.Done():
		return nil, &TransportError{Reason: "stdio pool exhausted", Err: ctx.Err()}
	}
}

// release returns c to the pool, or discards and decrements the spawned
// count if dead is true or the pool is already full.
func (p *stdioPool) release(c client.MCPClient, dead bool) {
	if dead {
		_ = c.Close()
		p.mu.Lock()
		p.spawned--
		p.mu.Unlock()
		return
	}
	select {
	case p.idle <- c:
	default:
		_ = c.Close()
		p.mu.Lock()
		p.spawned--
		p.mu.Unlock()
	}
}

func (p *stdioPool) closeAll() {
	for {
		select {
		case c := <-p.idle:
			_ = c.Close()
		default:
			return
		}
	}
}

// Dispatcher owns one stdioPool per template and the ephemeral dispatch
// path used by the router's fallback.
type Dispatcher struct {
	mu    sync.Mutex
	pools map[string]*stdioPool
}

// NewDispatcher constructs a Dispatcher with no pools yet created.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{pools: make(map[string]*stdioPool)}
}

func (d *Dispatcher) poolFor(templateName string, command []string, workingDir string, env map[string]string, poolSize int) *stdioPool {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pools[templateName]
	if !ok {
		p = newStdioPool(command, workingDir, env, poolSize)
		d.pools[templateName] = p
	}
	return p
}

// DispatchStdio acquires a pooled subprocess for templateName, issues one
// call, and returns the subprocess to the pool. A dead subprocess is
// discarded and not returned.
func (d *Dispatcher) DispatchStdio(ctx context.Context, templateName string, poolSize int, command []string, workingDir string, env map[string]string, method string, params map[string]interface{}) (json.RawMessage, error) {
	pool := d.poolFor(templateName, command, workingDir, env, poolSize)

	c, err := pool.acquire(ctx)
	if err != nil {
		return nil, err
	}

	result, err := dispatch(ctx, c, method, params)
	dead := isDeadConnection(err)
	pool.release(c, dead)
	return result, err
}

// DispatchStdioEphemeral spawns a fresh stdio subprocess for exactly one
// call and terminates it afterward. This is the router's fallback for
// templates with no registered instances.
func DispatchStdioEphemeral(ctx context.Context, command []string, workingDir string, env map[string]string, method string, params map[string]interface{}) (json.RawMessage, error) {
	c, err := spawnStdioClient(ctx, command, workingDir, env)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := c.Close(); closeErr != nil {
			logging.Debug("MCPClient", "error closing ephemeral stdio client: %v", closeErr)
		}
	}()

	return dispatch(ctx, c, method, params)
}

func isDeadConnection(err error) bool {
	var transportErr *TransportError
	return err != nil && asTransportError(err, &transportErr)
}

func asTransportError(err error, target **TransportError) bool {
	te, ok := err.(*TransportError)
	if ok {
		*target = te
	}
	return ok
}

// Shutdown tears down every pooled subprocess. Call once at gateway
// shutdown.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.pools {
		p.closeAll()
	}
}
