package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the liveness state of an Instance as maintained by the health
// checker.
type Status string

const (
	StatusUnknown   Status = "unknown"
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Backend is an informational tag naming what launched an instance. The
// gateway never acts on this value beyond surfacing it; the out-of-scope
// Backend Driver owns the real lifecycle.
type Backend string

const (
	BackendDocker     Backend = "docker"
	BackendKubernetes Backend = "kubernetes"
	BackendLocal      Backend = "local"
	BackendMock       Backend = "mock"
)

// Instance is one concrete backend process/endpoint that speaks MCP,
// grouped under a Template. Validate enforces only the invariants checkable
// in isolation (field-level shape); cross-instance invariants like name
// uniqueness and immutability of TemplateName after registration are
// enforced by the Registry, which owns cross-instance state.
type Instance struct {
	ID           string
	TemplateName string
	Transport    Transport
	Backend      Backend
	Name         string // human label; defaults to ID when empty
	Tags         []string
	Status       Status
	ConsecutiveFailures int
	LastHealthCheck     *time.Time
	IsActive            bool
	Metadata            map[string]interface{}
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Validate checks the invariants an Instance must satisfy on its own,
// independent of the rest of the catalogue.
func (i *Instance) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInstance)
	}
	if i.TemplateName == "" {
		return fmt.Errorf("%w: template_name is required", ErrInvalidInstance)
	}
	if i.Transport == nil {
		return fmt.Errorf("%w: transport is required", ErrInvalidInstance)
	}
	if err := i.Transport.Validate(); err != nil {
		return err
	}
	if i.ConsecutiveFailures < 0 {
		return fmt.Errorf("%w: consecutive_failures must be >= 0", ErrInvalidInstance)
	}
	return nil
}

// DisplayName returns Name if set, otherwise ID.
func (i *Instance) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.ID
}

// Weight returns the weighted-strategy weight carried in Metadata,
// defaulting to 1 when absent or not a usable numeric type.
func (i *Instance) Weight() int {
	if i.Metadata == nil {
		return 1
	}
	raw, ok := i.Metadata["weight"]
	if !ok {
		return 1
	}
	switch v := raw.(type) {
	case int:
		if v > 0 {
			return v
		}
	case int64:
		if v > 0 {
			return int(v)
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	}
	return 1
}

// Clone returns a deep-enough copy safe to hand to a caller outside the
// registry's lock: mutable reference fields (Tags, Metadata, transport
// slices/maps) are copied rather than shared.
func (i *Instance) Clone() *Instance {
	if i == nil {
		return nil
	}
	clone := *i
	if i.Tags != nil {
		clone.Tags = append([]string(nil), i.Tags...)
	}
	if i.Metadata != nil {
		clone.Metadata = make(map[string]interface{}, len(i.Metadata))
		for k, v := range i.Metadata {
			clone.Metadata[k] = v
		}
	}
	if i.LastHealthCheck != nil {
		t := *i.LastHealthCheck
		clone.LastHealthCheck = &t
	}
	switch tr := i.Transport.(type) {
	case HTTPTransport:
		clone.Transport = tr
	case StdioTransport:
		cp := tr
		if tr.Command != nil {
			cp.Command = append([]string(nil), tr.Command...)
		}
		if tr.Env != nil {
			cp.Env = make(map[string]string, len(tr.Env))
			for k, v := range tr.Env {
				cp.Env[k] = v
			}
		}
		clone.Transport = cp
	}
	return &clone
}

// instanceJSON mirrors the field names used by the JSON snapshot format,
// flattening the tagged Transport variant into the
// "transport"/"endpoint"/"command"/"working_dir"/"env_vars" keys a reader
// written in any language can parse.
type instanceJSON struct {
	ID                  string                 `json:"id"`
	TemplateName        string                 `json:"template_name"`
	Transport           TransportKind          `json:"transport"`
	Endpoint            string                 `json:"endpoint,omitempty"`
	Command             []string               `json:"command,omitempty"`
	WorkingDir          string                 `json:"working_dir,omitempty"`
	EnvVars             map[string]string      `json:"env_vars,omitempty"`
	Backend             Backend                `json:"backend,omitempty"`
	Name                string                 `json:"name,omitempty"`
	Tags                []string               `json:"tags,omitempty"`
	Status              Status                 `json:"status"`
	ConsecutiveFailures int                    `json:"consecutive_failures"`
	LastHealthCheck     *time.Time             `json:"last_health_check,omitempty"`
	IsActive            bool                   `json:"is_active"`
	Metadata            map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// MarshalJSON implements the flattened persisted representation.
func (i Instance) MarshalJSON() ([]byte, error) {
	j := instanceJSON{
		ID:                  i.ID,
		TemplateName:        i.TemplateName,
		Backend:             i.Backend,
		Name:                i.Name,
		Tags:                i.Tags,
		Status:              i.Status,
		ConsecutiveFailures: i.ConsecutiveFailures,
		LastHealthCheck:     i.LastHealthCheck,
		IsActive:            i.IsActive,
		Metadata:            i.Metadata,
		CreatedAt:           i.CreatedAt,
		UpdatedAt:           i.UpdatedAt,
	}
	switch tr := i.Transport.(type) {
	case HTTPTransport:
		j.Transport = TransportHTTP
		j.Endpoint = tr.Endpoint
	case StdioTransport:
		j.Transport = TransportStdio
		j.Command = tr.Command
		j.WorkingDir = tr.WorkingDir
		j.EnvVars = tr.Env
	}
	return json.Marshal(j)
}

// UnmarshalJSON rebuilds the tagged Transport variant from the flattened
// persisted representation.
func (i *Instance) UnmarshalJSON(data []byte) error {
	var j instanceJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*i = Instance{
		ID:                  j.ID,
		TemplateName:        j.TemplateName,
		Backend:             j.Backend,
		Name:                j.Name,
		Tags:                j.Tags,
		Status:              j.Status,
		ConsecutiveFailures: j.ConsecutiveFailures,
		LastHealthCheck:     j.LastHealthCheck,
		IsActive:            j.IsActive,
		Metadata:            j.Metadata,
		CreatedAt:           j.CreatedAt,
		UpdatedAt:           j.UpdatedAt,
	}
	if i.Backend == "" {
		i.Backend = BackendLocal
	}
	if i.Status == "" {
		i.Status = StatusUnknown
	}
	switch j.Transport {
	case TransportStdio:
		i.Transport = StdioTransport{Command: j.Command, WorkingDir: j.WorkingDir, Env: j.EnvVars}
	default:
		i.Transport = HTTPTransport{Endpoint: j.Endpoint}
	}
	return nil
}
