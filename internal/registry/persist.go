package registry

import (
	"context"
	"time"

	"github.com/giantswarm/mcp-gateway/internal/model"
)

// PersistedTemplate is the durable representation of a Template: its
// load-balancer configuration plus its instances.
type PersistedTemplate struct {
	Description  string
	LoadBalancer model.LoadBalancerConfig
	Instances    []*model.Instance
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Catalogue is the full durable state of the Registry Store.
type Catalogue struct {
	Templates   map[string]PersistedTemplate
	LastUpdated time.Time
}

// PersistLayer is the small interface the dual-persistence design note asks
// for: a Store is wired with exactly one implementation at init.
type PersistLayer interface {
	// Save durably writes the full catalogue. Implementations must not
	// require I/O under the Store's mutation lock to complete — the Store
	// calls Save after releasing its lock using a just-built Catalogue
	// value that no other goroutine can mutate concurrently.
	Save(ctx context.Context, cat Catalogue) error
	// Load reads the catalogue at startup. A missing catalogue (first run)
	// returns an empty Catalogue and a nil error.
	Load(ctx context.Context) (Catalogue, error)
	// Close releases any resources (file handles, DB connections).
	Close() error
}
