package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/giantswarm/mcp-gateway/internal/model"
	"github.com/giantswarm/mcp-gateway/pkg/logging"
)

// snapshotDocument mirrors the on-disk JSON snapshot format:
//
//	{"servers": {<template>: {"instances": [...], "load_balancer": {...}}}, "last_updated": <ISO-8601>}
type snapshotDocument struct {
	Servers     map[string]snapshotTemplate `json:"servers"`
	LastUpdated time.Time                   `json:"last_updated"`
}

type snapshotTemplate struct {
	Description  string                 `json:"description,omitempty"`
	Instances    []*model.Instance      `json:"instances"`
	LoadBalancer snapshotLoadBalancer   `json:"load_balancer"`
}

type snapshotLoadBalancer struct {
	Strategy               model.Strategy `json:"strategy"`
	HealthCheckIntervalSec int            `json:"health_check_interval_sec"`
	MaxRetries             int            `json:"max_retries"`
	PoolSize               int            `json:"pool_size"`
	TimeoutSec             int            `json:"timeout_sec"`
}

// FileSnapshotPersistence is the fallback PersistLayer used when no
// relational store is configured. Every Save is atomic: it writes to
// "<path>.tmp", fsyncs, then renames over the target, so a reader never
// observes a partially written file.
type FileSnapshotPersistence struct {
	mu   sync.Mutex
	path string
}

// NewFileSnapshotPersistence creates a file-backed PersistLayer rooted at
// path. The parent directory must exist.
func NewFileSnapshotPersistence(path string) *FileSnapshotPersistence {
	return &FileSnapshotPersistence{path: path}
}

// Save atomically rewrites the snapshot file with cat.
func (f *FileSnapshotPersistence) Save(_ context.Context, cat Catalogue) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc := snapshotDocument{
		Servers:     make(map[string]snapshotTemplate, len(cat.Templates)),
		LastUpdated: cat.LastUpdated,
	}
	for name, tmpl := range cat.Templates {
		doc.Servers[name] = snapshotTemplate{
			Description: tmpl.Description,
			Instances:   tmpl.Instances,
			LoadBalancer: snapshotLoadBalancer{
				Strategy:               tmpl.LoadBalancer.Strategy,
				HealthCheckIntervalSec: tmpl.LoadBalancer.HealthCheckIntervalSec,
				MaxRetries:             tmpl.LoadBalancer.MaxRetries,
				PoolSize:               tmpl.LoadBalancer.PoolSize,
				TimeoutSec:             tmpl.LoadBalancer.TimeoutSec,
			},
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmpPath := f.path + ".tmp"
	tmpFile, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create temp snapshot file: %w", err)
	}
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("write temp snapshot file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("fsync temp snapshot file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp snapshot file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("rename snapshot into place: %w", err)
	}
	return nil
}

// Load reads the snapshot file. A missing file starts empty; a corrupt
// file is logged and also starts empty.
func (f *FileSnapshotPersistence) Load(_ context.Context) (Catalogue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	empty := Catalogue{Templates: map[string]PersistedTemplate{}}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return empty, nil
		}
		return empty, fmt.Errorf("read snapshot file: %w", err)
	}

	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		logging.Error("Registry", err, "corrupt snapshot file %s, starting with an empty catalogue", f.path)
		return empty, nil
	}

	cat := Catalogue{Templates: make(map[string]PersistedTemplate, len(doc.Servers)), LastUpdated: doc.LastUpdated}
	for name, st := range doc.Servers {
		lb := model.LoadBalancerConfig{
			Strategy:               st.LoadBalancer.Strategy,
			HealthCheckIntervalSec: st.LoadBalancer.HealthCheckIntervalSec,
			MaxRetries:             st.LoadBalancer.MaxRetries,
			PoolSize:               st.LoadBalancer.PoolSize,
			TimeoutSec:             st.LoadBalancer.TimeoutSec,
		}
		if lb.Strategy == "" {
			lb = model.DefaultLoadBalancerConfig()
		}
		cat.Templates[name] = PersistedTemplate{
			Description:  st.Description,
			LoadBalancer: lb,
			Instances:    st.Instances,
		}
	}
	return cat, nil
}

// Close is a no-op for the file-backed layer; nothing stays open between calls.
func (f *FileSnapshotPersistence) Close() error { return nil }
