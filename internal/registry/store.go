package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/giantswarm/mcp-gateway/internal/model"
	"github.com/giantswarm/mcp-gateway/pkg/logging"
)

// Store is the in-memory Registry: the sole owner of Template and Instance
// state. All mutation happens through its methods; callers receive cloned
// values from its query methods and must call back into Store to persist
// any change.
type Store struct {
	mu sync.RWMutex

	templates map[string]*model.Template
	// order tracks per-template insertion order, since map iteration over
	// Template.Instances is not stable and round_robin/weighted selection
	// need a deterministic sequence.
	order map[string][]string

	persist  PersistLayer
	watchers []chan Event
}

// New constructs a Store backed by persist. It does not load state; call
// Load to hydrate from durable storage before serving traffic.
func New(persist PersistLayer) *Store {
	return &Store{
		templates: make(map[string]*model.Template),
		order:     make(map[string][]string),
		persist:   persist,
	}
}

// Load hydrates the Store from its PersistLayer. It runs at startup and
// again whenever the watched snapshot file changes: each persisted template
// replaces the in-memory template of the same name, and in-memory templates
// absent from the loaded catalogue are kept.
func (s *Store) Load(ctx context.Context) error {
	cat, err := s.persist.Load(ctx)
	if err != nil {
		return fmt.Errorf("load catalogue: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for name, pt := range cat.Templates {
		tmpl := &model.Template{
			Name:         name,
			Description:  pt.Description,
			LoadBalancer: pt.LoadBalancer,
			Instances:    make(map[string]*model.Instance, len(pt.Instances)),
			CreatedAt:    pt.CreatedAt,
			UpdatedAt:    pt.UpdatedAt,
		}
		order := make([]string, 0, len(pt.Instances))
		for _, inst := range pt.Instances {
			tmpl.Instances[inst.ID] = inst
			order = append(order, inst.ID)
		}
		s.templates[name] = tmpl
		s.order[name] = order
	}
	return nil
}

// snapshotLocked builds a Catalogue from the current state. Caller must
// hold at least a read lock.
func (s *Store) snapshotLocked() Catalogue {
	cat := Catalogue{
		Templates:   make(map[string]PersistedTemplate, len(s.templates)),
		LastUpdated: logging.Now(),
	}
	for name, tmpl := range s.templates {
		order := s.order[name]
		instances := make([]*model.Instance, 0, len(order))
		for _, id := range order {
			if inst, ok := tmpl.Instances[id]; ok {
				instances = append(instances, inst.Clone())
			}
		}
		cat.Templates[name] = PersistedTemplate{
			Description:  tmpl.Description,
			LoadBalancer: tmpl.LoadBalancer,
			Instances:    instances,
			CreatedAt:    tmpl.CreatedAt,
			UpdatedAt:    tmpl.UpdatedAt,
		}
	}
	return cat
}

// persistNow saves the current catalogue. Failures are logged and
// returned; the in-memory state is never rolled back for a persist
// failure, matching invariant: in-memory state is authoritative.
func (s *Store) persistNow(ctx context.Context) error {
	s.mu.RLock()
	cat := s.snapshotLocked()
	s.mu.RUnlock()

	if err := s.persist.Save(ctx, cat); err != nil {
		logging.Error("Registry", err, "failed to persist catalogue")
		return fmt.Errorf("persist catalogue: %w", err)
	}
	return nil
}

// Register adds inst under templateName, creating the template with
// default load-balancer config if this is its first instance. Registering
// an ID that already exists under the SAME template updates that record
// in place; registering an ID already claimed by a DIFFERENT template is
// rejected (instance IDs are unique across the whole catalogue).
func (s *Store) Register(ctx context.Context, templateName string, inst *model.Instance) error {
	if err := inst.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	for name, tmpl := range s.templates {
		if name == templateName {
			continue
		}
		if _, exists := tmpl.Instances[inst.ID]; exists {
			s.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrInstanceExists, inst.ID)
		}
	}

	tmpl, ok := s.templates[templateName]
	if !ok {
		tmpl = model.NewTemplate(templateName)
		s.templates[templateName] = tmpl
	}

	now := logging.Now()
	if inst.CreatedAt.IsZero() {
		inst.CreatedAt = now
	}
	inst.UpdatedAt = now
	if inst.Status == "" {
		inst.Status = model.StatusUnknown
	}
	inst.TemplateName = templateName

	_, existed := tmpl.Instances[inst.ID]
	tmpl.Instances[inst.ID] = inst
	tmpl.UpdatedAt = now
	if !existed {
		s.order[templateName] = append(s.order[templateName], inst.ID)
	}
	s.mu.Unlock()

	s.publish(Event{Kind: EventInstanceRegistered, TemplateName: templateName, InstanceID: inst.ID})
	return s.persistNow(ctx)
}

// Deregister removes an instance. If it was the template's last instance,
// the template itself is dropped (invariant: templates live exactly as
// long as they hold at least one instance).
func (s *Store) Deregister(ctx context.Context, templateName, instanceID string) error {
	s.mu.Lock()
	tmpl, ok := s.templates[templateName]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, templateName)
	}
	if _, ok := tmpl.Instances[instanceID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInstanceNotFound, instanceID)
	}

	delete(tmpl.Instances, instanceID)
	s.order[templateName] = removeID(s.order[templateName], instanceID)

	templateRemoved := len(tmpl.Instances) == 0
	if templateRemoved {
		delete(s.templates, templateName)
		delete(s.order, templateName)
	} else {
		tmpl.UpdatedAt = logging.Now()
	}
	s.mu.Unlock()

	s.publish(Event{Kind: EventInstanceDeregistered, TemplateName: templateName, InstanceID: instanceID})
	if templateRemoved {
		s.publish(Event{Kind: EventTemplateRemoved, TemplateName: templateName})
	}
	return s.persistNow(ctx)
}

func removeID(ids []string, target string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// GetTemplate returns a snapshot of a template, including its instances in
// registration order.
func (s *Store) GetTemplate(name string) (*model.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmpl, ok := s.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	return cloneTemplate(tmpl, s.order[name]), nil
}

func cloneTemplate(tmpl *model.Template, order []string) *model.Template {
	clone := &model.Template{
		Name:         tmpl.Name,
		Description:  tmpl.Description,
		LoadBalancer: tmpl.LoadBalancer,
		Instances:    make(map[string]*model.Instance, len(tmpl.Instances)),
		CreatedAt:    tmpl.CreatedAt,
		UpdatedAt:    tmpl.UpdatedAt,
	}
	for _, id := range order {
		if inst, ok := tmpl.Instances[id]; ok {
			clone.Instances[id] = inst.Clone()
		}
	}
	return clone
}

// GetInstance returns a clone of a single instance.
func (s *Store) GetInstance(templateName, instanceID string) (*model.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmpl, ok := s.templates[templateName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateName)
	}
	inst, ok := tmpl.Instances[instanceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInstanceNotFound, instanceID)
	}
	return inst.Clone(), nil
}

// ListInstances returns a template's instances in registration order.
func (s *Store) ListInstances(templateName string) ([]*model.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmpl, ok := s.templates[templateName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateName)
	}
	order := s.order[templateName]
	out := make([]*model.Instance, 0, len(order))
	for _, id := range order {
		if inst, ok := tmpl.Instances[id]; ok {
			out = append(out, inst.Clone())
		}
	}
	return out, nil
}

// ListAllInstances returns every instance across every template, grouped
// by no particular cross-template order (each template's own instances
// stay in registration order).
func (s *Store) ListAllInstances() []*model.Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Instance
	for name, tmpl := range s.templates {
		for _, id := range s.order[name] {
			if inst, ok := tmpl.Instances[id]; ok {
				out = append(out, inst.Clone())
			}
		}
	}
	return out
}

// ListTemplates returns every template, each with its instances in
// registration order.
func (s *Store) ListTemplates() []*model.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Template, 0, len(s.templates))
	for name, tmpl := range s.templates {
		out = append(out, cloneTemplate(tmpl, s.order[name]))
	}
	return out
}

// GetHealthyInstances returns a template's healthy, active instances in
// registration order — the candidate pool the Load Balancer and Router
// select from.
func (s *Store) GetHealthyInstances(templateName string) ([]*model.Instance, error) {
	all, err := s.ListInstances(templateName)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Instance, 0, len(all))
	for _, inst := range all {
		if inst.IsActive && inst.Status == model.StatusHealthy {
			out = append(out, inst)
		}
	}
	return out, nil
}

// UpdateInstanceHealth is the only mutation the health checker is allowed
// to perform: it writes status, consecutive_failures, and
// last_health_check and nothing else.
func (s *Store) UpdateInstanceHealth(ctx context.Context, templateName, instanceID string, status model.Status, consecutiveFailures int) error {
	s.mu.Lock()
	tmpl, ok := s.templates[templateName]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, templateName)
	}
	inst, ok := tmpl.Instances[instanceID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInstanceNotFound, instanceID)
	}

	now := logging.Now()
	inst.Status = status
	inst.ConsecutiveFailures = consecutiveFailures
	inst.LastHealthCheck = &now
	inst.UpdatedAt = now
	s.mu.Unlock()

	s.publish(Event{Kind: EventInstanceHealthUpdate, TemplateName: templateName, InstanceID: instanceID})
	return s.persistNow(ctx)
}

// ClearUnhealthy deregisters every instance whose consecutive failure
// count has reached maxFailures, returning the number removed.
func (s *Store) ClearUnhealthy(ctx context.Context, maxFailures int) (int, error) {
	s.mu.RLock()
	type key struct{ template, instance string }
	var victims []key
	for name, tmpl := range s.templates {
		for id, inst := range tmpl.Instances {
			if inst.Status == model.StatusUnhealthy && inst.ConsecutiveFailures >= maxFailures {
				victims = append(victims, key{name, id})
			}
		}
	}
	s.mu.RUnlock()

	for _, v := range victims {
		if err := s.Deregister(ctx, v.template, v.instance); err != nil {
			logging.Error("Registry", err, "failed to clear unhealthy instance %s/%s", v.template, v.instance)
		}
	}
	return len(victims), nil
}

// Close releases the underlying PersistLayer's resources.
func (s *Store) Close() error {
	return s.persist.Close()
}
