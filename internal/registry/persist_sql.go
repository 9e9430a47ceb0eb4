package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/giantswarm/mcp-gateway/internal/model"
)

// SQLPersistence is the relational-mode PersistLayer: templates and
// instances live in normalized tables behind database/sql, with
// modernc.org/sqlite as the pure-Go driver used for local and test
// deployments. Any database/sql driver that speaks the same schema works;
// only the driver name passed to Open need change.
type SQLPersistence struct {
	db *sql.DB
}

// OpenSQLPersistence opens (and migrates) a SQLPersistence against dsn, a
// database/sql data source name such as "file:/var/lib/mcp-gateway/gateway.db?_pragma=busy_timeout(5000)".
func OpenSQLPersistence(ctx context.Context, dsn string) (*SQLPersistence, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite serializes writers; avoid SQLITE_BUSY under concurrent mutation

	p := &SQLPersistence{db: db}
	if err := p.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *SQLPersistence) migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS templates (
	name TEXT PRIMARY KEY,
	description TEXT NOT NULL DEFAULT '',
	strategy TEXT NOT NULL,
	health_check_interval_sec INTEGER NOT NULL,
	max_retries INTEGER NOT NULL,
	pool_size INTEGER NOT NULL,
	timeout_sec INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS instances (
	id TEXT PRIMARY KEY,
	template_name TEXT NOT NULL REFERENCES templates(name) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	payload TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_instances_template ON instances(template_name, position);
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	admin INTEGER NOT NULL DEFAULT 0,
	active INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS api_keys (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	key_hash TEXT NOT NULL UNIQUE,
	scopes TEXT NOT NULL DEFAULT '',
	active INTEGER NOT NULL DEFAULT 1,
	expires_at TIMESTAMP,
	last_used_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL
);
`
	_, err := p.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Save replaces the templates/instances tables with cat in a single
// transaction. The users/api_keys tables are owned by internal/auth's own
// persistence calls against the same *sql.DB and are left untouched here.
func (p *SQLPersistence) Save(ctx context.Context, cat Catalogue) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM instances`); err != nil {
		return fmt.Errorf("clear instances: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM templates`); err != nil {
		return fmt.Errorf("clear templates: %w", err)
	}

	for name, tmpl := range cat.Templates {
		lb := tmpl.LoadBalancer
		_, err := tx.ExecContext(ctx, `
			INSERT INTO templates (name, description, strategy, health_check_interval_sec, max_retries, pool_size, timeout_sec, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			name, tmpl.Description, string(lb.Strategy), lb.HealthCheckIntervalSec, lb.MaxRetries, lb.PoolSize, lb.TimeoutSec,
			tmpl.CreatedAt, tmpl.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert template %s: %w", name, err)
		}

		for pos, inst := range tmpl.Instances {
			payload, err := json.Marshal(inst)
			if err != nil {
				return fmt.Errorf("marshal instance %s: %w", inst.ID, err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO instances (id, template_name, position, payload, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				inst.ID, name, pos, string(payload), inst.CreatedAt, inst.UpdatedAt)
			if err != nil {
				return fmt.Errorf("insert instance %s: %w", inst.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalogue: %w", err)
	}
	return nil
}

// Load reads the full catalogue back out of the templates/instances tables.
func (p *SQLPersistence) Load(ctx context.Context) (Catalogue, error) {
	cat := Catalogue{Templates: map[string]PersistedTemplate{}, LastUpdated: time.Now()}

	rows, err := p.db.QueryContext(ctx, `
		SELECT name, description, strategy, health_check_interval_sec, max_retries, pool_size, timeout_sec, created_at, updated_at
		FROM templates`)
	if err != nil {
		return cat, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name, description, strategy string
			interval, retries, pool, timeout int
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&name, &description, &strategy, &interval, &retries, &pool, &timeout, &createdAt, &updatedAt); err != nil {
			return cat, fmt.Errorf("scan template row: %w", err)
		}
		cat.Templates[name] = PersistedTemplate{
			Description: description,
			LoadBalancer: model.LoadBalancerConfig{
				Strategy:               model.Strategy(strategy),
				HealthCheckIntervalSec: interval,
				MaxRetries:             retries,
				PoolSize:               pool,
				TimeoutSec:             timeout,
			},
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		}
	}
	if err := rows.Err(); err != nil {
		return cat, fmt.Errorf("iterate template rows: %w", err)
	}

	instRows, err := p.db.QueryContext(ctx, `
		SELECT template_name, payload FROM instances ORDER BY template_name, position`)
	if err != nil {
		return cat, fmt.Errorf("query instances: %w", err)
	}
	defer instRows.Close()

	for instRows.Next() {
		var templateName, payload string
		if err := instRows.Scan(&templateName, &payload); err != nil {
			return cat, fmt.Errorf("scan instance row: %w", err)
		}
		var inst model.Instance
		if err := json.Unmarshal([]byte(payload), &inst); err != nil {
			return cat, fmt.Errorf("unmarshal instance payload: %w", err)
		}
		pt := cat.Templates[templateName]
		pt.Instances = append(pt.Instances, &inst)
		cat.Templates[templateName] = pt
	}
	if err := instRows.Err(); err != nil {
		return cat, fmt.Errorf("iterate instance rows: %w", err)
	}

	return cat, nil
}

// Close closes the underlying database handle.
func (p *SQLPersistence) Close() error {
	return p.db.Close()
}

// DB exposes the underlying handle so internal/auth can share the same
// database file for its users/api_keys tables without opening a second
// connection pool.
func (p *SQLPersistence) DB() *sql.DB {
	return p.db
}
