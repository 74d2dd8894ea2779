// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	// PostgreSQL 驱动
	_ "github.com/lib/pq"
)

// PostgreSQL is the raw database/sql implementation of Store. Every path is
// one row; the value column is jsonb.
type PostgreSQL struct {
	db       *sql.DB
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db, stopChan: make(chan struct{})}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS store_entries (
            path VARCHAR(512) PRIMARY KEY,
            parent VARCHAR(512) NOT NULL,
            child_key VARCHAR(255) NOT NULL,
            value JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_store_entries_parent
        ON store_entries (parent, created_at)
    `)
	return err
}

func (p *PostgreSQL) Get(ctx context.Context, path string) (map[string]interface{}, error) {
	var raw []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT value FROM store_entries WHERE path = $1`, path).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrPathNotFound
	}
	if err != nil {
		return nil, err
	}

	var value map[string]interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return value, nil
}

func (p *PostgreSQL) Set(ctx context.Context, path string, value interface{}) error {
	obj, err := normalize(value)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	parent, key := splitPath(path)
	_, err = p.db.ExecContext(ctx, `
        INSERT INTO store_entries (path, parent, child_key, value)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (path)
        DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP`,
		path, parent, key, raw)
	return err
}

func (p *PostgreSQL) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	obj, err := normalize(fields)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	parent, key := splitPath(path)
	// jsonb || merges the partial fields over the stored object.
	_, err = p.db.ExecContext(ctx, `
        INSERT INTO store_entries (path, parent, child_key, value)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (path)
        DO UPDATE SET value = store_entries.value || EXCLUDED.value,
                      updated_at = CURRENT_TIMESTAMP`,
		path, parent, key, raw)
	return err
}

func (p *PostgreSQL) Delete(ctx context.Context, path string) error {
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM store_entries WHERE path = $1 OR path LIKE $2`,
		path, path+"/%")
	return err
}

func (p *PostgreSQL) Push(ctx context.Context, path string, value interface{}) (string, error) {
	key := uuid.New().String()
	if err := p.Set(ctx, path+"/"+key, value); err != nil {
		return "", err
	}
	return key, nil
}

// SubscribeChildAdded polls for new children. SQL backends have no change
// feed, so a short poll interval stands in for one.
func (p *PostgreSQL) SubscribeChildAdded(ctx context.Context, path string, limit int, fn ChildAddedFunc) (Unsubscribe, error) {
	lastSeen, err := p.replay(ctx, path, limit, fn)
	if err != nil {
		return nil, err
	}

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()

		since := lastSeen
		for {
			select {
			case <-stop:
				return
			case <-p.stopChan:
				return
			case <-ticker.C:
				next, err := p.pollSince(context.Background(), path, since, fn)
				if err != nil {
					continue
				}
				since = next
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(stop) }) }, nil
}

func (p *PostgreSQL) replay(ctx context.Context, path string, limit int, fn ChildAddedFunc) (time.Time, error) {
	rows, err := p.db.QueryContext(ctx, `
        SELECT child_key, value, created_at FROM (
            SELECT child_key, value, created_at
            FROM store_entries WHERE parent = $1
            ORDER BY created_at DESC LIMIT $2
        ) recent ORDER BY created_at ASC`,
		path, limit)
	if err != nil {
		return time.Time{}, err
	}
	defer rows.Close()

	var lastSeen time.Time
	for rows.Next() {
		var (
			key       string
			raw       []byte
			createdAt time.Time
		)
		if err := rows.Scan(&key, &raw, &createdAt); err != nil {
			return lastSeen, err
		}
		var value map[string]interface{}
		if err := json.Unmarshal(raw, &value); err != nil {
			continue
		}
		fn(key, value)
		lastSeen = createdAt
	}
	return lastSeen, rows.Err()
}

func (p *PostgreSQL) pollSince(ctx context.Context, path string, since time.Time, fn ChildAddedFunc) (time.Time, error) {
	rows, err := p.db.QueryContext(ctx, `
        SELECT child_key, value, created_at
        FROM store_entries WHERE parent = $1 AND created_at > $2
        ORDER BY created_at ASC`,
		path, since)
	if err != nil {
		return since, err
	}
	defer rows.Close()

	last := since
	for rows.Next() {
		var (
			key       string
			raw       []byte
			createdAt time.Time
		)
		if err := rows.Scan(&key, &raw, &createdAt); err != nil {
			return last, err
		}
		var value map[string]interface{}
		if err := json.Unmarshal(raw, &value); err != nil {
			continue
		}
		fn(key, value)
		last = createdAt
	}
	return last, rows.Err()
}

func (p *PostgreSQL) Close() error {
	p.stopOnce.Do(func() { close(p.stopChan) })
	return p.db.Close()
}
