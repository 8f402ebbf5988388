package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// FileStore keeps the credentials in a JSON file readable only by the
// current user.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load(ctx context.Context) (Credentials, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Credentials{}, ErrNoSession
	}
	if err != nil {
		return Credentials{}, err
	}
	var c Credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return Credentials{}, fmt.Errorf("decode %s: %w", f.path, err)
	}
	if c.Token == "" {
		return Credentials{}, ErrNoSession
	}
	return c, nil
}

func (f *FileStore) Save(ctx context.Context, c Credentials) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RedisStore keeps the credentials under one key.
type RedisStore struct {
	rdb *redis.Client
	key string
}

func NewRedisStore(rdb *redis.Client, name string) *RedisStore {
	return &RedisStore{rdb: rdb, key: "storefront:session:" + name}
}

func (r *RedisStore) Load(ctx context.Context) (Credentials, error) {
	b, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Credentials{}, ErrNoSession
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	var c Credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return Credentials{}, fmt.Errorf("decode %s: %w", r.key, err)
	}
	return c, nil
}

func (r *RedisStore) Save(ctx context.Context, c Credentials) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.key, b, 0).Err()
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.rdb.Del(ctx, r.key).Err()
}

// PostgresStore keeps the credentials as one row of storefront_sessions.
type PostgresStore struct {
	pool *pgxpool.Pool
	name string
}

func NewPostgresStore(pool *pgxpool.Pool, name string) *PostgresStore {
	return &PostgresStore{pool: pool, name: name}
}

func (p *PostgresStore) Load(ctx context.Context) (Credentials, error) {
	var (
		c        Credentials
		userJSON []byte
	)
	err := p.pool.QueryRow(ctx,
		`SELECT token, user_json FROM storefront_sessions WHERE name = $1`, p.name,
	).Scan(&c.Token, &userJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credentials{}, ErrNoSession
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("load session row: %w", err)
	}
	if err := json.Unmarshal(userJSON, &c.User); err != nil {
		return Credentials{}, fmt.Errorf("decode session user: %w", err)
	}
	return c, nil
}

func (p *PostgresStore) Save(ctx context.Context, c Credentials) error {
	userJSON, err := json.Marshal(c.User)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO storefront_sessions (name, token, user_json, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (name) DO UPDATE
		SET token = EXCLUDED.token, user_json = EXCLUDED.user_json, updated_at = NOW()`,
		p.name, c.Token, userJSON,
	)
	if err != nil {
		return fmt.Errorf("save session row: %w", err)
	}
	return nil
}

func (p *PostgresStore) Clear(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM storefront_sessions WHERE name = $1`, p.name)
	return err
}
