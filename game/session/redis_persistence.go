package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/wricardo/monopolio-paisa/game/service"
)

// DefaultRedisKeyPrefix namespaces every key the Redis store writes
const DefaultRedisKeyPrefix = "monopolio"

// RedisPersistence implements SessionPersistence on a Redis server.
// Each session is a JSON string at <prefix>:session:<id> and the ids are
// indexed in the set <prefix>:sessions.
type RedisPersistence struct {
	pool   *redis.Pool
	prefix string
	codec  codec
}

// NewRedisPool creates a connection pool for the given redis:// URL
func NewRedisPool(url string) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     10,
		IdleTimeout: 240 * time.Second,
		Dial:        func() (redis.Conn, error) { return redis.DialURL(url) },
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
}

// NewRedisPersistence creates a Redis backed store and checks the server
// answers. The store owns pool: it is closed here if construction fails and
// by Close otherwise.
func NewRedisPersistence(pool *redis.Pool, prefix string, configManager service.ConfigManager) (_ *RedisPersistence, err error) {
	if pool == nil {
		return nil, fmt.Errorf("redis pool cannot be nil")
	}
	defer func() {
		if err != nil {
			pool.Close()
		}
	}()

	if configManager == nil {
		return nil, fmt.Errorf("config manager cannot be nil")
	}
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}

	conn := pool.Get()
	_, err = conn.Do("PING")
	conn.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	return &RedisPersistence{
		pool:   pool,
		prefix: prefix,
		codec:  codec{configManager: configManager},
	}, nil
}

// Save writes the session and indexes its id in one transaction
func (rp *RedisPersistence) Save(session *service.Session) error {
	jsonData, err := rp.codec.encode(session)
	if err != nil {
		return err
	}
	if !validID(session.ID) {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, session.ID)
	}

	conn := rp.pool.Get()
	defer conn.Close()

	conn.Send("MULTI")
	conn.Send("SET", rp.sessionKey(session.ID), jsonData)
	conn.Send("SADD", rp.indexKey(), session.ID)
	if _, err := conn.Do("EXEC"); err != nil {
		return fmt.Errorf("failed to store session %s: %w", session.ID, err)
	}
	return nil
}

// Load retrieves a session from Redis by ID
func (rp *RedisPersistence) Load(id string) (*service.Session, error) {
	conn := rp.pool.Get()
	defer conn.Close()

	jsonData, err := redis.Bytes(conn.Do("GET", rp.sessionKey(id)))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}

	return rp.codec.decode(jsonData)
}

// Delete removes the session key and its index entry
func (rp *RedisPersistence) Delete(id string) error {
	conn := rp.pool.Get()
	defer conn.Close()

	conn.Send("MULTI")
	conn.Send("DEL", rp.sessionKey(id))
	conn.Send("SREM", rp.indexKey(), id)
	replies, err := redis.Values(conn.Do("EXEC"))
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}

	deleted, err := redis.Int(replies[0], nil)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if deleted == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all indexed session IDs
func (rp *RedisPersistence) ListAll() ([]string, error) {
	conn := rp.pool.Get()
	defer conn.Close()

	ids, err := redis.Strings(conn.Do("SMEMBERS", rp.indexKey()))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

// Exists checks if a session key is present
func (rp *RedisPersistence) Exists(id string) bool {
	conn := rp.pool.Get()
	defer conn.Close()

	exists, err := redis.Bool(conn.Do("EXISTS", rp.sessionKey(id)))
	return err == nil && exists
}

// Close releases the connection pool
func (rp *RedisPersistence) Close() error {
	return rp.pool.Close()
}

func (rp *RedisPersistence) sessionKey(id string) string {
	return rp.prefix + ":session:" + id
}

func (rp *RedisPersistence) indexKey() string {
	return rp.prefix + ":sessions"
}
