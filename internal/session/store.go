// Package session implements the server-side session store used to
// authenticate hospital callers. Session ids are opaque random strings;
// only their SHA-256 hash is used as the storage key so a leaked store
// dump cannot be replayed as cookies. Sessions expire after an idle
// window and are rotated on login to prevent fixation.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CookieName is the session cookie issued to hospital clients.
const CookieName = "secure_session_id"

// ErrNoSession is returned when a session id is unknown, expired or
// already destroyed.
var ErrNoSession = errors.New("session not found")

// Identity is the payload bound to a hospital session. Both fields come
// from the hospitals table at login time, never from the client.
type Identity struct {
	HospitalID   string `json:"hospital_id"`
	HospitalName string `json:"hospital_name"`
}

// Store persists hospital sessions. Get refreshes the idle window on
// every hit (rolling expiry).
type Store interface {
	Create(ctx context.Context, id Identity) (string, error)
	Get(ctx context.Context, raw string) (Identity, error)
	Destroy(ctx context.Context, raw string) error
}

// newRawID returns a 32-byte cryptographically random session id encoded
// as 64 hex characters.
func newRawID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// hashRaw derives the storage key from a raw session id.
func hashRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// RedisStore keeps sessions in Redis under "session:<sha256(raw)>" with a
// TTL equal to the idle window.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, TTL: ttl}
}

func (s *RedisStore) key(raw string) string { return "session:" + hashRaw(raw) }

func (s *RedisStore) Create(ctx context.Context, id Identity) (string, error) {
	raw, err := newRawID()
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(id)
	if err != nil {
		return "", err
	}
	if err := s.Client.Set(ctx, s.key(raw), body, s.TTL).Err(); err != nil {
		return "", err
	}
	return raw, nil
}

func (s *RedisStore) Get(ctx context.Context, raw string) (Identity, error) {
	body, err := s.Client.Get(ctx, s.key(raw)).Bytes()
	if err == redis.Nil {
		return Identity{}, ErrNoSession
	}
	if err != nil {
		return Identity{}, err
	}
	var id Identity
	if err := json.Unmarshal(body, &id); err != nil {
		return Identity{}, ErrNoSession
	}
	// Rolling expiry: every authenticated request extends the idle window.
	_ = s.Client.Expire(ctx, s.key(raw), s.TTL).Err()
	return id, nil
}

func (s *RedisStore) Destroy(ctx context.Context, raw string) error {
	return s.Client.Del(ctx, s.key(raw)).Err()
}

// MemoryStore is the fallback when Redis is unavailable at startup. It
// holds sessions in a map guarded by a mutex and prunes expired entries
// lazily on access. Suitable for development and single-instance runs.
type MemoryStore struct {
	TTL time.Duration

	mu       sync.Mutex
	sessions map[string]memorySession
}

type memorySession struct {
	identity Identity
	expires  time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{TTL: ttl, sessions: make(map[string]memorySession)}
}

func (s *MemoryStore) Create(_ context.Context, id Identity) (string, error) {
	raw, err := newRawID()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.sessions[hashRaw(raw)] = memorySession{identity: id, expires: time.Now().Add(s.TTL)}
	return raw, nil
}

func (s *MemoryStore) Get(_ context.Context, raw string) (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := hashRaw(raw)
	sess, ok := s.sessions[key]
	if !ok || time.Now().After(sess.expires) {
		delete(s.sessions, key)
		return Identity{}, ErrNoSession
	}
	sess.expires = time.Now().Add(s.TTL)
	s.sessions[key] = sess
	return sess.identity, nil
}

func (s *MemoryStore) Destroy(_ context.Context, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, hashRaw(raw))
	return nil
}

// prune removes expired sessions; callers must hold the mutex.
func (s *MemoryStore) prune() {
	now := time.Now()
	for k, sess := range s.sessions {
		if now.After(sess.expires) {
			delete(s.sessions, k)
		}
	}
}
