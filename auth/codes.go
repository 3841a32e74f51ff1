package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodeStore holds one-time verification codes keyed by email.
type CodeStore interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	// Consume returns the stored code and removes it. A missing or expired
	// code yields ErrInvalidCode.
	Consume(ctx context.Context, email string) (string, error)
}

const codeKeyPrefix = "admin:verification:"

func codeKey(email string) string {
	return codeKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}

type RedisCodeStore struct {
	Client *redis.Client
}

func (rs RedisCodeStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := rs.Client.Set(ctx, codeKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("error storing verification code: %w", err)
	}
	return nil
}

func (rs RedisCodeStore) Consume(ctx context.Context, email string) (string, error) {
	code, err := rs.Client.GetDel(ctx, codeKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrInvalidCode
	}
	if err != nil {
		return "", fmt.Errorf("error reading verification code: %w", err)
	}
	return code, nil
}

type memoryCode struct {
	code    string
	expires time.Time
}

// MemoryCodeStore keeps codes in process. It is used when Redis isn't
// configured.
type MemoryCodeStore struct {
	mu    sync.Mutex
	codes map[string]memoryCode
	Now   func() time.Time
}

func NewMemoryCodeStore() *MemoryCodeStore {
	return &MemoryCodeStore{codes: map[string]memoryCode{}, Now: time.Now}
}

func (ms *MemoryCodeStore) now() time.Time {
	if ms.Now == nil {
		return time.Now()
	}
	return ms.Now()
}

func (ms *MemoryCodeStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.codes == nil {
		ms.codes = map[string]memoryCode{}
	}
	ms.codes[codeKey(email)] = memoryCode{code: code, expires: ms.now().Add(ttl)}
	return nil
}

func (ms *MemoryCodeStore) Consume(ctx context.Context, email string) (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	key := codeKey(email)
	c, ok := ms.codes[key]
	delete(ms.codes, key)
	if !ok || !ms.now().Before(c.expires) {
		return "", ErrInvalidCode
	}
	return c.code, nil
}

// newCode returns a uniformly random 6-digit code.
func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("error generating verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
