package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"artisan-marketplace/internal/data/entity"
	"artisan-marketplace/internal/data/repository/memrepo"
	"artisan-marketplace/pkg/cache"
	"artisan-marketplace/pkg/metrics"
	"artisan-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errCacheDown = errors.New("cache down")

type memCache struct {
	mu       sync.Mutex
	values   map[string][]byte
	counters map[string]int64
	down     bool
	sets     int
}

func newMemCache() *memCache {
	return &memCache{values: map[string][]byte{}, counters: map[string]int64{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return nil, errCacheDown
	}
	v, ok := c.values[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return errCacheDown
	}
	c.values[key] = value
	c.sets++
	return nil
}

func (c *memCache) Version(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return 0, errCacheDown
	}
	return c.counters[key], nil
}

func (c *memCache) Bump(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return errCacheDown
	}
	c.counters[key]++
	return nil
}

func (c *memCache) Close() error { return nil }

func (c *memCache) generation() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[listGenerationKey]
}

type publishedEvent struct {
	key     string
	payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{key: key, payload: payload})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.key)
	}
	return out
}

func (p *recordingPublisher) last() publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type testEnv struct {
	svc       *Service
	store     *memrepo.Store
	cache     *memCache
	publisher *recordingPublisher
	metrics   *metrics.Metrics
	config    *utils.Config
}

func testConfig() *utils.Config {
	return &utils.Config{
		JWT:   utils.JWTConfig{Secret: "test-secret", ExpiryHours: 24},
		Redis: utils.RedisConfig{TTLSeconds: 60},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store:     memrepo.New(),
		cache:     newMemCache(),
		publisher: &recordingPublisher{},
		metrics:   metrics.New("test"),
		config:    testConfig(),
	}
	env.svc = NewService(env.store.Repository(), env.config, Deps{
		Cache:     env.cache,
		Publisher: env.publisher,
		Metrics:   env.metrics,
	}, zap.NewNop())
	return env
}

// addClient stores a client account and returns its principal.
func (e *testEnv) addClient(name string) utils.Principal {
	id := uuid.New()
	now := time.Now()
	e.store.AddUser(entity.User{
		Base:     entity.Base{ID: id, CreatedAt: now, UpdatedAt: now},
		Email:    id.String() + "@example.com",
		Role:     entity.RoleClient,
		FullName: name,
		IsActive: true,
	})
	return utils.Principal{UserID: id, Role: string(entity.RoleClient), SessionID: uuid.New()}
}

// addArtisanAccount stores an artisan account with a linked, available profile.
func (e *testEnv) addArtisanAccount(name string) (utils.Principal, *entity.Artisan) {
	id := uuid.New()
	now := time.Now()
	business := name
	e.store.AddUser(entity.User{
		Base:         entity.Base{ID: id, CreatedAt: now, UpdatedAt: now},
		Email:        id.String() + "@example.com",
		Role:         entity.RoleArtisan,
		FullName:     name + " Owner",
		BusinessName: &business,
		IsActive:     true,
	})
	a := e.store.AddArtisan(entity.Artisan{
		UserID:      &id,
		Name:        name,
		Category:    "Television",
		Location:    "Lagos",
		IsAvailable: true,
		Skills:      []entity.Skill{memrepo.DefaultSkills[0]},
	})
	return utils.Principal{UserID: id, Role: string(entity.RoleArtisan), SessionID: uuid.New()}, a
}

func (e *testEnv) addArtisan(name, category string, available bool) *entity.Artisan {
	return e.store.AddArtisan(entity.Artisan{
		Name:        name,
		Category:    category,
		Location:    "Abuja",
		IsAvailable: available,
	})
}
