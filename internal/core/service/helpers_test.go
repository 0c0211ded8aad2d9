package service_test

import (
	"context"
	"sync"

	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/port"
	"github.com/stretchr/testify/mock"
)

func game(id int, title, genre, platform, date string) domain.Game {
	return domain.Game{
		ID:          id,
		Title:       title,
		Thumbnail:   "https://img.example/" + title + ".jpg",
		Genre:       genre,
		Platform:    platform,
		Publisher:   "testPublisher",
		ReleaseDate: date,
	}
}

func primaryGames() []domain.Game {
	return []domain.Game{
		game(1, "The Legend of Zelda", "Adventure", "Switch", "2017-03-03"),
		game(2, "Mario", "Platformer", "Switch", "1985-09-13"),
	}
}

func bundledGames() []domain.Game {
	return []domain.Game{
		game(10, "Warframe", "Shooter", "PC (Windows)", "2013-03-25"),
	}
}

// fakeSource answers catalog requests with catalogFn, numbering the calls
// from 1, and detail requests with gameFn.
type fakeSource struct {
	mu        sync.Mutex
	calls     int
	catalogFn func(ctx context.Context, call int) ([]domain.Game, error)
	gameFn    func(ctx context.Context, id int) (domain.Game, error)
}

func (f *fakeSource) FetchCatalog(ctx context.Context, _ port.CatalogQuery) ([]domain.Game, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	return f.catalogFn(ctx, call)
}

func (f *fakeSource) FetchGame(ctx context.Context, id int) (domain.Game, error) {
	if f.gameFn == nil {
		panic("not used")
	}
	return f.gameFn(ctx, id)
}

type fakeFallback struct {
	games []domain.Game
	err   error
}

func (f fakeFallback) LoadFallback(ctx context.Context) ([]domain.Game, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.games, nil
}

type MockSource struct {
	mock.Mock
}

func (m *MockSource) FetchCatalog(ctx context.Context, q port.CatalogQuery) ([]domain.Game, error) {
	args := m.Called(ctx, q)
	games, _ := args.Get(0).([]domain.Game)
	return games, args.Error(1)
}

func (m *MockSource) FetchGame(ctx context.Context, id int) (domain.Game, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(domain.Game)
	return g, args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCheckout(ctx context.Context, s domain.CartSnapshot) (string, error) {
	args := m.Called(ctx, s)
	return args.String(0), args.Error(1)
}

// fakeCache is an in-memory catalog cache.
type fakeCache struct {
	mu     sync.Mutex
	games  []domain.Game
	stores int
}

func (f *fakeCache) LoadFallback(context.Context) ([]domain.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.games, nil
}

func (f *fakeCache) StoreCatalog(_ context.Context, games []domain.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games = games
	f.stores++
	return nil
}

func (f *fakeCache) stored() ([]domain.Game, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.games, f.stores
}

// memKV is an in-memory KVStore that counts writes.
type memKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	puts   int
	putErr error
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = value
	m.puts++
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memKV) raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}
