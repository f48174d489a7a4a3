package api

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ryanbastic/puzzlebox/internal/blob"
	"github.com/ryanbastic/puzzlebox/internal/catalog"
	"github.com/ryanbastic/puzzlebox/internal/gallery"
	"github.com/ryanbastic/puzzlebox/internal/player"
	"github.com/ryanbastic/puzzlebox/internal/storage"
)

// --- Mock CatalogStore ---

type mockCatalogStore struct {
	mu      sync.Mutex
	puzzles []catalog.Puzzle // newest first
	scores  []catalog.Score
	nextID  int64
	err     error
}

func (m *mockCatalogStore) ListPuzzles(ctx context.Context) ([]catalog.Puzzle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]catalog.Puzzle{}, m.puzzles...), nil
}

func (m *mockCatalogStore) SearchPuzzles(ctx context.Context, query string) ([]catalog.Puzzle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	q := strings.ToLower(query)
	out := []catalog.Puzzle{}
	for _, p := range m.puzzles {
		tags := strings.ToLower(strings.Join(p.Tags, ","))
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(tags, q) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockCatalogStore) PuzzleExists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for _, p := range m.puzzles {
		if p.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCatalogStore) AddPuzzle(ctx context.Context, p catalog.Puzzle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.puzzles {
		if existing.ID == p.ID {
			return storage.ErrPuzzleExists
		}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	m.puzzles = append([]catalog.Puzzle{p}, m.puzzles...)
	return nil
}

func (m *mockCatalogStore) AddScore(ctx context.Context, ns catalog.NewScore) (*catalog.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.nextID++
	s := catalog.Score{
		ID:          m.nextID,
		PlayerName:  ns.PlayerName,
		PuzzleID:    ns.PuzzleID,
		TimeSeconds: ns.TimeSeconds,
		CompletedAt: time.Now().Add(time.Duration(m.nextID) * time.Second),
	}
	m.scores = append(m.scores, s)
	return &s, nil
}

func (m *mockCatalogStore) ScoresForPlayer(ctx context.Context, playerName string) ([]catalog.ScoreEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []catalog.ScoreEntry{}
	for i := len(m.scores) - 1; i >= 0; i-- {
		s := m.scores[i]
		if s.PlayerName != playerName {
			continue
		}
		for _, p := range m.puzzles {
			if p.ID == s.PuzzleID {
				out = append(out, catalog.ScoreEntry{Score: s, PuzzleName: p.Name, PuzzleDescription: p.Description})
			}
		}
	}
	return out, nil
}

// --- Mock GalleryStore ---

type mockGalleryStore struct {
	mu        sync.Mutex
	puzzles   map[string]gallery.Puzzle
	createErr error
	updateErr error
}

func newMockGalleryStore() *mockGalleryStore {
	return &mockGalleryStore{puzzles: make(map[string]gallery.Puzzle)}
}

func (m *mockGalleryStore) ListPuzzles(ctx context.Context) ([]gallery.Puzzle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []gallery.Puzzle{}
	for _, p := range m.puzzles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockGalleryStore) GetPuzzle(ctx context.Context, id string) (*gallery.Puzzle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.puzzles[id]
	if !ok {
		return nil, storage.ErrPuzzleNotFound
	}
	return &p, nil
}

func (m *mockGalleryStore) CreatePuzzle(ctx context.Context, p gallery.Puzzle) (*gallery.Puzzle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.puzzles[p.ID] = p
	return &p, nil
}

func (m *mockGalleryStore) UpdatePuzzle(ctx context.Context, id string, f gallery.Fields, img []string) (*gallery.Puzzle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	p, ok := m.puzzles[id]
	if !ok {
		return nil, storage.ErrPuzzleNotFound
	}
	p.Name, p.Desc, p.Pieces, p.Level, p.Tags, p.Img = f.Name, f.Desc, f.Pieces, f.Level, f.Tags, img
	p.UpdatedAt = time.Now()
	m.puzzles[id] = p
	return &p, nil
}

func (m *mockGalleryStore) DeletePuzzle(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.puzzles, id)
	return nil
}

// --- Mock player.Registry ---

type mockRegistry struct {
	mu      sync.Mutex
	players map[string]player.Player
	err     error
}

func newMockRegistry(names ...string) *mockRegistry {
	m := &mockRegistry{players: make(map[string]player.Player)}
	for _, n := range names {
		m.players[n] = player.Player{Name: n, RegisteredAt: time.Now()}
	}
	return m
}

func (m *mockRegistry) Register(ctx context.Context, p player.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.players[p.Name]; ok {
		return player.ErrPlayerExists
	}
	m.players[p.Name] = p
	return nil
}

func (m *mockRegistry) Exists(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.players[name]
	return ok, nil
}

// --- Mock player.AdminCredentials ---

type mockAdmin struct {
	mu       sync.Mutex
	password string
	err      error
}

func (m *mockAdmin) Verify(ctx context.Context, password string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	return password != "" && password == m.password, nil
}

func (m *mockAdmin) Update(ctx context.Context, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.password = password
	return nil
}

// --- Mock blob.Store ---

type memBlob struct {
	data        []byte
	contentType string
}

type mockBlobStore struct {
	mu        sync.Mutex
	objects   map[string]memBlob
	deleted   []string
	putErr    error
	deleteErr error
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{objects: make(map[string]memBlob)}
}

func (m *mockBlobStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if m.putErr != nil {
		return m.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memBlob{data: data, contentType: contentType}
	return nil
}

func (m *mockBlobStore) Get(ctx context.Context, key string) (*blob.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return &blob.Object{
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
		ContentType: obj.contentType,
		Size:        int64(len(obj.data)),
	}, nil
}

func (m *mockBlobStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *mockBlobStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

func (m *mockBlobStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
