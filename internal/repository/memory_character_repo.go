package repository

import (
	"context"
	"sort"
	"sync"

	"go-character-api/internal/model"
)

type MemoryCharacterRepository struct {
	mu         sync.RWMutex
	nextID     int64
	characters map[int64]model.Character
}

func NewMemoryCharacterRepository() *MemoryCharacterRepository {
	return &MemoryCharacterRepository{characters: map[int64]model.Character{}}
}

// List returns characters ordered by id.
func (r *MemoryCharacterRepository) List(_ context.Context) ([]model.Character, error) {
	r.mu.RLock()
	out := make([]model.Character, 0, len(r.characters))
	for _, c := range r.characters {
		out = append(out, c)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryCharacterRepository) FindByID(_ context.Context, id int64) (model.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.characters[id]
	if !exists {
		return model.Character{}, model.ErrCharacterNotFound
	}
	return c, nil
}

func (r *MemoryCharacterRepository) Create(_ context.Context, c model.Character) (model.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	c.ID = r.nextID
	r.characters[c.ID] = c
	return c, nil
}

func (r *MemoryCharacterRepository) Update(_ context.Context, c model.Character) (model.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[c.ID]; !exists {
		return model.Character{}, model.ErrCharacterNotFound
	}
	r.characters[c.ID] = c
	return c, nil
}

func (r *MemoryCharacterRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[id]; !exists {
		return model.ErrCharacterNotFound
	}
	delete(r.characters, id)
	return nil
}
