package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/utils"
)

var (
	ErrInvalidQuantity = errors.New("cart: quantity must be at least 1")
	ErrUnknownAction   = errors.New("cart: unknown action")
	ErrMissingProduct  = errors.New("cart: line has no product")
)

// Store is the cart of one key. Every accepted action is saved to Storage
// before subscribers are told about it.
type Store struct {
	mu      sync.Mutex
	key     string
	storage Storage
	lines   []models.CartLine
	subs    map[int]func([]models.CartLine)
	next    int
}

// Open rehydrates the cart stored under key. A corrupt payload is logged
// and the cart starts empty.
func Open(ctx context.Context, storage Storage, key string) (*Store, error) {
	s := &Store{
		key:     key,
		storage: storage,
		lines:   []models.CartLine{},
		subs:    make(map[int]func([]models.CartLine)),
	}

	data, err := storage.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		var lines []models.CartLine
		if err := json.Unmarshal(data, &lines); err != nil {
			utils.LogError("Error loading cart %s: %v", key, err)
		} else {
			s.lines = Reduce(s.lines, Load(lines))
		}
	}
	return s, nil
}

// Key returns the storage key of the cart.
func (s *Store) Key() string {
	return s.key
}

// Lines returns a copy of the current lines.
func (s *Store) Lines() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.lines)
}

// Dispatch validates and applies a, persists the result and notifies
// subscribers. On a storage error the cart is left unchanged.
func (s *Store) Dispatch(ctx context.Context, a Action) ([]models.CartLine, error) {
	if err := validate(a); err != nil {
		return nil, err
	}

	s.mu.Lock()
	next := Reduce(s.lines, a)
	data, err := json.Marshal(next)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.lines = next
	subs := make([]func([]models.CartLine), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(clone(next))
	}
	return clone(next), nil
}

// Subscribe registers fn for every committed change.
func (s *Store) Subscribe(fn func([]models.CartLine)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func validate(a Action) error {
	switch a.Type {
	case ActionAdd:
		if a.Line.Product.ID == "" {
			return ErrMissingProduct
		}
		if a.Line.Quantity < 1 {
			return ErrInvalidQuantity
		}
	case ActionLoad:
		for _, l := range a.Lines {
			if l.Product.ID == "" {
				return ErrMissingProduct
			}
			if l.Quantity < 1 {
				return ErrInvalidQuantity
			}
		}
	case ActionRemove, ActionSetQuantity, ActionClear:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
	return nil
}
