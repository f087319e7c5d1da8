package service

import (
	"sync"

	"restaurant-app/order-svc/internal/domain"

	"go.uber.org/zap"
)

type CartObserver func(snapshot domain.CartSnapshot)

type cartSubscription struct {
	id       int
	observer CartObserver
}

// CartStore owns one cart. Observers run after a mutation and its totals
// are complete, one mutation at a time, and must not mutate the store from
// inside the callback.
type CartStore struct {
	mu       sync.Mutex
	notifyMu sync.Mutex

	lines     []domain.CartLine
	observers []cartSubscription
	nextID    int
	logger    *zap.Logger
}

func NewCartStore(logger *zap.Logger) *CartStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartStore{logger: logger}
}

func (s *CartStore) AddDish(dish domain.Dish) {
	s.mutate(func() {
		if i := s.indexOf(dish.ID); i >= 0 {
			s.lines[i].Quantity++
			s.logger.Info("increased dish quantity",
				zap.String("dish_id", dish.ID),
				zap.String("dish_name", dish.Name),
				zap.Int("quantity", s.lines[i].Quantity))
			return
		}
		s.lines = append(s.lines, domain.CartLine{Dish: dish, Quantity: 1})
		s.logger.Info("added dish to cart",
			zap.String("dish_id", dish.ID),
			zap.String("dish_name", dish.Name))
	})
}

func (s *CartStore) RemoveDish(dish domain.Dish) {
	s.mutate(func() {
		i := s.indexOf(dish.ID)
		if i < 0 {
			return
		}
		if s.lines[i].Quantity > 1 {
			s.lines[i].Quantity--
			s.logger.Info("decreased dish quantity",
				zap.String("dish_id", dish.ID),
				zap.Int("quantity", s.lines[i].Quantity))
			return
		}
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
		s.logger.Info("removed dish from cart", zap.String("dish_id", dish.ID))
	})
}

// RemoveDishByID is RemoveDish for callers that only hold the catalog key.
func (s *CartStore) RemoveDishByID(dishID string) {
	s.RemoveDish(domain.Dish{ID: dishID})
}

func (s *CartStore) Clear() {
	s.mutate(func() {
		s.lines = nil
		s.logger.Info("cart cleared")
	})
}

func (s *CartStore) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLines()
}

func (s *CartStore) Totals() domain.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ComputeTotals(s.lines)
}

func (s *CartStore) Snapshot() domain.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *CartStore) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) == 0
}

// Subscribe registers an observer and returns a function that removes it.
func (s *CartStore) Subscribe(observer CartObserver) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, cartSubscription{id: id, observer: observer})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.observers {
			if sub.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *CartStore) mutate(change func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	change()
	snapshot := s.snapshotLocked()
	observers := make([]cartSubscription, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	s.logger.Debug("cart updated",
		zap.Int("lines", len(snapshot.Lines)),
		zap.String("net_total", snapshot.Totals.Net.StringFixed(2)))

	for _, sub := range observers {
		sub.observer(snapshot)
	}
}

func (s *CartStore) indexOf(dishID string) int {
	for i, line := range s.lines {
		if line.Dish.ID == dishID {
			return i
		}
	}
	return -1
}

func (s *CartStore) copyLines() []domain.CartLine {
	lines := make([]domain.CartLine, len(s.lines))
	copy(lines, s.lines)
	return lines
}

func (s *CartStore) snapshotLocked() domain.CartSnapshot {
	return domain.CartSnapshot{
		Lines:  s.copyLines(),
		Totals: domain.ComputeTotals(s.lines),
	}
}
