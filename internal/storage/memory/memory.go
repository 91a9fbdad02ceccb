// Package memory provides an in-process implementation of the storage
// interfaces. Data is lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/storage"
)

var (
	_ storage.AtomicOrderStore = (*Store)(nil)
	_ storage.MemberStore      = (*Store)(nil)
)

// Store keeps orders and members in maps guarded by a mutex.
type Store struct {
	mu      sync.RWMutex
	orders  map[string]*models.Order
	members map[string]*models.Member
}

func New() *Store {
	return &Store{
		orders:  make(map[string]*models.Order),
		members: make(map[string]*models.Member),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) PlaceOrder(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	header := prepare(order)
	header.Lines = assignLines(order.ID, order.Lines)
	s.orders[order.ID] = header
	return nil
}

func (s *Store) CreateOrder(ctx context.Context, order *models.Order) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	header := prepare(order)
	s.orders[header.ID] = header
	return header.ID, nil
}

func (s *Store) AddLineItems(ctx context.Context, orderID string, lines []models.OrderLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s: %w", orderID, storage.ErrNotFound)
	}
	o.Lines = append(o.Lines, assignLines(orderID, lines)...)
	return nil
}

func (s *Store) DeleteOrder(ctx context.Context, orderID string) error {
	s.mu.Lock()
	delete(s.orders, orderID)
	s.mu.Unlock()
	return nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderID, storage.ErrNotFound)
	}
	return copyOrder(o), nil
}

// Len returns the number of stored orders.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

func (s *Store) MemberByPhone(ctx context.Context, phone string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[phone]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (s *Store) CreateMember(ctx context.Context, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[member.Phone]; ok {
		return fmt.Errorf("member with phone %s already exists", member.Phone)
	}
	cp := *member
	s.members[member.Phone] = &cp
	return nil
}

// prepare fills defaults on order and returns a stored header copy.
func prepare(order *models.Order) *models.Order {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.Status == "" {
		order.Status = models.StatusPending
	}
	header := copyOrder(order)
	header.Lines = nil
	return header
}

// assignLines fills IDs on lines in place and returns stored copies.
func assignLines(orderID string, lines []models.OrderLine) []models.OrderLine {
	out := make([]models.OrderLine, len(lines))
	for i := range lines {
		if lines[i].ID == "" {
			lines[i].ID = uuid.New().String()
		}
		lines[i].OrderID = orderID
		out[i] = lines[i]
		out[i].AddOns = append([]string(nil), lines[i].AddOns...)
	}
	return out
}

func copyOrder(o *models.Order) *models.Order {
	cp := *o
	if o.ScheduledTime != nil {
		t := *o.ScheduledTime
		cp.ScheduledTime = &t
	}
	cp.Lines = make([]models.OrderLine, len(o.Lines))
	for i, l := range o.Lines {
		cp.Lines[i] = l
		cp.Lines[i].AddOns = append([]string(nil), l.AddOns...)
	}
	return &cp
}
