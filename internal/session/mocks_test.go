package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/foodexpress/storefront/internal/domain"
)

// MockOrderWriter implements OrderWriter for testing. It records call
// order and captures the payloads handed to the store.
type MockOrderWriter struct {
	mu sync.Mutex

	OrderID   uuid.UUID
	HeaderErr error
	LinesErr  error

	Calls            []string
	CreatedOrder     *domain.OrderSubmission
	CreatedLines     []domain.OrderLine
	CreatedLinesFor  uuid.UUID
	CreateOrderCalls int
	CreateLinesCalls int
}

func (m *MockOrderWriter) CreateOrder(_ context.Context, sub domain.OrderSubmission) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, "CreateOrder")
	m.CreateOrderCalls++
	if m.HeaderErr != nil {
		return uuid.Nil, m.HeaderErr
	}
	m.CreatedOrder = &sub
	return m.OrderID, nil
}

func (m *MockOrderWriter) CreateOrderLines(_ context.Context, orderID uuid.UUID, lines []domain.OrderLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, "CreateOrderLines")
	m.CreateLinesCalls++
	if m.LinesErr != nil {
		return m.LinesErr
	}
	m.CreatedLinesFor = orderID
	m.CreatedLines = lines
	return nil
}

// MockNotifier implements Notifier and signals on a channel when called.
type MockNotifier struct {
	mu      sync.Mutex
	Events  []uuid.UUID
	Err     error
	Called  chan struct{}
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{Called: make(chan struct{}, 1)}
}

func (m *MockNotifier) NotifyOrderPlaced(_ context.Context, orderID uuid.UUID, _ domain.OrderSubmission) error {
	m.mu.Lock()
	m.Events = append(m.Events, orderID)
	m.mu.Unlock()

	select {
	case m.Called <- struct{}{}:
	default:
	}
	return m.Err
}

func (m *MockNotifier) EventCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Events)
}
