package notify

import (
	"context"
	"sync"

	"github.com/fieldops/backend/internal/models"
)

// MockAdapter records reminders instead of delivering them. Used when no
// notification service is configured and in tests.
type MockAdapter struct {
	mu   sync.Mutex
	Sent []models.FollowUpReminder
	Fail bool
}

func (m *MockAdapter) SendReminder(ctx context.Context, r models.FollowUpReminder) error {
	if m.Fail {
		return ErrDeliveryFailed
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, r)
	return nil
}
