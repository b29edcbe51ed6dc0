package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fieldops/backend/internal/models"
)

func testReminder() models.FollowUpReminder {
	return models.FollowUpReminder{
		ID:          uuid.New(),
		OrderID:     uuid.New(),
		ClientID:    uuid.New(),
		ClientEmail: "client@example.com",
		Message:     "How did the visit go?",
		Status:      models.ReminderStatusPending,
		ScheduledAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestHTTPAdapter_SendReminder(t *testing.T) {
	var received reminderPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reminders" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	reminder := testReminder()
	adapter := HTTPAdapter{BaseURL: srv.URL, Client: srv.Client()}
	if err := adapter.SendReminder(context.Background(), reminder); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if received.ReminderID != reminder.ID.String() || received.ClientEmail != reminder.ClientEmail {
		t.Fatalf("payload mismatch: %+v", received)
	}
}

func TestHTTPAdapter_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	adapter := HTTPAdapter{BaseURL: srv.URL, Client: srv.Client()}
	err := adapter.SendReminder(context.Background(), testReminder())
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
}

func TestMockAdapter(t *testing.T) {
	m := &MockAdapter{}
	if err := m.SendReminder(context.Background(), testReminder()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Sent) != 1 {
		t.Fatalf("expected 1 recorded reminder, got %d", len(m.Sent))
	}

	m.Fail = true
	if err := m.SendReminder(context.Background(), testReminder()); !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
	if len(m.Sent) != 1 {
		t.Fatalf("failed delivery must not be recorded")
	}
}
