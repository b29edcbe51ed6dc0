package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fieldops/backend/internal/models"
)

var ErrDeliveryFailed = errors.New("reminder delivery failed")

// HTTPAdapter posts reminders to an external notification service.
type HTTPAdapter struct {
	BaseURL string
	Client  *http.Client
}

type reminderPayload struct {
	ReminderID  string    `json:"reminder_id"`
	OrderID     string    `json:"order_id"`
	ClientID    string    `json:"client_id"`
	ClientEmail string    `json:"client_email"`
	Message     string    `json:"message"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

func (h HTTPAdapter) SendReminder(ctx context.Context, r models.FollowUpReminder) error {
	if h.Client == nil {
		h.Client = &http.Client{Timeout: 10 * time.Second}
	}

	payload := reminderPayload{
		ReminderID:  r.ID.String(),
		OrderID:     r.OrderID.String(),
		ClientID:    r.ClientID.String(),
		ClientEmail: r.ClientEmail,
		Message:     r.Message,
		ScheduledAt: r.ScheduledAt,
	}
	b, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/reminders", bytes.NewBuffer(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ErrDeliveryFailed
	}
	return nil
}
