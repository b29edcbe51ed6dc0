package notify

import (
	"context"

	"github.com/fieldops/backend/internal/models"
)

type Adapter interface {
	SendReminder(ctx context.Context, r models.FollowUpReminder) error
}
