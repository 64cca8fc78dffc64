package service

import (
	"context"
	"log/slog"
	"time"

	"forecast-vintage-api/internal/model"
)

type auditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
}

// AuditService records security-relevant actions. Write failures are logged
// and never fail the request that triggered them.
type AuditService struct {
	store auditStore
	now   func() time.Time
}

func NewAuditService(store auditStore) *AuditService {
	return &AuditService{store: store, now: time.Now}
}

func (s *AuditService) Log(ctx context.Context, action string, actor model.AuditActor, status string, resource string, errText string) {
	if s == nil || s.store == nil {
		return
	}

	entry := model.AuditEntry{
		Action:     action,
		OccurredAt: s.now().UTC(),
		Actor:      actor,
		Status:     status,
		Resource:   resource,
		Error:      errText,
	}

	if err := s.store.Log(context.WithoutCancel(ctx), entry); err != nil {
		slog.Warn("audit write failed", "action", action, "status", status, "error", err)
	}
}
