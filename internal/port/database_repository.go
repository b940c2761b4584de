package port

import (
	"context"

	"github.com/calibre88/pos-transfer/internal/core/domain"
)

type SessionRepository interface {
	// GetSession returns the stored admin session for a shop, or (nil, nil)
	// when the shop has never installed the app.
	GetSession(ctx context.Context, shop string) (*domain.Session, error)

	// SaveSession upserts a shop's admin session.
	SaveSession(ctx context.Context, sess domain.Session) error
}

type AuditRepository interface {
	// RecordTransfer persists one completed transfer for audit tracing.
	RecordTransfer(ctx context.Context, rec domain.TransferRecord) error
}
