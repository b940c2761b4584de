package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/calibre88/pos-transfer/internal/core/domain"
)

// MySQLAdapter backs the session store and the transfer audit log.
//
// Schema:
//
//	CREATE TABLE sessions (
//	    shop         VARCHAR(255) PRIMARY KEY,
//	    access_token VARCHAR(255) NOT NULL,
//	    scope        VARCHAR(512) NOT NULL DEFAULT '',
//	    expires_at   DATETIME NULL,
//	    updated_at   DATETIME NOT NULL
//	);
//
//	CREATE TABLE transfer_audit (
//	    id                      CHAR(36) PRIMARY KEY,
//	    shop                    VARCHAR(255) NOT NULL,
//	    inventory_item_id       VARCHAR(255) NOT NULL,
//	    origin_location_id      VARCHAR(255) NOT NULL,
//	    destination_location_id VARCHAR(255) NOT NULL,
//	    quantity                INT NOT NULL,
//	    adjustment_id           VARCHAR(255) NOT NULL,
//	    reason                  VARCHAR(64) NOT NULL,
//	    created_at              DATETIME NOT NULL
//	);
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) GetSession(ctx context.Context, shop string) (*domain.Session, error) {
	var (
		sess      domain.Session
		expiresAt sql.NullTime
	)
	err := m.db.QueryRowContext(ctx, `
		SELECT shop, access_token, scope, expires_at
		FROM sessions WHERE shop = ?`, shop,
	).Scan(&sess.Shop, &sess.AccessToken, &sess.Scope, &expiresAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}

	if expiresAt.Valid {
		sess.ExpiresAt = expiresAt.Time
	}
	return &sess, nil
}

func (m *MySQLAdapter) SaveSession(ctx context.Context, sess domain.Session) error {
	expiresAt := sql.NullTime{Time: sess.ExpiresAt, Valid: !sess.ExpiresAt.IsZero()}

	_, err := m.db.ExecContext(ctx, `
		INSERT INTO sessions (shop, access_token, scope, expires_at, updated_at)
		VALUES (?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			access_token = VALUES(access_token),
			scope = VALUES(scope),
			expires_at = VALUES(expires_at),
			updated_at = NOW()`,
		sess.Shop, sess.AccessToken, sess.Scope, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) RecordTransfer(ctx context.Context, rec domain.TransferRecord) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO transfer_audit
			(id, shop, inventory_item_id, origin_location_id, destination_location_id,
			 quantity, adjustment_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Shop, rec.InventoryItemID, rec.OriginLocationID, rec.DestinationLocationID,
		rec.Quantity, rec.AdjustmentID, rec.Reason, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transfer audit: %w", err)
	}
	return nil
}
