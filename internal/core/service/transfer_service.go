package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/calibre88/pos-transfer/internal/core/domain"
	"github.com/calibre88/pos-transfer/internal/port"
)

var ErrDuplicateTransfer = errors.New("duplicate transfer request")

// TransferService moves stock between two locations as a best-effort
// two-phase sequence: activate stocking at the destination, then submit one
// atomic pair of deltas. Atomicity of the pair is owned by the remote
// service; there is no retry and no compensating transaction here.
type TransferService struct {
	gateway port.AdminGateway
	cache   port.CacheRepository
	audit   port.AuditRepository
	log     *zap.Logger
}

func NewTransferService(gateway port.AdminGateway, cache port.CacheRepository, audit port.AuditRepository, log *zap.Logger) *TransferService {
	return &TransferService{
		gateway: gateway,
		cache:   cache,
		audit:   audit,
		log:     log,
	}
}

// Transfer validates the request and executes the move. Business-rule
// rejections from the remote service are returned on the result, not as an
// error; the error return carries validation, duplicate-submission, and
// transport failures only.
func (s *TransferService) Transfer(ctx context.Context, sess domain.Session, req domain.TransferRequest) (*domain.TransferResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" && s.cache != nil {
		key := fmt.Sprintf("transfer:%s:%s", sess.Shop, req.IdempotencyKey)
		ok, err := s.cache.SetIdempotency(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, ErrDuplicateTransfer
		}
	}

	// Best effort: the destination may already be stocked, and the activate
	// endpoint rejects repeats. Failure here never aborts the transfer; it is
	// logged and kept as a warning on the result.
	warnings := s.activateDestination(ctx, sess, req)

	input := domain.BuildTransferInput(req.InventoryItemID, req.OriginLocationID, req.DestinationLocationID, req.Quantity)
	group, userErrs, err := s.gateway.AdjustQuantities(ctx, sess, input)
	if err != nil {
		s.log.Error("quantity adjustment failed",
			zap.String("shop", sess.Shop),
			zap.String("inventoryItemId", req.InventoryItemID),
			zap.String("origin", req.OriginLocationID),
			zap.String("destination", req.DestinationLocationID),
			zap.Int("quantity", req.Quantity),
			zap.Error(err),
		)
		return nil, fmt.Errorf("adjust quantities: %w", err)
	}
	if len(userErrs) > 0 {
		return &domain.TransferResult{
			Success:  false,
			Errors:   userErrs,
			Warnings: warnings,
		}, nil
	}

	result := &domain.TransferResult{
		Success:      true,
		AdjustmentID: group.ID,
		CreatedAt:    group.CreatedAt,
		Warnings:     warnings,
	}
	s.recordAudit(ctx, sess, req, group)
	return result, nil
}

func (s *TransferService) activateDestination(ctx context.Context, sess domain.Session, req domain.TransferRequest) []domain.Warning {
	userErrs, err := s.gateway.ActivateInventory(ctx, sess, req.InventoryItemID, req.DestinationLocationID)
	if err != nil {
		s.log.Warn("inventory activation failed, continuing",
			zap.String("shop", sess.Shop),
			zap.String("inventoryItemId", req.InventoryItemID),
			zap.String("destination", req.DestinationLocationID),
			zap.Error(err),
		)
		return []domain.Warning{{Stage: "activate", Message: err.Error()}}
	}

	warnings := make([]domain.Warning, 0, len(userErrs))
	for _, ue := range userErrs {
		// Usually "already stocked at this location".
		s.log.Warn("inventory activation user error, continuing",
			zap.String("shop", sess.Shop),
			zap.String("inventoryItemId", req.InventoryItemID),
			zap.String("field", ue.Field),
			zap.String("message", ue.Message),
		)
		warnings = append(warnings, domain.Warning{Stage: "activate", Message: ue.Message})
	}
	if len(warnings) == 0 {
		return nil
	}
	return warnings
}

func (s *TransferService) recordAudit(ctx context.Context, sess domain.Session, req domain.TransferRequest, group *domain.AdjustmentGroup) {
	if s.audit == nil {
		return
	}
	rec := domain.TransferRecord{
		ID:                    uuid.NewString(),
		Shop:                  sess.Shop,
		InventoryItemID:       req.InventoryItemID,
		OriginLocationID:      req.OriginLocationID,
		DestinationLocationID: req.DestinationLocationID,
		Quantity:              req.Quantity,
		AdjustmentID:          group.ID,
		Reason:                group.Reason,
		CreatedAt:             time.Now().UTC(),
	}
	if err := s.audit.RecordTransfer(ctx, rec); err != nil {
		// The transfer already applied remotely; a lost audit row must not
		// fail the response.
		s.log.Error("failed to record transfer audit row",
			zap.String("shop", sess.Shop),
			zap.String("adjustmentId", group.ID),
			zap.Error(err),
		)
	}
}
