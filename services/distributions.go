package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hemocore/console/aggregate"
	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/logging"
	"github.com/hemocore/console/session"
)

var (
	ErrAlreadyDelivered = errors.New("distribution is already delivered")
	ErrNotDelivered     = errors.New("distribution is not delivered")
	ErrReversalDisabled = errors.New("delivery reversal is disabled")
	ErrInvalidReason    = errors.New("invalid reversal reason")
)

// Reversal reason codes
const (
	ReasonDataEntryError      = "data_entry_error"
	ReasonDeliveryNotReceived = "delivery_not_received"
	ReasonDuplicateRecord     = "duplicate_record"
)

// ReversalReasons lists the accepted reason codes
var ReversalReasons = []string{ReasonDataEntryError, ReasonDeliveryNotReceived, ReasonDuplicateRecord}

// DistributionService adds the delivery transitions to the plain CRUD
type DistributionService struct {
	*Resource[entities.MedicineDistribution, entities.MedicineDistributionRequest]

	allowReversal bool
	audit         *AuditLog
	now           func() time.Time
}

func (s *DistributionService) GetByState(ctx context.Context, state string) ([]entities.MedicineDistribution, error) {
	return s.listAt(ctx, PathDistributions+"/state/"+url.PathEscape(state))
}

// Pending lists the distributions not yet delivered
func (s *DistributionService) Pending(ctx context.Context) ([]entities.MedicineDistribution, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.PendingDistributions(all), nil
}

// Deliver marks a pending distribution delivered. The server stamps the
// delivery date.
func (s *DistributionService) Deliver(ctx context.Context, id int) error {
	d, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if aggregate.IsDelivered(d) {
		return fmt.Errorf("distribution %d: %w", id, ErrAlreadyDelivered)
	}

	if err := s.api.Put(ctx, itemPath(PathDistributions, id)+"/deliver", struct{}{}, nil); err != nil {
		return fmt.Errorf("failed to deliver distribution %d: %w", id, err)
	}
	logging.Info("Distribution delivered", "distribution_id", id, "state", d.State)
	return nil
}

// ReversalAllowed reports whether RevertDelivery is enabled
func (s *DistributionService) ReversalAllowed() bool {
	return s.allowReversal
}

// reversalRequest overrides the date fields of the update body so that
// they are sent as null
type reversalRequest struct {
	entities.MedicineDistributionRequest
	DistributionDate *string `json:"distributionDate"`
	DeliveryDate     *string `json:"deliveryDate"`
}

// RevertDelivery moves a delivered distribution back to Pending and
// records an audit event. It is refused unless reversal is enabled,
// reason is one of ReversalReasons and actor names an authenticated user.
func (s *DistributionService) RevertDelivery(ctx context.Context, id int, reason, actor string) (AuditEvent, error) {
	if !s.allowReversal {
		return AuditEvent{}, ErrReversalDisabled
	}
	if !validReason(reason) {
		return AuditEvent{}, fmt.Errorf("%w: %q", ErrInvalidReason, reason)
	}
	if strings.TrimSpace(actor) == "" {
		return AuditEvent{}, fmt.Errorf("reversal needs a known actor: %w", session.ErrNotAuthenticated)
	}

	d, err := s.Get(ctx, id)
	if err != nil {
		return AuditEvent{}, err
	}
	if !aggregate.IsDelivered(d) {
		return AuditEvent{}, fmt.Errorf("distribution %d: %w", id, ErrNotDelivered)
	}

	body := reversalRequest{MedicineDistributionRequest: entities.RequestFromDistribution(d)}
	body.Status = entities.StatusPending
	if err := s.api.Put(ctx, itemPath(PathDistributions, id), body, nil); err != nil {
		return AuditEvent{}, fmt.Errorf("failed to revert distribution %d: %w", id, err)
	}

	event := s.audit.Record(AuditEvent{
		Time:           s.now().UTC(),
		Action:         ActionRevertDelivery,
		DistributionID: id,
		Reason:         reason,
		Actor:          actor,
		PreviousStatus: aggregate.DistributionStatusOf(d),
	})
	logging.Warn("Distribution delivery reverted",
		"audit_id", event.ID,
		"distribution_id", id,
		"reason", reason,
		"actor", actor,
	)
	return event, nil
}

// AuditEvents returns the recorded reversal events, oldest first
func (s *DistributionService) AuditEvents() []AuditEvent {
	return s.audit.Events()
}

func validReason(reason string) bool {
	for _, r := range ReversalReasons {
		if r == reason {
			return true
		}
	}
	return false
}
