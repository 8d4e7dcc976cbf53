// Package ports defines the persistence and eventing interfaces the
// authorization services depend on. The implementations live in internal/cms
// and internal/events; the orchestrator is the only component that writes
// through them.
package ports

import (
	"context"
	"log/slog"
	"time"

	"xs2gate/internal/authorization/models"
	cmsmodels "xs2gate/internal/cms/models"
	"xs2gate/pkg/domain"
)

// AuthorisationStore persists authorisation records with optimistic
// concurrency on status.
type AuthorisationStore interface {
	// Create stores a new STARTED authorisation. Fails with a conflict when
	// the business object already has a non-terminal authorisation.
	Create(ctx context.Context, auth *models.Authorisation) error

	// FindByID loads an authorisation. Not-found is a coded error.
	FindByID(ctx context.Context, id domain.AuthorisationID) (*models.Authorisation, error)

	// CompareAndSetStatus writes the transition only if the persisted status
	// still equals expected, applying the rest of the record as given.
	// A mismatch returns a conflict error and writes nothing.
	CompareAndSetStatus(ctx context.Context, auth *models.Authorisation, expected domain.ScaStatus) error
}

// BusinessObjectStore is the consent-management-system lookup the
// orchestrator reads business objects from.
type BusinessObjectStore interface {
	FindByID(ctx context.Context, id domain.BusinessObjectID) (*cmsmodels.BusinessObject, error)
	UpdateStatus(ctx context.Context, id domain.BusinessObjectID, status cmsmodels.Status) error
}

// StatusChange is the event emitted after every persisted transition.
type StatusChange struct {
	AuthorisationID  domain.AuthorisationID  `json:"authorisationId"`
	BusinessObjectID domain.BusinessObjectID `json:"businessObjectId"`
	Kind             domain.Kind             `json:"kind"`
	OldStatus        domain.ScaStatus        `json:"oldStatus"`
	NewStatus        domain.ScaStatus        `json:"newStatus"`
	At               time.Time               `json:"at"`
}

// EventPublisher emits SCA status-change events for downstream consumers.
// Publishing is best effort; a failed emit never fails the transition.
type EventPublisher interface {
	Emit(ctx context.Context, event StatusChange) error
}

// LogStatusChange logs and publishes a transition in one place so every
// service reports it the same way.
func LogStatusChange(ctx context.Context, logger *slog.Logger, publisher EventPublisher, event StatusChange) {
	if logger != nil {
		logger.InfoContext(ctx, "sca status changed",
			"authorisation_id", event.AuthorisationID.String(),
			"business_object_id", event.BusinessObjectID.String(),
			"kind", event.Kind.String(),
			"old_status", event.OldStatus.String(),
			"new_status", event.NewStatus.String(),
		)
	}
	if publisher == nil {
		return
	}
	if err := publisher.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to publish status change event", "error", err)
	}
}
