// Package service orchestrates SCA authorisation workflows. The service owns
// every persistence decision: stage handlers compute transitions, the
// orchestrator applies them through compare-and-set and publishes the
// resulting status changes.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"xs2gate/internal/authorization/metrics"
	"xs2gate/internal/authorization/models"
	"xs2gate/internal/authorization/ports"
	"xs2gate/internal/authorization/stages"
	cmsmodels "xs2gate/internal/cms/models"
	"xs2gate/internal/profile"
	"xs2gate/pkg/domain"
	dErrors "xs2gate/pkg/domain-errors"
)

var tracer = otel.Tracer("xs2gate/authorization")

// Service runs the authorisation state machine.
type Service struct {
	authorisations ports.AuthorisationStore
	objects        ports.BusinessObjectStore
	resolver       *stages.Resolver
	profile        *profile.Profile

	publisher ports.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithPublisher sets the status-change event publisher.
func WithPublisher(p ports.EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// New wires the orchestrator. Store, object lookup, resolver and profile are
// required; everything else is optional.
func New(
	authorisations ports.AuthorisationStore,
	objects ports.BusinessObjectStore,
	resolver *stages.Resolver,
	prof *profile.Profile,
	opts ...Option,
) (*Service, error) {
	if authorisations == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "authorisation store is required")
	}
	if objects == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "business object store is required")
	}
	if resolver == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "stage resolver is required")
	}
	if prof == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "ASPSP profile is required")
	}

	s := &Service{
		authorisations: authorisations,
		objects:        objects,
		resolver:       resolver,
		profile:        prof,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// StartAuthorisation creates a new STARTED authorisation for a business
// object. The approach is pinned from the profile at creation time. At most
// one non-terminal authorisation may exist per object; the store enforces it.
func (s *Service) StartAuthorisation(ctx context.Context, kind domain.Kind, objectID domain.BusinessObjectID, psu domain.PsuIdData) (*models.Authorisation, error) {
	ctx, span := tracer.Start(ctx, "authorization.start", trace.WithAttributes(
		attribute.String("kind", kind.String()),
	))
	defer span.End()

	obj, err := s.objects.FindByID(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if obj.Kind != kind {
		return nil, dErrors.New(dErrors.CodeNotFound,
			"business object "+objectID.String()+" is not a "+kind.String())
	}
	if blockedForAuthorisation(obj.Status) {
		return nil, dErrors.New(dErrors.CodeConflict,
			"business object "+objectID.String()+" is in status "+string(obj.Status))
	}

	approach, err := s.profile.ApproachFor(kind)
	if err != nil {
		return nil, err
	}

	auth := &models.Authorisation{
		ID:                domain.NewAuthorisationID(),
		BusinessObjectID:  objectID,
		Kind:              kind,
		Status:            domain.ScaStatusStarted,
		ChosenScaApproach: approach,
		Psu:               psu,
	}
	if err := s.authorisations.Create(ctx, auth); err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(kind.String(), auth.Status.String())
	ports.LogStatusChange(ctx, s.logger, s.publisher, ports.StatusChange{
		AuthorisationID:  auth.ID,
		BusinessObjectID: auth.BusinessObjectID,
		Kind:             kind,
		NewStatus:        auth.Status,
		At:               time.Now().UTC(),
	})
	return auth, nil
}

// GetScaStatus reports the current status of an authorisation.
func (s *Service) GetScaStatus(ctx context.Context, kind domain.Kind, id domain.AuthorisationID) (domain.ScaStatus, error) {
	auth, err := s.findForKind(ctx, kind, id)
	if err != nil {
		return "", err
	}
	return auth.Status, nil
}

// GetAuthorisation loads the full authorisation record.
func (s *Service) GetAuthorisation(ctx context.Context, kind domain.Kind, id domain.AuthorisationID) (*models.Authorisation, error) {
	return s.findForKind(ctx, kind, id)
}

// UpdateAuthorisation applies one transition: resolve the stage handler for
// the current (kind, approach, status) triple, run it, and persist the result
// through compare-and-set. Infrastructure failures persist nothing; business
// failures persist FAILED with the error details and surface as ScaError.
func (s *Service) UpdateAuthorisation(ctx context.Context, kind domain.Kind, id domain.AuthorisationID, req *models.UpdateRequest) (*models.UpdateResponse, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "authorization.update", trace.WithAttributes(
		attribute.String("kind", kind.String()),
		attribute.String("authorisation_id", id.String()),
	))
	defer span.End()
	defer func() { s.metrics.ObserveUpdateLatency(time.Since(start)) }()

	if req == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "update request is required")
	}

	auth, err := s.findForKind(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if auth.Status.IsTerminal() {
		return nil, dErrors.New(dErrors.CodeConflict,
			"authorisation "+id.String()+" is already "+auth.Status.String())
	}

	// Pin the approach on first update if creation predates the profile.
	if auth.ChosenScaApproach == "" {
		if auth.ChosenScaApproach, err = s.profile.ApproachFor(kind); err != nil {
			return nil, err
		}
	}

	handler, err := s.resolver.Resolve(kind, auth.ChosenScaApproach, auth.Status)
	if err != nil {
		return nil, err
	}
	obj, err := s.objects.FindByID(ctx, auth.BusinessObjectID)
	if err != nil {
		return nil, err
	}

	previous := auth.Status
	result, err := handler.Apply(ctx, req, auth, obj)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnavailable) || dErrors.HasCode(err, dErrors.CodeTimeout) {
			s.metrics.RecordTechnicalFailure(kind.String())
		}
		return nil, err
	}

	s.apply(auth, req, result)
	if err := s.authorisations.CompareAndSetStatus(ctx, auth, previous); err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			s.metrics.RecordConflict(kind.String())
		}
		return nil, err
	}

	if result.BusinessObjectStatus != "" {
		if err := s.objects.UpdateStatus(ctx, auth.BusinessObjectID, result.BusinessObjectStatus); err != nil {
			return nil, err
		}
	}

	s.metrics.RecordTransition(kind.String(), auth.Status.String())
	ports.LogStatusChange(ctx, s.logger, s.publisher, ports.StatusChange{
		AuthorisationID:  auth.ID,
		BusinessObjectID: auth.BusinessObjectID,
		Kind:             kind,
		OldStatus:        previous,
		NewStatus:        auth.Status,
		At:               time.Now().UTC(),
	})

	if result.Outcome == stages.OutcomeFailed {
		return nil, &models.ScaError{Kind: kind, Info: result.Error}
	}

	return &models.UpdateResponse{
		AuthorisationID:     auth.ID,
		Status:              auth.Status,
		AvailableScaMethods: auth.AvailableScaMethods,
		ChosenScaMethod:     auth.ChosenScaMethod,
		ChallengeData:       result.Payload.ChallengeData,
		PsuMessage:          result.Payload.PsuMessage,
	}, nil
}

// ConfirmDecoupled feeds an out-of-band confirmation back into the same state
// machine. The push channel confirms with the value the bank app collected.
func (s *Service) ConfirmDecoupled(ctx context.Context, kind domain.Kind, id domain.AuthorisationID, psu domain.PsuIdData, authenticationData string) (*models.UpdateResponse, error) {
	return s.UpdateAuthorisation(ctx, kind, id, &models.UpdateRequest{
		Psu:                   psu,
		ScaAuthenticationData: authenticationData,
	})
}

func (s *Service) findForKind(ctx context.Context, kind domain.Kind, id domain.AuthorisationID) (*models.Authorisation, error) {
	auth, err := s.authorisations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if auth.Kind != kind {
		return nil, dErrors.New(dErrors.CodeNotFound,
			"authorisation "+id.String()+" does not belong to a "+kind.String())
	}
	return auth, nil
}

// apply folds a stage result into the authorisation record before it is
// persisted as one unit.
func (s *Service) apply(auth *models.Authorisation, req *models.UpdateRequest, result stages.Result) {
	if !req.Psu.IsEmpty() {
		auth.Psu = req.Psu
	}
	auth.Status = result.NewStatus
	if len(result.Payload.AvailableScaMethods) > 0 {
		auth.AvailableScaMethods = result.Payload.AvailableScaMethods
	}
	if result.Payload.ChosenScaMethod != nil {
		auth.ChosenScaMethod = result.Payload.ChosenScaMethod
	}
	if result.Payload.ScaAuthenticationData != "" {
		auth.ScaAuthenticationData = result.Payload.ScaAuthenticationData
	}
	if result.Outcome == stages.OutcomeFailed {
		auth.ErrorInfo = result.Error
	}
}

// blockedForAuthorisation lists business-object states no new authorisation
// may start from.
func blockedForAuthorisation(status cmsmodels.Status) bool {
	switch status {
	case cmsmodels.StatusRejected, cmsmodels.StatusRevoked, cmsmodels.StatusExpired,
		cmsmodels.StatusPaymentRejected, cmsmodels.StatusPaymentCancelled:
		return true
	}
	return false
}
