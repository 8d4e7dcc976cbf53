// Package stages implements the SCA state machine transition functions. Each
// reachable (kind, approach, status) combination maps to one handler in a
// static dispatch table built at startup; there is no inheritance and no
// dynamic discovery. Handlers talk to the authentication adapter and the
// consent-data gateway only — the orchestrator owns all other persistence.
package stages

import (
	"context"
	"log/slog"

	"xs2gate/internal/authorization/models"
	cmsmodels "xs2gate/internal/cms/models"
	"xs2gate/internal/consentdata"
	"xs2gate/internal/profile"
	"xs2gate/internal/spi"
	"xs2gate/internal/tppmessage"
	"xs2gate/pkg/domain"
	dErrors "xs2gate/pkg/domain-errors"
)

// Outcome tags a transition result.
type Outcome string

const (
	// OutcomeContinue advances to a non-terminal status.
	OutcomeContinue Outcome = "CONTINUE"
	// OutcomeTerminal reaches FINALISED or EXEMPTED.
	OutcomeTerminal Outcome = "TERMINAL"
	// OutcomeFailed ends the authorisation in FAILED with an ErrorInfo.
	OutcomeFailed Outcome = "FAILED"
)

// Payload is the response data a transition carries back to the caller.
type Payload struct {
	AvailableScaMethods   []domain.AuthenticationObject
	ChosenScaMethod       *domain.AuthenticationObject
	ChallengeData         *domain.ChallengeData
	ScaAuthenticationData string
	PsuMessage            string
}

// Result is the outcome of one transition. BusinessObjectStatus, when set,
// instructs the orchestrator to update the owning consent or payment as part
// of persisting the transition.
type Result struct {
	Outcome              Outcome
	NewStatus            domain.ScaStatus
	Payload              Payload
	Error                *tppmessage.ErrorInfo
	BusinessObjectStatus cmsmodels.Status
}

// Continue builds a non-terminal transition.
func Continue(status domain.ScaStatus, payload Payload) Result {
	return Result{Outcome: OutcomeContinue, NewStatus: status, Payload: payload}
}

// Terminal builds a successful terminal transition.
func Terminal(status domain.ScaStatus, payload Payload) Result {
	return Result{Outcome: OutcomeTerminal, NewStatus: status, Payload: payload}
}

// Failed builds a FAILED transition.
func Failed(info *tppmessage.ErrorInfo) Result {
	return Result{Outcome: OutcomeFailed, NewStatus: domain.ScaStatusFailed, Error: info}
}

// FailedWithObjectStatus builds a FAILED transition that also moves the
// business object (e.g. a consent rejected for lack of SCA methods).
func FailedWithObjectStatus(info *tppmessage.ErrorInfo, objStatus cmsmodels.Status) Result {
	r := Failed(info)
	r.BusinessObjectStatus = objStatus
	return r
}

// Handler is one state-machine transition function. The error return is
// reserved for infrastructure and configuration failures whose outcome is
// unknown: the orchestrator surfaces them without persisting any state.
// Business failures travel inside the Result.
type Handler interface {
	Apply(ctx context.Context, req *models.UpdateRequest, auth *models.Authorisation, obj *cmsmodels.BusinessObject) (Result, error)
}

// Key is the typed dispatch triple.
type Key struct {
	Kind     domain.Kind
	Approach domain.ScaApproach
	Status   domain.ScaStatus
}

// AdapterRegistry resolves the per-kind SPI facade.
type AdapterRegistry interface {
	Ops(kind domain.Kind) (spi.Ops, error)
}

// TokenVerifier validates the bearer token carried by the OAUTH approach.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) error
}

// Deps are the collaborators shared by all handlers.
type Deps struct {
	Adapters    AdapterRegistry
	ConsentData *consentdata.Gateway
	Profile     *profile.Profile
	Tokens      TokenVerifier
	Logger      *slog.Logger
}

// Resolver is the static dispatch table.
type Resolver struct {
	table map[Key]Handler
}

// NewResolver registers a handler for every reachable triple. The table is
// bounded: 4 kinds x 4 approaches x the non-terminal statuses each approach
// can actually reach.
func NewResolver(deps Deps) (*Resolver, error) {
	if deps.Adapters == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "adapter registry is required")
	}
	if deps.ConsentData == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "consent data gateway is required")
	}
	if deps.Profile == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "ASPSP profile is required")
	}

	r := &Resolver{table: make(map[Key]Handler)}
	for _, kind := range domain.Kinds() {
		started := &startedStage{deps: deps, kind: kind, supportsIdentification: true}
		startedRedirect := &startedStage{deps: deps, kind: kind}
		authenticated := &authenticatedStage{deps: deps, kind: kind}
		selected := &methodSelectedStage{deps: deps, kind: kind}
		decoupledStarted := &decoupledStartedStage{deps: deps, kind: kind}
		decoupledAuthenticated := &decoupledAuthenticatedStage{deps: deps, kind: kind}

		// EMBEDDED: full synchronous flow including the identification
		// sub-step. PSU_IDENTIFIED re-enters the started logic.
		r.register(kind, domain.ApproachEmbedded, domain.ScaStatusStarted, started)
		r.register(kind, domain.ApproachEmbedded, domain.ScaStatusPsuIdentified, started)
		r.register(kind, domain.ApproachEmbedded, domain.ScaStatusPsuAuthenticated, authenticated)
		r.register(kind, domain.ApproachEmbedded, domain.ScaStatusMethodSelected, selected)

		// REDIRECT shares the synchronous stages but has no identification
		// sub-step, so PSU_IDENTIFIED is unreachable.
		r.register(kind, domain.ApproachRedirect, domain.ScaStatusStarted, startedRedirect)
		r.register(kind, domain.ApproachRedirect, domain.ScaStatusPsuAuthenticated, authenticated)
		r.register(kind, domain.ApproachRedirect, domain.ScaStatusMethodSelected, selected)

		// DECOUPLED: after authentication the confirmation happens
		// out-of-band; SCA_METHOD_SELECTED is re-entered by the push
		// confirmation through the same dispatch.
		r.register(kind, domain.ApproachDecoupled, domain.ScaStatusStarted, decoupledStarted)
		r.register(kind, domain.ApproachDecoupled, domain.ScaStatusPsuIdentified, decoupledStarted)
		r.register(kind, domain.ApproachDecoupled, domain.ScaStatusPsuAuthenticated, decoupledAuthenticated)
		r.register(kind, domain.ApproachDecoupled, domain.ScaStatusMethodSelected, selected)

		// OAUTH delegates authentication entirely; STARTED is the only
		// reachable non-terminal status.
		r.register(kind, domain.ApproachOAuth, domain.ScaStatusStarted, &oauthStage{deps: deps, kind: kind})
	}
	return r, nil
}

func (r *Resolver) register(kind domain.Kind, approach domain.ScaApproach, status domain.ScaStatus, h Handler) {
	r.table[Key{Kind: kind, Approach: approach, Status: status}] = h
}

// Resolve returns the handler for a triple. A missing entry is a deployment
// bug, reported as a configuration error and never retried.
func (r *Resolver) Resolve(kind domain.Kind, approach domain.ScaApproach, status domain.ScaStatus) (Handler, error) {
	h, ok := r.table[Key{Kind: kind, Approach: approach, Status: status}]
	if !ok {
		return nil, dErrors.New(dErrors.CodeConfiguration,
			"no stage handler registered for "+kind.String()+"/"+approach.String()+"/"+status.String())
	}
	return h, nil
}

// RegisteredStatuses lists the statuses a (kind, approach) pair has handlers
// for. Exhaustiveness tests walk this.
func (r *Resolver) RegisteredStatuses(kind domain.Kind, approach domain.ScaApproach) []domain.ScaStatus {
	var out []domain.ScaStatus
	for _, status := range domain.NonTerminalStatuses() {
		if _, ok := r.table[Key{Kind: kind, Approach: approach, Status: status}]; ok {
			out = append(out, status)
		}
	}
	return out
}
