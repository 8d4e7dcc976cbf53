// Package spi defines the boundary to the bank-specific authentication
// backend. Every operation threads an opaque consent-data blob: the adapter
// may replace it on any call, and whatever comes back must be the blob passed
// into the next call. The core treats adapters as slow, fallible external I/O
// and distinguishes business failures from infrastructure ones.
package spi

import (
	"context"

	"xs2gate/internal/cms/models"
	"xs2gate/pkg/domain"
	dErrors "xs2gate/pkg/domain-errors"
)

// ConsentData is the adapter-private state blob attached to a business
// object. It is passed by value through every call so the orchestration layer
// stays provably in control of persistence.
type ConsentData struct {
	BusinessObjectID domain.BusinessObjectID
	Bytes            []byte
}

// IsEmpty reports whether the adapter returned no state update.
func (c ConsentData) IsEmpty() bool { return len(c.Bytes) == 0 }

// ResponseStatus tags an adapter response so callers can tell a wrong
// password apart from an unreachable backend.
type ResponseStatus string

const (
	StatusSuccess ResponseStatus = "SUCCESS"
	// StatusFailure is a business failure: the operation was evaluated and
	// rejected (bad credentials, unknown method, wrong OTP).
	StatusFailure ResponseStatus = "FAILURE"
	// StatusUnauthorized is a business failure specific to PSU credentials.
	StatusUnauthorized ResponseStatus = "UNAUTHORIZED_FAILURE"
	// StatusTechnicalFailure is an infrastructure failure: the outcome is
	// unknown and the caller must not advance persisted state.
	StatusTechnicalFailure ResponseStatus = "TECHNICAL_FAILURE"
)

// Response is the tagged result of one adapter call. ConsentData always
// carries the blob to persist, including on business-failure paths; on a
// technical failure it is empty because no trustworthy update exists.
type Response[T any] struct {
	Status      ResponseStatus
	Payload     T
	ConsentData ConsentData
	Messages    []string
}

// HasError reports any non-success outcome.
func (r Response[T]) HasError() bool { return r.Status != StatusSuccess }

// Technical reports an infrastructure failure (unknown outcome).
func (r Response[T]) Technical() bool { return r.Status == StatusTechnicalFailure }

// Success wraps a payload and updated blob in a successful response.
func Success[T any](payload T, cd ConsentData) Response[T] {
	return Response[T]{Status: StatusSuccess, Payload: payload, ConsentData: cd}
}

// Failure builds a business-failure response, still carrying the blob.
func Failure[T any](status ResponseStatus, cd ConsentData, messages ...string) Response[T] {
	var zero T
	return Response[T]{Status: status, Payload: zero, ConsentData: cd, Messages: messages}
}

// TechnicalFailure builds an unknown-outcome response with no blob update.
func TechnicalFailure[T any](messages ...string) Response[T] {
	var zero T
	return Response[T]{Status: StatusTechnicalFailure, Payload: zero, Messages: messages}
}

// AuthorisationResult is the payload of AuthorisePsu.
type AuthorisationResult string

const (
	AuthorisationSuccess AuthorisationResult = "SUCCESS"
	AuthorisationFailure AuthorisationResult = "FAILURE"
)

// AuthorisationCodeResult is the payload of RequestAuthorisationCode: the
// method the code was generated for plus the challenge shown to the PSU.
type AuthorisationCodeResult struct {
	ChosenMethod domain.AuthenticationObject
	Challenge    domain.ChallengeData
}

// DecoupledResult is the payload of StartScaDecoupled. Finalised marks the
// one-factor shortcut where no out-of-band confirmation is pending.
type DecoupledResult struct {
	Finalised      bool
	PsuMessage     string
	ChosenMethodID string
}

// ScaConfirmation carries the PSU-entered confirmation value into the
// verification call.
type ScaConfirmation struct {
	Psu                   domain.PsuIdData
	ScaAuthenticationData string
}

// FinalisationResult is the payload of the kind-specific verification call.
type FinalisationResult struct {
	// Executed is true when the verification also completed the business
	// operation (payment executed / cancelled).
	Executed bool
}

// AuthorisationAdapter is the operation set every kind shares.
type AuthorisationAdapter interface {
	// AuthorisePsu checks PSU credentials against the core banking system.
	AuthorisePsu(ctx context.Context, obj *models.BusinessObject, psu domain.PsuIdData, password string, cd ConsentData) Response[AuthorisationResult]

	// ListScaMethods returns the SCA methods available to the authenticated PSU.
	ListScaMethods(ctx context.Context, obj *models.BusinessObject, psu domain.PsuIdData, cd ConsentData) Response[[]domain.AuthenticationObject]

	// RequestAuthorisationCode asks the bank to issue a challenge for the
	// chosen method.
	RequestAuthorisationCode(ctx context.Context, obj *models.BusinessObject, psu domain.PsuIdData, methodID string, cd ConsentData) Response[AuthorisationCodeResult]

	// StartScaDecoupled hands the confirmation over to an out-of-band channel.
	StartScaDecoupled(ctx context.Context, obj *models.BusinessObject, psu domain.PsuIdData, methodID string, cd ConsentData) Response[DecoupledResult]
}

// AisConsentAdapter authorises account-information consents.
type AisConsentAdapter interface {
	AuthorisationAdapter
	// VerifyScaAuthorisation checks the PSU confirmation value. The caller
	// updates consent status separately.
	VerifyScaAuthorisation(ctx context.Context, obj *models.BusinessObject, confirmation ScaConfirmation, cd ConsentData) Response[FinalisationResult]
}

// FundsConfirmationConsentAdapter authorises PIIS consents. Same shape as AIS.
type FundsConfirmationConsentAdapter interface {
	AuthorisationAdapter
	VerifyScaAuthorisation(ctx context.Context, obj *models.BusinessObject, confirmation ScaConfirmation, cd ConsentData) Response[FinalisationResult]
}

// PaymentAdapter authorises payment initiations.
type PaymentAdapter interface {
	AuthorisationAdapter
	// VerifyScaAndExecutePayment checks the confirmation value and, on
	// success, executes the payment in the same step.
	VerifyScaAndExecutePayment(ctx context.Context, obj *models.BusinessObject, confirmation ScaConfirmation, cd ConsentData) Response[FinalisationResult]
}

// PaymentCancellationAdapter authorises payment cancellations.
type PaymentCancellationAdapter interface {
	AuthorisationAdapter
	VerifyScaAndCancelPayment(ctx context.Context, obj *models.BusinessObject, confirmation ScaConfirmation, cd ConsentData) Response[FinalisationResult]
}

// Ops is the uniform facade the stage handlers work against. The kind-specific
// verification method is folded into VerifyAndFinalise so transition logic
// stays kind-agnostic.
type Ops interface {
	AuthorisePsu(ctx context.Context, obj *models.BusinessObject, psu domain.PsuIdData, password string, cd ConsentData) Response[AuthorisationResult]
	ListScaMethods(ctx context.Context, obj *models.BusinessObject, psu domain.PsuIdData, cd ConsentData) Response[[]domain.AuthenticationObject]
	RequestAuthorisationCode(ctx context.Context, obj *models.BusinessObject, psu domain.PsuIdData, methodID string, cd ConsentData) Response[AuthorisationCodeResult]
	StartScaDecoupled(ctx context.Context, obj *models.BusinessObject, psu domain.PsuIdData, methodID string, cd ConsentData) Response[DecoupledResult]
	VerifyAndFinalise(ctx context.Context, obj *models.BusinessObject, confirmation ScaConfirmation, cd ConsentData) Response[FinalisationResult]
}

// Registry is the strategy map from business-object kind to adapter, built
// once at startup. There is no runtime discovery: a kind without an adapter
// is a deployment bug.
type Registry struct {
	ais          AisConsentAdapter
	piis         FundsConfirmationConsentAdapter
	payment      PaymentAdapter
	cancellation PaymentCancellationAdapter
}

// NewRegistry wires one adapter per kind. All four are required.
func NewRegistry(
	ais AisConsentAdapter,
	piis FundsConfirmationConsentAdapter,
	payment PaymentAdapter,
	cancellation PaymentCancellationAdapter,
) (*Registry, error) {
	if ais == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "AIS consent adapter is required")
	}
	if piis == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "PIIS consent adapter is required")
	}
	if payment == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "payment adapter is required")
	}
	if cancellation == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "payment cancellation adapter is required")
	}
	return &Registry{ais: ais, piis: piis, payment: payment, cancellation: cancellation}, nil
}

// Ops returns the uniform facade for a kind.
func (r *Registry) Ops(kind domain.Kind) (Ops, error) {
	switch kind {
	case domain.KindAIS:
		return consentOps{r.ais}, nil
	case domain.KindPIIS:
		return consentOps{r.piis}, nil
	case domain.KindPIS:
		return paymentOps{r.payment}, nil
	case domain.KindPISCancellation:
		return cancellationOps{r.cancellation}, nil
	}
	return nil, dErrors.New(dErrors.CodeConfiguration, "no adapter registered for kind "+kind.String())
}

// consentVerifier is satisfied by both consent adapter flavours.
type consentVerifier interface {
	AuthorisationAdapter
	VerifyScaAuthorisation(ctx context.Context, obj *models.BusinessObject, confirmation ScaConfirmation, cd ConsentData) Response[FinalisationResult]
}

type consentOps struct{ consentVerifier }

func (o consentOps) VerifyAndFinalise(ctx context.Context, obj *models.BusinessObject, confirmation ScaConfirmation, cd ConsentData) Response[FinalisationResult] {
	return o.VerifyScaAuthorisation(ctx, obj, confirmation, cd)
}

type paymentOps struct{ PaymentAdapter }

func (o paymentOps) VerifyAndFinalise(ctx context.Context, obj *models.BusinessObject, confirmation ScaConfirmation, cd ConsentData) Response[FinalisationResult] {
	return o.VerifyScaAndExecutePayment(ctx, obj, confirmation, cd)
}

type cancellationOps struct{ PaymentCancellationAdapter }

func (o cancellationOps) VerifyAndFinalise(ctx context.Context, obj *models.BusinessObject, confirmation ScaConfirmation, cd ConsentData) Response[FinalisationResult] {
	return o.VerifyScaAndCancelPayment(ctx, obj, confirmation, cd)
}
