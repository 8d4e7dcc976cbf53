// Package models defines the SCA authorisation record and the request and
// response shapes of the update workflow.
package models

import (
	"time"

	"xs2gate/internal/tppmessage"
	"xs2gate/pkg/domain"
)

// Authorisation is one in-progress or completed SCA workflow instance. It is
// mutated exclusively by stage handlers through the orchestrator and becomes
// immutable once its status is terminal.
type Authorisation struct {
	ID               domain.AuthorisationID
	BusinessObjectID domain.BusinessObjectID
	Kind             domain.Kind
	Status           domain.ScaStatus

	// ChosenScaApproach is empty until the first update resolves it, then
	// fixed for the authorisation's lifetime.
	ChosenScaApproach domain.ScaApproach

	Psu                   domain.PsuIdData
	AvailableScaMethods   []domain.AuthenticationObject
	ChosenScaMethod       *domain.AuthenticationObject
	ScaAuthenticationData string

	// ErrorInfo is populated only when Status is FAILED.
	ErrorInfo *tppmessage.ErrorInfo

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MethodByID finds a previously saved SCA method descriptor.
func (a *Authorisation) MethodByID(id string) (domain.AuthenticationObject, bool) {
	for _, m := range a.AvailableScaMethods {
		if m.ID == id {
			return m, true
		}
	}
	return domain.AuthenticationObject{}, false
}

// UpdateRequest is one inbound "update authorisation" call, whether it
// arrives from the TPP over HTTP or from a decoupled push confirmation.
type UpdateRequest struct {
	Psu                    domain.PsuIdData
	Password               string
	AuthenticationMethodID string
	ScaAuthenticationData  string
	ConfirmationCode       string
	AccessToken            string
	IsIdentificationStep   bool
}

// UpdateResponse is the successful outcome of an update call.
type UpdateResponse struct {
	AuthorisationID     domain.AuthorisationID
	Status              domain.ScaStatus
	AvailableScaMethods []domain.AuthenticationObject
	ChosenScaMethod     *domain.AuthenticationObject
	ChallengeData       *domain.ChallengeData
	PsuMessage          string
}

// ScaError carries a stage failure out of the orchestrator so the transport
// layer can render the regulator-defined envelope.
type ScaError struct {
	Kind domain.Kind
	Info *tppmessage.ErrorInfo
}

func (e *ScaError) Error() string {
	if e.Info == nil {
		return "SCA failure"
	}
	return "SCA failure: " + string(e.Info.Code)
}
