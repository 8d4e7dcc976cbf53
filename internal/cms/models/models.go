// Package models holds the consent-management-system view of business
// objects. The gateway core never sees payment bodies or account lists, only
// the attributes that drive the SCA workflow.
package models

import (
	"time"

	"xs2gate/pkg/domain"
)

// Status is the business object's own lifecycle state, separate from the SCA
// status of its authorisations. Consent kinds use the consent values, payment
// kinds the ISO transaction-status values.
type Status string

const (
	// Consent lifecycle.
	StatusReceived Status = "RECEIVED"
	StatusValid    Status = "VALID"
	StatusRejected Status = "REJECTED"
	StatusRevoked  Status = "REVOKED"
	StatusExpired  Status = "EXPIRED"

	// Payment transaction lifecycle.
	StatusPaymentReceived  Status = "RCVD"
	StatusPaymentPending   Status = "PDNG"
	StatusPaymentExecuted  Status = "ACSC"
	StatusPaymentRejected  Status = "RJCT"
	StatusPaymentCancelled Status = "CANC"
)

// BusinessObject is the consent or payment an authorisation belongs to. One
// business object has at most one active authorisation at a time;
// re-authorisation creates a new authorisation record, never a new object.
type BusinessObject struct {
	ID     domain.BusinessObjectID
	Kind   domain.Kind
	Status Status
	Tpp    domain.TppInfo

	// AIS consent attributes. They decide whether the zero-method exemption
	// shortcut applies.
	AllAvailableAccounts bool
	Recurring            bool
	MultilevelSca        bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OneTimeAllAvailableAccounts reports whether the object is a non-recurring
// "all available accounts" AIS consent, the only shape eligible for the
// SCA exemption.
func (b *BusinessObject) OneTimeAllAvailableAccounts() bool {
	return b.Kind == domain.KindAIS && b.AllAvailableAccounts && !b.Recurring
}
