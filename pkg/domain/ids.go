// Package domain holds identifier primitives shared across the gateway.
// IDs are distinct types over uuid.UUID so a payment identifier can never
// be passed where an authorisation identifier is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "xs2gate/pkg/domain-errors"
)

// AuthorisationID identifies one SCA workflow instance.
type AuthorisationID uuid.UUID

// BusinessObjectID identifies the consent or payment an authorisation belongs to.
type BusinessObjectID uuid.UUID

// TppID identifies the third-party provider acting on a business object.
type TppID string

func (id AuthorisationID) String() string  { return uuid.UUID(id).String() }
func (id AuthorisationID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id BusinessObjectID) String() string { return uuid.UUID(id).String() }
func (id BusinessObjectID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id TppID) String() string            { return string(id) }
func (id TppID) IsNil() bool               { return id == "" }

// NewAuthorisationID returns a fresh random authorisation identifier.
func NewAuthorisationID() AuthorisationID { return AuthorisationID(uuid.New()) }

// NewBusinessObjectID returns a fresh random business object identifier.
func NewBusinessObjectID() BusinessObjectID { return BusinessObjectID(uuid.New()) }

// ParseAuthorisationID validates an externally supplied authorisation id.
func ParseAuthorisationID(s string) (AuthorisationID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return AuthorisationID{}, err
	}
	return AuthorisationID(u), nil
}

// ParseBusinessObjectID validates an externally supplied consent/payment id.
func ParseBusinessObjectID(s string) (BusinessObjectID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return BusinessObjectID{}, err
	}
	return BusinessObjectID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}
