// Package consentdata round-trips the opaque ASPSP consent-data blob between
// its wire form (base64 text, as the consent management system stores it) and
// the binary payload the authentication adapter consumes. Losing a blob
// update breaks every subsequent SCA step, so updates are written through on
// every adapter call.
package consentdata

import (
	"context"
	"encoding/base64"

	"xs2gate/internal/spi"
	"xs2gate/pkg/domain"
	dErrors "xs2gate/pkg/domain-errors"
)

// Store persists the base64 wire form keyed by business object.
type Store interface {
	Get(ctx context.Context, id domain.BusinessObjectID) (string, error)
	Put(ctx context.Context, id domain.BusinessObjectID, encoded string) error
	Delete(ctx context.Context, id domain.BusinessObjectID) error
}

// ErrNotFound is returned by stores when no blob exists for the object.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "no consent data stored for business object")

// Gateway decodes and encodes the wire format around a Store.
type Gateway struct {
	store Store
}

// NewGateway wraps a store.
func NewGateway(store Store) *Gateway {
	return &Gateway{store: store}
}

// Load returns the adapter-ready blob for a business object. A missing blob
// is not an error: a fresh authorisation starts with empty adapter state.
func (g *Gateway) Load(ctx context.Context, id domain.BusinessObjectID) (spi.ConsentData, error) {
	encoded, err := g.store.Get(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return spi.ConsentData{BusinessObjectID: id}, nil
		}
		return spi.ConsentData{}, dErrors.Wrap(err, dErrors.CodeInternal, "load consent data")
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return spi.ConsentData{}, dErrors.Wrap(err, dErrors.CodeInternal, "consent data is not valid base64")
	}
	return spi.ConsentData{BusinessObjectID: id, Bytes: raw}, nil
}

// Update persists the blob an adapter call returned. Empty blobs are skipped:
// the adapter signalled no state change (or an unknown outcome), and the
// previously stored blob must survive.
func (g *Gateway) Update(ctx context.Context, cd spi.ConsentData) error {
	if cd.IsEmpty() {
		return nil
	}
	if cd.BusinessObjectID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "consent data without owning business object")
	}
	encoded := base64.StdEncoding.EncodeToString(cd.Bytes)
	if err := g.store.Put(ctx, cd.BusinessObjectID, encoded); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "store consent data")
	}
	return nil
}

// Clear drops the blob once the owning business object reaches a terminal
// business state.
func (g *Gateway) Clear(ctx context.Context, id domain.BusinessObjectID) error {
	if err := g.store.Delete(ctx, id); err != nil && !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "clear consent data")
	}
	return nil
}
