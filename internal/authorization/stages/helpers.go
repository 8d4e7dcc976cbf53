package stages

import (
	"context"

	"xs2gate/internal/authorization/models"
	cmsmodels "xs2gate/internal/cms/models"
	"xs2gate/internal/spi"
	"xs2gate/internal/tppmessage"
	"xs2gate/pkg/domain"
	dErrors "xs2gate/pkg/domain-errors"
)

const msgNoPsuIdentification = "please provide the PSU identification data"

// effectivePsu prefers identification data from the current request, falling
// back to what was bound to the authorisation earlier.
func effectivePsu(req *models.UpdateRequest, auth *models.Authorisation) domain.PsuIdData {
	if !req.Psu.IsEmpty() {
		return req.Psu
	}
	return auth.Psu
}

// thread applies the blob-threading invariant: whatever blob an adapter call
// returned is persisted immediately and becomes the input of the next call.
// An empty returned blob keeps the previous one.
func thread(ctx context.Context, deps Deps, current spi.ConsentData, returned spi.ConsentData) (spi.ConsentData, error) {
	if returned.IsEmpty() {
		return current, nil
	}
	if err := deps.ConsentData.Update(ctx, returned); err != nil {
		return spi.ConsentData{}, err
	}
	return returned, nil
}

// technicalError converts an unknown-outcome adapter response into the error
// return that tells the orchestrator to persist nothing.
func technicalError[T any](resp spi.Response[T]) error {
	msg := "authentication backend failure"
	if len(resp.Messages) > 0 {
		msg = resp.Messages[0]
	}
	return dErrors.New(dErrors.CodeUnavailable, msg)
}

// businessErrorInfo maps a business-failure adapter response to the error
// taxonomy. Unauthorized responses always mean bad PSU credentials; plain
// failures use the stage-specific fallback code.
func businessErrorInfo[T any](resp spi.Response[T], fallback tppmessage.Code) *tppmessage.ErrorInfo {
	code := fallback
	if resp.Status == spi.StatusUnauthorized {
		code = tppmessage.CodePsuCredentialsInvalid
	}
	return tppmessage.NewErrorInfo(code, resp.Messages...)
}

// finalObjectStatus is the business-object state reached when an
// authorisation finalises successfully.
func finalObjectStatus(kind domain.Kind) cmsmodels.Status {
	switch kind {
	case domain.KindPIS:
		return cmsmodels.StatusPaymentExecuted
	case domain.KindPISCancellation:
		return cmsmodels.StatusPaymentCancelled
	default:
		return cmsmodels.StatusValid
	}
}

// rejectedObjectStatus is the business-object state recorded when SCA cannot
// proceed at all (no methods, failed credentials on a fresh consent).
func rejectedObjectStatus(kind domain.Kind) cmsmodels.Status {
	if kind.IsConsent() {
		return cmsmodels.StatusRejected
	}
	return cmsmodels.StatusPaymentRejected
}

// applyIdentification handles the "PSU identification" sub-step: no adapter
// call, just a presence check on the identity data.
func applyIdentification(req *models.UpdateRequest) Result {
	if req.Psu.IsEmpty() {
		return Failed(tppmessage.NewErrorInfo(tppmessage.CodeFormatError, msgNoPsuIdentification))
	}
	return Continue(domain.ScaStatusPsuIdentified, Payload{})
}

// withObjectStatus attaches a business-object update to a transition.
func (r Result) withObjectStatus(status cmsmodels.Status) Result {
	r.BusinessObjectStatus = status
	return r
}

// requestCode asks the bank for a challenge on the given method and builds
// the SCA_METHOD_SELECTED transition. Shared by the single-method shortcut
// and the explicit method selection stage.
func requestCode(ctx context.Context, deps Deps, ops spi.Ops, obj *cmsmodels.BusinessObject, psu domain.PsuIdData, method domain.AuthenticationObject, cd spi.ConsentData) (Result, error) {
	resp := ops.RequestAuthorisationCode(ctx, obj, psu, method.ID, cd)
	if resp.Technical() {
		return Result{}, technicalError(resp)
	}
	if _, err := thread(ctx, deps, cd, resp.ConsentData); err != nil {
		return Result{}, err
	}
	if resp.HasError() {
		return Failed(businessErrorInfo(resp, tppmessage.CodeScaMethodUnknown)), nil
	}

	chosen := resp.Payload.ChosenMethod
	if chosen.ID == "" {
		chosen = method
	}
	payload := Payload{ChosenScaMethod: &chosen}
	if !resp.Payload.Challenge.IsZero() {
		challenge := resp.Payload.Challenge
		payload.ChallengeData = &challenge
	}
	return Continue(domain.ScaStatusMethodSelected, payload), nil
}

// authorisePsu runs the credential check shared by every non-OAuth started
// stage and threads the blob. It returns either the blob to continue with,
// or a ready-made failure Result, or an infrastructure error.
func authorisePsu(ctx context.Context, deps Deps, ops spi.Ops, req *models.UpdateRequest, auth *models.Authorisation, obj *cmsmodels.BusinessObject, cd spi.ConsentData) (spi.ConsentData, *Result, error) {
	psu := effectivePsu(req, auth)
	resp := ops.AuthorisePsu(ctx, obj, psu, req.Password, cd)

	if resp.Technical() {
		return spi.ConsentData{}, nil, technicalError(resp)
	}
	cd, err := thread(ctx, deps, cd, resp.ConsentData)
	if err != nil {
		return spi.ConsentData{}, nil, err
	}

	if resp.HasError() || resp.Payload == spi.AuthorisationFailure {
		failed := Failed(tppmessage.NewErrorInfo(tppmessage.CodePsuCredentialsInvalid, resp.Messages...))
		return cd, &failed, nil
	}
	return cd, nil, nil
}
