package stages

import (
	"context"

	"xs2gate/internal/authorization/models"
	cmsmodels "xs2gate/internal/cms/models"
	"xs2gate/internal/spi"
	"xs2gate/internal/tppmessage"
	"xs2gate/pkg/domain"
)

// decoupledStartedStage handles STARTED and PSU_IDENTIFIED under the
// decoupled approach. After the credential check it hands straight over to
// the out-of-band channel; no method list is ever presented to the TPP.
type decoupledStartedStage struct {
	deps Deps
	kind domain.Kind
}

func (s *decoupledStartedStage) Apply(ctx context.Context, req *models.UpdateRequest, auth *models.Authorisation, obj *cmsmodels.BusinessObject) (Result, error) {
	if req.IsIdentificationStep {
		return applyIdentification(req), nil
	}

	ops, err := s.deps.Adapters.Ops(s.kind)
	if err != nil {
		return Result{}, err
	}
	cd, err := s.deps.ConsentData.Load(ctx, obj.ID)
	if err != nil {
		return Result{}, err
	}

	cd, failed, err := authorisePsu(ctx, s.deps, ops, req, auth, obj, cd)
	if err != nil {
		return Result{}, err
	}
	if failed != nil {
		return *failed, nil
	}

	if s.kind == domain.KindAIS &&
		obj.OneTimeAllAvailableAccounts() &&
		!obj.MultilevelSca &&
		s.deps.Profile.OneTimeAvailableAccountsExemptionEnabled() {
		return Terminal(domain.ScaStatusExempted, Payload{}).withObjectStatus(finalObjectStatus(s.kind)), nil
	}

	return startDecoupled(ctx, s.deps, s.kind, ops, obj, effectivePsu(req, auth), req.AuthenticationMethodID, cd)
}

// decoupledAuthenticatedStage handles PSU_AUTHENTICATED under the decoupled
// approach: the TPP names the device to push to.
type decoupledAuthenticatedStage struct {
	deps Deps
	kind domain.Kind
}

func (s *decoupledAuthenticatedStage) Apply(ctx context.Context, req *models.UpdateRequest, auth *models.Authorisation, obj *cmsmodels.BusinessObject) (Result, error) {
	if req.AuthenticationMethodID == "" {
		return Failed(tppmessage.NewErrorInfo(tppmessage.CodeFormatError, msgNoMethodID)), nil
	}

	ops, err := s.deps.Adapters.Ops(s.kind)
	if err != nil {
		return Result{}, err
	}
	cd, err := s.deps.ConsentData.Load(ctx, obj.ID)
	if err != nil {
		return Result{}, err
	}

	return startDecoupled(ctx, s.deps, s.kind, ops, obj, effectivePsu(req, auth), req.AuthenticationMethodID, cd)
}

// startDecoupled triggers the out-of-band confirmation. The bank either
// finalises immediately (one-factor shortcut) or leaves the authorisation in
// SCA_METHOD_SELECTED until the push confirmation arrives.
func startDecoupled(ctx context.Context, deps Deps, kind domain.Kind, ops spi.Ops, obj *cmsmodels.BusinessObject, psu domain.PsuIdData, methodID string, cd spi.ConsentData) (Result, error) {
	resp := ops.StartScaDecoupled(ctx, obj, psu, methodID, cd)
	if resp.Technical() {
		return Result{}, technicalError(resp)
	}
	if _, err := thread(ctx, deps, cd, resp.ConsentData); err != nil {
		return Result{}, err
	}
	if resp.HasError() {
		return Failed(businessErrorInfo(resp, tppmessage.CodeScaInvalid)), nil
	}

	payload := Payload{PsuMessage: resp.Payload.PsuMessage}
	if id := resp.Payload.ChosenMethodID; id != "" {
		payload.ChosenScaMethod = &domain.AuthenticationObject{ID: id, Decoupled: true}
	}

	if resp.Payload.Finalised {
		return Terminal(domain.ScaStatusFinalised, payload).withObjectStatus(finalObjectStatus(kind)), nil
	}
	return Continue(domain.ScaStatusMethodSelected, payload), nil
}
