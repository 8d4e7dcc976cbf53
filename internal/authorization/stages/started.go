package stages

import (
	"context"

	"xs2gate/internal/authorization/models"
	cmsmodels "xs2gate/internal/cms/models"
	"xs2gate/internal/tppmessage"
	"xs2gate/pkg/domain"
)

// startedStage handles STARTED (and, where the approach supports the
// identification sub-step, PSU_IDENTIFIED) for the synchronous approaches.
// One call covers credential check, blob update, method listing and the
// zero/one/many branching.
type startedStage struct {
	deps Deps
	kind domain.Kind

	// supportsIdentification enables the no-adapter identification sub-step.
	// Redirect flows never see it; the PSU identifies at the bank's own UI.
	supportsIdentification bool
}

func (s *startedStage) Apply(ctx context.Context, req *models.UpdateRequest, auth *models.Authorisation, obj *cmsmodels.BusinessObject) (Result, error) {
	if s.supportsIdentification && req.IsIdentificationStep {
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

	psu := effectivePsu(req, auth)
	listResp := ops.ListScaMethods(ctx, obj, psu, cd)
	if listResp.Technical() {
		return Result{}, technicalError(listResp)
	}
	cd, err = thread(ctx, s.deps, cd, listResp.ConsentData)
	if err != nil {
		return Result{}, err
	}
	if listResp.HasError() {
		return Failed(businessErrorInfo(listResp, tppmessage.CodeScaMethodUnknown)), nil
	}

	methods := listResp.Payload
	switch len(methods) {
	case 0:
		if s.exempt(obj) {
			return Terminal(domain.ScaStatusExempted, Payload{}).withObjectStatus(finalObjectStatus(s.kind)), nil
		}
		return FailedWithObjectStatus(
			tppmessage.NewErrorInfo(tppmessage.CodeScaMethodUnknown, "no SCA method is available for the PSU"),
			rejectedObjectStatus(s.kind),
		), nil

	case 1:
		return requestCode(ctx, s.deps, ops, obj, psu, methods[0], cd)

	default:
		return Continue(domain.ScaStatusPsuAuthenticated, Payload{AvailableScaMethods: methods}), nil
	}
}

// exempt reports whether the zero-method outcome may finalise without SCA:
// a one-time all-available-accounts AIS consent, single level, with the
// deployment exemption enabled.
func (s *startedStage) exempt(obj *cmsmodels.BusinessObject) bool {
	return obj.OneTimeAllAvailableAccounts() &&
		!obj.MultilevelSca &&
		s.deps.Profile.OneTimeAvailableAccountsExemptionEnabled()
}
