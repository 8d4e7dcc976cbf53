package stages

import (
	"context"

	"xs2gate/internal/authorization/models"
	cmsmodels "xs2gate/internal/cms/models"
	"xs2gate/internal/spi"
	"xs2gate/internal/tppmessage"
	"xs2gate/pkg/domain"
)

const msgNoAuthenticationData = "please provide the SCA authentication data"

// methodSelectedStage handles SCA_METHOD_SELECTED for every approach that
// reaches it: the PSU-entered confirmation value is verified and, for
// payments and cancellations, the business operation executes in the same
// step. Decoupled push confirmations re-enter here through the same path.
type methodSelectedStage struct {
	deps Deps
	kind domain.Kind
}

func (s *methodSelectedStage) Apply(ctx context.Context, req *models.UpdateRequest, auth *models.Authorisation, obj *cmsmodels.BusinessObject) (Result, error) {
	confirmation := req.ScaAuthenticationData
	if confirmation == "" {
		confirmation = req.ConfirmationCode
	}
	if confirmation == "" {
		return Failed(tppmessage.NewErrorInfo(tppmessage.CodeFormatError, msgNoAuthenticationData)), nil
	}

	ops, err := s.deps.Adapters.Ops(s.kind)
	if err != nil {
		return Result{}, err
	}
	cd, err := s.deps.ConsentData.Load(ctx, obj.ID)
	if err != nil {
		return Result{}, err
	}

	resp := ops.VerifyAndFinalise(ctx, obj, spi.ScaConfirmation{
		Psu:                   effectivePsu(req, auth),
		ScaAuthenticationData: confirmation,
	}, cd)
	if resp.Technical() {
		return Result{}, technicalError(resp)
	}
	if _, err := thread(ctx, s.deps, cd, resp.ConsentData); err != nil {
		return Result{}, err
	}
	if resp.HasError() {
		return Failed(businessErrorInfo(resp, tppmessage.CodeScaInvalid)), nil
	}

	return Terminal(domain.ScaStatusFinalised, Payload{ScaAuthenticationData: confirmation}).
		withObjectStatus(finalObjectStatus(s.kind)), nil
}
