package stages

import (
	"context"

	"xs2gate/internal/authorization/models"
	cmsmodels "xs2gate/internal/cms/models"
	"xs2gate/internal/tppmessage"
	"xs2gate/pkg/domain"
)

const msgNoMethodID = "please provide the authentication method identifier"

// authenticatedStage handles PSU_AUTHENTICATED for the synchronous
// approaches: the TPP selects one of the methods listed earlier and the bank
// issues a challenge for it.
type authenticatedStage struct {
	deps Deps
	kind domain.Kind
}

func (s *authenticatedStage) Apply(ctx context.Context, req *models.UpdateRequest, auth *models.Authorisation, obj *cmsmodels.BusinessObject) (Result, error) {
	if req.AuthenticationMethodID == "" {
		return Failed(tppmessage.NewErrorInfo(tppmessage.CodeFormatError, msgNoMethodID)), nil
	}
	method, ok := auth.MethodByID(req.AuthenticationMethodID)
	if !ok {
		return Failed(tppmessage.NewErrorInfo(tppmessage.CodeScaMethodUnknown,
			"authentication method "+req.AuthenticationMethodID+" was not offered for this authorisation")), nil
	}

	ops, err := s.deps.Adapters.Ops(s.kind)
	if err != nil {
		return Result{}, err
	}
	cd, err := s.deps.ConsentData.Load(ctx, obj.ID)
	if err != nil {
		return Result{}, err
	}

	return requestCode(ctx, s.deps, ops, obj, effectivePsu(req, auth), method, cd)
}
