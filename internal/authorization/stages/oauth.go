package stages

import (
	"context"
	"errors"

	"xs2gate/internal/authorization/models"
	cmsmodels "xs2gate/internal/cms/models"
	"xs2gate/internal/token"
	"xs2gate/internal/tppmessage"
	"xs2gate/pkg/domain"
	dErrors "xs2gate/pkg/domain-errors"
)

// oauthStage handles STARTED under the OAUTH approach. Authentication is
// delegated to the authorisation server; the gateway only validates the
// resulting access token and finalises.
type oauthStage struct {
	deps Deps
	kind domain.Kind
}

func (s *oauthStage) Apply(ctx context.Context, req *models.UpdateRequest, _ *models.Authorisation, _ *cmsmodels.BusinessObject) (Result, error) {
	if req.AccessToken == "" {
		return Failed(tppmessage.NewErrorInfo(tppmessage.CodeFormatError, "please provide the access token")), nil
	}
	if s.deps.Tokens == nil {
		return Result{}, dErrors.New(dErrors.CodeConfiguration, "OAUTH approach is active but no token verifier is configured")
	}

	err := s.deps.Tokens.Verify(ctx, req.AccessToken)
	switch {
	case err == nil:
		return Terminal(domain.ScaStatusFinalised, Payload{}).withObjectStatus(finalObjectStatus(s.kind)), nil
	case errors.Is(err, token.ErrExpired):
		return Failed(tppmessage.NewErrorInfo(tppmessage.CodeTokenExpired, "access token expired")), nil
	default:
		return Failed(tppmessage.NewErrorInfo(tppmessage.CodeTokenInvalid, "access token could not be verified")), nil
	}
}
