package handler

import (
	"net/http"

	"xs2gate/internal/authorization/models"
	"xs2gate/pkg/domain"
)

// updateRequest is the wire shape of an authorisation update. PSU
// identification travels in headers, everything else in the body.
type updateRequest struct {
	Password               string `json:"psuAuthenticationData,omitempty"`
	AuthenticationMethodID string `json:"authenticationMethodId,omitempty"`
	ScaAuthenticationData  string `json:"scaAuthenticationData,omitempty"`
	ConfirmationCode       string `json:"confirmationCode,omitempty"`
	AccessToken            string `json:"accessToken,omitempty"`
}

// confirmationRequest is the decoupled push confirmation payload sent by the
// bank's own channel.
type confirmationRequest struct {
	PsuID                 string `json:"psuId,omitempty"`
	ScaAuthenticationData string `json:"scaAuthenticationData"`
}

// psuFromHeaders reads the PSU identification headers defined by the Berlin
// Group API.
func psuFromHeaders(r *http.Request) domain.PsuIdData {
	return domain.PsuIdData{
		PsuID:              r.Header.Get("PSU-ID"),
		PsuIDType:          r.Header.Get("PSU-ID-Type"),
		PsuCorporateID:     r.Header.Get("PSU-Corporate-ID"),
		PsuCorporateIDType: r.Header.Get("PSU-Corporate-ID-Type"),
	}
}

// toModel maps the wire request onto the workflow request. A body carrying
// nothing but PSU headers is the identification sub-step.
func (req updateRequest) toModel(psu domain.PsuIdData) *models.UpdateRequest {
	identification := req.Password == "" &&
		req.AuthenticationMethodID == "" &&
		req.ScaAuthenticationData == "" &&
		req.ConfirmationCode == "" &&
		req.AccessToken == ""
	return &models.UpdateRequest{
		Psu:                    psu,
		Password:               req.Password,
		AuthenticationMethodID: req.AuthenticationMethodID,
		ScaAuthenticationData:  req.ScaAuthenticationData,
		ConfirmationCode:       req.ConfirmationCode,
		AccessToken:            req.AccessToken,
		IsIdentificationStep:   identification,
	}
}
