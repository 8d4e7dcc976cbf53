package handler

import (
	"encoding/base64"

	"xs2gate/internal/authorization/models"
	"xs2gate/pkg/domain"
)

type startResponse struct {
	AuthorisationID string `json:"authorisationId"`
	ScaStatus       string `json:"scaStatus"`
	ScaApproach     string `json:"scaApproach"`
}

type statusResponse struct {
	ScaStatus string `json:"scaStatus"`
}

type scaMethodResponse struct {
	AuthenticationMethodID string `json:"authenticationMethodId"`
	AuthenticationType     string `json:"authenticationType,omitempty"`
	Name                   string `json:"name,omitempty"`
}

type challengeResponse struct {
	Image          string `json:"image,omitempty"`
	Data           string `json:"data,omitempty"`
	ImageLink      string `json:"imageLink,omitempty"`
	OtpMaxLength   int    `json:"otpMaxLength,omitempty"`
	OtpFormat      string `json:"otpFormat,omitempty"`
	AdditionalInfo string `json:"additionalInformation,omitempty"`
}

type updateResponse struct {
	ScaStatus       string              `json:"scaStatus"`
	ScaMethods      []scaMethodResponse `json:"scaMethods,omitempty"`
	ChosenScaMethod *scaMethodResponse  `json:"chosenScaMethod,omitempty"`
	ChallengeData   *challengeResponse  `json:"challengeData,omitempty"`
	PsuMessage      string              `json:"psuMessage,omitempty"`
}

func fromAuthorisation(auth *models.Authorisation) startResponse {
	return startResponse{
		AuthorisationID: auth.ID.String(),
		ScaStatus:       auth.Status.String(),
		ScaApproach:     auth.ChosenScaApproach.String(),
	}
}

func fromUpdateResponse(resp *models.UpdateResponse) updateResponse {
	out := updateResponse{
		ScaStatus:  resp.Status.String(),
		PsuMessage: resp.PsuMessage,
	}
	for _, m := range resp.AvailableScaMethods {
		out.ScaMethods = append(out.ScaMethods, toScaMethod(m))
	}
	if resp.ChosenScaMethod != nil {
		chosen := toScaMethod(*resp.ChosenScaMethod)
		out.ChosenScaMethod = &chosen
	}
	if resp.ChallengeData != nil {
		out.ChallengeData = &challengeResponse{
			Image:          base64.StdEncoding.EncodeToString(resp.ChallengeData.Image),
			Data:           resp.ChallengeData.Data,
			ImageLink:      resp.ChallengeData.ImageLink,
			OtpMaxLength:   resp.ChallengeData.OtpMaxLength,
			OtpFormat:      resp.ChallengeData.OtpFormat,
			AdditionalInfo: resp.ChallengeData.AdditionalInfo,
		}
	}
	return out
}

func toScaMethod(m domain.AuthenticationObject) scaMethodResponse {
	return scaMethodResponse{
		AuthenticationMethodID: m.ID,
		AuthenticationType:     m.Type,
		Name:                   m.Name,
	}
}
