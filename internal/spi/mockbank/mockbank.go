// Package mockbank is a deterministic authentication backend for local
// development and tests. One Adapter serves all four business-object kinds.
// It keeps a small JSON step trace in the consent-data blob so the threading
// behaviour of the core is observable end to end.
package mockbank

import (
	"context"
	"encoding/json"

	cmsmodels "xs2gate/internal/cms/models"
	"xs2gate/internal/spi"
	"xs2gate/pkg/domain"
)

const (
	defaultPassword = "12345"
	defaultOtp      = "123456"
)

// Adapter implements every SPI adapter interface with fixed credentials.
type Adapter struct {
	password     string
	otp          string
	methods      []domain.AuthenticationObject
	oneFactorPsu string
}

// Option configures the Adapter.
type Option func(*Adapter)

// WithPassword overrides the accepted PSU password.
func WithPassword(password string) Option {
	return func(a *Adapter) { a.password = password }
}

// WithOtp overrides the accepted confirmation value.
func WithOtp(otp string) Option {
	return func(a *Adapter) { a.otp = otp }
}

// WithMethods overrides the SCA methods offered to every PSU.
func WithMethods(methods ...domain.AuthenticationObject) Option {
	return func(a *Adapter) { a.methods = methods }
}

// WithOneFactorPsu names a PSU whose decoupled confirmation finalises
// immediately, without an out-of-band round trip.
func WithOneFactorPsu(psuID string) Option {
	return func(a *Adapter) { a.oneFactorPsu = psuID }
}

func New(opts ...Option) *Adapter {
	a := &Adapter{
		password: defaultPassword,
		otp:      defaultOtp,
		methods: []domain.AuthenticationObject{
			{ID: "sms-otp", Type: "SMS_OTP", Name: "SMS on +49 *** 123"},
			{ID: "push-otp", Type: "PUSH_OTP", Name: "Bank app push", Decoupled: true},
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// trace is the blob payload: a step counter plus the last operation name.
type trace struct {
	Steps  int    `json:"steps"`
	LastOp string `json:"lastOp"`
}

func (a *Adapter) step(obj *cmsmodels.BusinessObject, cd spi.ConsentData, op string) spi.ConsentData {
	var t trace
	if !cd.IsEmpty() {
		_ = json.Unmarshal(cd.Bytes, &t)
	}
	t.Steps++
	t.LastOp = op
	raw, _ := json.Marshal(t)
	return spi.ConsentData{BusinessObjectID: obj.ID, Bytes: raw}
}

func (a *Adapter) AuthorisePsu(_ context.Context, obj *cmsmodels.BusinessObject, psu domain.PsuIdData, password string, cd spi.ConsentData) spi.Response[spi.AuthorisationResult] {
	next := a.step(obj, cd, "authorisePsu")
	if psu.IsEmpty() || password != a.password {
		return spi.Failure[spi.AuthorisationResult](spi.StatusUnauthorized, next, "PSU credentials rejected")
	}
	return spi.Success(spi.AuthorisationSuccess, next)
}

func (a *Adapter) ListScaMethods(_ context.Context, obj *cmsmodels.BusinessObject, _ domain.PsuIdData, cd spi.ConsentData) spi.Response[[]domain.AuthenticationObject] {
	methods := make([]domain.AuthenticationObject, len(a.methods))
	copy(methods, a.methods)
	return spi.Success(methods, a.step(obj, cd, "listScaMethods"))
}

func (a *Adapter) RequestAuthorisationCode(_ context.Context, obj *cmsmodels.BusinessObject, _ domain.PsuIdData, methodID string, cd spi.ConsentData) spi.Response[spi.AuthorisationCodeResult] {
	next := a.step(obj, cd, "requestAuthorisationCode")
	method, ok := a.methodByID(methodID)
	if !ok {
		return spi.Failure[spi.AuthorisationCodeResult](spi.StatusFailure, next, "unknown SCA method "+methodID)
	}
	return spi.Success(spi.AuthorisationCodeResult{
		ChosenMethod: method,
		Challenge: domain.ChallengeData{
			OtpMaxLength:   len(a.otp),
			OtpFormat:      "integer",
			AdditionalInfo: "enter the code sent via " + method.Name,
		},
	}, next)
}

func (a *Adapter) StartScaDecoupled(_ context.Context, obj *cmsmodels.BusinessObject, psu domain.PsuIdData, methodID string, cd spi.ConsentData) spi.Response[spi.DecoupledResult] {
	next := a.step(obj, cd, "startScaDecoupled")
	if methodID == "" {
		methodID = "push-otp"
	}
	if a.oneFactorPsu != "" && psu.PsuID == a.oneFactorPsu {
		return spi.Success(spi.DecoupledResult{
			Finalised:      true,
			PsuMessage:     "confirmed without a second factor",
			ChosenMethodID: methodID,
		}, next)
	}
	return spi.Success(spi.DecoupledResult{
		PsuMessage:     "please confirm the operation in your banking app",
		ChosenMethodID: methodID,
	}, next)
}

func (a *Adapter) VerifyScaAuthorisation(_ context.Context, obj *cmsmodels.BusinessObject, confirmation spi.ScaConfirmation, cd spi.ConsentData) spi.Response[spi.FinalisationResult] {
	return a.verify(obj, confirmation, cd, false)
}

func (a *Adapter) VerifyScaAndExecutePayment(_ context.Context, obj *cmsmodels.BusinessObject, confirmation spi.ScaConfirmation, cd spi.ConsentData) spi.Response[spi.FinalisationResult] {
	return a.verify(obj, confirmation, cd, true)
}

func (a *Adapter) VerifyScaAndCancelPayment(_ context.Context, obj *cmsmodels.BusinessObject, confirmation spi.ScaConfirmation, cd spi.ConsentData) spi.Response[spi.FinalisationResult] {
	return a.verify(obj, confirmation, cd, true)
}

func (a *Adapter) verify(obj *cmsmodels.BusinessObject, confirmation spi.ScaConfirmation, cd spi.ConsentData, executes bool) spi.Response[spi.FinalisationResult] {
	next := a.step(obj, cd, "verify")
	if confirmation.ScaAuthenticationData != a.otp {
		return spi.Failure[spi.FinalisationResult](spi.StatusFailure, next, "authentication code rejected")
	}
	return spi.Success(spi.FinalisationResult{Executed: executes}, next)
}

func (a *Adapter) methodByID(id string) (domain.AuthenticationObject, bool) {
	for _, m := range a.methods {
		if m.ID == id {
			return m, true
		}
	}
	return domain.AuthenticationObject{}, false
}
