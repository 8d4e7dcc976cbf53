// Package tppmessage maps internal error categories to the regulator-defined
// wire error envelope. The mapping is a static table: one row per category,
// covering every category the stage handlers and orchestrator can produce.
package tppmessage

import (
	"net/http"

	"xs2gate/pkg/domain"
	dErrors "xs2gate/pkg/domain-errors"
)

// Code is the machine-readable error category from the PSD2 taxonomy.
type Code string

const (
	CodeFormatError             Code = "FORMAT_ERROR"
	CodePsuCredentialsInvalid   Code = "PSU_CREDENTIALS_INVALID"
	CodeCorporateIDInvalid      Code = "CORPORATE_ID_INVALID"
	CodeConsentUnknown          Code = "CONSENT_UNKNOWN"
	CodeConsentInvalid          Code = "CONSENT_INVALID"
	CodeConsentExpired          Code = "CONSENT_EXPIRED"
	CodeResourceUnknown         Code = "RESOURCE_UNKNOWN"
	CodeScaMethodUnknown        Code = "SCA_METHOD_UNKNOWN"
	CodeScaInvalid              Code = "SCA_INVALID"
	CodeStatusInvalid           Code = "STATUS_INVALID"
	CodeCancellationInvalid     Code = "CANCELLATION_INVALID"
	CodeTokenInvalid            Code = "TOKEN_INVALID"
	CodeTokenExpired            Code = "TOKEN_EXPIRED"
	CodeServiceBlocked          Code = "SERVICE_BLOCKED"
	CodeRequestedFormatsInvalid Code = "REQUESTED_FORMATS_INVALID"
	CodeUnsupportedMediaType    Code = "UNSUPPORTED_MEDIA_TYPE"
	CodeInternalServerError     Code = "INTERNAL_SERVER_ERROR"
	CodeServiceUnavailable      Code = "SERVICE_UNAVAILABLE"
)

// Category is the severity tag on a wire message.
type Category string

const (
	CategoryError   Category = "ERROR"
	CategoryWarning Category = "WARNING"
)

// ErrorInfo is the internal error record stages attach to a failed
// authorisation before it reaches the wire mapper.
type ErrorInfo struct {
	Code  Code
	Path  string
	Texts []string
}

// NewErrorInfo builds an ErrorInfo with optional human-readable texts.
func NewErrorInfo(code Code, texts ...string) *ErrorInfo {
	return &ErrorInfo{Code: code, Texts: texts}
}

// Message is one entry in the wire envelope.
type Message struct {
	Category Category `json:"category"`
	Code     Code     `json:"code"`
	Path     string   `json:"path,omitempty"`
	Text     string   `json:"text,omitempty"`
}

// Envelope is the regulator-defined wire error body. The source spec allows
// multiple simultaneous messages per response.
type Envelope struct {
	TppMessages []Message `json:"tppMessages"`
}

// row pins the default HTTP status and fallback text per code.
type row struct {
	status int
	text   string
}

var table = map[Code]row{
	CodeFormatError:             {http.StatusBadRequest, "format of certain request fields are not matching the requirements"},
	CodePsuCredentialsInvalid:   {http.StatusUnauthorized, "the PSU cannot be matched or the credentials are not correct"},
	CodeCorporateIDInvalid:      {http.StatusUnauthorized, "the PSU corporate id cannot be matched"},
	CodeConsentUnknown:          {http.StatusForbidden, "the consent id cannot be matched by the ASPSP"},
	CodeConsentInvalid:          {http.StatusUnauthorized, "the consent is not valid for the addressed service or resource"},
	CodeConsentExpired:          {http.StatusUnauthorized, "the consent has expired and needs to be renewed"},
	CodeResourceUnknown:         {http.StatusNotFound, "the addressed resource is unknown"},
	CodeScaMethodUnknown:        {http.StatusBadRequest, "the addressed SCA method cannot be matched with the PSU"},
	CodeScaInvalid:              {http.StatusBadRequest, "the SCA confirmation value is not correct"},
	CodeStatusInvalid:           {http.StatusConflict, "the addressed resource is already in a final state"},
	CodeCancellationInvalid:     {http.StatusMethodNotAllowed, "the addressed payment cannot be cancelled"},
	CodeTokenInvalid:            {http.StatusUnauthorized, "the OAuth2 token is not valid for the addressed service"},
	CodeTokenExpired:            {http.StatusUnauthorized, "the OAuth2 token has expired and needs to be renewed"},
	CodeServiceBlocked:          {http.StatusForbidden, "the service is blocked for this TPP"},
	CodeRequestedFormatsInvalid: {http.StatusNotAcceptable, "the requested formats are not offered by the ASPSP"},
	CodeUnsupportedMediaType:    {http.StatusUnsupportedMediaType, "the media type of the request body is not supported"},
	CodeInternalServerError:     {http.StatusInternalServerError, "internal server error"},
	CodeServiceUnavailable:      {http.StatusServiceUnavailable, "the ASPSP authentication backend is currently unavailable"},
}

// HTTPStatus resolves the status family for a code in the context of a
// business-object kind. The only kind-dependent row is CONSENT_UNKNOWN: the
// consent services answer 403 while the payment services answer 404 with
// RESOURCE_UNKNOWN semantics.
func HTTPStatus(kind domain.Kind, code Code) int {
	if code == CodeConsentUnknown && !kind.IsConsent() {
		return http.StatusNotFound
	}
	if r, ok := table[code]; ok {
		return r.status
	}
	return http.StatusInternalServerError
}

// Known reports whether a code has a taxonomy row. Stage tests use it to keep
// the table exhaustive over everything the state machine can emit.
func Known(code Code) bool {
	_, ok := table[code]
	return ok
}

// Map converts an internal ErrorInfo into the wire envelope and its HTTP
// status for the given kind.
func Map(kind domain.Kind, info *ErrorInfo) (int, Envelope) {
	if info == nil {
		return http.StatusInternalServerError, Envelope{TppMessages: []Message{{
			Category: CategoryError,
			Code:     CodeInternalServerError,
			Text:     table[CodeInternalServerError].text,
		}}}
	}

	status := HTTPStatus(kind, info.Code)
	texts := info.Texts
	if len(texts) == 0 {
		if r, ok := table[info.Code]; ok {
			texts = []string{r.text}
		} else {
			texts = []string{"unexpected error"}
		}
	}

	msgs := make([]Message, 0, len(texts))
	for _, text := range texts {
		msgs = append(msgs, Message{
			Category: CategoryError,
			Code:     info.Code,
			Path:     info.Path,
			Text:     text,
		})
	}
	return status, Envelope{TppMessages: msgs}
}

// FromDomainError translates orchestration-level failures (lookups, CAS
// conflicts, adapter infrastructure errors, resolver configuration bugs) that
// never went through a stage handler.
func FromDomainError(kind domain.Kind, err error) (int, Envelope) {
	code := CodeInternalServerError
	switch {
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		if kind.IsConsent() {
			code = CodeConsentUnknown
		} else {
			code = CodeResourceUnknown
		}
	case dErrors.HasCode(err, dErrors.CodeConflict):
		code = CodeStatusInvalid
	case dErrors.HasCode(err, dErrors.CodeTimeout), dErrors.HasCode(err, dErrors.CodeUnavailable):
		code = CodeServiceUnavailable
	case dErrors.HasCode(err, dErrors.CodeInvalidInput), dErrors.HasCode(err, dErrors.CodeValidation),
		dErrors.HasCode(err, dErrors.CodeBadRequest):
		code = CodeFormatError
	case dErrors.HasCode(err, dErrors.CodeUnauthorized):
		code = CodePsuCredentialsInvalid
	}
	return Map(kind, &ErrorInfo{Code: code, Texts: []string{err.Error()}})
}
