package domain

import dErrors "xs2gate/pkg/domain-errors"

// ScaStatus is the authorisation state machine position. FINALISED, FAILED
// and EXEMPTED are terminal: an authorisation in one of these states is
// immutable.
type ScaStatus string

const (
	ScaStatusStarted          ScaStatus = "STARTED"
	ScaStatusPsuIdentified    ScaStatus = "PSU_IDENTIFIED"
	ScaStatusPsuAuthenticated ScaStatus = "PSU_AUTHENTICATED"
	ScaStatusMethodSelected   ScaStatus = "SCA_METHOD_SELECTED"
	ScaStatusFinalised        ScaStatus = "FINALISED"
	ScaStatusFailed           ScaStatus = "FAILED"
	ScaStatusExempted         ScaStatus = "EXEMPTED"
)

// IsTerminal reports whether no further transition may be applied.
func (s ScaStatus) IsTerminal() bool {
	switch s {
	case ScaStatusFinalised, ScaStatusFailed, ScaStatusExempted:
		return true
	}
	return false
}

func (s ScaStatus) String() string { return string(s) }

// NonTerminalStatuses returns every status a stage handler can be registered
// for. Used by the resolver exhaustiveness checks.
func NonTerminalStatuses() []ScaStatus {
	return []ScaStatus{
		ScaStatusStarted,
		ScaStatusPsuIdentified,
		ScaStatusPsuAuthenticated,
		ScaStatusMethodSelected,
	}
}

// ScaApproach is the authentication strategy fixed per deployment and pinned
// on the authorisation when first resolved.
type ScaApproach string

const (
	ApproachRedirect  ScaApproach = "REDIRECT"
	ApproachEmbedded  ScaApproach = "EMBEDDED"
	ApproachDecoupled ScaApproach = "DECOUPLED"
	ApproachOAuth     ScaApproach = "OAUTH"
)

func (a ScaApproach) String() string { return string(a) }

// ParseScaApproach validates an approach read from configuration.
func ParseScaApproach(s string) (ScaApproach, error) {
	switch ScaApproach(s) {
	case ApproachRedirect, ApproachEmbedded, ApproachDecoupled, ApproachOAuth:
		return ScaApproach(s), nil
	}
	return "", dErrors.New(dErrors.CodeConfiguration, "unknown SCA approach: "+s)
}

// PsuIdData identifies the bank customer authorising the action. All fields
// come from the TPP request or a prior identification step.
type PsuIdData struct {
	PsuID              string
	PsuIDType          string
	PsuCorporateID     string
	PsuCorporateIDType string
}

// IsEmpty reports whether no identification data is present at all.
func (p PsuIdData) IsEmpty() bool {
	return p.PsuID == "" && p.PsuCorporateID == ""
}

// AuthenticationObject describes one SCA method the ASPSP offers the PSU
// (an SMS OTP, a push app, a chipTAN device...).
type AuthenticationObject struct {
	ID   string
	Type string
	Name string
	// Decoupled marks methods confirmed out-of-band rather than by a code
	// entered at the TPP interface.
	Decoupled bool
}

// ChallengeData carries the challenge the PSU must answer for the chosen
// method, passed through from the adapter untouched.
type ChallengeData struct {
	Image          []byte
	Data           string
	ImageLink      string
	OtpMaxLength   int
	OtpFormat      string
	AdditionalInfo string
}

// IsZero reports whether the adapter returned no challenge at all.
func (c ChallengeData) IsZero() bool {
	return len(c.Image) == 0 && c.Data == "" && c.ImageLink == "" &&
		c.OtpMaxLength == 0 && c.OtpFormat == "" && c.AdditionalInfo == ""
}

// TppInfo identifies the third-party provider that owns a business object.
// Used for access-control cross checks outside this core.
type TppInfo struct {
	AuthorisationNumber string
	Name                string
	Roles               []string
}
