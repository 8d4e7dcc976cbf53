package domain

import dErrors "xs2gate/pkg/domain-errors"

// Kind is the business-object family an authorisation belongs to. It is one
// axis of the stage dispatch key, so the set is closed and validated at the
// trust boundary.
type Kind string

const (
	KindAIS             Kind = "AIS"
	KindPIIS            Kind = "PIIS"
	KindPIS             Kind = "PIS"
	KindPISCancellation Kind = "PIS_CANCELLATION"
)

// Kinds returns every supported business-object kind.
func Kinds() []Kind {
	return []Kind{KindAIS, KindPIIS, KindPIS, KindPISCancellation}
}

// IsConsent reports whether the kind authorises a consent rather than a
// payment operation. Consent kinds finalise by updating consent status;
// payment kinds finalise by executing or cancelling the payment.
func (k Kind) IsConsent() bool {
	return k == KindAIS || k == KindPIIS
}

func (k Kind) String() string { return string(k) }

// ParseKind validates an externally supplied kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindAIS, KindPIIS, KindPIS, KindPISCancellation:
		return Kind(s), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown business object kind: "+s)
}
