// Package profile holds the static per-deployment ASPSP policy: which SCA
// approach is active per business-object kind and the exemption rules. The
// profile is resolved once at startup, never per request.
package profile

import (
	"os"

	"gopkg.in/yaml.v3"

	"xs2gate/pkg/domain"
	dErrors "xs2gate/pkg/domain-errors"
)

// Profile is the deployment policy.
type Profile struct {
	// approach per kind; every kind must have an entry.
	approaches map[domain.Kind]domain.ScaApproach

	// scaRequiredForOneTimeAvailableAccounts disables the zero-method
	// exemption for one-time all-available-accounts AIS consents when true.
	scaRequiredForOneTimeAvailableAccounts bool
}

// fileFormat is the on-disk YAML shape.
type fileFormat struct {
	ScaApproaches map[string]string `yaml:"scaApproaches"`
	Ais           struct {
		ScaByOneTimeAvailableAccountsConsentRequired bool `yaml:"scaByOneTimeAvailableAccountsConsentRequired"`
	} `yaml:"ais"`
}

// Default returns the policy used when no profile file is configured:
// embedded everywhere, exemption enabled.
func Default() *Profile {
	return &Profile{
		approaches: map[domain.Kind]domain.ScaApproach{
			domain.KindAIS:             domain.ApproachEmbedded,
			domain.KindPIIS:            domain.ApproachEmbedded,
			domain.KindPIS:             domain.ApproachEmbedded,
			domain.KindPISCancellation: domain.ApproachEmbedded,
		},
	}
}

// Load reads a YAML profile file. Kinds missing from the file fall back to
// the defaults; unknown kinds or approaches fail startup.
func Load(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "read ASPSP profile")
	}

	var f fileFormat
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "parse ASPSP profile")
	}

	p := Default()
	for kindRaw, approachRaw := range f.ScaApproaches {
		kind, err := domain.ParseKind(kindRaw)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "ASPSP profile lists unknown kind")
		}
		approach, err := domain.ParseScaApproach(approachRaw)
		if err != nil {
			return nil, err
		}
		p.approaches[kind] = approach
	}
	p.scaRequiredForOneTimeAvailableAccounts = f.Ais.ScaByOneTimeAvailableAccountsConsentRequired
	return p, nil
}

// ApproachFor resolves the active SCA approach for a kind.
func (p *Profile) ApproachFor(kind domain.Kind) (domain.ScaApproach, error) {
	approach, ok := p.approaches[kind]
	if !ok {
		return "", dErrors.New(dErrors.CodeConfiguration, "no SCA approach configured for kind "+kind.String())
	}
	return approach, nil
}

// OneTimeAvailableAccountsExemptionEnabled reports whether a one-time
// all-available-accounts AIS consent may finish without any SCA method.
func (p *Profile) OneTimeAvailableAccountsExemptionEnabled() bool {
	return !p.scaRequiredForOneTimeAvailableAccounts
}
