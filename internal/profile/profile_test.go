package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xs2gate/pkg/domain"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("parses approaches and exemption policy", func(t *testing.T) {
		path := writeProfile(t, `
scaApproaches:
  AIS: EMBEDDED
  PIS: DECOUPLED
  PIS_CANCELLATION: REDIRECT
ais:
  scaByOneTimeAvailableAccountsConsentRequired: true
`)
		p, err := Load(path)
		require.NoError(t, err)

		approach, err := p.ApproachFor(domain.KindPIS)
		require.NoError(t, err)
		assert.Equal(t, domain.ApproachDecoupled, approach)

		// PIIS not listed: falls back to the default.
		approach, err = p.ApproachFor(domain.KindPIIS)
		require.NoError(t, err)
		assert.Equal(t, domain.ApproachEmbedded, approach)

		assert.False(t, p.OneTimeAvailableAccountsExemptionEnabled())
	})

	t.Run("rejects unknown approach", func(t *testing.T) {
		path := writeProfile(t, "scaApproaches:\n  AIS: TELEPATHY\n")
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		path := writeProfile(t, "scaApproaches:\n  LOANS: EMBEDDED\n")
		_, err := Load(path)
		require.Error(t, err)
	})
}

func TestDefault(t *testing.T) {
	p := Default()
	for _, kind := range domain.Kinds() {
		approach, err := p.ApproachFor(kind)
		require.NoError(t, err)
		assert.Equal(t, domain.ApproachEmbedded, approach)
	}
	assert.True(t, p.OneTimeAvailableAccountsExemptionEnabled())
}
