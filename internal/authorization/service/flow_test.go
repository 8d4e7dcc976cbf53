package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xs2gate/internal/authorization/models"
	"xs2gate/internal/authorization/service"
	"xs2gate/internal/authorization/stages"
	cmsmodels "xs2gate/internal/cms/models"
	cmsstore "xs2gate/internal/cms/store"
	"xs2gate/internal/consentdata"
	"xs2gate/internal/events"
	"xs2gate/internal/profile"
	"xs2gate/internal/spi"
	"xs2gate/internal/spi/mockbank"
	"xs2gate/internal/tppmessage"
	"xs2gate/pkg/domain"
	dErrors "xs2gate/pkg/domain-errors"
)

// flowEnv wires the orchestrator against real in-memory stores and the mock
// bank adapter so whole authorisation journeys run without any doubles.
type flowEnv struct {
	svc       *service.Service
	store     *cmsstore.InMemoryStore
	publisher *events.InMemoryPublisher
}

func newFlowEnv(t *testing.T, prof *profile.Profile, bankOpts ...mockbank.Option) *flowEnv {
	t.Helper()

	bank := mockbank.New(bankOpts...)
	registry, err := spi.NewRegistry(bank, bank, bank, bank)
	require.NoError(t, err)

	resolver, err := stages.NewResolver(stages.Deps{
		Adapters:    registry,
		ConsentData: consentdata.NewGateway(consentdata.NewInMemoryStore()),
		Profile:     prof,
	})
	require.NoError(t, err)

	store := cmsstore.NewInMemoryStore()
	publisher := events.NewInMemoryPublisher()
	svc, err := service.New(store, store.BusinessObjects(), resolver, prof,
		service.WithPublisher(publisher),
	)
	require.NoError(t, err)

	return &flowEnv{svc: svc, store: store, publisher: publisher}
}

func (e *flowEnv) putObject(t *testing.T, obj *cmsmodels.BusinessObject) {
	t.Helper()
	require.NoError(t, e.store.PutBusinessObject(context.Background(), obj))
}

func (e *flowEnv) objectStatus(t *testing.T, id domain.BusinessObjectID) cmsmodels.Status {
	t.Helper()
	obj, err := e.store.BusinessObjects().FindByID(context.Background(), id)
	require.NoError(t, err)
	return obj.Status
}

// decoupledProfile writes a profile file selecting the decoupled approach for
// every kind, the way a deployment would configure it.
func decoupledProfile(t *testing.T) *profile.Profile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scaApproaches:
  AIS: DECOUPLED
  PIIS: DECOUPLED
  PIS: DECOUPLED
  PIS_CANCELLATION: DECOUPLED
`), 0o600))
	prof, err := profile.Load(path)
	require.NoError(t, err)
	return prof
}

func TestEmbeddedConsentJourney(t *testing.T) {
	env := newFlowEnv(t, profile.Default())
	ctx := context.Background()
	psu := domain.PsuIdData{PsuID: "psu-1"}

	consent := &cmsmodels.BusinessObject{
		ID:     domain.NewBusinessObjectID(),
		Kind:   domain.KindAIS,
		Status: cmsmodels.StatusReceived,
	}
	env.putObject(t, consent)

	auth, err := env.svc.StartAuthorisation(ctx, domain.KindAIS, consent.ID, psu)
	require.NoError(t, err)
	assert.Equal(t, domain.ScaStatusStarted, auth.Status)
	assert.Equal(t, domain.ApproachEmbedded, auth.ChosenScaApproach)

	// Authenticate: the mock bank offers two methods.
	resp, err := env.svc.UpdateAuthorisation(ctx, domain.KindAIS, auth.ID,
		&models.UpdateRequest{Psu: psu, Password: "12345"})
	require.NoError(t, err)
	assert.Equal(t, domain.ScaStatusPsuAuthenticated, resp.Status)
	require.Len(t, resp.AvailableScaMethods, 2)

	// Select the SMS method and receive a challenge.
	resp, err = env.svc.UpdateAuthorisation(ctx, domain.KindAIS, auth.ID,
		&models.UpdateRequest{AuthenticationMethodID: "sms-otp"})
	require.NoError(t, err)
	assert.Equal(t, domain.ScaStatusMethodSelected, resp.Status)
	require.NotNil(t, resp.ChallengeData)
	assert.Equal(t, "integer", resp.ChallengeData.OtpFormat)

	// Confirm with the OTP: the consent becomes usable.
	resp, err = env.svc.UpdateAuthorisation(ctx, domain.KindAIS, auth.ID,
		&models.UpdateRequest{ScaAuthenticationData: "123456"})
	require.NoError(t, err)
	assert.Equal(t, domain.ScaStatusFinalised, resp.Status)
	assert.Equal(t, cmsmodels.StatusValid, env.objectStatus(t, consent.ID))

	// Every persisted transition produced an event.
	changes := env.publisher.Events()
	require.Len(t, changes, 4)
	assert.Equal(t, domain.ScaStatusStarted, changes[0].NewStatus)
	assert.Equal(t, domain.ScaStatusFinalised, changes[3].NewStatus)

	// The finalised authorisation is immutable.
	_, err = env.svc.UpdateAuthorisation(ctx, domain.KindAIS, auth.ID,
		&models.UpdateRequest{ScaAuthenticationData: "123456"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestEmbeddedPaymentWrongOtpFails(t *testing.T) {
	env := newFlowEnv(t, profile.Default())
	ctx := context.Background()
	psu := domain.PsuIdData{PsuID: "psu-1"}

	payment := &cmsmodels.BusinessObject{
		ID:     domain.NewBusinessObjectID(),
		Kind:   domain.KindPIS,
		Status: cmsmodels.StatusPaymentReceived,
	}
	env.putObject(t, payment)

	auth, err := env.svc.StartAuthorisation(ctx, domain.KindPIS, payment.ID, psu)
	require.NoError(t, err)

	_, err = env.svc.UpdateAuthorisation(ctx, domain.KindPIS, auth.ID,
		&models.UpdateRequest{Psu: psu, Password: "12345"})
	require.NoError(t, err)
	_, err = env.svc.UpdateAuthorisation(ctx, domain.KindPIS, auth.ID,
		&models.UpdateRequest{AuthenticationMethodID: "sms-otp"})
	require.NoError(t, err)

	_, err = env.svc.UpdateAuthorisation(ctx, domain.KindPIS, auth.ID,
		&models.UpdateRequest{ScaAuthenticationData: "999999"})
	require.Error(t, err)

	var scaErr *models.ScaError
	require.ErrorAs(t, err, &scaErr)
	assert.Equal(t, tppmessage.CodeScaInvalid, scaErr.Info.Code)

	status, err := env.svc.GetScaStatus(ctx, domain.KindPIS, auth.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScaStatusFailed, status)

	// The payment itself is untouched; the TPP may start a new authorisation.
	assert.Equal(t, cmsmodels.StatusPaymentReceived, env.objectStatus(t, payment.ID))
	_, err = env.svc.StartAuthorisation(ctx, domain.KindPIS, payment.ID, psu)
	require.NoError(t, err)
}

func TestDecoupledPaymentJourney(t *testing.T) {
	env := newFlowEnv(t, decoupledProfile(t))
	ctx := context.Background()
	psu := domain.PsuIdData{PsuID: "psu-1"}

	payment := &cmsmodels.BusinessObject{
		ID:     domain.NewBusinessObjectID(),
		Kind:   domain.KindPIS,
		Status: cmsmodels.StatusPaymentReceived,
	}
	env.putObject(t, payment)

	auth, err := env.svc.StartAuthorisation(ctx, domain.KindPIS, payment.ID, psu)
	require.NoError(t, err)
	assert.Equal(t, domain.ApproachDecoupled, auth.ChosenScaApproach)

	// Authenticate; the flow hands over to the bank app.
	resp, err := env.svc.UpdateAuthorisation(ctx, domain.KindPIS, auth.ID,
		&models.UpdateRequest{Psu: psu, Password: "12345"})
	require.NoError(t, err)
	assert.Equal(t, domain.ScaStatusMethodSelected, resp.Status)
	assert.NotEmpty(t, resp.PsuMessage)

	// The push channel confirms out-of-band.
	resp, err = env.svc.ConfirmDecoupled(ctx, domain.KindPIS, auth.ID, psu, "123456")
	require.NoError(t, err)
	assert.Equal(t, domain.ScaStatusFinalised, resp.Status)
	assert.Equal(t, cmsmodels.StatusPaymentExecuted, env.objectStatus(t, payment.ID))
}

func TestDecoupledOneFactorShortcut(t *testing.T) {
	env := newFlowEnv(t, decoupledProfile(t), mockbank.WithOneFactorPsu("psu-1"))
	ctx := context.Background()
	psu := domain.PsuIdData{PsuID: "psu-1"}

	payment := &cmsmodels.BusinessObject{
		ID:     domain.NewBusinessObjectID(),
		Kind:   domain.KindPIS,
		Status: cmsmodels.StatusPaymentReceived,
	}
	env.putObject(t, payment)

	auth, err := env.svc.StartAuthorisation(ctx, domain.KindPIS, payment.ID, psu)
	require.NoError(t, err)

	resp, err := env.svc.UpdateAuthorisation(ctx, domain.KindPIS, auth.ID,
		&models.UpdateRequest{Psu: psu, Password: "12345"})
	require.NoError(t, err)
	assert.Equal(t, domain.ScaStatusFinalised, resp.Status)
	assert.Equal(t, cmsmodels.StatusPaymentExecuted, env.objectStatus(t, payment.ID))
}

func TestOneTimeAllAccountsConsentExemption(t *testing.T) {
	// The mock bank offering no methods models a PSU without any SCA device.
	env := newFlowEnv(t, profile.Default(), mockbank.WithMethods())
	ctx := context.Background()
	psu := domain.PsuIdData{PsuID: "psu-1"}

	consent := &cmsmodels.BusinessObject{
		ID:                   domain.NewBusinessObjectID(),
		Kind:                 domain.KindAIS,
		Status:               cmsmodels.StatusReceived,
		AllAvailableAccounts: true,
	}
	env.putObject(t, consent)

	auth, err := env.svc.StartAuthorisation(ctx, domain.KindAIS, consent.ID, psu)
	require.NoError(t, err)

	resp, err := env.svc.UpdateAuthorisation(ctx, domain.KindAIS, auth.ID,
		&models.UpdateRequest{Psu: psu, Password: "12345"})
	require.NoError(t, err)
	assert.Equal(t, domain.ScaStatusExempted, resp.Status)
	assert.Equal(t, cmsmodels.StatusValid, env.objectStatus(t, consent.ID))
}

func TestSecondActiveAuthorisationRejected(t *testing.T) {
	env := newFlowEnv(t, profile.Default())
	ctx := context.Background()
	psu := domain.PsuIdData{PsuID: "psu-1"}

	consent := &cmsmodels.BusinessObject{
		ID:     domain.NewBusinessObjectID(),
		Kind:   domain.KindAIS,
		Status: cmsmodels.StatusReceived,
	}
	env.putObject(t, consent)

	_, err := env.svc.StartAuthorisation(ctx, domain.KindAIS, consent.ID, psu)
	require.NoError(t, err)

	_, err = env.svc.StartAuthorisation(ctx, domain.KindAIS, consent.ID, psu)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}
