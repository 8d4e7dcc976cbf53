//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"xs2gate/internal/authorization/models"
	cmsmodels "xs2gate/internal/cms/models"
	"xs2gate/internal/cms/store"
	"xs2gate/pkg/domain"
	dErrors "xs2gate/pkg/domain-errors"
	"xs2gate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T(), store.Schema)
	s.store = store.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "sca_authorisations", "business_objects")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) seedObject(kind domain.Kind) *cmsmodels.BusinessObject {
	obj := &cmsmodels.BusinessObject{
		ID:     domain.NewBusinessObjectID(),
		Kind:   kind,
		Status: cmsmodels.StatusReceived,
	}
	s.Require().NoError(s.store.PutBusinessObject(context.Background(), obj))
	return obj
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	obj := s.seedObject(domain.KindAIS)

	auth := &models.Authorisation{
		ID:               domain.NewAuthorisationID(),
		BusinessObjectID: obj.ID,
		Kind:             domain.KindAIS,
		Status:           domain.ScaStatusStarted,
		Psu:              domain.PsuIdData{PsuID: "psu-1"},
	}
	s.Require().NoError(s.store.Create(ctx, auth))

	found, err := s.store.FindByID(ctx, auth.ID)
	s.Require().NoError(err)
	s.Equal(domain.ScaStatusStarted, found.Status)
	s.Equal("psu-1", found.Psu.PsuID)

	found.Status = domain.ScaStatusPsuAuthenticated
	found.ChosenScaApproach = domain.ApproachEmbedded
	found.AvailableScaMethods = []domain.AuthenticationObject{
		{ID: "sms-otp", Type: "SMS_OTP", Name: "SMS"},
		{ID: "push-otp", Type: "PUSH_OTP", Name: "Push", Decoupled: true},
	}
	s.Require().NoError(s.store.CompareAndSetStatus(ctx, found, domain.ScaStatusStarted))

	again, err := s.store.FindByID(ctx, auth.ID)
	s.Require().NoError(err)
	s.Equal(domain.ScaStatusPsuAuthenticated, again.Status)
	s.Equal(domain.ApproachEmbedded, again.ChosenScaApproach)
	s.Len(again.AvailableScaMethods, 2)
}

func (s *PostgresStoreSuite) TestOneActiveAuthorisationRule() {
	ctx := context.Background()
	obj := s.seedObject(domain.KindPIS)

	first := &models.Authorisation{
		ID:               domain.NewAuthorisationID(),
		BusinessObjectID: obj.ID,
		Kind:             domain.KindPIS,
		Status:           domain.ScaStatusStarted,
	}
	s.Require().NoError(s.store.Create(ctx, first))

	second := &models.Authorisation{
		ID:               domain.NewAuthorisationID(),
		BusinessObjectID: obj.ID,
		Kind:             domain.KindPIS,
		Status:           domain.ScaStatusStarted,
	}
	err := s.store.Create(ctx, second)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	first.Status = domain.ScaStatusFinalised
	s.Require().NoError(s.store.CompareAndSetStatus(ctx, first, domain.ScaStatusStarted))
	s.Require().NoError(s.store.Create(ctx, second))
}

// TestConcurrentCompareAndSet verifies that exactly one of many concurrent
// transitions from the same status wins.
func (s *PostgresStoreSuite) TestConcurrentCompareAndSet() {
	ctx := context.Background()
	obj := s.seedObject(domain.KindAIS)

	auth := &models.Authorisation{
		ID:               domain.NewAuthorisationID(),
		BusinessObjectID: obj.ID,
		Kind:             domain.KindAIS,
		Status:           domain.ScaStatusStarted,
	}
	s.Require().NoError(s.store.Create(ctx, auth))

	const goroutines = 20
	var wg sync.WaitGroup
	var winners atomic.Int32
	var conflicts atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			update := *auth
			update.Status = domain.ScaStatusPsuAuthenticated
			err := s.store.CompareAndSetStatus(ctx, &update, domain.ScaStatusStarted)
			switch {
			case err == nil:
				winners.Add(1)
			case dErrors.HasCode(err, dErrors.CodeConflict):
				conflicts.Add(1)
			default:
				s.Failf("unexpected error", "%v", err)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), winners.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())
}

func (s *PostgresStoreSuite) TestBusinessObjectStatusUpdate() {
	ctx := context.Background()
	obj := s.seedObject(domain.KindPIS)
	objects := s.store.BusinessObjects()

	s.Require().NoError(objects.UpdateStatus(ctx, obj.ID, cmsmodels.StatusPaymentExecuted))

	found, err := objects.FindByID(ctx, obj.ID)
	s.Require().NoError(err)
	s.Equal(cmsmodels.StatusPaymentExecuted, found.Status)
}
