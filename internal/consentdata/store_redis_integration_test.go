//go:build integration

package consentdata_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"xs2gate/internal/consentdata"
	"xs2gate/internal/spi"
	"xs2gate/pkg/domain"
	dErrors "xs2gate/pkg/domain-errors"
	"xs2gate/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *consentdata.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = consentdata.NewRedisStore(s.redis.Client, time.Hour)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	id := domain.NewBusinessObjectID()

	s.Require().NoError(s.store.Put(ctx, id, "YWRhcHRlci1zdGF0ZQ=="))

	encoded, err := s.store.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal("YWRhcHRlci1zdGF0ZQ==", encoded)

	s.Require().NoError(s.store.Delete(ctx, id))
	_, err = s.store.Get(ctx, id)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *RedisStoreSuite) TestMissingBlobIsNotFound() {
	_, err := s.store.Get(context.Background(), domain.NewBusinessObjectID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *RedisStoreSuite) TestDeleteMissingIsNotFound() {
	err := s.store.Delete(context.Background(), domain.NewBusinessObjectID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *RedisStoreSuite) TestPutOverwrites() {
	ctx := context.Background()
	id := domain.NewBusinessObjectID()

	s.Require().NoError(s.store.Put(ctx, id, "Zmlyc3Q="))
	s.Require().NoError(s.store.Put(ctx, id, "c2Vjb25k"))

	encoded, err := s.store.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal("c2Vjb25k", encoded)
}

// The gateway survives an instance handover: whatever one instance stored,
// the next reads back through a fresh gateway over the same Redis.
func (s *RedisStoreSuite) TestGatewayHandover() {
	ctx := context.Background()
	id := domain.NewBusinessObjectID()

	first := consentdata.NewGateway(s.store)
	s.Require().NoError(first.Update(ctx, spi.ConsentData{BusinessObjectID: id, Bytes: []byte("step-one")}))

	second := consentdata.NewGateway(consentdata.NewRedisStore(s.redis.Client, time.Hour))
	cd, err := second.Load(ctx, id)
	s.Require().NoError(err)
	s.Equal("step-one", string(cd.Bytes))
}
