// Command server runs the SCA authorisation gateway. Wiring happens here;
// business logic lives in the internal packages. Backends not configured via
// environment fall back to in-memory implementations so the server runs
// standalone with the mock bank adapter.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"xs2gate/internal/authorization/handler"
	"xs2gate/internal/authorization/metrics"
	"xs2gate/internal/authorization/ports"
	"xs2gate/internal/authorization/service"
	"xs2gate/internal/authorization/stages"
	cmsmodels "xs2gate/internal/cms/models"
	cmsstore "xs2gate/internal/cms/store"
	"xs2gate/internal/consentdata"
	"xs2gate/internal/events"
	"xs2gate/internal/platform/config"
	"xs2gate/internal/platform/httpserver"
	"xs2gate/internal/platform/logger"
	platformredis "xs2gate/internal/platform/redis"
	"xs2gate/internal/profile"
	"xs2gate/internal/spi"
	"xs2gate/internal/spi/mockbank"
	"xs2gate/internal/token"
	httptransport "xs2gate/internal/transport/http"
	"xs2gate/pkg/domain"
	"xs2gate/pkg/platform/circuit"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prof := profile.Default()
	if cfg.ProfilePath != "" {
		loaded, err := profile.Load(cfg.ProfilePath)
		if err != nil {
			return err
		}
		prof = loaded
	}

	// Persistence: Postgres for records, Redis for adapter blobs, both with
	// in-memory fallbacks.
	var (
		authorisations ports.AuthorisationStore
		objects        ports.BusinessObjectStore
	)
	if cfg.PostgresURL != "" {
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		pg := cmsstore.NewPostgresStore(db)
		authorisations = pg
		objects = pg.BusinessObjects()
		log.Info("using postgres stores")
	} else {
		mem := cmsstore.NewInMemoryStore()
		authorisations = mem
		objects = mem.BusinessObjects()
		seedDemoObjects(ctx, log, mem)
		log.Info("using in-memory stores")
	}

	var consentDataStore consentdata.Store = consentdata.NewInMemoryStore()
	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		consentDataStore = consentdata.NewRedisStore(redisClient.Client, cfg.ConsentDataTTL)
		log.Info("using redis consent data store")
	}
	gateway := consentdata.NewGateway(consentDataStore)

	// One mock bank adapter serves all four kinds until a real core banking
	// connector is dropped in.
	bank := mockbank.New()
	registry, err := spi.NewRegistry(bank, bank, bank, bank)
	if err != nil {
		return err
	}
	breaker := circuit.New("spi-adapter", circuit.WithFailureThreshold(5))
	adapters := spi.GuardRegistry(registry, breaker, cfg.AdapterTimeout)

	var tokens stages.TokenVerifier
	if cfg.OAuthSigningKey != "" {
		verifier, err := token.NewVerifier([]byte(cfg.OAuthSigningKey), cfg.OAuthIssuer)
		if err != nil {
			return err
		}
		tokens = verifier
	}

	resolver, err := stages.NewResolver(stages.Deps{
		Adapters:    adapters,
		ConsentData: gateway,
		Profile:     prof,
		Tokens:      tokens,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	var publisher ports.EventPublisher = events.NewInMemoryPublisher()
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := events.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, events.WithLogger(log))
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = kafka.Close(closeCtx)
		}()
		publisher = kafka
		log.Info("publishing status changes to kafka", "topic", cfg.KafkaTopic)
	}

	svc, err := service.New(authorisations, objects, resolver, prof,
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
		service.WithPublisher(publisher),
	)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(log, handler.New(svc, log))
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting xs2gate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// seedDemoObjects gives the in-memory deployment something to authorise
// against. IDs are logged so the endpoints are immediately exercisable.
func seedDemoObjects(ctx context.Context, log *slog.Logger, store *cmsstore.InMemoryStore) {
	consent := &cmsmodels.BusinessObject{
		ID:     domain.NewBusinessObjectID(),
		Kind:   domain.KindAIS,
		Status: cmsmodels.StatusReceived,
	}
	payment := &cmsmodels.BusinessObject{
		ID:     domain.NewBusinessObjectID(),
		Kind:   domain.KindPIS,
		Status: cmsmodels.StatusPaymentReceived,
	}
	if err := store.PutBusinessObject(ctx, consent); err == nil {
		log.Info("seeded demo consent", "id", consent.ID.String())
	}
	if err := store.PutBusinessObject(ctx, payment); err == nil {
		log.Info("seeded demo payment", "id", payment.ID.String())
	}
}
