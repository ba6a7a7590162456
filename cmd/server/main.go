package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"contactsadmin/internal/audit"
	"contactsadmin/internal/clients/contactsapi"
	"contactsadmin/internal/clients/prisonersearch"
	"contactsadmin/internal/clients/referencedata"
	"contactsadmin/internal/contacts/addaddress"
	"contactsadmin/internal/contacts/addcontact"
	"contactsadmin/internal/contacts/addrestriction"
	"contactsadmin/internal/contacts/changerelationship"
	"contactsadmin/internal/contacts/employments"
	"contactsadmin/internal/contacts/managecontacts"
	"contactsadmin/internal/jwttoken"
	"contactsadmin/internal/platform/config"
	"contactsadmin/internal/platform/httpserver"
	"contactsadmin/internal/platform/logger"
	"contactsadmin/internal/platform/metrics"
	"contactsadmin/internal/platform/redis"
	"contactsadmin/internal/session"
	httptransport "contactsadmin/internal/transport/http"
)

const auditBuffer = 256

// main wires the dependency graph and owns the process lifecycle. Journey
// behavior lives in the internal/contacts packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}

	var backend session.Backend
	if rdb != nil {
		backend = session.NewRedisBackend(rdb.Client)
		log.Info("sessions backed by redis")
		defer rdb.Close()
	} else {
		backend = session.NewMemoryBackend()
		log.Warn("REDIS_URL not set, sessions are in-process only")
	}
	sessions := session.NewManager(backend)

	httpClient := &http.Client{Timeout: cfg.Downstream.Timeout}
	contacts := contactsapi.NewHTTPClient(cfg.Downstream.ContactsAPIURL, httpClient)
	prisoners := prisonersearch.NewHTTPClient(cfg.Downstream.PrisonerSearchURL, httpClient)
	refData := referencedata.NewHTTPClient(cfg.Downstream.ReferenceDataURL, httpClient)

	var sink audit.Sink
	if len(cfg.Audit.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.Audit.Brokers, cfg.Audit.Topic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("audit events published to kafka", "topic", cfg.Audit.Topic)
	} else {
		sink = audit.NewMemorySink()
		log.Warn("AUDIT_KAFKA_BROKERS not set, audit events are in-process only")
	}
	auditPub := audit.NewPublisher(auditBuffer)
	auditWorker := audit.NewWorker(sink, auditPub.Inbox(), log)

	m := metrics.New()
	jwtService := jwttoken.New(cfg.JWTSigningKey, "contacts-admin", "contacts-admin-clients")

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:       log,
		JWTValidator: jwtService,
		Handlers: []httptransport.JourneyHandler{
			addcontact.New(sessions, contacts, prisoners, refData, auditPub, m, log),
			addaddress.New(sessions, contacts, auditPub, m, log),
			addrestriction.New(sessions, contacts, refData, auditPub, m, log),
			changerelationship.New(sessions, contacts, refData, auditPub, m, log),
			employments.New(sessions, contacts, auditPub, m, log),
			managecontacts.New(sessions, contacts, auditPub, m, log),
		},
	})
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return auditWorker.Run(ctx)
	})
	g.Go(func() error {
		log.Info("starting contacts-admin", "addr", cfg.Addr)
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

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
