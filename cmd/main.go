package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	apicontext "github.com/dtroode/dailyphrase/internal/api/context"
	"github.com/dtroode/dailyphrase/internal/api/grpc/router"
	grpcServer "github.com/dtroode/dailyphrase/internal/api/grpc/server"
	"github.com/dtroode/dailyphrase/internal/api/rest"
	"github.com/dtroode/dailyphrase/internal/config"
	"github.com/dtroode/dailyphrase/internal/content"
	"github.com/dtroode/dailyphrase/internal/events"
	"github.com/dtroode/dailyphrase/internal/events/rabbitmq"
	"github.com/dtroode/dailyphrase/internal/lock"
	"github.com/dtroode/dailyphrase/internal/logger"
	"github.com/dtroode/dailyphrase/internal/mailer"
	"github.com/dtroode/dailyphrase/internal/model"
	"github.com/dtroode/dailyphrase/internal/notify"
	"github.com/dtroode/dailyphrase/internal/repository/memory"
	"github.com/dtroode/dailyphrase/internal/repository/postgres"
	"github.com/dtroode/dailyphrase/internal/scheduler"
	"github.com/dtroode/dailyphrase/internal/server"
	"github.com/dtroode/dailyphrase/internal/service"
	storage "github.com/dtroode/dailyphrase/internal/storage/minio"
	"github.com/dtroode/dailyphrase/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const healthInterval = 30 * time.Second

type stores struct {
	users   model.UserStore
	phrases model.PhraseStore
	tokens  model.ConfirmationTokenStore
	runs    model.DispatchRunStore
	log     model.DeliveryLog
}

func main() {
	operatorSubject := flag.String("issue-operator-token", "", "print an operator token for the given subject and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	tokenManager := token.NewJWT(cfg.JWT.Secret)
	if *operatorSubject != "" {
		signed, err := tokenManager.GenerateOperatorToken(*operatorSubject, model.RoleAdmin)
		if err != nil {
			logger.Fatal("failed to issue operator token", "error", err)
		}
		fmt.Println(signed)
		return
	}

	location, err := cfg.Schedule.Location()
	if err != nil {
		logger.Fatal("invalid schedule", "error", err)
	}

	st, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer closeStores()

	transport, err := newTransport(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize mail transport", "error", err)
	}
	mail := mailer.New(transport, mailer.Options{
		Timeout:        cfg.Mail.SendTimeout,
		SendsPerSecond: cfg.Mail.SendsPerSecond,
		Burst:          cfg.Mail.Burst,
	}, logger)

	publisher, closePublisher := newPublisher(cfg, logger)
	defer closePublisher()

	renderer := content.NewRenderer(cfg.Token.BaseURL)
	notifier := notify.NewEmailNotifier(mail, renderer, cfg.Mail.AdminAddress, cfg.Token.ConfirmationTTL, cfg.Token.PasswordResetTTL, logger)

	tokens := service.NewTokens(st.tokens, service.TokenTTLs{
		SignupConfirmation: cfg.Token.ConfirmationTTL,
		PasswordReset:      cfg.Token.PasswordResetTTL,
	}, logger)
	confirmation := service.NewConfirmation(st.users, tokens, notifier, publisher, logger)

	dispatch := service.NewDispatch(
		service.NewRecipientSelector(st.users, service.DefaultEligibility, logger),
		service.NewPhraseSelector(st.phrases),
		renderer,
		mail,
		st.log,
		st.runs,
		publisher,
		service.DispatchConfig{
			MaxAttempts: cfg.Dispatch.MaxAttempts,
			Workers:     cfg.Dispatch.Workers,
			BackoffBase: cfg.Dispatch.BackoffBase,
			BackoffMax:  cfg.Dispatch.BackoffMax,
		},
		logger,
	)

	var archive model.Storage
	if cfg.Storage.Enabled {
		a, err := storage.Dial(ctx, storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Fatal("failed to initialize run archive", "error", err)
		}
		archive = a
		dispatch.WithArchive(archive)
	}

	reports := service.NewReports(st.runs, st.log, location)

	if cfg.Dispatch.RunOnce {
		if err := runOnce(ctx, cfg, dispatch, reports, logger); err != nil {
			logger.Fatal("dispatch run failed", "error", err)
		}
		return
	}

	logAppVersion()

	health := service.NewHealth(st.runs, cfg.Dispatch.StaleAfter, cfg.Schedule.Enabled)
	ctxMgr := apicontext.NewManager()

	handler := rest.NewHandler(confirmation, dispatch, reports, health, archive, logger)
	httpSrv := rest.NewHTTPServer(rest.NewRouter(handler, tokenManager, ctxMgr, logger), cfg.HTTP.Address)

	grpcRouter := router.New(health, tokenManager, ctxMgr, logger)
	grpcSrv := grpcServer.NewGRPCServer(grpcRouter.Register(), fmt.Sprintf(":%s", cfg.GRPC.Port))

	sl := server.NewSecurityLayer(cfg.GRPC.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)

	var wg sync.WaitGroup
	for _, s := range []model.Server{httpSrv, grpcSrv} {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(s)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		grpcRouter.WatchHealth(ctx, healthInterval)
	}()

	if cfg.Schedule.Enabled {
		guard, closeGuard, err := newSlotGuard(ctx, cfg)
		if err != nil {
			logger.Fatal("failed to initialize slot guard", "error", err)
		}
		defer closeGuard()

		daily, err := scheduler.NewDaily(dispatch, tokens, guard, scheduler.Options{
			At:             cfg.Schedule.At,
			Location:       location,
			SlotTTL:        cfg.Redis.SlotTTL,
			PurgeInterval:  cfg.Schedule.PurgeInterval,
			TokenRetention: cfg.Token.Retention,
		}, logger)
		if err != nil {
			logger.Fatal("invalid schedule", "error", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := daily.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("scheduler stopped", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, s := range []model.Server{httpSrv, grpcSrv} {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

// runOnce performs a single run for DISPATCH_RUN_DATE or today, for cron-style
// invocation.
func runOnce(ctx context.Context, cfg *config.Config, dispatch *service.Dispatch, reports *service.Reports, logger *logger.Logger) error {
	date := reports.Today()
	if cfg.Dispatch.RunDate != "" {
		d, err := reports.ParseDate(cfg.Dispatch.RunDate)
		if err != nil {
			return err
		}
		date = d
	}

	summary, err := dispatch.RunOnce(ctx, date)
	if err != nil {
		return err
	}
	logger.Info("dispatch run finished",
		"run_id", summary.RunID,
		"recipients", summary.TotalRecipients,
		"sent", summary.TotalSent,
		"failed", summary.TotalFailed)
	return nil
}

func openStores(ctx context.Context, cfg *config.Config) (stores, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		return stores{
			users:   memory.NewUserRepository(),
			phrases: memory.NewPhraseRepository(),
			tokens:  memory.NewTokenRepository(),
			runs:    memory.NewDispatchRunRepository(),
			log:     memory.NewDeliveryRepository(),
		}, func() {}, nil
	default:
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return stores{}, nil, err
		}
		return stores{
			users:   postgres.NewUserRepository(db),
			phrases: postgres.NewPhraseRepository(db),
			tokens:  postgres.NewTokenRepository(db),
			runs:    postgres.NewDispatchRunRepository(db),
			log:     postgres.NewDeliveryRepository(db),
		}, func() { _ = db.Close() }, nil
	}
}

func newTransport(cfg *config.Config, logger *logger.Logger) (model.Transport, error) {
	switch cfg.Mail.Provider {
	case config.MailProviderSMTP:
		return mailer.NewSMTPTransport(mailer.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.Mail.From,
			FromName: cfg.Mail.FromName,
		}), nil
	case config.MailProviderResend:
		from := cfg.Mail.From
		if cfg.Mail.FromName != "" {
			from = fmt.Sprintf("%s <%s>", cfg.Mail.FromName, cfg.Mail.From)
		}
		return mailer.NewResendTransport(cfg.Resend.APIKey, from), nil
	case config.MailProviderLog:
		return mailer.NewLogTransport(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Mail.Provider)
	}
}

// newPublisher falls back to logging events when the broker is disabled.
func newPublisher(cfg *config.Config, logger *logger.Logger) (model.EventPublisher, func()) {
	if !cfg.RabbitMQ.Enabled {
		return events.NewLogPublisher(logger), func() {}
	}
	p, err := rabbitmq.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logger)
	if err != nil {
		logger.Fatal("failed to connect to rabbitmq", "error", err)
	}
	return p, func() { closeQuietly(p) }
}

func newSlotGuard(ctx context.Context, cfg *config.Config) (model.SlotGuard, func(), error) {
	if !cfg.Redis.Enabled {
		return lock.NewMemoryGuard(), func() {}, nil
	}
	client, err := lock.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}
	owner, _ := os.Hostname()
	return lock.NewRedisGuard(client, owner), func() { closeQuietly(client) }, nil
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}
