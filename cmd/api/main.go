package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xavierca1/dsx-leads/internal/config"
	"github.com/xavierca1/dsx-leads/internal/infra/database"
	"github.com/xavierca1/dsx-leads/internal/infra/http/handlers"
	"github.com/xavierca1/dsx-leads/internal/infra/http/middleware"
	"github.com/xavierca1/dsx-leads/internal/infra/integration/firebase"
	"github.com/xavierca1/dsx-leads/internal/infra/integration/kommo"
	"github.com/xavierca1/dsx-leads/internal/infra/integration/whatsapp"
	"github.com/xavierca1/dsx-leads/internal/infra/mail"
	"github.com/xavierca1/dsx-leads/internal/infra/queue"
	"github.com/xavierca1/dsx-leads/internal/infra/session"
	"github.com/xavierca1/dsx-leads/internal/infra/stream"
	"github.com/xavierca1/dsx-leads/internal/infra/telemetry"
	"github.com/xavierca1/dsx-leads/internal/infra/worker"
	"github.com/xavierca1/dsx-leads/internal/usecase"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "dsx-leads", cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("⚠️ Erro ao encerrar tracing: %v", err)
		}
	}()

	// 1. Banco
	db, err := database.Open(ctx, cfg.DatabaseURL, database.PoolOptions(cfg.DBPool))
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	leadRepo := database.NewLeadRepository(db)
	adminRepo := database.NewAdminRepository(db)

	g, gctx := errgroup.WithContext(ctx)
	funnel := middleware.Funnel{}
	hub := stream.NewHub()
	health := handlers.NewHealthHandler(version)
	health.Register("database", db)

	// 2. Sessões do formulário
	var sessions usecase.SessionStore
	if cfg.RedisURL != "" {
		client, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		store := session.NewRedisStore(client, cfg.SessionTTL)
		sessions = store
		health.Register("redis", handlers.PingFunc(store.Ping))
		log.Println("🗂️ Sessões de registro no Redis")
	} else {
		store := session.NewMemoryStore(cfg.SessionTTL)
		sessions = store
		health.Register("redis", nil)
		g.Go(func() error {
			store.Run(gctx, time.Minute)
			return nil
		})
		log.Println("🗂️ Sessões de registro em memória (instância única)")
	}

	register := usecase.NewRegisterLeadUseCase(sessions, leadRepo)
	register.Changes = hub
	register.Metrics = funnel

	// 3. Fila de follow-up
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()

		register.Events = queue.NewProducer(rabbitMQ.Ch)
		health.Register("rabbitmq", handlers.PingFunc(func(context.Context) error {
			if !rabbitMQ.Healthy() {
				return errors.New("connection closed")
			}
			return nil
		}))

		w := queue.NewWorker(rabbitMQ.Ch, newNotifyLead(cfg, funnel))
		g.Go(func() error {
			return w.Start(gctx, queue.QueueName)
		})
	} else {
		health.Register("rabbitmq", nil)
		log.Println("⚠️ RABBITMQ_URL vazio: CRM, e-mail e WhatsApp desativados")
	}

	// 4. Painel
	listener := database.NewListener(cfg.DatabaseURL, hub)
	g.Go(func() error {
		return listener.Run(gctx)
	})

	abandoned := worker.NewAbandonedLeadWorker(leadRepo, cfg.AbandonedAfter, middleware.SetAbandonedLeads)
	g.Go(func() error {
		abandoned.Start(gctx)
		return nil
	})

	loginLimiter := middleware.NewIPRateLimiter(rate.Every(time.Minute/5), 5)
	g.Go(func() error {
		loginLimiter.Cleanup(gctx, time.Minute)
		return nil
	})

	secure := cfg.Production()
	rt := &handlers.Router{
		Wizard:       handlers.NewWizardHandler(register, cfg.SessionTTL, secure),
		Auth:         handlers.NewAuthHandler(usecase.NewSignInUseCase(newAuthProvider(cfg, adminRepo)), secure),
		Leads:        handlers.NewLeadHandler(leadRepo, usecase.NewLeadFeed(leadRepo, hub), funnel),
		Health:       health,
		LoginLimiter: loginLimiter,
		CORSOrigins:  cfg.CORSOrigins,
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           rt.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		log.Printf("🔥 DSX Leads rodando em %s (%s)", cfg.HTTPAddr, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("🛑 Encerrando servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newAuthProvider(cfg *config.Config, admins *database.AdminRepository) usecase.AuthProvider {
	if cfg.AuthProvider == config.AuthFirebase {
		log.Println("🔐 Login do painel via Firebase")
		return firebase.NewClient(cfg.FirebaseAPIKey, "", nil)
	}
	log.Println("🔐 Login do painel com administradores locais")
	return &usecase.LocalAuth{Admins: admins}
}

// newNotifyLead só liga os destinos configurados.
func newNotifyLead(cfg *config.Config, metrics usecase.FunnelMetrics) *usecase.NotifyLeadUseCase {
	uc := &usecase.NotifyLeadUseCase{Metrics: metrics}

	if cfg.Kommo.Enabled() {
		uc.CRM = kommo.NewClient(kommo.Config{
			BaseURL:    cfg.Kommo.BaseURL,
			APIToken:   cfg.Kommo.APIToken,
			PipelineID: cfg.Kommo.PipelineID,
			StatusID:   cfg.Kommo.StatusID,
		}, nil)
	}
	if cfg.Mail.Enabled() {
		uc.Mail = mail.NewEmailSender(
			cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password,
			cfg.Mail.From, cfg.Mail.SalesNotify,
		)
	}
	if cfg.WhatsApp.Enabled() {
		uc.WhatsApp = whatsapp.NewClient(whatsapp.Config{
			AccessToken:  cfg.WhatsApp.AccessToken,
			PhoneID:      cfg.WhatsApp.PhoneID,
			TemplateName: cfg.WhatsApp.TemplateName,
		}, nil)
	}
	return uc
}
