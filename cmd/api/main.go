package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/config"
	"github.com/xavierca1/ligue-crm/internal/infra/database"
	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/infra/integration/kommo"
	"github.com/xavierca1/ligue-crm/internal/infra/logger"
	"github.com/xavierca1/ligue-crm/internal/infra/mail"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/infra/worker"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("erro ao carregar configuração: %v", err)
	}

	logg, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("erro ao iniciar logger: %v", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		logg.Fatal("erro ao conectar no banco", zap.Error(err))
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := database.RunMigrations(db, logg); err != nil {
			logg.Fatal("erro nas migrações", zap.Error(err))
		}
	}

	// 1. Repositórios
	studentRepo := database.NewStudentRepository(db)
	activityRepo := database.NewActivityRepository(db)
	enrollmentRepo := database.NewEnrollmentRepository(db)
	noteRepo := database.NewNoteRepository(db)

	// 2. Fila (opcional): sem RabbitMQ os eventos não são publicados
	var (
		events   usecase.EventPublisher
		rabbitSt handlers.ConnectionState
		rabbitMQ *queue.RabbitMQ
	)
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			logg.Warn("RabbitMQ indisponível; seguindo sem eventos", zap.Error(err))
		} else {
			defer rabbitMQ.Close()
			events = queue.NewProducer(rabbitMQ.Ch)
			rabbitSt = rabbitMQ.Conn
		}
	}

	// 3. Adapters
	mailSender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
	var crm queue.CRMSyncClient
	if cfg.KommoAPIToken != "" {
		crm = kommo.NewClient(cfg.KommoAPIToken, cfg.KommoBaseURL, logg.Named("kommo"))
	} else {
		logg.Warn("KOMMO_API_TOKEN vazio; matrículas não serão sincronizadas")
	}
	metrics := middleware.PrometheusRecorder{}

	// 4. UseCases
	matcher := usecase.NewFieldMatcher(studentRepo)
	checker := usecase.NewDuplicateChecker(matcher, logg.Named("duplicates"), metrics)
	createUC := usecase.NewCreateStudentUseCase(studentRepo, enrollmentRepo, activityRepo, checker, events, mailSender, logg)
	updateUC := usecase.NewUpdateStudentUseCase(studentRepo, activityRepo, checker, events, logg)
	queryUC := usecase.NewStudentQueryUseCase(studentRepo)
	mergeUC := usecase.NewMergeStudentUseCase(studentRepo, activityRepo, events, logg.Named("merge"), metrics)
	moveStageUC := usecase.NewMoveStageUseCase(studentRepo, activityRepo, events, mailSender, logg, metrics)
	trashUC := usecase.NewTrashUseCase(studentRepo, activityRepo, events, logg.Named("trash"), metrics, cfg.TrashRetention)
	enrollmentUC := usecase.NewEnrollmentUseCase(studentRepo, enrollmentRepo, activityRepo, logg)
	noteUC := usecase.NewNoteUseCase(studentRepo, noteRepo, activityRepo, logg)
	activityUC := usecase.NewActivityQueryUseCase(studentRepo, activityRepo)
	captureUC := usecase.NewCaptureLeadUseCase(matcher, createUC, logg.Named("leads"))

	// 5. Workers
	if rabbitMQ != nil {
		w := queue.NewWorker(rabbitMQ.Ch, crm, logg.Named("worker"))
		go func() {
			if err := w.Start(ctx, queue.QueueName); err != nil {
				logg.Error("worker da fila parou", zap.Error(err))
			}
		}()
	}
	go worker.NewTrashPurgeWorker(trashUC, cfg.TrashPurgeInterval, logg.Named("trash")).Start(ctx)

	limiter := handlers.NewRateLimiter(10, time.Minute)
	go limiter.Cleanup(ctx, 10*time.Minute)

	// 6. Handlers + Router
	router := handlers.NewRouter(handlers.Handlers{
		Health:    handlers.NewHealthHandler(db, rabbitSt, version),
		Lead:      handlers.NewLeadHandler(captureUC, limiter, logg),
		Student:   handlers.NewStudentHandler(createUC, updateUC, queryUC, logg),
		Duplicate: handlers.NewDuplicateHandler(checker, cfg.DuplicateDebounce, logg),
		Merge:     handlers.NewMergeHandler(mergeUC, logg),
		Funnel:    handlers.NewFunnelHandler(moveStageUC, logg),
		Trash:     handlers.NewTrashHandler(trashUC, logg),
		Timeline:  handlers.NewTimelineHandler(enrollmentUC, noteUC, activityUC, logg),
	}, cfg.CORSAllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logg.Info("servidor do CRM no ar", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("erro no servidor http", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logg.Info("encerrando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("erro no shutdown", zap.Error(err))
	}
}
