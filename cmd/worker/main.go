package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-notify/internal/channel"
	"github.com/noah-isme/gema-notify/internal/config"
	"github.com/noah-isme/gema-notify/internal/database"
	"github.com/noah-isme/gema-notify/internal/handler"
	"github.com/noah-isme/gema-notify/internal/middleware"
	"github.com/noah-isme/gema-notify/internal/models"
	"github.com/noah-isme/gema-notify/internal/repository"
	"github.com/noah-isme/gema-notify/internal/router"
	"github.com/noah-isme/gema-notify/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Assignment{},
		&models.Extension{},
		&models.Reminder{},
		&models.Enrollment{},
		&models.Submission{},
		&models.RecipientProfile{},
		&models.NotificationPreference{},
		&models.NotificationRecord{},
		&models.InboxNotification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	defer natsConn.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	reminderRepo := repository.NewReminderRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	extensionRepo := repository.NewExtensionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	inboxRepo := repository.NewInboxRepository(db)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inboxService := service.NewInboxService(inboxRepo, redisClient, "gema:notify", natsConn, validate, logger)
	inboxService.Start(rootCtx)

	senders := buildSenders(cfg, profileRepo, natsConn, inboxService, logger)

	fanout := service.NewNotificationFanout(preferenceRepo, recordRepo, senders, cfg.SendTimeout, cfg.DispatchWorkers, logger)
	scheduler := service.NewReminderScheduler(reminderRepo, logger)
	sweep := service.NewSweepDispatcher(reminderRepo, assignmentRepo, extensionRepo, enrollmentRepo, submissionRepo, fanout, logger)
	lifecycle := service.NewLifecycleService(assignmentRepo, submissionRepo, extensionRepo, enrollmentRepo, scheduler, fanout, validate, logger)
	ops := service.NewOpsService(reminderRepo, recordRepo, logger)

	eventHandler := handler.NewEventHandler(lifecycle, logger)
	reminderHandler := handler.NewReminderHandler(ops, sweep, time.Now, logger)
	inboxHandler := handler.NewInboxHandler(inboxService, logger, cfg.SSEKeepAlive)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EventHandler:    eventHandler,
		ReminderHandler: reminderHandler,
		InboxHandler:    inboxHandler,
		JWTMiddleware:   middleware.JWTProtected(cfg.JWTSecret),
		DB:              db,
	})

	go runSweepLoop(rootCtx, sweep, cfg.SweepInterval, logger)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-rootCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("worker stopped")
}

// buildSenders assembles the delivery channels. Channels without remote
// configuration fall back to console senders so local environments still
// exercise the full fan-out path.
func buildSenders(cfg config.Config, directory channel.Directory, push channel.PushPublisher, inbox service.InboxService, logger zerolog.Logger) []channel.Sender {
	senders := []channel.Sender{
		channel.NewInAppSender(inbox),
		channel.NewPushSender(push, cfg.PushSubject, logger),
	}

	if cfg.EmailConfigured() {
		senders = append(senders, channel.NewEmailSender(channel.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, directory, logger))
	} else {
		senders = append(senders, channel.NewConsoleSender(models.ChannelEmail, logger))
	}

	if cfg.SMSConfigured() {
		senders = append(senders, channel.NewSMSSender(channel.SMSConfig{
			GatewayURL: cfg.SMSGatewayURL,
			APIKey:     cfg.SMSGatewayKey,
			From:       cfg.SMSFrom,
		}, directory, logger))
	} else {
		senders = append(senders, channel.NewConsoleSender(models.ChannelSMS, logger))
	}

	return senders
}

func runSweepLoop(ctx context.Context, sweep service.SweepDispatcher, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := sweep.RunSweep(ctx, time.Now().UTC())
			if err != nil {
				logger.Error().Err(err).Msg("sweep failed")
				continue
			}
			if report.Due > 0 {
				logger.Info().
					Int("due", report.Due).
					Int("claimed", report.Claimed).
					Int("lost_races", report.LostRaces).
					Int("sent", report.Sent).
					Int("failed", report.Failed).
					Msg("sweep completed")
			}
		}
	}
}
