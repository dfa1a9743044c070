package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskloop/taskloop-api/internal/config"
	"github.com/taskloop/taskloop-api/internal/logging"
	"github.com/taskloop/taskloop-api/internal/repository/postgres"
	"github.com/taskloop/taskloop-api/internal/scheduler"
	"github.com/taskloop/taskloop-api/internal/service"
	transporthttp "github.com/taskloop/taskloop-api/internal/transport/http"
	"github.com/taskloop/taskloop-api/internal/transport/mail"
	"github.com/taskloop/taskloop-api/internal/util"
)

func main() {
	cfg := config.Load()

	logWriter := io.Writer(os.Stdout)
	var logstash *logging.LogstashWriter
	if cfg.LogstashTCPAddr != "" {
		w, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			stderrLogger := zerolog.New(os.Stderr)
			stderrLogger.Fatal().Err(err).Msg("logstash writer")
		}
		logstash = w
		logWriter = zerolog.MultiLevelWriter(os.Stdout, w)
	}
	logger := zerolog.New(logWriter).With().Timestamp().Logger()

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connect")
	}
	defer db.Close()

	if err := postgres.RunMigrations(db.DB); err != nil {
		logger.Fatal().Err(err).Msg("database migrate")
	}

	userRepo := postgres.NewUserRepo(db)
	otpRepo := postgres.NewOTPRepo(db)
	taskRepo := postgres.NewTaskRepo(db)

	mailer := mail.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	jwtManager := util.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)

	authService := service.NewAuthService(userRepo, otpRepo, mailer, jwtManager, cfg.OTPTTL, cfg.OTPResendCooldown, cfg.OTPLength)
	taskService := service.NewTaskService(taskRepo)
	reminderService := service.NewReminderService(taskRepo, mailer, logger)

	e := transporthttp.NewRouter(cfg.AllowOrigins, logger)
	transporthttp.RegisterAuth(e, authService, cfg.CookieSecure)
	transporthttp.RegisterTasks(e, authService, taskService)
	transporthttp.RegisterSwagger(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var daily *scheduler.Daily
	if cfg.ReminderEnabled {
		daily, err = scheduler.NewDaily(cfg.ReminderTime, func(ctx context.Context) {
			if _, err := reminderService.Sweep(ctx); err != nil {
				logger.Error().Err(err).Msg("reminder sweep failed")
			}
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("reminder scheduler")
		}
		daily.Start(ctx)
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()
	logger.Info().Str("port", cfg.Port).Msg("server started")

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
	if daily != nil {
		daily.Wait()
	}
	if logstash != nil {
		_ = logstash.Close()
	}
	logger.Info().Msg("server stopped")
}
