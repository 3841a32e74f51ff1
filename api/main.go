package main

import (
	"context"
	"edirne-events/auth"
	"edirne-events/data/models"
	"edirne-events/data/repository"
	"edirne-events/moderation"
	"edirne-events/upload"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// moderator is the pending-record workflow the admin routes drive.
type moderator interface {
	ListPendingEvents(ctx context.Context) ([]models.PendingEvent, error)
	ListPendingVenues(ctx context.Context) ([]models.PendingVenue, error)
	SubmitEvent(ctx context.Context, p models.PendingEvent) (models.PendingEvent, error)
	SubmitVenue(ctx context.Context, p models.PendingVenue) (models.PendingVenue, error)
	ReviewEvent(ctx context.Context, id int64, edits map[string]interface{}) (models.PendingEvent, error)
	ReviewVenue(ctx context.Context, id int64, edits map[string]interface{}) (models.PendingVenue, error)
	Decide(ctx context.Context, kind moderation.Kind, id int64, action moderation.Action) (moderation.Result, error)
}

type authenticator interface {
	StartLogin(ctx context.Context, email, password string) (auth.Challenge, error)
	CompleteLogin(ctx context.Context, email, code string) (auth.Session, error)
	Verify(token string) (*auth.Claims, error)
}

type application struct {
	cfg       config
	Log       logrus.FieldLogger
	Repo      repository.DBRepo
	Moderator moderator
	Auth      authenticator
	Uploader  *upload.Uploader
	Blobs     upload.Store
	Now       func() time.Time
}

func (app *application) now() time.Time {
	if app.Now == nil {
		return time.Now()
	}
	return app.Now()
}

func main() {
	cfg := loadConfig()
	logger := newLogger(cfg)
	app := &application{cfg: cfg, Log: logger, Now: time.Now}

	db, err := app.ConnectToDB()
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to db")
	}
	defer db.Close()

	repo := &repository.SqlRepo{DB: db, Log: logger}
	app.Repo = repo
	if err = app.Repo.RunMigrations(cfg.DBName); err != nil {
		logger.WithError(err).Fatal("failed to run migrations")
	}

	rdb, err := app.ConnectToRedis()
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	if err := app.wire(repo, rdb); err != nil {
		logger.WithError(err).Fatal("failed to configure application")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}

// wire builds the moderation workflow, admin gate and upload store.
func (app *application) wire(repo *repository.SqlRepo, rdb *redis.Client) error {
	notifiers := moderation.Notifiers{moderation.GaugeNotifier{Counter: repo}}
	if rdb != nil {
		notifiers = append(notifiers, moderation.RedisNotifier{Client: rdb})
	}
	app.Moderator = moderation.New(repo, notifiers, app.Log)

	var codes auth.CodeStore
	if rdb != nil {
		codes = auth.RedisCodeStore{Client: rdb}
	} else {
		codes = auth.NewMemoryCodeStore()
	}

	var mailer auth.Mailer
	if app.cfg.SMTPHost != "" {
		mailer = auth.NewSMTPMailer(auth.SMTPConfig{
			Host:     app.cfg.SMTPHost,
			Port:     app.cfg.SMTPPort,
			User:     app.cfg.SMTPUser,
			Password: app.cfg.SMTPPassword,
			From:     app.cfg.SMTPFrom,
		})
	} else if app.cfg.isProduction() {
		return errors.New("SMTP_HOST must be set in production")
	}

	svc, err := auth.NewService(auth.Config{
		AdminEmail:   app.cfg.AdminEmail,
		PasswordHash: app.cfg.AdminPasswordHash,
		Secret:       []byte(app.cfg.JWTSecret),
		CodeTTL:      app.cfg.CodeTTL,
		SessionTTL:   app.cfg.SessionTTL,
	}, codes, mailer, app.Log)
	if err != nil {
		return err
	}
	app.Auth = svc

	switch app.cfg.UploadBackend {
	case "s3":
		store, err := upload.NewS3Store(upload.S3Config{
			Bucket:    app.cfg.S3Bucket,
			Region:    app.cfg.S3Region,
			Endpoint:  app.cfg.S3Endpoint,
			AccessKey: app.cfg.S3AccessKey,
			SecretKey: app.cfg.S3SecretKey,
		})
		if err != nil {
			return err
		}
		app.Blobs = store
	case "", "disk":
		app.Blobs = upload.DiskStore{Dir: app.cfg.UploadDir}
	default:
		return errors.New("UPLOAD_BACKEND must be disk or s3")
	}
	app.Uploader = upload.NewUploader(app.Blobs)

	app.Log.WithFields(logrus.Fields{
		"redis":   rdb != nil,
		"mailer":  mailer != nil,
		"uploads": app.cfg.UploadBackend,
	}).Info("application configured")
	return nil
}
