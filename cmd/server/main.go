package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"order-timeline/internal/config"
	httpctrl "order-timeline/internal/controllers/http"
	"order-timeline/internal/infra"
	"order-timeline/internal/infra/mailer"
	mmysql "order-timeline/internal/infra/mysql"
	"order-timeline/internal/infra/rabbitmq"
	redisstore "order-timeline/internal/infra/redis"
	"order-timeline/internal/infra/storage"
	"order-timeline/internal/logger"
	"order-timeline/internal/metrics"
	mysqlrepo "order-timeline/internal/repository/mysql"
	"order-timeline/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logr, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logr.Sync()

	metrics.Init()

	// Opened on first use, closed after the server stops.
	db := mmysql.NewHandle(cfg.MySQL)

	orderRepo := mysqlrepo.NewOrderRepository(db)
	commentRepo := mysqlrepo.NewCommentRepository(db)
	templateRepo := mysqlrepo.NewTemplateRepository(db)

	var (
		rdb      *redis.Client
		sessions infra.SessionStoreInterface
	)
	if cfg.Redis.Addr != "" {
		rdb = redisstore.NewClient(cfg.Redis)
		sessions = redisstore.NewSessionStore(rdb)
	}
	auth := infra.NewAuthenticator(
		infra.NewSessionVerifier(cfg.Shopify.APIKey, cfg.Shopify.APISecret),
		sessions,
		cfg.Shopify.AdminAccessToken,
	)

	gateway := infra.NewShopifyClient(cfg.Shopify.BaseURL, cfg.Shopify.APIVersion, cfg.Shopify.Timeout)

	var publisher rabbitmq.PublisherInterface = rabbitmq.NopPublisher{}
	var amqpPublisher *rabbitmq.Publisher
	if cfg.RabbitMQ.URL != "" {
		amqpPublisher, err = rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logr)
		if err != nil {
			logr.Fatal("failed to init publisher", zap.Error(err))
		}
		publisher = amqpPublisher
	} else {
		logr.Info("rabbitmq url not set, comment events disabled")
	}

	attachments, err := storage.NewAttachmentStore(afero.NewOsFs(), cfg.Uploads.Dir, cfg.Uploads.URLPrefix)
	if err != nil {
		logr.Fatal("failed to init upload storage", zap.Error(err))
	}

	smtp := &mailer.SMTPMailer{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.User,
		Password: cfg.SMTP.Pass,
	}

	cache := services.NewOrderCache(orderRepo, logr)
	notifier := services.NewNotificationService(templateRepo, smtp, cfg.Notification.Recipient, logr)
	orderSvc := services.NewOrderService(gateway, cache, commentRepo, logr)
	commentSvc := services.NewCommentService(commentRepo, attachments, cache, notifier, publisher, cfg.Notification.CustomerName, logr)
	templateSvc := services.NewTemplateService(templateRepo, logr)

	handler := httpctrl.NewHandler(orderSvc, commentSvc, templateSvc, auth, logr)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(logr))
	r.Use(metrics.GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handler.RegisterRoutes(r)
	httpctrl.RegisterUploads(r, attachments.URLPrefix(), attachments.FileSystem())

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Info("starting order timeline server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logr.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logr.Error("server stopped with error", zap.Error(err))
	}

	if err := db.Close(); err != nil {
		logr.Warn("failed to close database", zap.Error(err))
	}
	if amqpPublisher != nil {
		amqpPublisher.Close()
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logr.Warn("failed to close redis", zap.Error(err))
		}
	}
	logr.Info("server stopped")
}
