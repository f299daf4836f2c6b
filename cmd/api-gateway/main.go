package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-gateway/api/swagger"
	"github.com/noah-isme/school-gateway/internal/handler"
	"github.com/noah-isme/school-gateway/internal/repository"
	"github.com/noah-isme/school-gateway/internal/service"
	"github.com/noah-isme/school-gateway/pkg/binex"
	"github.com/noah-isme/school-gateway/pkg/cache"
	"github.com/noah-isme/school-gateway/pkg/config"
	"github.com/noah-isme/school-gateway/pkg/database"
	"github.com/noah-isme/school-gateway/pkg/format"
	"github.com/noah-isme/school-gateway/pkg/logger"
	"github.com/noah-isme/school-gateway/pkg/storage"
)

// @title School Gateway API
// @version 1.0.0
// @description Gateway in front of the school's task endpoint with offline fallback, uploads and exports
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	client, err := binex.New(binex.Config{
		BaseURL:   cfg.Backend.BaseURL,
		Timeout:   cfg.Backend.Timeout,
		UserAgent: cfg.Backend.UserAgent,
		Logger:    logr,
		Observer:  metrics,
	})
	if err != nil {
		logr.Fatal("failed to init backend client", zap.Error(err))
	}

	store, checks, closeStore, err := newPayloadStore(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to init payload store", zap.Error(err), zap.String("driver", cfg.Cache.Driver))
	}
	defer closeStore()

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to init export storage", zap.Error(err))
	}

	validate := validator.New()
	remote := repository.NewRemoteRepository(client)
	cacheSvc := service.NewCacheService(store, metrics, cfg.Cache, logr)

	authSvc := service.NewAuthService(repository.NewAuthRepository(remote), cacheSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "school-gateway",
	})
	leaveSvc := service.NewLeaveService(repository.NewLeaveRepository(remote), cacheSvc, validate, logr)
	complaintSvc := service.NewComplaintService(repository.NewComplaintRepository(remote), cacheSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(repository.NewAttendanceRepository(remote), cacheSvc, validate, logr)
	feesSvc := service.NewFeesService(repository.NewFeesRepository(remote), cacheSvc, validate, logr)
	reportSvc := service.NewExamReportService(repository.NewExamReportRepository(remote), cacheSvc, logr)
	noticeSvc := service.NewNoticeService(repository.NewNoticeRepository(remote), cacheSvc, validate, logr)
	homeworkSvc := service.NewHomeworkService(repository.NewHomeworkRepository(remote), cacheSvc, validate, logr)
	uploadSvc := service.NewUploadService(remote, cfg.Uploads, metrics, logr)
	exportSvc := service.NewExportService(
		feesSvc, reportSvc, attendanceSvc, files,
		storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		format.New(cfg.Format.CurrencySymbol),
		metrics,
		service.ExportConfig{
			DownloadPath: cfg.APIPrefix + "/exports/download",
			SchoolName:   cfg.Exports.SchoolName,
			ResultTTL:    cfg.Exports.SignedURLTTL,
		},
		logr,
	)

	uploadSvc.Start(ctx)
	defer uploadSvc.Stop()
	go runHousekeeping(ctx, cfg.Exports.CleanupInterval, exportSvc, uploadSvc, logr)

	r := newRouter(cfg, logr, metrics, routeHandlers{
		auth:       handler.NewAuthHandler(authSvc),
		leaves:     handler.NewLeaveHandler(leaveSvc),
		complaints: handler.NewComplaintHandler(complaintSvc),
		attendance: handler.NewAttendanceHandler(attendanceSvc),
		fees:       handler.NewFeesHandler(feesSvc),
		reports:    handler.NewExamReportHandler(reportSvc),
		notices:    handler.NewNoticeHandler(noticeSvc),
		homework:   handler.NewHomeworkHandler(homeworkSvc),
		uploads:    handler.NewUploadHandler(uploadSvc),
		exports:    handler.NewExportHandler(exportSvc),
		metrics:    handler.NewMetricsHandler(metrics, checks),
	}, authSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL, "cache_driver", cfg.Cache.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

// newPayloadStore picks the offline cache backend named by CACHE_DRIVER.
func newPayloadStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (service.PayloadStore, map[string]handler.Pinger, func(), error) {
	switch cfg.Cache.Driver {
	case config.CacheDriverRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		store := repository.NewRedisPayloadRepository(client, cfg.Cache.MaxAge, logr)
		return store, map[string]handler.Pinger{"redis": store}, func() { _ = client.Close() }, nil
	case config.CacheDriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, nil, fmt.Errorf("migrate payload table: %w", err)
		}
		store := repository.NewPostgresPayloadRepository(db)
		return store, map[string]handler.Pinger{"postgres": store}, func() { _ = db.Close() }, nil
	case config.CacheDriverMemory, "":
		return repository.NewMemoryPayloadRepository(), nil, func() {}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}

// runHousekeeping removes expired exports and settled upload jobs.
func runHousekeeping(ctx context.Context, interval time.Duration, exports *service.ExportService, uploads *service.UploadService, logr *zap.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := exports.Cleanup(0); err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
			}
			if n := uploads.Prune(interval); n > 0 {
				logr.Info("upload jobs pruned", zap.Int("count", n))
			}
		}
	}
}
