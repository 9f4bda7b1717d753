// Package main runs the event check-in HTTP server with WebSocket dashboard
// updates and graceful shutdown.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/swiftcheck/backend/config"
	"github.com/swiftcheck/backend/internal/attendees"
	"github.com/swiftcheck/backend/internal/auth"
	"github.com/swiftcheck/backend/internal/middleware"
	"github.com/swiftcheck/backend/internal/models"
	"github.com/swiftcheck/backend/internal/realtime"
	"github.com/swiftcheck/backend/internal/scan"
	"github.com/swiftcheck/backend/internal/uploads"
	"github.com/swiftcheck/backend/pkg/database"
	"github.com/swiftcheck/backend/pkg/queue"
	"github.com/swiftcheck/backend/pkg/redis"
	"github.com/swiftcheck/backend/pkg/response"
	"github.com/swiftcheck/backend/pkg/storage"
	"github.com/swiftcheck/backend/pkg/utils"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ProfileImagesBucket:  cfg.AWS.ProfileImagesBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	pinHash := cfg.Admin.PINHash
	if pinHash == "" {
		pinHash, err = utils.HashSecret(cfg.Admin.PIN)
		if err != nil {
			logger.Fatal("hash admin pin", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	authHandler := auth.NewHandler(jwtService, pinHash, logger)

	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub)

	// Attendees
	store := attendees.NewRepository(pool, cfg.Event.RegistrationLimit)
	view := attendees.NewView()
	hub.SetSnapshotSource(view.Snapshot)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	attendeeService := attendees.NewService(store, view, hub, jobQueue, cfg.Event.BaseURL, cfg.Event.RegistrationLimit, logger)
	attendeeHandler := attendees.NewHandler(attendeeService, cfg.Event.MinAge, cfg.Event.MaxAge, logger)

	// Seed the view before serving so the first dashboard connect gets data.
	if err := attendeeService.RefreshView(ctx); err != nil {
		logger.Fatal("seed attendee view", zap.Error(err))
	}

	// Writes from other instances: apply their snapshots to this view and
	// rebroadcast to local clients; confirmation events pass straight through.
	cancelSub, err := redisPubSub.Subscribe(func(event string, payload []byte) {
		switch event {
		case realtime.EventSnapshot:
			var snapshot []models.Attendee
			if err := json.Unmarshal(payload, &snapshot); err != nil {
				logger.Warn("invalid remote snapshot", zap.Error(err))
				return
			}
			view.Apply(snapshot)
			hub.Broadcast(event, json.RawMessage(payload))
		default:
			hub.Broadcast(event, json.RawMessage(payload))
		}
	})
	if err != nil {
		logger.Fatal("subscribe attendee events", zap.Error(err))
	}
	defer cancelSub()

	scanHandler := scan.NewHandler()
	uploadsHandler := uploads.NewHandler(s3Client, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public: registration, attendee page, check-in, scan validation
	router.POST("/attendees", attendeeHandler.Register)
	router.GET("/attendees/:id", attendeeHandler.GetByID)
	router.POST("/attendees/:id/checkin", attendeeHandler.CheckIn)
	router.POST("/scan", scanHandler.Resolve)
	router.POST("/uploads/profile-image", uploadsHandler.GenerateUploadURL)

	// Admin session
	router.POST("/admin/login", authHandler.Login)

	// Admin dashboard (session token required)
	admin := router.Group("/admin")
	admin.Use(middleware.AdminJWT(jwtService))
	{
		admin.GET("/attendees", attendeeHandler.List)
		admin.GET("/attendees/export", attendeeHandler.ExportCSV)
		admin.GET("/stats", attendeeHandler.GetStats)
	}

	// WebSocket (token in query; no Authorization header on ws handshake)
	router.GET("/ws", realtime.ServeWs(hub, logger, func(token string) error {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return err
		}
		if claims.Role != auth.RoleAdmin {
			return auth.ErrInvalidToken
		}
		return nil
	}))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
