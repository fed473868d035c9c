package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/timmy/uthos/internal/api/handler"
	"github.com/timmy/uthos/internal/api/middleware"
	"github.com/timmy/uthos/internal/config"
	"github.com/timmy/uthos/internal/domain"
	"github.com/timmy/uthos/internal/logger"
	"github.com/timmy/uthos/internal/repository"
	"github.com/timmy/uthos/internal/service"
	"github.com/timmy/uthos/internal/storage"
)

// Services bundles what the router dispatches to.
type Services struct {
	Buckets    *service.BucketService
	AccessKeys *service.AccessKeyService
	Objects    *service.ObjectService
	DB         handler.Pinger // optional, used by /health
}

// SetupRouter configures the Gin router with all routes. The object storage
// API is served under /v2, mirroring the hosted endpoint.
func SetupRouter(svc *Services, cfg *config.ServerConfig, log *logger.Logger) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(cfg.CORS))
	metrics := middleware.NewMetrics()
	r.Use(metrics.Handler())

	healthHandler := handler.NewHealthHandler(svc.DB)
	bucketHandler := handler.NewBucketHandler(svc.Buckets)
	keyHandler := handler.NewAccessKeyHandler(svc.AccessKeys)
	objectHandler := handler.NewObjectHandler(svc.Objects, cfg.MaxUploadMB, metrics)

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(metrics.HTTPHandler()))

	v2 := r.Group("/v2")

	// Shared links carry their own capability token.
	v2.GET("/shared/:token", objectHandler.Download)

	store := v2.Group("/objectstorage", middleware.Auth(svc.AccessKeys))
	{
		root := middleware.RootOnly()
		store.POST("/bucket/create/", root, bucketHandler.Create)
		store.GET("/:dc/bucket/", root, bucketHandler.List)
		store.GET("/:dc/accesskeys/", root, keyHandler.List)
		store.POST("/:dc/accesskey/create/", root, keyHandler.Create)
		store.POST("/:dc/accesskey/:name/status/", root, keyHandler.Modify)

		read := middleware.BucketAccess(svc.Buckets, domain.PermissionRead)
		write := middleware.BucketAccess(svc.Buckets, domain.PermissionWrite)
		full := middleware.BucketAccess(svc.Buckets, domain.PermissionFull)

		bucket := store.Group("/:dc/bucket/:name")
		bucket.GET("/", read, bucketHandler.Get)
		bucket.DELETE("/delete/", root, bucketHandler.Delete)
		bucket.POST("/policy/:policy/", full, bucketHandler.UpdatePolicy)
		bucket.GET("/permission/", full, bucketHandler.Grants)
		bucket.POST("/permission/", root, bucketHandler.UpdatePermission)
		bucket.POST("/createdirectory/", write, objectHandler.CreateDirectory)
		bucket.GET("/objects/", read, objectHandler.List)
		bucket.POST("/upload/", write, objectHandler.Upload)
		bucket.DELETE("/delete/object", write, objectHandler.Delete)
		bucket.GET("/download", read, objectHandler.Share)
	}

	return r
}

// NewServices wires repositories and services over one database and blob
// store.
func NewServices(db *gorm.DB, blobs storage.ObjectStorage, cfg *config.ServerConfig, log *logger.Logger) (*Services, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB instance: %w", err)
	}

	bucketRepo := repository.NewBucketRepository(db)
	keyRepo := repository.NewAccessKeyRepository(db)
	objectRepo := repository.NewObjectRepository(db)
	linkRepo := repository.NewSharedLinkRepository(db)

	root := service.Credentials{Token: cfg.Token, AccessKey: cfg.AccessKey, SecretKey: cfg.SecretKey}
	return &Services{
		Buckets:    service.NewBucketService(bucketRepo, keyRepo, objectRepo, linkRepo, blobs, log),
		AccessKeys: service.NewAccessKeyService(keyRepo, root, log),
		Objects: service.NewObjectService(bucketRepo, objectRepo, linkRepo, blobs, log, &service.ObjectConfig{
			PublicURL: cfg.PublicURL,
		}),
		DB: sqlDB,
	}, nil
}
