package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-material-orders/internal/aws"
	"github.com/imrishuroy/go-material-orders/internal/config"
	orderevents "github.com/imrishuroy/go-material-orders/internal/events"
	"github.com/imrishuroy/go-material-orders/internal/handlers"
	"github.com/imrishuroy/go-material-orders/internal/idempotency"
	"github.com/imrishuroy/go-material-orders/internal/materialorders"
	"github.com/imrishuroy/go-material-orders/internal/validation"
	"github.com/imrishuroy/go-material-orders/pkg/logger"
)

func setupRouter(log *zap.Logger, cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestID(), handlers.RequestLogger(log))

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterMaterialOrderRoutes(r, cfg)

	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.App.Env == "production" || cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	hcfg := handlers.HandlerConfig{
		Logger:   log,
		BasePath: cfg.Server.BasePath,
	}

	var repo materialorders.Repository
	if cfg.Storage.Driver == config.DriverMemory {
		log.Warn("using in-memory storage; data is lost on restart")
		repo = materialorders.NewMemoryStore()
	}

	// AWS is only needed for DynamoDB storage, idempotency or events.
	if repo == nil || cfg.Events.QueueURL != "" {
		clients, err := aws.NewClients(context.Background(), cfg.AWS.Region, cfg.AWS.EndpointOverride)
		if err != nil {
			log.Fatal("failed to init aws clients", zap.Error(err))
		}

		if repo == nil {
			repo = materialorders.NewDynamoStore(clients.DynamoDB, cfg.Storage.OrdersTable)
			if cfg.Storage.IdempotencyTable != "" {
				hcfg.Idempotency = idempotency.NewStore(clients.DynamoDB, cfg.Storage.IdempotencyTable, cfg.Storage.IdempotencyTTL)
			}
		}
		if cfg.Events.QueueURL != "" {
			hcfg.Events = orderevents.NewPublisher(clients.SQS, cfg.Events.QueueURL)
		}
	}

	hcfg.Service = materialorders.NewService(repo, validation.New())
	r := setupRouter(log, hcfg)

	log.Info("material orders api configured",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("base_path", cfg.Server.BasePath),
		zap.Bool("idempotency", hcfg.Idempotency != nil),
		zap.Bool("events", hcfg.Events != nil),
	)

	if cfg.Server.RunLocal {
		log.Info("running local server", zap.String("addr", cfg.Server.Addr))
		if err := r.Run(cfg.Server.Addr); err != nil {
			log.Fatal("local server stopped", zap.Error(err))
		}
		return
	}

	adapter := ginadapter.New(r)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
