package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-material-orders/internal/aws"
	"github.com/imrishuroy/go-material-orders/internal/config"
	orderevents "github.com/imrishuroy/go-material-orders/internal/events"
	"github.com/imrishuroy/go-material-orders/pkg/logger"
)

const sampleBody = `{"type":"material_order.created","order_id":"local-order-1","material_id":"MAT-001","status":"Pending","total_price":25,"occurred_at":"2024-03-01T00:00:00Z"}`

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

	clients, err := aws.NewClients(context.Background(), cfg.AWS.Region, cfg.AWS.EndpointOverride)
	if err != nil {
		log.Fatal("failed to init aws clients", zap.Error(err))
	}

	p := orderevents.NewProcessor(clients.CloudWatch, cfg.Events.MetricsNamespace, log)

	// RUN_LOCAL processes one message from LOCAL_SQS_BODY and exits.
	if cfg.Server.RunLocal {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = sampleBody
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{{MessageId: "local-1", Body: body}},
		}
		if err := p.Handle(context.Background(), event); err != nil {
			log.Fatal("local handler error", zap.Error(err))
		}
		return
	}

	lambda.Start(p.Handle)
}
