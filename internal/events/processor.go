package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-material-orders/internal/aws"
)

// Metric names published per event.
const (
	MetricCreated = "MaterialOrdersCreated"
	MetricUpdated = "MaterialOrdersUpdated"
	MetricDeleted = "MaterialOrdersDeleted"
	MetricValue   = "MaterialOrderValue"
)

// Processor turns change events into CloudWatch metrics.
type Processor struct {
	cloudwatch aws.CloudWatchAPI
	namespace  string
	log        *zap.Logger
}

// NewProcessor creates a worker processor with its CloudWatch client injected.
func NewProcessor(cw aws.CloudWatchAPI, namespace string, log *zap.Logger) *Processor {
	return &Processor{
		cloudwatch: cw,
		namespace:  namespace,
		log:        log,
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev lambdaevents.SQSEvent) error {
	p.log.Info("received sqs batch", zap.Int("records", len(ev.Records)))
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Lambda retries the batch; after maxReceiveCount it goes to the DLQ.
			p.log.Error("worker error", zap.String("message_id", rec.MessageId), zap.Error(err))
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec lambdaevents.SQSMessage) error {
	var ev Event
	if err := json.Unmarshal([]byte(rec.Body), &ev); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	data, err := metricsFor(ev)
	if err != nil {
		return err
	}

	_, err = p.cloudwatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  &p.namespace,
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}

	p.log.Info("processed material order event",
		zap.String("type", ev.Type),
		zap.String("order_id", ev.OrderID),
		zap.String("request_id", ev.RequestID))
	return nil
}

func metricsFor(ev Event) ([]cwtypes.MetricDatum, error) {
	var name string
	switch ev.Type {
	case TypeCreated:
		name = MetricCreated
	case TypeUpdated:
		name = MetricUpdated
	case TypeDeleted:
		name = MetricDeleted
	default:
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}

	status := ev.Status
	if status == "" {
		status = "Unknown"
	}
	dims := []cwtypes.Dimension{{Name: sdkaws.String("Status"), Value: sdkaws.String(status)}}
	var ts *time.Time
	if !ev.OccurredAt.IsZero() {
		ts = sdkaws.Time(ev.OccurredAt)
	}

	data := []cwtypes.MetricDatum{{
		MetricName: sdkaws.String(name),
		Dimensions: dims,
		Timestamp:  ts,
		Unit:       cwtypes.StandardUnitCount,
		Value:      sdkaws.Float64(1),
	}}
	if ev.Type == TypeCreated {
		data = append(data, cwtypes.MetricDatum{
			MetricName: sdkaws.String(MetricValue),
			Dimensions: dims,
			Timestamp:  ts,
			Unit:       cwtypes.StandardUnitNone,
			Value:      sdkaws.Float64(ev.TotalPrice),
		})
	}
	return data, nil
}
