package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metrics emits application metrics to CloudWatch. A nil client disables
// emission, so local runs need no AWS credentials.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string, client *cloudwatch.Client) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
	}
}

// RecordDispatch records one pipeline dispatch: which module took the
// input, how long the pipeline ran, and how it ended
func (m *Metrics) RecordDispatch(ctx context.Context, moduleKind, status string, duration time.Duration) {
	if m.client == nil {
		return
	}

	metricData := []types.MetricDatum{
		{
			MetricName: aws.String("DispatchLatency"),
			Dimensions: []types.Dimension{
				{Name: aws.String("ModuleKind"), Value: aws.String(moduleKind)},
				{Name: aws.String("Status"), Value: aws.String(status)},
			},
			Value:     aws.Float64(float64(duration.Milliseconds())),
			Unit:      types.StandardUnitMilliseconds,
			Timestamp: aws.Time(time.Now()),
		},
		{
			MetricName: aws.String("DispatchCount"),
			Dimensions: []types.Dimension{
				{Name: aws.String("ModuleKind"), Value: aws.String(moduleKind)},
				{Name: aws.String("Status"), Value: aws.String(status)},
			},
			Value:     aws.Float64(1),
			Unit:      types.StandardUnitCount,
			Timestamp: aws.Time(time.Now()),
		},
	}

	m.put(ctx, metricData)
}

// RecordClassificationFallback counts inputs that fell back to the
// generic module instead of a confident classification
func (m *Metrics) RecordClassificationFallback(ctx context.Context, reason string) {
	if m.client == nil {
		return
	}

	m.put(ctx, []types.MetricDatum{
		{
			MetricName: aws.String("ClassificationFallback"),
			Dimensions: []types.Dimension{
				{Name: aws.String("Reason"), Value: aws.String(reason)},
			},
			Value:     aws.Float64(1),
			Unit:      types.StandardUnitCount,
			Timestamp: aws.Time(time.Now()),
		},
	})
}

// RecordDigest records one digest run outcome
func (m *Metrics) RecordDigest(ctx context.Context, summarized bool, entryCount int, duration time.Duration) {
	if m.client == nil {
		return
	}

	mode := "summarized"
	if !summarized {
		mode = "plain"
	}

	m.put(ctx, []types.MetricDatum{
		{
			MetricName: aws.String("DigestLatency"),
			Dimensions: []types.Dimension{
				{Name: aws.String("Mode"), Value: aws.String(mode)},
			},
			Value:     aws.Float64(float64(duration.Milliseconds())),
			Unit:      types.StandardUnitMilliseconds,
			Timestamp: aws.Time(time.Now()),
		},
		{
			MetricName: aws.String("DigestEntries"),
			Value:      aws.Float64(float64(entryCount)),
			Unit:       types.StandardUnitCount,
			Timestamp:  aws.Time(time.Now()),
		},
	})
}

// RecordError records error occurrences by taxonomy type
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	if m.client == nil {
		return
	}

	m.put(ctx, []types.MetricDatum{
		{
			MetricName: aws.String("Errors"),
			Dimensions: []types.Dimension{
				{Name: aws.String("ErrorType"), Value: aws.String(errorType)},
			},
			Value:     aws.Float64(1),
			Unit:      types.StandardUnitCount,
			Timestamp: aws.Time(time.Now()),
		},
	})
}

func (m *Metrics) put(ctx context.Context, data []types.MetricDatum) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	}
	// Metric failures never affect the operation being measured
	m.client.PutMetricData(ctx, input)
}
