// internal/metrics/cloudwatch.go
package metrics

import (
	"context"

	"simplelog/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfgLib "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	zlog "github.com/rs/zerolog/log"
)

// CloudWatchSink publishes counters through PutMetricData, one dimension
// (ServiceName) per datum, matching the original dashboards.
type CloudWatchSink struct {
	cfg    config.Config
	client *cloudwatch.Client
}

func NewCloudWatchSink(cfg config.Config) *CloudWatchSink {
	awsCfg, err := awsCfgLib.LoadDefaultConfig(
		context.TODO(),
		awsCfgLib.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load AWS config")
	}

	return &CloudWatchSink{
		cfg:    cfg,
		client: cloudwatch.NewFromConfig(awsCfg),
	}
}

// Increment is best-effort on purpose: a failed publish is logged at warn
// and swallowed. It must never change the response of the request that
// triggered it.
func (s *CloudWatchSink) Increment(ctx context.Context, name string, value float64, serviceName string) {
	if serviceName == "" {
		serviceName = "unknown"
	}

	_, err := s.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(s.cfg.MetricsNamespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(value),
				Unit:       types.StandardUnitCount,
				Dimensions: []types.Dimension{
					{
						Name:  aws.String("ServiceName"),
						Value: aws.String(serviceName),
					},
				},
			},
		},
	})
	if err != nil {
		zlog.Warn().Err(err).Str("metric", name).Msg("metric publish failed")
	}
}
