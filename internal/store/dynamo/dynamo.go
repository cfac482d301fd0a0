// internal/store/dynamo/dynamo.go
package dynamo

import (
	"context"
	"errors"
	"strconv"

	"simplelog/internal/config"
	"simplelog/internal/model"
	"simplelog/internal/store"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfgLib "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	zlog "github.com/rs/zerolog/log"
)

// Store is the DynamoDB-backed LogStore.
//
// Table layout (provisioned outside this service):
//   - hash key  service_name (S)
//   - range key timestamp (N, epoch seconds)
//   - GSI cfg.LogTypeIndex: hash log_type (S), range timestamp (N)
type Store struct {
	cfg    config.Config
	client *dynamodb.Client
}

// New loads the AWS SDK config and builds the DynamoDB client.
// Startup is the only place this can fail, so a failure is fatal.
func New(cfg config.Config) *Store {
	awsCfg, err := awsCfgLib.LoadDefaultConfig(
		context.TODO(),
		awsCfgLib.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load AWS config")
	}

	return &Store{cfg: cfg, client: newClient(awsCfg)}
}

// newClient builds the table client with the SDK retryer replaced by a
// single-attempt one. Setting RetryMaxAttempts to 0 would not do it: the
// SDK reads 0 as "unset" and keeps its default 3-attempt standard
// retryer. Writes are at-most-once and a failed read surfaces
// immediately so the planner can decide what to do.
func newClient(awsCfg aws.Config) *dynamodb.Client {
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		o.Retryer = aws.NopRetryer{}
	})
}

func (s *Store) Put(ctx context.Context, entry model.LogEntry) error {
	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return err
	}

	ctx2, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	_, err = s.client.PutItem(ctx2, &dynamodb.PutItemInput{
		TableName: aws.String(s.cfg.TableName),
		Item:      item,
	})
	return err
}

func (s *Store) QueryByService(ctx context.Context, serviceName string, q store.Query) ([]model.LogEntry, error) {
	input := s.queryInput(q)
	input.KeyConditionExpression = aws.String("#svc = :key AND #ts >= :floor")
	input.ExpressionAttributeNames["#svc"] = "service_name"
	input.ExpressionAttributeValues[":key"] = &types.AttributeValueMemberS{Value: serviceName}

	return s.runQuery(ctx, input, q.Limit)
}

func (s *Store) QueryByLogType(ctx context.Context, logType string, q store.Query) ([]model.LogEntry, error) {
	input := s.queryInput(q)
	input.IndexName = aws.String(s.cfg.LogTypeIndex)
	input.KeyConditionExpression = aws.String("#lt = :key AND #ts >= :floor")
	input.ExpressionAttributeNames["#lt"] = "log_type"
	input.ExpressionAttributeValues[":key"] = &types.AttributeValueMemberS{Value: logType}

	out, err := s.runQuery(ctx, input, q.Limit)
	if err != nil && indexUnavailable(err) {
		return nil, &store.CapabilityError{Path: "log_type_index", Err: err}
	}
	return out, err
}

// Scan walks the whole table keeping only entries newer than timeFloor that
// pass f. It deliberately carries no Limit: DynamoDB applies Limit before
// sorting is even possible, which would return the oldest page of matches.
func (s *Store) Scan(ctx context.Context, timeFloor int64, f store.ScanFilter) ([]model.LogEntry, error) {
	filter := "#ts >= :floor"
	names := map[string]string{"#ts": "timestamp"}
	values := map[string]types.AttributeValue{
		":floor": &types.AttributeValueMemberN{Value: strconv.FormatInt(timeFloor, 10)},
	}
	if f.ServiceName != "" {
		filter += " AND #svc = :svc"
		names["#svc"] = "service_name"
		values[":svc"] = &types.AttributeValueMemberS{Value: f.ServiceName}
	}
	if f.LogType != "" {
		filter += " AND #lt = :lt"
		names["#lt"] = "log_type"
		values[":lt"] = &types.AttributeValueMemberS{Value: f.LogType}
	}
	if f.Level != "" {
		filter += " AND #lvl = :lvl"
		names["#lvl"] = "level"
		values[":lvl"] = &types.AttributeValueMemberS{Value: f.Level}
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(s.cfg.TableName),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}

	ctx2, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	var out []model.LogEntry
	for {
		res, err := s.client.Scan(ctx2, input)
		if err != nil {
			return nil, err
		}
		var page []model.LogEntry
		if err := attributevalue.UnmarshalListOfMaps(res.Items, &page); err != nil {
			return nil, err
		}
		out = append(out, page...)

		if res.LastEvaluatedKey == nil {
			return out, nil
		}
		input.ExclusiveStartKey = res.LastEvaluatedKey
	}
}

// queryInput builds the parts shared by both indexed paths: descending
// range order, the time floor, and the optional level filter.
func (s *Store) queryInput(q store.Query) *dynamodb.QueryInput {
	input := &dynamodb.QueryInput{
		TableName:        aws.String(s.cfg.TableName),
		ScanIndexForward: aws.Bool(false), // newest first
		ExpressionAttributeNames: map[string]string{
			"#ts": "timestamp",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":floor": &types.AttributeValueMemberN{Value: strconv.FormatInt(q.TimeFloor, 10)},
		},
	}
	if q.Limit > 0 {
		input.Limit = aws.Int32(int32(q.Limit))
	}
	if q.Level != "" {
		input.FilterExpression = aws.String("#lvl = :lvl")
		input.ExpressionAttributeNames["#lvl"] = "level"
		input.ExpressionAttributeValues[":lvl"] = &types.AttributeValueMemberS{Value: q.Level}
	}
	return input
}

// runQuery pages through a Query until limit rows survived the filter or
// the key range is exhausted. DynamoDB evaluates Limit before
// FilterExpression, so a single page can come back short even when more
// matching rows exist.
func (s *Store) runQuery(ctx context.Context, input *dynamodb.QueryInput, limit int) ([]model.LogEntry, error) {
	ctx2, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	var out []model.LogEntry
	for {
		res, err := s.client.Query(ctx2, input)
		if err != nil {
			return nil, err
		}
		var page []model.LogEntry
		if err := attributevalue.UnmarshalListOfMaps(res.Items, &page); err != nil {
			return nil, err
		}
		out = append(out, page...)

		if (limit > 0 && len(out) >= limit) || res.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = res.LastEvaluatedKey
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// indexUnavailable reports errors that mean "this access path does not
// exist here" rather than "the store is down": a dropped or not yet
// provisioned GSI answers with ResourceNotFound or ValidationException.
func indexUnavailable(err error) bool {
	var rnf *types.ResourceNotFoundException
	if errors.As(err, &rnf) {
		return true
	}
	var ae smithy.APIError
	if errors.As(err, &ae) && ae.ErrorCode() == "ValidationException" {
		return true
	}
	return false
}
