// Package episodes records assembled podcasts in DynamoDB.
package episodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Status summarizes how an assembly went.
type Status string

const (
	// StatusComplete means every non-blank line was synthesized.
	StatusComplete Status = "complete"
	// StatusPartial means some lines failed but a combined file exists.
	StatusPartial Status = "partial"
	// StatusNoAudio means no combined file was produced.
	StatusNoAudio Status = "no_audio"
)

// StatusFor derives the status from assembly counts.
func StatusFor(segments, failed int, combined bool) Status {
	switch {
	case !combined || segments == 0:
		return StatusNoAudio
	case failed > 0:
		return StatusPartial
	default:
		return StatusComplete
	}
}

// Episode is the DynamoDB record for one assembled podcast.
type Episode struct {
	PK              string  `dynamodbav:"PK"`
	SK              string  `dynamodbav:"SK"`
	GSI1PK          string  `dynamodbav:"GSI1PK"`
	GSI1SK          string  `dynamodbav:"GSI1SK"`
	RequestID       string  `dynamodbav:"requestId"`
	Status          string  `dynamodbav:"status"`
	Segments        int     `dynamodbav:"segments"`
	FailedLines     int     `dynamodbav:"failedLines,omitempty"`
	AudioURL        string  `dynamodbav:"audioUrl,omitempty"`
	AudioKey        string  `dynamodbav:"audioKey,omitempty"`
	MirrorURL       string  `dynamodbav:"mirrorUrl,omitempty"`
	DurationSec     float64 `dynamodbav:"durationSec,omitempty"`
	FileSizeMB      float64 `dynamodbav:"fileSizeMB,omitempty"`
	TTSProvider     string  `dynamodbav:"ttsProvider,omitempty"`
	FirstHostVoice  string  `dynamodbav:"firstHostVoice,omitempty"`
	SecondHostVoice string  `dynamodbav:"secondHostVoice,omitempty"`
	ScriptJSON      string  `dynamodbav:"scriptJson,omitempty"`
	CreatedAt       string  `dynamodbav:"createdAt"`
}

// API is the subset of the DynamoDB client the store uses.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Store handles DynamoDB operations for episodes.
type Store struct {
	client    API
	tableName string
	now       func() time.Time
}

func NewStore(client API, tableName string) *Store {
	return &Store{client: client, tableName: tableName, now: time.Now}
}

func key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "PODCAST#" + id},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

// Record writes ep, filling in keys and the creation time.
func (s *Store) Record(ctx context.Context, ep Episode) error {
	if ep.RequestID == "" {
		return fmt.Errorf("episode has no request id")
	}
	now := s.now().UTC().Format(time.RFC3339)
	ep.PK = "PODCAST#" + ep.RequestID
	ep.SK = "METADATA"
	ep.GSI1PK = "PODCASTS"
	ep.GSI1SK = now + "#" + ep.RequestID
	ep.CreatedAt = now

	av, err := attributevalue.MarshalMap(ep)
	if err != nil {
		return fmt.Errorf("marshal episode: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.tableName,
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("put episode: %w", err)
	}
	return nil
}

// Get returns the episode for a request id, or nil if there is none.
func (s *Store) Get(ctx context.Context, id string) (*Episode, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.tableName,
		Key:       key(id),
	})
	if err != nil {
		return nil, fmt.Errorf("get episode: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var ep Episode
	if err := attributevalue.UnmarshalMap(result.Item, &ep); err != nil {
		return nil, fmt.Errorf("unmarshal episode: %w", err)
	}
	return &ep, nil
}

// List returns episodes newest first via GSI1. cursor is the GSI1SK of the
// last item of the previous page.
func (s *Store) List(ctx context.Context, limit int, cursor string) ([]Episode, string, error) {
	if limit <= 0 {
		limit = 20
	}

	input := &dynamodb.QueryInput{
		TableName:              &s.tableName,
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "PODCASTS"},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	}

	if cursor != "" {
		parts := strings.SplitN(cursor, "#", 2)
		if len(parts) != 2 {
			return nil, "", fmt.Errorf("invalid cursor format")
		}
		start := key(parts[1])
		start["GSI1PK"] = &types.AttributeValueMemberS{Value: "PODCASTS"}
		start["GSI1SK"] = &types.AttributeValueMemberS{Value: cursor}
		input.ExclusiveStartKey = start
	}

	result, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, "", fmt.Errorf("list episodes: %w", err)
	}

	var items []Episode
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
		return nil, "", fmt.Errorf("unmarshal episode list: %w", err)
	}

	var next string
	if result.LastEvaluatedKey != nil {
		if sk, ok := result.LastEvaluatedKey["GSI1SK"].(*types.AttributeValueMemberS); ok {
			next = sk.Value
		}
	}
	return items, next, nil
}
