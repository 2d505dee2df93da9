package session

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

// DynamoDB key constants for the single-table design.
const (
	pkPrefix = "SESSION#"
	skMeta   = "META"
)

// DynamoTracker implements Tracker against a DynamoDB table. All mutations are
// UpdateItem calls with narrow SET/REMOVE expressions — never full-item
// replacement — so fields owned by other subsystems survive a processing run.
type DynamoTracker struct {
	client    *dynamodb.Client
	tableName string

	// now is injectable for tests. DynamoDB has no server-assigned timestamps,
	// so updatedAt and error timestamps come from the worker clock.
	now func() time.Time
}

// Compile-time interface check.
var _ Tracker = (*DynamoTracker)(nil)

// NewDynamoTracker creates a DynamoTracker for the given table.
func NewDynamoTracker(client *dynamodb.Client, tableName string) *DynamoTracker {
	return &DynamoTracker{
		client:    client,
		tableName: tableName,
		now:       time.Now,
	}
}

func sessionPK(sessionID string) string {
	return pkPrefix + sessionID
}

func (t *DynamoTracker) key(sessionID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: sessionPK(sessionID)},
		"SK": &types.AttributeValueMemberS{Value: skMeta},
	}
}

// update runs one UpdateItem with the given expression and values.
func (t *DynamoTracker) update(ctx context.Context, sessionID, expr string, names map[string]string, values map[string]types.AttributeValue) error {
	input := &dynamodb.UpdateItemInput{
		TableName:                 &t.tableName,
		Key:                       t.key(sessionID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeValues: values,
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}
	if _, err := t.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("UpdateItem session %s: %w", sessionID, err)
	}
	return nil
}

func (t *DynamoTracker) Get(ctx context.Context, sessionID string) (*Session, error) {
	result, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &t.tableName,
		Key:       t.key(sessionID),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem session %s: %w", sessionID, err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var sess Session
	if err := attributevalue.UnmarshalMap(result.Item, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", sessionID, err)
	}
	sess.ID = sessionID
	return &sess, nil
}

func (t *DynamoTracker) MarkPending(ctx context.Context, sessionID string, attemptNumber int, taskID string) error {
	nowUnix := t.now().UnixMilli()
	proc := Processing{
		State:         StatePending,
		StartedAt:     nowUnix,
		UpdatedAt:     nowUnix,
		AttemptNumber: attemptNumber,
		TaskID:        taskID,
	}
	procAttr, err := attributevalue.Marshal(proc)
	if err != nil {
		return fmt.Errorf("marshal processing: %w", err)
	}

	log.Debug().Str("sessionId", sessionID).Int("attempt", attemptNumber).Msg("Marking session pending")
	return t.update(ctx, sessionID,
		"SET #p = :proc",
		map[string]string{"#p": "processing"},
		map[string]types.AttributeValue{":proc": procAttr},
	)
}

func (t *DynamoTracker) MarkRunning(ctx context.Context, sessionID string, step Step) error {
	log.Debug().Str("sessionId", sessionID).Str("step", string(step)).Msg("Marking session running")
	return t.update(ctx, sessionID,
		"SET #p.#st = :state, #p.currentStep = :step, #p.updatedAt = :now",
		map[string]string{"#p": "processing", "#st": "state"},
		map[string]types.AttributeValue{
			":state": &types.AttributeValueMemberS{Value: string(StateRunning)},
			":step":  &types.AttributeValueMemberS{Value: string(step)},
			":now":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", t.now().UnixMilli())},
		},
	)
}

func (t *DynamoTracker) UpdateStep(ctx context.Context, sessionID string, step Step) error {
	log.Debug().Str("sessionId", sessionID).Str("step", string(step)).Msg("Updating session step")
	return t.update(ctx, sessionID,
		"SET #p.currentStep = :step, #p.updatedAt = :now",
		map[string]string{"#p": "processing"},
		map[string]types.AttributeValue{
			":step": &types.AttributeValueMemberS{Value: string(step)},
			":now":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", t.now().UnixMilli())},
		},
	)
}

func (t *DynamoTracker) MarkFailed(ctx context.Context, sessionID, code, message string) error {
	nowUnix := t.now().UnixMilli()
	errAttr, err := attributevalue.Marshal(ProcessingError{
		Code:      code,
		Message:   message,
		Timestamp: nowUnix,
	})
	if err != nil {
		return fmt.Errorf("marshal processing error: %w", err)
	}

	log.Warn().Str("sessionId", sessionID).Str("code", code).Str("error", message).Msg("Marking session failed")
	nestedErr := t.update(ctx, sessionID,
		"SET #p.#st = :state, #p.#err = :err, #p.updatedAt = :now",
		map[string]string{"#p": "processing", "#st": "state", "#err": "error"},
		map[string]types.AttributeValue{
			":state": &types.AttributeValueMemberS{Value: string(StateFailed)},
			":err":   errAttr,
			":now":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", nowUnix)},
		},
	)
	if nestedErr == nil {
		return nil
	}

	// Nested paths are invalid when processing does not exist yet, which happens
	// for failures before MarkPending. Write the whole sub-document instead.
	procAttr, err := attributevalue.Marshal(Processing{
		State:     StateFailed,
		StartedAt: nowUnix,
		UpdatedAt: nowUnix,
		Error:     &ProcessingError{Code: code, Message: message, Timestamp: nowUnix},
	})
	if err != nil {
		return fmt.Errorf("marshal failed processing: %w", err)
	}
	return t.update(ctx, sessionID,
		"SET #p = :proc",
		map[string]string{"#p": "processing"},
		map[string]types.AttributeValue{":proc": procAttr},
	)
}

func (t *DynamoTracker) Finalize(ctx context.Context, sessionID string, outputs *Outputs) error {
	outAttr, err := attributevalue.Marshal(outputs)
	if err != nil {
		return fmt.Errorf("marshal outputs: %w", err)
	}

	log.Info().
		Str("sessionId", sessionID).
		Str("format", outputs.Format).
		Str("url", outputs.PrimaryURL).
		Msg("Finalizing session")

	// One write: delete processing, set outputs. A reader never observes both.
	return t.update(ctx, sessionID,
		"REMOVE #p SET outputs = :out",
		map[string]string{"#p": "processing"},
		map[string]types.AttributeValue{":out": outAttr},
	)
}
