package dynamodb

import (
	"context"
	"fmt"
	"mowitajm/auth"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	attrEmail       = "email"
	attrFailedCount = "failed_count"
	// attrExpiresAt is the table's TTL attribute, in epoch seconds.
	attrExpiresAt = "expires_at"
)

type loginAttemptItem struct {
	Email       string     `dynamodbav:"email"`
	FailedCount int        `dynamodbav:"failed_count"`
	JailedUntil *time.Time `dynamodbav:"jailed_until,omitempty"`
	ExpiresAt   int64      `dynamodbav:"expires_at"`
}

// LoginAttemptRepository implements [auth.LoginAttemptRepository] on a
// DynamoDB table keyed by e-mail. Items expire after retention so stale
// failure counters do not pile up.
type LoginAttemptRepository struct {
	client    API
	table     string
	retention time.Duration
	now       func() time.Time
}

func NewLoginAttemptRepository(client API, table string, retention time.Duration) *LoginAttemptRepository {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &LoginAttemptRepository{
		client:    client,
		table:     table,
		retention: retention,
		now:       time.Now,
	}
}

func (r *LoginAttemptRepository) Get(ctx context.Context, email string) (auth.LoginAttempt, error) {
	if err := validateTable(r.table); err != nil {
		return auth.LoginAttempt{}, err
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            emailKey(email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return auth.LoginAttempt{}, fmt.Errorf("dynamodb: get login attempt: %w", err)
	}

	return decodeAttempt(out.Item)
}

func (r *LoginAttemptRepository) Save(ctx context.Context, email string, attempt auth.LoginAttempt) error {
	if err := validateTable(r.table); err != nil {
		return err
	}

	item := loginAttemptItem{
		Email:       email,
		FailedCount: attempt.FailedCount,
	}
	expiresAt := r.now().Add(r.retention)
	if !attempt.JailedUntil.IsZero() {
		jailed := attempt.JailedUntil.UTC()
		item.JailedUntil = &jailed
		if jailed.After(expiresAt) {
			expiresAt = jailed
		}
	}
	item.ExpiresAt = expiresAt.Unix()

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("dynamodb: marshal login attempt: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("dynamodb: put login attempt: %w", err)
	}
	return nil
}

func (r *LoginAttemptRepository) Reset(ctx context.Context, email string) error {
	if err := validateTable(r.table); err != nil {
		return err
	}

	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       emailKey(email),
	}); err != nil {
		return fmt.Errorf("dynamodb: delete login attempt: %w", err)
	}
	return nil
}

func emailKey(email string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrEmail: &types.AttributeValueMemberS{Value: email},
	}
}

func decodeAttempt(av map[string]types.AttributeValue) (auth.LoginAttempt, error) {
	if len(av) == 0 {
		return auth.LoginAttempt{}, nil
	}

	var item loginAttemptItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return auth.LoginAttempt{}, fmt.Errorf("dynamodb: unmarshal login attempt: %w", err)
	}

	attempt := auth.LoginAttempt{FailedCount: item.FailedCount}
	if item.JailedUntil != nil {
		attempt.JailedUntil = item.JailedUntil.UTC()
	}
	return attempt, nil
}
