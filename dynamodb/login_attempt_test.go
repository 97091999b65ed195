package dynamodb

import (
	"context"
	"errors"
	"mowitajm/auth"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTable struct {
	items map[string]map[string]types.AttributeValue
	err   error
}

func newFakeTable() *fakeTable {
	return &fakeTable{items: map[string]map[string]types.AttributeValue{}}
}

func key(in map[string]types.AttributeValue) string {
	return in[attrEmail].(*types.AttributeValueMemberS).Value
}

func (f *fakeTable) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.GetItemOutput{Item: f.items[key(in.Key)]}, nil
}

func (f *fakeTable) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.items[key(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeTable) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	delete(f.items, key(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestLoginAttemptRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	newRepo := func(table *fakeTable) *LoginAttemptRepository {
		r := NewLoginAttemptRepository(table, "login_attempts", time.Hour)
		r.now = func() time.Time { return now }
		return r
	}

	t.Run("round trip", func(t *testing.T) {
		table := newFakeTable()
		repo := newRepo(table)

		attempt, err := repo.Get(ctx, "arvid@mail.com")
		require.NoError(t, err)
		assert.Equal(t, auth.LoginAttempt{}, attempt)

		jailed := now.Add(15 * time.Minute)
		require.NoError(t, repo.Save(ctx, "arvid@mail.com", auth.LoginAttempt{FailedCount: 2, JailedUntil: jailed}))

		attempt, err = repo.Get(ctx, "arvid@mail.com")
		require.NoError(t, err)
		assert.Equal(t, 2, attempt.FailedCount)
		assert.True(t, jailed.Equal(attempt.JailedUntil))

		require.NoError(t, repo.Reset(ctx, "arvid@mail.com"))
		attempt, err = repo.Get(ctx, "arvid@mail.com")
		require.NoError(t, err)
		assert.Equal(t, auth.LoginAttempt{}, attempt)
	})

	t.Run("expiry covers the jail", func(t *testing.T) {
		table := newFakeTable()
		repo := newRepo(table)

		require.NoError(t, repo.Save(ctx, "a@mail.com", auth.LoginAttempt{FailedCount: 1}))
		require.NoError(t, repo.Save(ctx, "b@mail.com", auth.LoginAttempt{JailedUntil: now.Add(3 * time.Hour)}))

		assert.Equal(t, "1740834000", table.items["a@mail.com"][attrExpiresAt].(*types.AttributeValueMemberN).Value)
		assert.Equal(t, "1740841200", table.items["b@mail.com"][attrExpiresAt].(*types.AttributeValueMemberN).Value)
	})

	t.Run("client errors are wrapped", func(t *testing.T) {
		table := newFakeTable()
		table.err = errors.New("throttled")
		repo := newRepo(table)

		_, err := repo.Get(ctx, "arvid@mail.com")
		assert.EqualError(t, err, "dynamodb: get login attempt: throttled")
		assert.EqualError(t, repo.Save(ctx, "arvid@mail.com", auth.LoginAttempt{}), "dynamodb: put login attempt: throttled")
		assert.EqualError(t, repo.Reset(ctx, "arvid@mail.com"), "dynamodb: delete login attempt: throttled")
	})

	t.Run("missing table name", func(t *testing.T) {
		repo := NewLoginAttemptRepository(newFakeTable(), " ", 0)

		_, err := repo.Get(ctx, "arvid@mail.com")
		assert.EqualError(t, err, "dynamodb: table name is required")
	})

	t.Run("corrupt counter", func(t *testing.T) {
		table := newFakeTable()
		table.items["arvid@mail.com"] = map[string]types.AttributeValue{
			attrEmail:       &types.AttributeValueMemberS{Value: "arvid@mail.com"},
			attrFailedCount: &types.AttributeValueMemberN{Value: "many"},
		}

		_, err := newRepo(table).Get(ctx, "arvid@mail.com")
		assert.Error(t, err)
	})
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(context.Background(), Options{})
	assert.EqualError(t, err, "dynamodb: region is required")

	_, err = NewClient(context.Background(), Options{Region: "eu-north-1", AccessKey: "key"})
	assert.EqualError(t, err, "dynamodb: access key and secret key must be set together")

	client, err := NewClient(context.Background(), Options{
		Region:    "eu-north-1",
		Endpoint:  "http://localhost:8000",
		AccessKey: "local",
		SecretKey: "local",
	})
	require.NoError(t, err)
	assert.Equal(t, aws.String("http://localhost:8000"), client.Options().BaseEndpoint)
}

func TestLoginAttemptRepository_ItemLayout(t *testing.T) {
	table := newFakeTable()
	repo := NewLoginAttemptRepository(table, "login_attempts", time.Hour)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Save(context.Background(), "arvid@mail.com", auth.LoginAttempt{FailedCount: 3}))

	item := table.items["arvid@mail.com"]
	assert.Equal(t, "3", item[attrFailedCount].(*types.AttributeValueMemberN).Value)
	assert.NotContains(t, item, "jailed_until")
}
