package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIfNotExists_Get_MarkDone(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "idempotency-table", 48*time.Hour)
	ctx := context.Background()
	key := "test-key-1"

	created, err := s.CreateIfNotExists(ctx, key)
	require.NoError(t, err)
	require.True(t, created)

	// second create should return created=false (exists)
	created, err = s.CreateIfNotExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, created)

	rec, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, StatusInProgress, rec.Status)
	assert.Greater(t, rec.ExpiresAt, time.Now().Add(47*time.Hour).Unix())

	require.NoError(t, s.MarkDone(ctx, key, "order-1", `{"message":"ok"}`, 201))

	rec, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, rec.Status)
	assert.Equal(t, "order-1", rec.OrderID)
	assert.Equal(t, `{"message":"ok"}`, rec.ResponseBody)
	assert.Equal(t, 201, rec.ResponseStatus)
}

func TestGet_Missing(t *testing.T) {
	s := NewStore(newSimpleMock(), "idempotency-table", time.Hour)

	rec, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestMarkFailed_Reclaim(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "idempotency-table", time.Hour)
	ctx := context.Background()
	key := "test-key-2"

	_, err := s.CreateIfNotExists(ctx, key)
	require.NoError(t, err)

	// an in-progress record cannot be reclaimed
	ok, err := s.Reclaim(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.MarkFailed(ctx, key, "put item: timeout"))
	item := mock.table[key]
	st, isS := item["status"].(*types.AttributeValueMemberS)
	require.True(t, isS)
	assert.Equal(t, StatusFailed, st.Value)
	n, isS := item["note"].(*types.AttributeValueMemberS)
	require.True(t, isS)
	assert.Equal(t, "put item: timeout", n.Value)

	ok, err = s.Reclaim(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rec, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, rec.Status)

	// only one caller wins the reclaim
	ok, err = s.Reclaim(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecord_AttributevalueRoundTrip(t *testing.T) {
	rec := Record{
		Key:       "k1",
		Status:    StatusInProgress,
		CreatedAt: time.Now().Round(time.Second),
		UpdatedAt: time.Now().Round(time.Second),
		ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
	}
	m, err := attributevalue.MarshalMap(rec)
	require.NoError(t, err)
	assert.Contains(t, m, "idempotency_key")
	assert.NotContains(t, m, "order_id")

	var out Record
	require.NoError(t, attributevalue.UnmarshalMap(m, &out))
	assert.Equal(t, rec.Key, out.Key)
	assert.Equal(t, rec.ExpiresAt, out.ExpiresAt)
}
