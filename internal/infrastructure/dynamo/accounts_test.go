package dynamo

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/linkup-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reset_token keys a sparse GSI, so an account without a pending reset must
// marshal with the attribute absent entirely. An empty-string value would make
// DynamoDB reject the PutItem inside Create's transaction.
func TestMarshalAccount_NoResetToken_AttributeOmitted(t *testing.T) {
	a, err := domain.NewAccount("acc1", domain.CreateAccountRequest{
		Email:       "alice@example.com",
		Handle:      "alice",
		Password:    "s3cretpass",
		DisplayName: "Alice",
	}, time.Now())
	require.NoError(t, err)

	item, err := attributevalue.MarshalMap(&a)
	require.NoError(t, err)

	_, present := item["reset_token"]
	assert.False(t, present, "empty reset_token must not be marshaled")
}

func TestMarshalAccount_PendingReset_AttributeIndexed(t *testing.T) {
	a, err := domain.NewAccount("acc1", domain.CreateAccountRequest{
		Email:       "alice@example.com",
		Handle:      "alice",
		Password:    "s3cretpass",
		DisplayName: "Alice",
	}, time.Now())
	require.NoError(t, err)

	now := time.Now()
	pending := a.WithResetToken("tok123", now)
	item, err := attributevalue.MarshalMap(&pending)
	require.NoError(t, err)

	av, present := item["reset_token"]
	require.True(t, present)
	s, ok := av.(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "tok123", s.Value)

	// Consuming the token drops the account back out of the sparse index.
	hash, err := domain.HashPassword("newpassword1")
	require.NoError(t, err)
	consumed := pending.ConsumeResetToken(hash, now)
	item, err = attributevalue.MarshalMap(&consumed)
	require.NoError(t, err)
	_, present = item["reset_token"]
	assert.False(t, present)
}
