package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/linkup-api/internal/domain"
)

// AccountRepo provides typed DynamoDB operations for the accounts table.
//
// Uniqueness on email and handle is enforced by the store, not the caller:
// Create writes the account and one claim item per key into the account_keys
// table inside a single TransactWriteItems call, each guarded by an
// attribute_not_exists condition. A lost race surfaces as ErrConflict.
type AccountRepo struct {
	client    *dynamodb.Client
	table     string
	keysTable string
}

func NewAccountRepo(client *dynamodb.Client, table, keysTable string) *AccountRepo {
	return &AccountRepo{client: client, table: table, keysTable: keysTable}
}

// keyEntry is a uniqueness claim: "email#<email>" or "handle#<handle>".
type keyEntry struct {
	Entry     string `dynamodbav:"entry"`
	AccountID string `dynamodbav:"account_id"`
}

func emailKey(email string) string   { return "email#" + email }
func handleKey(handle string) string { return "handle#" + handle }

func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	writes := []types.TransactWriteItem{
		{Put: &types.Put{
			TableName:           aws.String(r.table),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(account_id)"),
		}},
		r.claimPut(emailKey(a.Email), a.AccountID),
		r.claimPut(handleKey(a.Handle), a.AccountID),
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: writes,
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			for _, reason := range tce.CancellationReasons {
				if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
					return fmt.Errorf("email or handle already taken: %w", domain.ErrConflict)
				}
			}
		}
		return err
	}
	return nil
}

func (r *AccountRepo) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       strKey("account_id", accountID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("account %s: %w", accountID, domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.queryGSI(ctx, "email-index", "email", domain.NormalizeKey(email))
}

func (r *AccountRepo) GetByHandle(ctx context.Context, handle string) (*domain.Account, error) {
	return r.queryGSI(ctx, "handle-index", "handle", domain.NormalizeKey(handle))
}

func (r *AccountRepo) GetByResetToken(ctx context.Context, token string) (*domain.Account, error) {
	return r.queryGSI(ctx, "reset_token-index", "reset_token", token)
}

// Save persists a transitioned account value as a whole-record write.
func (r *AccountRepo) Save(ctx context.Context, a *domain.Account) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	return err
}

// TouchLastSeen records a successful login without rewriting the record.
func (r *AccountRepo) TouchLastSeen(ctx context.Context, accountID string, t time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		"last_seen_at": t,
		"updated_at":   t,
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       strKey("account_id", accountID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *AccountRepo) claimPut(entry, accountID string) types.TransactWriteItem {
	item, _ := attributevalue.MarshalMap(keyEntry{Entry: entry, AccountID: accountID})
	return types.TransactWriteItem{Put: &types.Put{
		TableName:           aws.String(r.keysTable),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(entry)"),
	}}
}

func (r *AccountRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.Account, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("account by %s: %w", attr, domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Items[0], &a); err != nil {
		return nil, err
	}
	return &a, nil
}
