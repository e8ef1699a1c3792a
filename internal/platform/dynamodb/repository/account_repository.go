package repository

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	commonErrors "github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/platform/dynamodb/client"
)

// DynamoDBAccountRepository implements the account.Repository interface
type DynamoDBAccountRepository struct {
	client client.Client
	table  string
	logger *slog.Logger
}

var _ account.Repository = (*DynamoDBAccountRepository)(nil)

// NewDynamoDBAccountRepository creates a new DynamoDBAccountRepository
func NewDynamoDBAccountRepository(client client.Client, table string, logger *slog.Logger) *DynamoDBAccountRepository {
	return &DynamoDBAccountRepository{
		client: client,
		table:  table,
		logger: logger,
	}
}

// CreateAccount stores a new account
func (r *DynamoDBAccountRepository) CreateAccount(ctx context.Context, acc *account.Account) (*account.Account, error) {
	item, err := attributevalue.MarshalMap(newAccountItem(acc))
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to marshal account", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, commonErrors.NewConflictError("account already exists")
		}
		return nil, commonErrors.NewInternalError("failed to create account", err)
	}
	return acc, nil
}

// GetAccount retrieves an account owned by ownerID
func (r *DynamoDBAccountRepository) GetAccount(ctx context.Context, ownerID, accountID string) (*account.Account, error) {
	var item accountItem
	found, err := getItem(ctx, r.client, r.table, key(userPK(ownerID), accountSK(accountID)), &item)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, commonErrors.NewNotFoundError("account not found")
	}
	return item.toDomain()
}

// GetAccounts retrieves the owner's accounts matching filter
func (r *DynamoDBAccountRepository) GetAccounts(ctx context.Context, ownerID string, filter *account.AccountFilter) ([]*account.Account, error) {
	keyCondition := expression.Key("PK").Equal(expression.Value(userPK(ownerID))).
		And(expression.Key("SK").BeginsWith("ACCOUNT#"))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to build expression", err)
	}

	items, err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ConsistentRead:            aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}

	result := make([]*account.Account, 0, len(items))
	for _, raw := range items {
		var item accountItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, commonErrors.NewInternalError("failed to unmarshal account", err)
		}
		acc, err := item.toDomain()
		if err != nil {
			return nil, err
		}
		if filter.Matches(acc) {
			result = append(result, acc)
		}
	}
	return result, nil
}

// UpdateAccount writes the descriptive fields and the active flag. Balance and
// counter attributes are not part of the update expression.
func (r *DynamoDBAccountRepository) UpdateAccount(ctx context.Context, acc *account.Account) (*account.Account, error) {
	update := expression.Set(expression.Name("Name"), expression.Value(acc.Name)).
		Set(expression.Name("AccountType"), expression.Value(string(acc.AccountType))).
		Set(expression.Name("Bank"), expression.Value(acc.Bank)).
		Set(expression.Name("IsActive"), expression.Value(acc.IsActive)).
		Set(expression.Name("UpdatedAt"), expression.Value(acc.UpdatedAt.UTC()))

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to build expression", err)
	}

	result, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       key(userPK(acc.OwnerID), accountSK(acc.AccountID)),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, commonErrors.NewNotFoundError("account not found")
		}
		return nil, commonErrors.NewInternalError("failed to update account", err)
	}

	var item accountItem
	if err := attributevalue.UnmarshalMap(result.Attributes, &item); err != nil {
		return nil, commonErrors.NewInternalError("failed to unmarshal account", err)
	}
	return item.toDomain()
}

// DeleteAccount removes an account whose transaction counter is zero
func (r *DynamoDBAccountRepository) DeleteAccount(ctx context.Context, ownerID, accountID string) error {
	err := deleteUnreferenced(ctx, r.client, r.table, key(userPK(ownerID), accountSK(accountID)))
	if err == nil {
		return nil
	}
	if !isConditionFailed(err) {
		return commonErrors.NewInternalError("failed to delete account", err)
	}

	// The condition covers both a missing item and a non-zero counter
	acc, getErr := r.GetAccount(ctx, ownerID, accountID)
	if getErr != nil {
		return getErr
	}
	return commonErrors.NewReferenceProtectedError("account has transactions and cannot be deleted").
		WithDetail("transactionCount", acc.TransactionCount)
}

// deleteUnreferenced deletes the item only while it exists with a zero counter
func deleteUnreferenced(ctx context.Context, c client.Client, table string, k map[string]types.AttributeValue) error {
	condition := expression.AttributeExists(expression.Name("PK")).
		And(expression.Name("TransactionCount").Equal(expression.Value(0)))

	expr, err := expression.NewBuilder().WithCondition(condition).Build()
	if err != nil {
		return err
	}

	_, err = c.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(table),
		Key:                       k,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	return err
}
