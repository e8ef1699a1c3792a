package repository

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hirosato/finance-ledger/backend/internal/domain/category"
	commonErrors "github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/platform/dynamodb/client"
)

// DynamoDBCategoryRepository implements the category.Repository interface
type DynamoDBCategoryRepository struct {
	client client.Client
	table  string
	logger *slog.Logger
}

var _ category.Repository = (*DynamoDBCategoryRepository)(nil)

// NewDynamoDBCategoryRepository creates a new DynamoDBCategoryRepository
func NewDynamoDBCategoryRepository(client client.Client, table string, logger *slog.Logger) *DynamoDBCategoryRepository {
	return &DynamoDBCategoryRepository{
		client: client,
		table:  table,
		logger: logger,
	}
}

// CreateCategory stores a new category
func (r *DynamoDBCategoryRepository) CreateCategory(ctx context.Context, c *category.Category) (*category.Category, error) {
	item, err := attributevalue.MarshalMap(newCategoryItem(c))
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to marshal category", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, commonErrors.NewConflictError("category already exists")
		}
		return nil, commonErrors.NewInternalError("failed to create category", err)
	}
	return c, nil
}

// GetCategory retrieves a category by ID regardless of owner
func (r *DynamoDBCategoryRepository) GetCategory(ctx context.Context, categoryID string) (*category.Category, error) {
	var item categoryItem
	found, err := getItem(ctx, r.client, r.table, key(categoryPK(categoryID), categorySK), &item)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, commonErrors.NewNotFoundError("category not found")
	}
	return item.toDomain(), nil
}

// GetCategories retrieves the owner's categories and the defaults
func (r *DynamoDBCategoryRepository) GetCategories(ctx context.Context, ownerID string, filter *category.CategoryFilter) ([]*category.Category, error) {
	partitions := []string{categoriesGSI1PK(category.SystemOwner)}
	if ownerID != category.SystemOwner {
		partitions = append(partitions, categoriesGSI1PK(ownerID))
	}

	result := []*category.Category{}
	for _, pk := range partitions {
		expr, err := expression.NewBuilder().
			WithKeyCondition(expression.Key("GSI1PK").Equal(expression.Value(pk))).
			Build()
		if err != nil {
			return nil, commonErrors.NewInternalError("failed to build expression", err)
		}

		items, err := queryAll(ctx, r.client, &dynamodb.QueryInput{
			TableName:                 aws.String(r.table),
			IndexName:                 aws.String(gsi1Name),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
		if err != nil {
			return nil, err
		}

		for _, raw := range items {
			var item categoryItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, commonErrors.NewInternalError("failed to unmarshal category", err)
			}
			c := item.toDomain()
			if filter.Matches(c) {
				result = append(result, c)
			}
		}
	}
	return result, nil
}

// UpdateCategory writes name, type, color and the active flag. The type
// only changes while TransactionCount is zero.
func (r *DynamoDBCategoryRepository) UpdateCategory(ctx context.Context, c *category.Category) (*category.Category, error) {
	update := expression.Set(expression.Name("Name"), expression.Value(c.Name)).
		Set(expression.Name("GSI1SK"), expression.Value("NAME#"+c.Name)).
		Set(expression.Name("CategoryType"), expression.Value(string(c.CategoryType))).
		Set(expression.Name("Color"), expression.Value(c.Color)).
		Set(expression.Name("IsActive"), expression.Value(c.IsActive)).
		Set(expression.Name("UpdatedAt"), expression.Value(c.UpdatedAt.UTC()))

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("PK")).
			And(expression.Name("CategoryType").Equal(expression.Value(string(c.CategoryType))).
				Or(expression.Name("TransactionCount").Equal(expression.Value(0))))).
		Build()
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to build expression", err)
	}

	result, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       key(categoryPK(c.CategoryID), categorySK),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if !isConditionFailed(err) {
			return nil, commonErrors.NewInternalError("failed to update category", err)
		}
		stored, getErr := r.GetCategory(ctx, c.CategoryID)
		if getErr != nil {
			return nil, getErr
		}
		return nil, category.NewTypeLockedError(stored.TransactionCount)
	}

	var item categoryItem
	if err := attributevalue.UnmarshalMap(result.Attributes, &item); err != nil {
		return nil, commonErrors.NewInternalError("failed to unmarshal category", err)
	}
	return item.toDomain(), nil
}

// DeleteCategory removes a category whose transaction counter is zero
func (r *DynamoDBCategoryRepository) DeleteCategory(ctx context.Context, categoryID string) error {
	err := deleteUnreferenced(ctx, r.client, r.table, key(categoryPK(categoryID), categorySK))
	if err == nil {
		return nil
	}
	if !isConditionFailed(err) {
		return commonErrors.NewInternalError("failed to delete category", err)
	}

	c, getErr := r.GetCategory(ctx, categoryID)
	if getErr != nil {
		return getErr
	}
	return commonErrors.NewReferenceProtectedError("category has transactions and cannot be deleted").
		WithDetail("transactionCount", c.TransactionCount)
}
