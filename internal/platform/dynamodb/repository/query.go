package repository

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	commonErrors "github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/platform/dynamodb/client"
)

// getItem reads one item with a strongly consistent read. found is false when
// the key does not exist.
func getItem(ctx context.Context, c client.Client, table string, k map[string]types.AttributeValue, out interface{}) (bool, error) {
	result, err := c.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            k,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, commonErrors.NewInternalError("failed to get item", err)
	}
	if len(result.Item) == 0 {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return false, commonErrors.NewInternalError("failed to unmarshal item", err)
	}
	return true, nil
}

// queryAll follows LastEvaluatedKey until the query is exhausted
func queryAll(ctx context.Context, c client.Client, input *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		result, err := c.Query(ctx, input)
		if err != nil {
			return nil, commonErrors.NewInternalError("failed to query items", err)
		}
		items = append(items, result.Items...)
		if len(result.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

func isConditionFailed(err error) bool {
	var condCheckErr *types.ConditionalCheckFailedException
	return errors.As(err, &condCheckErr)
}
