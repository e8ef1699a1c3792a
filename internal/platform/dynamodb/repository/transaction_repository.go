package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	commonErrors "github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/domain/reconciler"
	"github.com/hirosato/finance-ledger/backend/internal/domain/transaction"
	"github.com/hirosato/finance-ledger/backend/internal/platform/dynamodb/client"
)

// DynamoDBTransactionRepository implements the transaction.Repository interface.
// Every write is a single TransactWriteItems call holding the transaction item
// and one update per account and category the reconciliation plan touches.
type DynamoDBTransactionRepository struct {
	client client.Client
	table  string
	hooks  reconciler.Hooks
	logger *slog.Logger
}

var _ transaction.Repository = (*DynamoDBTransactionRepository)(nil)

// NewDynamoDBTransactionRepository creates a new DynamoDBTransactionRepository
func NewDynamoDBTransactionRepository(client client.Client, table string, hooks reconciler.Hooks, logger *slog.Logger) *DynamoDBTransactionRepository {
	return &DynamoDBTransactionRepository{
		client: client,
		table:  table,
		hooks:  hooks,
		logger: logger,
	}
}

// target records what each item of a TransactWriteItems call refers to, so a
// cancellation reason can be mapped back to an error
type target struct {
	kind string
	id   string
}

const (
	targetTransaction = "transaction"
	targetAccount     = "account"
	targetCategory    = "category"
)

// CreateTransaction stores tx and applies its effect
func (r *DynamoDBTransactionRepository) CreateTransaction(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
	plan, err := r.hooks.ReconcileOnCreate(tx)
	if err != nil {
		return nil, err
	}

	put, err := r.putTransaction(tx, expression.AttributeNotExists(expression.Name("PK")))
	if err != nil {
		return nil, err
	}

	if err := r.write(ctx, tx, put, plan); err != nil {
		if isTransactionCondition(err) {
			return nil, commonErrors.NewConflictError("transaction already exists")
		}
		return nil, err
	}
	return tx, nil
}

// GetTransaction retrieves a transaction owned by ownerID
func (r *DynamoDBTransactionRepository) GetTransaction(ctx context.Context, ownerID, transactionID string) (*transaction.Transaction, error) {
	var item transactionItem
	found, err := getItem(ctx, r.client, r.table, key(userPK(ownerID), transactionSK(transactionID)), &item)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, commonErrors.NewNotFoundError("transaction not found")
	}
	return item.toDomain()
}

// GetTransactions retrieves the owner's transactions newest first. A date
// bound queries the date index; otherwise the owner's partition is read with
// a consistent read so audits see every committed write.
func (r *DynamoDBTransactionRepository) GetTransactions(ctx context.Context, ownerID string, filter *transaction.TransactionFilter) ([]*transaction.Transaction, error) {
	input, err := r.listInput(ownerID, filter)
	if err != nil {
		return nil, err
	}

	items, err := queryAll(ctx, r.client, input)
	if err != nil {
		return nil, err
	}

	result := make([]*transaction.Transaction, 0, len(items))
	for _, raw := range items {
		var item transactionItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, commonErrors.NewInternalError("failed to unmarshal transaction", err)
		}
		tx, err := item.toDomain()
		if err != nil {
			return nil, err
		}
		if filter.Matches(tx) {
			result = append(result, tx)
		}
	}

	sort.Slice(result, func(i, j int) bool { return transaction.Less(result[i], result[j]) })
	if filter != nil && filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *DynamoDBTransactionRepository) listInput(ownerID string, filter *transaction.TransactionFilter) (*dynamodb.QueryInput, error) {
	if filter == nil || (filter.StartDate == "" && filter.EndDate == "") {
		keyCondition := expression.Key("PK").Equal(expression.Value(userPK(ownerID))).
			And(expression.Key("SK").BeginsWith("TRANSACTION#"))
		expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
		if err != nil {
			return nil, commonErrors.NewInternalError("failed to build expression", err)
		}
		return &dynamodb.QueryInput{
			TableName:                 aws.String(r.table),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ConsistentRead:            aws.Bool(true),
		}, nil
	}

	// "~" sorts after every character of a ULID, so it closes the end date
	keyCondition := expression.Key("GSI1PK").Equal(expression.Value(transactionsGSI1PK(ownerID)))
	switch {
	case filter.StartDate != "" && filter.EndDate != "":
		keyCondition = keyCondition.And(expression.Key("GSI1SK").Between(
			expression.Value("DATE#"+filter.StartDate), expression.Value("DATE#"+filter.EndDate+"#~")))
	case filter.StartDate != "":
		keyCondition = keyCondition.And(expression.Key("GSI1SK").GreaterThanEqual(expression.Value("DATE#" + filter.StartDate)))
	default:
		keyCondition = keyCondition.And(expression.Key("GSI1SK").LessThanEqual(expression.Value("DATE#" + filter.EndDate + "#~")))
	}

	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to build expression", err)
	}
	return &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String(gsi1Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}, nil
}

// UpdateTransaction replaces previous with tx when previous is still the stored version
func (r *DynamoDBTransactionRepository) UpdateTransaction(ctx context.Context, previous, tx *transaction.Transaction) (*transaction.Transaction, error) {
	plan, err := r.hooks.ReconcileOnUpdate(previous, tx)
	if err != nil {
		return nil, err
	}

	put, err := r.putTransaction(tx, versionCondition(previous.Version))
	if err != nil {
		return nil, err
	}

	if err := r.write(ctx, tx, put, plan); err != nil {
		if isTransactionCondition(err) {
			return nil, r.snapshotError(ctx, previous)
		}
		return nil, err
	}
	return tx, nil
}

// DeleteTransaction removes snapshot when it is still the stored version
func (r *DynamoDBTransactionRepository) DeleteTransaction(ctx context.Context, snapshot *transaction.Transaction) error {
	plan, err := r.hooks.ReconcileOnDelete(snapshot)
	if err != nil {
		return err
	}

	expr, err := expression.NewBuilder().WithCondition(versionCondition(snapshot.Version)).Build()
	if err != nil {
		return commonErrors.NewInternalError("failed to build expression", err)
	}
	del := types.TransactWriteItem{
		Delete: &types.Delete{
			TableName:                 aws.String(r.table),
			Key:                       key(userPK(snapshot.OwnerID), transactionSK(snapshot.TransactionID)),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		},
	}

	if err := r.write(ctx, snapshot, del, plan); err != nil {
		if isTransactionCondition(err) {
			return r.snapshotError(ctx, snapshot)
		}
		return err
	}
	return nil
}

func versionCondition(version int64) expression.ConditionBuilder {
	return expression.AttributeExists(expression.Name("PK")).
		And(expression.Name("Version").Equal(expression.Value(version)))
}

func (r *DynamoDBTransactionRepository) putTransaction(tx *transaction.Transaction, condition expression.ConditionBuilder) (types.TransactWriteItem, error) {
	item, err := attributevalue.MarshalMap(newTransactionItem(tx))
	if err != nil {
		return types.TransactWriteItem{}, commonErrors.NewInternalError("failed to marshal transaction", err)
	}
	expr, err := expression.NewBuilder().WithCondition(condition).Build()
	if err != nil {
		return types.TransactWriteItem{}, commonErrors.NewInternalError("failed to build expression", err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:                 aws.String(r.table),
			Item:                      item,
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		},
	}, nil
}

// snapshotError tells a vanished transaction apart from a concurrent update
func (r *DynamoDBTransactionRepository) snapshotError(ctx context.Context, snapshot *transaction.Transaction) error {
	stored, err := r.GetTransaction(ctx, snapshot.OwnerID, snapshot.TransactionID)
	if err != nil {
		return err
	}
	return commonErrors.NewConflictError("transaction was modified by another request").
		WithDetail("currentVersion", stored.Version)
}

// write commits the transaction item together with the plan
func (r *DynamoDBTransactionRepository) write(ctx context.Context, tx *transaction.Transaction, first types.TransactWriteItem, plan *reconciler.Plan) error {
	items := []types.TransactWriteItem{first}
	targets := []target{{kind: targetTransaction, id: tx.TransactionID}}

	planItems, planTargets, err := r.planWrites(tx.OwnerID, plan)
	if err != nil {
		return err
	}
	items = append(items, planItems...)
	targets = append(targets, planTargets...)

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		return r.translateCancellation(err, targets)
	}

	r.logger.Debug("Applied reconciliation plan",
		"transactionId", tx.TransactionID,
		"accounts", plan.AccountIDs(),
		"items", len(items))
	return nil
}

// planWrites builds one update per account and per category. A target is
// never repeated because DynamoDB rejects two operations on one item in a
// single transaction.
func (r *DynamoDBTransactionRepository) planWrites(ownerID string, plan *reconciler.Plan) ([]types.TransactWriteItem, []target, error) {
	var items []types.TransactWriteItem
	var targets []target

	for _, accountID := range plan.AccountIDs() {
		var update expression.UpdateBuilder
		if delta, ok := plan.Adjustment(accountID); ok {
			update = update.Set(expression.Name("CurrentBalance"),
				expression.Name("CurrentBalance").Plus(expression.Value(number(delta))))
		}
		if ref := plan.AccountRef(accountID); ref != 0 {
			update = update.Set(expression.Name("TransactionCount"),
				expression.Name("TransactionCount").Plus(expression.Value(ref)))
		}
		item, err := r.counterUpdate(key(userPK(ownerID), accountSK(accountID)), update)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, item)
		targets = append(targets, target{kind: targetAccount, id: accountID})
	}

	for _, ref := range plan.CategoryRefs {
		update := expression.Set(expression.Name("TransactionCount"),
			expression.Name("TransactionCount").Plus(expression.Value(ref.Delta)))
		item, err := r.counterUpdate(key(categoryPK(ref.ID), categorySK), update)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, item)
		targets = append(targets, target{kind: targetCategory, id: ref.ID})
	}
	return items, targets, nil
}

func (r *DynamoDBTransactionRepository) counterUpdate(k map[string]types.AttributeValue, update expression.UpdateBuilder) (types.TransactWriteItem, error) {
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return types.TransactWriteItem{}, commonErrors.NewInternalError("failed to build expression", err)
	}
	return types.TransactWriteItem{
		Update: &types.Update{
			TableName:                 aws.String(r.table),
			Key:                       k,
			UpdateExpression:          expr.Update(),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		},
	}, nil
}

// errTransactionCondition marks a failed condition on the transaction item itself
var errTransactionCondition = errors.New("transaction condition failed")

func isTransactionCondition(err error) bool {
	return errors.Is(err, errTransactionCondition)
}

func (r *DynamoDBTransactionRepository) translateCancellation(err error, targets []target) error {
	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) {
		r.logger.Error("Transact write failed", "error", err)
		return commonErrors.NewInternalError("failed to write transaction", err)
	}

	for i, reason := range canceled.CancellationReasons {
		if aws.ToString(reason.Code) != "ConditionalCheckFailed" || i >= len(targets) {
			continue
		}
		switch t := targets[i]; t.kind {
		case targetTransaction:
			return errTransactionCondition
		case targetAccount:
			return commonErrors.NewFieldValidationError("accountId", fmt.Sprintf("account %s not found", t.id))
		case targetCategory:
			return commonErrors.NewFieldValidationError("categoryId", fmt.Sprintf("category %s not found", t.id))
		}
	}

	r.logger.Warn("Transact write canceled", "error", err)
	return commonErrors.NewConflictError("write was canceled, please retry")
}
