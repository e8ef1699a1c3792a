package repository

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/hirosato/finance-ledger/backend/internal/domain/category"
)

// Single-table layout
//
//	account      PK USER#{owner}          SK ACCOUNT#{id}
//	category     PK CATEGORY#{id}         SK CATEGORY       GSI1PK CATEGORIES#{owner|SYSTEM}  GSI1SK NAME#{name}
//	transaction  PK USER#{owner}          SK TRANSACTION#{id}
//	                                      GSI1PK USER#{owner}#TRANSACTIONS  GSI1SK DATE#{date}#TRANSACTION#{id}
const (
	gsi1Name = "GSI1"

	typeAccount     = "account"
	typeCategory    = "category"
	typeTransaction = "transaction"

	systemOwnerKey = "SYSTEM"
)

func userPK(ownerID string) string {
	return fmt.Sprintf("USER#%s", ownerID)
}

func accountSK(accountID string) string {
	return fmt.Sprintf("ACCOUNT#%s", accountID)
}

func categoryPK(categoryID string) string {
	return fmt.Sprintf("CATEGORY#%s", categoryID)
}

const categorySK = "CATEGORY"

func categoriesGSI1PK(ownerID string) string {
	if ownerID == category.SystemOwner {
		ownerID = systemOwnerKey
	}
	return fmt.Sprintf("CATEGORIES#%s", ownerID)
}

func transactionSK(transactionID string) string {
	return fmt.Sprintf("TRANSACTION#%s", transactionID)
}

func transactionsGSI1PK(ownerID string) string {
	return fmt.Sprintf("USER#%s#TRANSACTIONS", ownerID)
}

func transactionGSI1SK(date, transactionID string) string {
	return fmt.Sprintf("DATE#%s#TRANSACTION#%s", date, transactionID)
}

func key(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// number stores a decimal as a DynamoDB number so it can be incremented in place
func number(d decimal.Decimal) attributevalue.Number {
	return attributevalue.Number(d.String())
}

func parseNumber(n attributevalue.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(string(n))
}
