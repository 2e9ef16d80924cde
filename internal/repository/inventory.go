package repository

import (
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mertmzzx/carparts-order-service/internal/domain"
)

// The inventory ledger. Reserve and restock are expressed as conditional
// writes that the store commits inside the same TransactWriteItems call as
// the order mutation, so a stock check and its decrement can never straddle
// two transactions. The ledger does not re-validate quantities in code: the
// reserve condition enforces them at commit time, and a failed condition
// cancels the whole transaction.

// reserveItem decrements a part's stock by adj.Quantity. The condition both
// rejects unknown parts and refuses to take stock below zero; the old item is
// returned on failure so the caller can report how much was available.
func reserveItem(tableName string, adj domain.StockAdjustment) types.TransactWriteItem {
	qty := strconv.Itoa(adj.Quantity)
	return types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: partPK(adj.PartID)},
				"SK": &types.AttributeValueMemberS{Value: skMetadata},
			},
			UpdateExpression:    aws.String("SET " + stockAttr + " = " + stockAttr + " - :q"),
			ConditionExpression: aws.String("attribute_exists(PK) AND " + stockAttr + " >= :q"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":q": &types.AttributeValueMemberN{Value: qty},
			},
			ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
		},
	}
}

// restockItem returns adj.Quantity to a part's stock. Repeated calls each add
// the quantity; calling it exactly once per cancellation is the lifecycle's
// responsibility, not the ledger's.
func restockItem(tableName string, adj domain.StockAdjustment) types.TransactWriteItem {
	qty := strconv.Itoa(adj.Quantity)
	return types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: partPK(adj.PartID)},
				"SK": &types.AttributeValueMemberS{Value: skMetadata},
			},
			UpdateExpression:    aws.String("SET " + stockAttr + " = " + stockAttr + " + :q"),
			ConditionExpression: aws.String("attribute_exists(PK)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":q": &types.AttributeValueMemberN{Value: qty},
			},
		},
	}
}
