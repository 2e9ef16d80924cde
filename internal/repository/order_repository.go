package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mertmzzx/carparts-order-service/internal/domain"
	pkgconfig "github.com/mertmzzx/carparts-order-service/pkg/config"
)

// Store is the DynamoDB-backed view of parts, customers and orders. All
// mutations that touch both an order and part stock go through a single
// TransactWriteItems call; the transaction boundary is the only
// synchronization between concurrent requests.
type Store struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoDBClient(cfg *pkgconfig.Config) (*dynamodb.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	}), nil
}

func NewStore(client *dynamodb.Client, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
	}
}

// GetPartsByIDs batch-loads parts into a lookup keyed by id. Unknown ids are
// simply absent from the result; the orchestrator decides that is an error.
func (s *Store) GetPartsByIDs(ctx context.Context, ids []string) (map[string]*domain.Part, error) {
	parts := make(map[string]*domain.Part, len(ids))
	if len(ids) == 0 {
		return parts, nil
	}

	seen := make(map[string]bool, len(ids))
	keys := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys, map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		})
	}

	for len(keys) > 0 {
		out, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				s.tableName: {Keys: keys, ConsistentRead: aws.Bool(true)},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to batch get parts: %w", err)
		}

		for _, item := range out.Responses[s.tableName] {
			var rec partRecord
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, fmt.Errorf("failed to unmarshal part: %w", err)
			}
			part, err := rec.toDomain()
			if err != nil {
				return nil, err
			}
			parts[part.PartID] = part
		}

		keys = out.UnprocessedKeys[s.tableName].Keys
	}

	return parts, nil
}

func (s *Store) GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: customerPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skProfile},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, domain.ErrCustomerNotFound
	}

	var rec customerRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer: %w", err)
	}
	return rec.toDomain(), nil
}

func (s *Store) GetCustomerByUserID(ctx context.Context, userID string) (*domain.Customer, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(gsi1Name),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: userGSI1PK(userID)},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query customer by user: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, domain.ErrCustomerNotFound
	}

	var rec customerRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer: %w", err)
	}
	return rec.toDomain(), nil
}

// CreateOrder persists the order and reserves stock for every line in one
// transaction. Either the order and every decrement commit together, or the
// whole call fails with nothing applied.
func (s *Store) CreateOrder(ctx context.Context, order *domain.Order, reservations []domain.StockAdjustment) error {
	av, err := attributevalue.MarshalMap(newOrderRecord(order))
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	items := make([]types.TransactWriteItem, 0, len(reservations)+1)
	items = append(items, types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(s.tableName),
			Item:                av,
			ConditionExpression: aws.String("attribute_not_exists(PK)"),
		},
	})
	for _, adj := range reservations {
		items = append(items, reserveItem(s.tableName, adj))
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		return s.mapReservationError(err, reservations)
	}
	return nil
}

// mapReservationError turns a cancelled creation transaction into a domain
// error. Entry 0 is the order put; entry i+1 is reservations[i], so a
// conditional failure there means the part vanished or another request
// reserved the stock first.
func (s *Store) mapReservationError(err error, reservations []domain.StockAdjustment) error {
	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	for i, reason := range canceled.CancellationReasons {
		if aws.ToString(reason.Code) != "ConditionalCheckFailed" {
			continue
		}
		if i == 0 || i-1 >= len(reservations) {
			return fmt.Errorf("failed to commit order: %w", err)
		}
		adj := reservations[i-1]
		if reason.Item == nil {
			return &domain.PartNotFoundError{PartID: adj.PartID}
		}
		return &domain.InsufficientStockError{
			PartID:    adj.PartID,
			Requested: adj.Quantity,
			Available: stockFromItem(reason.Item),
		}
	}
	return fmt.Errorf("failed to commit order: %w", err)
}

func stockFromItem(item map[string]types.AttributeValue) int {
	n, ok := item[stockAttr].(*types.AttributeValueMemberN)
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0
	}
	return v
}

func (s *Store) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: orderPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, domain.ErrOrderNotFound
	}

	var rec orderRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}
	return rec.toDomain()
}

// OrdersByCustomer lists a customer's orders, newest first.
func (s *Store) OrdersByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(gsi1Name),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND begins_with(GSI1SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: customerPK(customerID)},
			":sk": &types.AttributeValueMemberS{Value: "ORDER#"},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query customer orders: %w", err)
	}
	return unmarshalOrders(out.Items)
}

// RecentOrders lists the latest orders across all customers, newest first.
func (s *Store) RecentOrders(ctx context.Context, limit int) ([]*domain.Order, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(gsi2Name),
		KeyConditionExpression: aws.String("GSI2PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: gsi2OrdersPK},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query recent orders: %w", err)
	}
	return unmarshalOrders(out.Items)
}

func unmarshalOrders(items []map[string]types.AttributeValue) ([]*domain.Order, error) {
	orders := make([]*domain.Order, 0, len(items))
	for _, item := range items {
		var rec orderRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal order: %w", err)
		}
		order, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// UpdateOrderStatus writes the updated order (status plus appended history)
// and applies any restocks in the same transaction. Restocks are non-empty
// only on cancellation.
func (s *Store) UpdateOrderStatus(ctx context.Context, order *domain.Order, restocks []domain.StockAdjustment) error {
	av, err := attributevalue.MarshalMap(newOrderRecord(order))
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	items := make([]types.TransactWriteItem, 0, len(restocks)+1)
	items = append(items, types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(s.tableName),
			Item:                av,
			ConditionExpression: aws.String("attribute_exists(PK)"),
		},
	})
	for _, adj := range restocks {
		items = append(items, restockItem(s.tableName, adj))
	}

	if _, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	}); err != nil {
		return fmt.Errorf("failed to commit status change: %w", err)
	}
	return nil
}
