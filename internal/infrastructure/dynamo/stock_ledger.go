package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/minimart/minimart/internal/domain/stock"
)

// API is the slice of the DynamoDB client the ledger uses. Tests substitute
// a hand-rolled mock.
type API interface {
	GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error)
}

// NewClient loads the default AWS config and returns a concrete client.
func NewClient(ctx context.Context) (API, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dyn.NewFromConfig(cfg), nil
}

const (
	exprReserve         = "SET available = available - :q, held = held + :q"
	exprRelease         = "SET available = available + :q, held = held - :q"
	exprReleaseFloored  = "SET available = available + :q, held = :zero"
	exprConsume         = "SET held = held - :q"
	exprConsumeFloored  = "SET held = :zero"
	exprSetStock        = "SET available = :q, held = if_not_exists(held, :zero)"
	condEnoughAvailable = "available >= :q"
	condEnoughHeld      = "held >= :q"
	condExists          = "attribute_exists(product_id)"
)

type item struct {
	WarehouseID string `dynamodbav:"warehouse_id"`
	ProductID   string `dynamodbav:"product_id"`
	Available   int    `dynamodbav:"available"`
	Held        int    `dynamodbav:"held"`
}

// StockLedger keeps one item per (warehouse, product) with available and held
// counters. The atomic check-and-decrement of Reserve rides on DynamoDB
// conditional updates, so concurrent reservations across processes are safe.
type StockLedger struct {
	client API
	table  string
	log    *zap.Logger
}

func NewStockLedger(client API, table string, logger *zap.Logger) *StockLedger {
	return &StockLedger{
		client: client,
		table:  table,
		log:    logger.With(zap.String("component", "dynamo_stock_ledger")),
	}
}

func (l *StockLedger) Reserve(ctx context.Context, key stock.Key, qty int) (bool, error) {
	if qty <= 0 {
		return false, stock.ErrInvalidQuantity
	}

	_, err := l.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:           &l.table,
		Key:                 keyAttrs(key),
		UpdateExpression:    awsString(exprReserve),
		ConditionExpression: awsString(condEnoughAvailable),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q": numberAttr(qty),
		},
	})
	if err == nil {
		return true, nil
	}

	var ccf *types.ConditionalCheckFailedException
	if !errors.As(err, &ccf) {
		return false, fmt.Errorf("dynamo reserve: %w", err)
	}

	// the condition fails both for insufficient stock and for a missing
	// item; probe to distinguish the two
	if _, getErr := l.getItem(ctx, key); getErr != nil {
		return false, getErr
	}
	return false, nil
}

func (l *StockLedger) Release(ctx context.Context, key stock.Key, qty int) error {
	if qty <= 0 {
		return stock.ErrInvalidQuantity
	}

	_, err := l.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:           &l.table,
		Key:                 keyAttrs(key),
		UpdateExpression:    awsString(exprRelease),
		ConditionExpression: awsString(condEnoughHeld),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q": numberAttr(qty),
		},
	})
	if err == nil {
		return nil
	}

	var ccf *types.ConditionalCheckFailedException
	if !errors.As(err, &ccf) {
		return fmt.Errorf("dynamo release: %w", err)
	}

	it, getErr := l.getItem(ctx, key)
	if getErr != nil {
		return getErr
	}
	l.log.Warn("release_exceeds_outstanding_holds",
		zap.String("warehouse_id", key.WarehouseID),
		zap.String("product_id", key.ProductID),
		zap.Int("quantity", qty),
		zap.Int("held", it.Held),
	)

	_, err = l.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:           &l.table,
		Key:                 keyAttrs(key),
		UpdateExpression:    awsString(exprReleaseFloored),
		ConditionExpression: awsString(condExists),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q":    numberAttr(qty),
			":zero": numberAttr(0),
		},
	})
	if err != nil {
		return fmt.Errorf("dynamo release floor: %w", err)
	}
	return nil
}

func (l *StockLedger) Consume(ctx context.Context, key stock.Key, qty int) error {
	if qty <= 0 {
		return stock.ErrInvalidQuantity
	}

	_, err := l.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:           &l.table,
		Key:                 keyAttrs(key),
		UpdateExpression:    awsString(exprConsume),
		ConditionExpression: awsString(condEnoughHeld),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q": numberAttr(qty),
		},
	})
	if err == nil {
		return nil
	}

	var ccf *types.ConditionalCheckFailedException
	if !errors.As(err, &ccf) {
		return fmt.Errorf("dynamo consume: %w", err)
	}

	it, getErr := l.getItem(ctx, key)
	if getErr != nil {
		return getErr
	}
	l.log.Warn("consume_exceeds_outstanding_holds",
		zap.String("warehouse_id", key.WarehouseID),
		zap.String("product_id", key.ProductID),
		zap.Int("quantity", qty),
		zap.Int("held", it.Held),
	)

	_, err = l.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:           &l.table,
		Key:                 keyAttrs(key),
		UpdateExpression:    awsString(exprConsumeFloored),
		ConditionExpression: awsString(condExists),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero": numberAttr(0),
		},
	})
	if err != nil {
		return fmt.Errorf("dynamo consume floor: %w", err)
	}
	return nil
}

// SetStock upserts the available count, preserving any outstanding held
// counter on an existing item.
func (l *StockLedger) SetStock(ctx context.Context, key stock.Key, qty int) error {
	if qty < 0 {
		return stock.ErrInvalidQuantity
	}

	_, err := l.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:        &l.table,
		Key:              keyAttrs(key),
		UpdateExpression: awsString(exprSetStock),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q":    numberAttr(qty),
			":zero": numberAttr(0),
		},
	})
	if err != nil {
		return fmt.Errorf("dynamo set stock: %w", err)
	}
	return nil
}

func (l *StockLedger) GetStock(ctx context.Context, key stock.Key) (int, error) {
	it, err := l.getItem(ctx, key)
	if err != nil {
		return 0, err
	}
	return it.Available, nil
}

func (l *StockLedger) Held(ctx context.Context, key stock.Key) (int, error) {
	it, err := l.getItem(ctx, key)
	if err != nil {
		return 0, err
	}
	return it.Held, nil
}

func (l *StockLedger) getItem(ctx context.Context, key stock.Key) (*item, error) {
	out, err := l.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &l.table,
		Key:       keyAttrs(key),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamo get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, stock.ErrUnknownStock
	}

	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal stock item: %w", err)
	}
	return &it, nil
}

func keyAttrs(key stock.Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"warehouse_id": &types.AttributeValueMemberS{Value: key.WarehouseID},
		"product_id":   &types.AttributeValueMemberS{Value: key.ProductID},
	}
}

func numberAttr(n int) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", n)}
}

func awsString(s string) *string { return &s }
