package dynamo

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/minimart/minimart/internal/domain/stock"
)

// tableMock is a minimal in-memory stand-in for the stock table. It
// interprets only the expressions the ledger issues.
type tableMock struct {
	mu          sync.Mutex
	items       map[string]*mockItem
	getCalls    int
	updateCalls int
}

type mockItem struct {
	available int
	held      int
}

func newTableMock() *tableMock {
	return &tableMock{items: map[string]*mockItem{}}
}

func mockKey(attrs map[string]types.AttributeValue) string {
	wh := attrs["warehouse_id"].(*types.AttributeValueMemberS).Value
	p := attrs["product_id"].(*types.AttributeValueMemberS).Value
	return wh + "|" + p
}

func attrInt(v types.AttributeValue) int {
	n, _ := strconv.Atoi(v.(*types.AttributeValueMemberN).Value)
	return n
}

func (m *tableMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++

	it, ok := m.items[mockKey(params.Key)]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: map[string]types.AttributeValue{
		"warehouse_id": params.Key["warehouse_id"],
		"product_id":   params.Key["product_id"],
		"available":    &types.AttributeValueMemberN{Value: strconv.Itoa(it.available)},
		"held":         &types.AttributeValueMemberN{Value: strconv.Itoa(it.held)},
	}}, nil
}

func (m *tableMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++

	k := mockKey(params.Key)
	it := m.items[k]
	q := 0
	if v, ok := params.ExpressionAttributeValues[":q"]; ok {
		q = attrInt(v)
	}

	switch *params.UpdateExpression {
	case exprSetStock:
		if it == nil {
			m.items[k] = &mockItem{available: q}
		} else {
			it.available = q
		}
	case exprReserve:
		if it == nil || it.available < q {
			return nil, &types.ConditionalCheckFailedException{}
		}
		it.available -= q
		it.held += q
	case exprRelease:
		if it == nil || it.held < q {
			return nil, &types.ConditionalCheckFailedException{}
		}
		it.available += q
		it.held -= q
	case exprReleaseFloored:
		if it == nil {
			return nil, &types.ConditionalCheckFailedException{}
		}
		it.available += q
		it.held = 0
	case exprConsume:
		if it == nil || it.held < q {
			return nil, &types.ConditionalCheckFailedException{}
		}
		it.held -= q
	case exprConsumeFloored:
		if it == nil {
			return nil, &types.ConditionalCheckFailedException{}
		}
		it.held = 0
	default:
		return nil, errors.New("unsupported update expression: " + *params.UpdateExpression)
	}
	return &dyn.UpdateItemOutput{}, nil
}

var testKey = stock.Key{WarehouseID: "wh-1", ProductID: "p-1"}

func newTestLedger(t *testing.T, available int) (*StockLedger, *tableMock) {
	t.Helper()
	mock := newTableMock()
	l := NewStockLedger(mock, "stock-test", zap.NewNop())
	if err := l.SetStock(context.Background(), testKey, available); err != nil {
		t.Fatalf("set stock: %v", err)
	}
	return l, mock
}

func TestReserveDecrementsAvailable(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t, 5)

	ok, err := l.Reserve(ctx, testKey, 3)
	if err != nil || !ok {
		t.Fatalf("reserve: ok=%v err=%v", ok, err)
	}
	if got, _ := l.GetStock(ctx, testKey); got != 2 {
		t.Fatalf("expected 2 available, got %d", got)
	}
	if held, _ := l.Held(ctx, testKey); held != 3 {
		t.Fatalf("expected 3 held, got %d", held)
	}
}

func TestReserveInsufficientIsNotAnError(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t, 1)

	ok, err := l.Reserve(ctx, testKey, 2)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if ok {
		t.Fatal("reserve beyond available must not succeed")
	}
	if got, _ := l.GetStock(ctx, testKey); got != 1 {
		t.Fatalf("failed reserve touched the count: %d", got)
	}
}

func TestReserveUnknownKey(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t, 1)

	ghost := stock.Key{WarehouseID: "wh-1", ProductID: "ghost"}
	if _, err := l.Reserve(ctx, ghost, 1); !errors.Is(err, stock.ErrUnknownStock) {
		t.Fatalf("expected ErrUnknownStock, got %v", err)
	}
}

func TestReleaseRoundTrip(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t, 5)

	if ok, err := l.Reserve(ctx, testKey, 4); err != nil || !ok {
		t.Fatalf("reserve: ok=%v err=%v", ok, err)
	}
	if err := l.Release(ctx, testKey, 4); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got, _ := l.GetStock(ctx, testKey); got != 5 {
		t.Fatalf("expected 5 available after release, got %d", got)
	}
	if held, _ := l.Held(ctx, testKey); held != 0 {
		t.Fatalf("expected 0 held after release, got %d", held)
	}
}

func TestConsumeRetiresHold(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t, 5)

	if ok, err := l.Reserve(ctx, testKey, 5); err != nil || !ok {
		t.Fatalf("reserve: ok=%v err=%v", ok, err)
	}
	if err := l.Consume(ctx, testKey, 5); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if got, _ := l.GetStock(ctx, testKey); got != 0 {
		t.Fatalf("expected 0 available, got %d", got)
	}
	if held, _ := l.Held(ctx, testKey); held != 0 {
		t.Fatalf("expected 0 held, got %d", held)
	}
}

func TestOverReleaseFloorsHeld(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t, 5)

	if ok, err := l.Reserve(ctx, testKey, 1); err != nil || !ok {
		t.Fatalf("reserve: ok=%v err=%v", ok, err)
	}
	if err := l.Release(ctx, testKey, 3); err != nil {
		t.Fatalf("over-release: %v", err)
	}
	if got, _ := l.GetStock(ctx, testKey); got != 7 {
		t.Fatalf("expected 7 available, got %d", got)
	}
	if held, _ := l.Held(ctx, testKey); held != 0 {
		t.Fatalf("expected held floored at 0, got %d", held)
	}
}

func TestSetStockPreservesHeld(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t, 5)

	if ok, err := l.Reserve(ctx, testKey, 2); err != nil || !ok {
		t.Fatalf("reserve: ok=%v err=%v", ok, err)
	}
	if err := l.SetStock(ctx, testKey, 10); err != nil {
		t.Fatalf("set stock: %v", err)
	}
	if got, _ := l.GetStock(ctx, testKey); got != 10 {
		t.Fatalf("expected 10 available, got %d", got)
	}
	if held, _ := l.Held(ctx, testKey); held != 2 {
		t.Fatalf("expected held preserved at 2, got %d", held)
	}
}
