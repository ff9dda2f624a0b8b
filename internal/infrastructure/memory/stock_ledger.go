package memory

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/minimart/minimart/internal/domain/stock"
)

// StockLedger keeps one entry per (warehouse, product) key, each guarded by
// its own mutex so contention on one product never serializes reservations
// on an unrelated one. The outer RWMutex only protects entry creation.
type StockLedger struct {
	mu      sync.RWMutex
	entries map[stock.Key]*stockEntry
	log     *zap.Logger
}

type stockEntry struct {
	mu        sync.Mutex
	available int
	held      int
}

func NewStockLedger(logger *zap.Logger) *StockLedger {
	return &StockLedger{
		entries: make(map[stock.Key]*stockEntry),
		log:     logger.With(zap.String("component", "stock_ledger")),
	}
}

func (l *StockLedger) Reserve(ctx context.Context, key stock.Key, qty int) (bool, error) {
	_ = ctx
	if qty <= 0 {
		return false, stock.ErrInvalidQuantity
	}
	e, ok := l.entry(key)
	if !ok {
		return false, stock.ErrUnknownStock
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.available < qty {
		return false, nil
	}
	e.available -= qty
	e.held += qty
	return true, nil
}

func (l *StockLedger) Release(ctx context.Context, key stock.Key, qty int) error {
	_ = ctx
	if qty <= 0 {
		return stock.ErrInvalidQuantity
	}
	e, ok := l.entry(key)
	if !ok {
		return stock.ErrUnknownStock
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.available += qty
	if qty > e.held {
		// a release beyond outstanding holds is a caller bug; the ledger
		// floors the counter and flags it rather than failing
		l.warnCounterUnderflow("release_exceeds_outstanding_holds", key, qty, e.held)
		e.held = 0
		return nil
	}
	e.held -= qty
	return nil
}

func (l *StockLedger) Consume(ctx context.Context, key stock.Key, qty int) error {
	_ = ctx
	if qty <= 0 {
		return stock.ErrInvalidQuantity
	}
	e, ok := l.entry(key)
	if !ok {
		return stock.ErrUnknownStock
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if qty > e.held {
		l.warnCounterUnderflow("consume_exceeds_outstanding_holds", key, qty, e.held)
		e.held = 0
		return nil
	}
	e.held -= qty
	return nil
}

func (l *StockLedger) SetStock(ctx context.Context, key stock.Key, qty int) error {
	_ = ctx
	if qty < 0 {
		return stock.ErrInvalidQuantity
	}

	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		l.entries[key] = &stockEntry{available: qty}
		l.mu.Unlock()
		return nil
	}
	l.mu.Unlock()

	e.mu.Lock()
	e.available = qty
	e.mu.Unlock()
	return nil
}

func (l *StockLedger) GetStock(ctx context.Context, key stock.Key) (int, error) {
	_ = ctx
	e, ok := l.entry(key)
	if !ok {
		return 0, stock.ErrUnknownStock
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.available, nil
}

func (l *StockLedger) Held(ctx context.Context, key stock.Key) (int, error) {
	_ = ctx
	e, ok := l.entry(key)
	if !ok {
		return 0, stock.ErrUnknownStock
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.held, nil
}

func (l *StockLedger) entry(key stock.Key) (*stockEntry, bool) {
	l.mu.RLock()
	e, ok := l.entries[key]
	l.mu.RUnlock()
	return e, ok
}

func (l *StockLedger) warnCounterUnderflow(msg string, key stock.Key, qty, held int) {
	l.log.Warn(msg,
		zap.String("warehouse_id", key.WarehouseID),
		zap.String("product_id", key.ProductID),
		zap.Int("quantity", qty),
		zap.Int("held", held),
	)
}
