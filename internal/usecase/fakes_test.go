package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/greenbasket/ledger-service/internal/domain"
)

// In-memory repositories for the usecase tests. They mimic the
// conditional-update semantics of the postgres layer so the claim and
// guard logic is exercised for real.

type fakeOrderRepo struct {
	mu         sync.Mutex
	orders     map[string]*domain.Order // by provider ref
	byID       map[string]*domain.Order
	txs        []*domain.Transaction
	deliveries []*domain.DeliveryOrder
	outbox     []*domain.OutboxEvent
	ingests    int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[string]*domain.Order),
		byID:   make(map[string]*domain.Order),
	}
}

func (r *fakeOrderRepo) IngestOrder(order *domain.Order, txs []*domain.Transaction, delivery *domain.DeliveryOrder, evt *domain.OutboxEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingests++
	if _, exists := r.orders[order.ProviderRef]; exists {
		return false, nil
	}
	r.orders[order.ProviderRef] = order
	r.byID[order.ID] = order
	r.txs = append(r.txs, txs...)
	if delivery != nil {
		r.deliveries = append(r.deliveries, delivery)
	}
	if evt != nil {
		r.outbox = append(r.outbox, evt)
	}
	return true, nil
}

func (r *fakeOrderRepo) GetOrderByID(orderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.byID[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (r *fakeOrderRepo) GetOrderByProviderRef(providerRef string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[providerRef]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (r *fakeOrderRepo) UpdateOrderStatus(orderID string, newStatus domain.OrderStatus) error {
	order, err := r.GetOrderByID(orderID)
	if err != nil {
		return err
	}
	order.Status = newStatus
	return nil
}

func (r *fakeOrderRepo) FindUncollectedPaid(cutoff time.Time) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, order := range r.byID {
		if order.Status == domain.OrderStatusPaid && !order.PlatformFeeCollected && !order.CreatedAt.After(cutoff) {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) MarkPlatformFeeCollected(orderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.byID[orderID]
	if !ok || order.PlatformFeeCollected {
		return false, nil
	}
	order.PlatformFeeCollected = true
	return true, nil
}

type fakeCourierRepo struct {
	courier *domain.CourierProfile
}

func (r *fakeCourierRepo) FirstActive() (*domain.CourierProfile, error) {
	if r.courier == nil {
		return nil, domain.ErrNoActiveCourier
	}
	return r.courier, nil
}

type fakeDeliveryRepo struct {
	mu         sync.Mutex
	deliveries map[string]*domain.DeliveryOrder
}

func newFakeDeliveryRepo() *fakeDeliveryRepo {
	return &fakeDeliveryRepo{deliveries: make(map[string]*domain.DeliveryOrder)}
}

func (r *fakeDeliveryRepo) add(d *domain.DeliveryOrder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries[d.ID] = d
}

func (r *fakeDeliveryRepo) GetByOrderID(orderID string) (*domain.DeliveryOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.deliveries {
		if d.OrderID == orderID {
			return d, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *fakeDeliveryRepo) UpdateDeliveryStatus(deliveryOrderID string, newStatus domain.DeliveryStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deliveries[deliveryOrderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	d.Status = newStatus
	return nil
}

func (r *fakeDeliveryRepo) FindUncollectedDelivered(cutoff time.Time) ([]*domain.DeliveryOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.DeliveryOrder
	for _, d := range r.deliveries {
		if d.Status == domain.DeliveryStatusDelivered && !d.FeeCollected && !d.CreatedAt.After(cutoff) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDeliveryRepo) MarkDeliveryFeeCollected(deliveryOrderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deliveries[deliveryOrderID]
	if !ok || d.FeeCollected {
		return false, nil
	}
	d.FeeCollected = true
	return true, nil
}

func (r *fakeDeliveryRepo) RevertDeliveryFeeCollected(deliveryOrderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deliveries[deliveryOrderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	d.FeeCollected = false
	return nil
}

type fakeTxRepo struct {
	mu      sync.Mutex
	txs     map[string]*domain.Transaction
	payouts []*domain.Payout
	refunds []*domain.Refund
	listErr error
}

func newFakeTxRepo(txs ...*domain.Transaction) *fakeTxRepo {
	r := &fakeTxRepo{txs: make(map[string]*domain.Transaction)}
	for _, tx := range txs {
		r.txs[tx.ID] = tx
	}
	return r
}

func (r *fakeTxRepo) GetTransactionByID(txID string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[txID]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return tx, nil
}

func (r *fakeTxRepo) UpdateTransactionStatus(txID string, newStatus domain.TransactionStatus) error {
	tx, err := r.GetTransactionByID(txID)
	if err != nil {
		return err
	}
	tx.Status = newStatus
	return nil
}

func (r *fakeTxRepo) ListTransactions(filters domain.LedgerFilters) ([]*domain.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	var out []*domain.Transaction
	for _, tx := range r.txs {
		if filters.SellerID != "" && tx.SellerID != filters.SellerID {
			continue
		}
		if filters.BuyerID != "" && tx.BuyerID != filters.BuyerID {
			continue
		}
		out = append(out, tx)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTxRepo) CreatePayoutGuarded(payout *domain.Payout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[payout.TransactionID]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if r.sumPayoutsLocked(payout.TransactionID)+payout.Amount > tx.Amount {
		return domain.ErrPayoutExceedsTransaction
	}
	r.payouts = append(r.payouts, payout)
	return nil
}

func (r *fakeTxRepo) CreateRefundGuarded(refund *domain.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[refund.TransactionID]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	available := tx.Amount - r.sumPayoutsLocked(refund.TransactionID) - r.sumRefundsLocked(refund.TransactionID)
	if refund.Amount > available {
		return domain.ErrRefundExceedsAvailable
	}
	// real repository reads join this in from the transaction row
	refund.TransactionRef = tx.ProviderRef
	r.refunds = append(r.refunds, refund)
	return nil
}

func (r *fakeTxRepo) sumPayoutsLocked(txID string) int64 {
	var sum int64
	for _, p := range r.payouts {
		if p.TransactionID == txID {
			sum += p.Amount
		}
	}
	return sum
}

func (r *fakeTxRepo) sumRefundsLocked(txID string) int64 {
	var sum int64
	for _, rf := range r.refunds {
		if rf.TransactionID == txID {
			sum += rf.Amount
		}
	}
	return sum
}

func (r *fakeTxRepo) SumPayouts(txID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sumPayoutsLocked(txID), nil
}

func (r *fakeTxRepo) SumRefunds(txID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sumRefundsLocked(txID), nil
}

func (r *fakeTxRepo) ListPayouts(filters domain.LedgerFilters) ([]*domain.Payout, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]*domain.Payout(nil), r.payouts...)
	return out, int64(len(out)), nil
}

func (r *fakeTxRepo) ListRefunds(filters domain.LedgerFilters) ([]*domain.Refund, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]*domain.Refund(nil), r.refunds...)
	return out, int64(len(out)), nil
}

type fakeCollectionRepo struct {
	mu   sync.Mutex
	runs []*domain.CollectionRun
}

func (r *fakeCollectionRepo) CreateRun(run *domain.CollectionRun, evt *domain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

func (r *fakeCollectionRepo) ListRuns(limit, offset int) ([]*domain.CollectionRun, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.CollectionRun(nil), r.runs...), int64(len(r.runs)), nil
}

func (r *fakeCollectionRepo) Totals() (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var fees, cuts int64
	for _, run := range r.runs {
		fees += run.PlatformFees
		cuts += run.DeliveryCuts
	}
	return fees, cuts, nil
}

type fakeLocker struct {
	held     bool
	failWith error
}

func (l *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if l.failWith != nil {
		return false, l.failWith
	}
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *fakeLocker) Release(ctx context.Context, key string) error {
	l.held = false
	return nil
}

type fakeDispatcher struct {
	mu        sync.Mutex
	transfers []fakeTransfer
	failWith  error
}

type fakeTransfer struct {
	recipientID string
	amount      int64
	reference   string
}

func (d *fakeDispatcher) Transfer(ctx context.Context, recipientID string, amount int64, reference string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return d.failWith
	}
	d.transfers = append(d.transfers, fakeTransfer{recipientID, amount, reference})
	return nil
}

var errTransferDown = errors.New("transfer service unavailable")
