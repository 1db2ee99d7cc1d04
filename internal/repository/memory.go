package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"kasir/internal/domain"
)

// MemoryStore is a combined in-memory backing store. It is the default
// backend and the one the tests run against.
type MemoryStore struct {
	mu               sync.RWMutex
	productsByID     map[string]domain.Product
	typesByName      map[string]domain.CustomerType
	usersByID        map[string]domain.User
	transactionsByID map[string]domain.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		productsByID:     make(map[string]domain.Product),
		typesByName:      make(map[string]domain.CustomerType),
		usersByID:        make(map[string]domain.User),
		transactionsByID: make(map[string]domain.Transaction),
	}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

var _ ProductRepository = (*MemoryStore)(nil)

// ProductRepository implementation
func (m *MemoryStore) Create(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	m.productsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	p, ok := m.productsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (m *MemoryStore) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	for _, p := range m.productsByID {
		if p.SKU == sku {
			cp := p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) Update(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByID[p.ID]; !ok {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	m.productsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByID[id]; !ok {
		return ErrNotFound
	}
	delete(m.productsByID, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Product, 0)
	for _, p := range m.productsByID {
		if !containsIgnoreCase(p.Name, f.NameSubstring) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) ListLowStock(ctx context.Context) ([]domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Product, 0)
	for _, p := range m.productsByID {
		if p.Stock <= p.MinStock {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	return len(m.productsByID), nil
}

// CustomerTypeRepository implementation on wrapper type
type MemoryCustomerTypes struct{ store *MemoryStore }

func NewMemoryCustomerTypes(store *MemoryStore) *MemoryCustomerTypes {
	return &MemoryCustomerTypes{store: store}
}

var _ CustomerTypeRepository = (*MemoryCustomerTypes)(nil)

func (mc *MemoryCustomerTypes) Create(ctx context.Context, t *domain.CustomerType) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()
	mc.store.typesByName[t.Name] = *t
	return nil
}

func (mc *MemoryCustomerTypes) GetByName(ctx context.Context, name string) (*domain.CustomerType, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	t, ok := mc.store.typesByName[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := t
	return &cp, nil
}

func (mc *MemoryCustomerTypes) List(ctx context.Context) ([]domain.CustomerType, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	out := make([]domain.CustomerType, 0, len(mc.store.typesByName))
	for _, t := range mc.store.typesByName {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UserRepository implementation on wrapper type
type MemoryUsers struct{ store *MemoryStore }

func NewMemoryUsers(store *MemoryStore) *MemoryUsers { return &MemoryUsers{store: store} }

var _ UserRepository = (*MemoryUsers)(nil)

func (mu *MemoryUsers) Create(ctx context.Context, u *domain.User) error {
	mu.store.wlock(ctx)
	defer mu.store.wunlock(ctx)
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()
	mu.store.usersByID[u.ID] = *u
	return nil
}

func (mu *MemoryUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	u, ok := mu.store.usersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := u
	return &cp, nil
}

func (mu *MemoryUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	for _, u := range mu.store.usersByID {
		if u.Username == username {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// TransactionRepository implementation on wrapper type
type MemoryTransactions struct{ store *MemoryStore }

func NewMemoryTransactions(store *MemoryStore) *MemoryTransactions {
	return &MemoryTransactions{store: store}
}

var _ TransactionRepository = (*MemoryTransactions)(nil)

func (mt *MemoryTransactions) Create(ctx context.Context, t *domain.Transaction) error {
	mt.store.wlock(ctx)
	defer mt.store.wunlock(ctx)
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	mt.store.transactionsByID[t.ID] = *t
	return nil
}

func (mt *MemoryTransactions) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	mt.store.rlock(ctx)
	defer mt.store.runlock(ctx)
	t, ok := mt.store.transactionsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := t
	return &cp, nil
}

func (mt *MemoryTransactions) List(ctx context.Context, limit int) ([]domain.Transaction, error) {
	mt.store.rlock(ctx)
	defer mt.store.runlock(ctx)
	out := make([]domain.Transaction, 0, len(mt.store.transactionsByID))
	for _, t := range mt.store.transactionsByID {
		out = append(out, t)
	}
	// newest first
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (mt *MemoryTransactions) ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.Transaction, error) {
	mt.store.rlock(ctx)
	defer mt.store.runlock(ctx)
	out := make([]domain.Transaction, 0)
	for _, t := range mt.store.transactionsByID {
		if t.CreatedAt.Before(from) || !t.CreatedAt.Before(to) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (mt *MemoryTransactions) Count(ctx context.Context) (int, error) {
	mt.store.rlock(ctx)
	defer mt.store.runlock(ctx)
	return len(mt.store.transactionsByID), nil
}

// Tx manager using the write lock to emulate a transaction boundary;
// the ctx marker tells repositories to skip their own locks inside fn.
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

var _ TxManager = (*MemoryTx)(nil)

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)
	return fn(ctx)
}
