package services

import (
	"context"
	"sync"
	"time"

	"acai-store/cache"
	"acai-store/drafts"
	"acai-store/models"
	"acai-store/notify"
	"acai-store/store"
)

type mockStore struct {
	m          sync.Mutex
	products   map[string]*models.Product
	categories []models.Category
	orders     []*models.Order
	listCalls  int
	err        error
	createErr  error
	updateErr  error
}

// put replaces a product as an admin write would.
func (m *mockStore) put(p *models.Product) {
	m.m.Lock()
	defer m.m.Unlock()
	m.products[p.ID] = p
}

func newMockStore(products ...*models.Product) *mockStore {
	s := &mockStore{products: map[string]*models.Product{}}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (m *mockStore) ListProducts(ctx context.Context, _ bool) ([]*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.m.Lock()
	defer m.m.Unlock()
	m.listCalls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*models.Product, 0, len(m.products))
	for _, p := range m.products {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockStore) GetProduct(_ context.Context, id string, _ bool) (*models.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, store.ErrProductNotFound
	}
	return p, nil
}

func (m *mockStore) ListCategories(context.Context) ([]models.Category, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.categories, nil
}

func (m *mockStore) CreateOrder(_ context.Context, customer *models.Customer, order *models.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	customer.ID = "cust-1"
	order.ID = "order-1"
	order.CustomerID = customer.ID
	order.Customer = customer
	order.CreatedAt = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockStore) UpdateOrderStatus(_ context.Context, id string, to models.OrderStatus) (*models.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	for _, o := range m.orders {
		if o.ID == id {
			if !o.Status.CanTransition(to) {
				return nil, models.ErrInvalidTransition
			}
			o.Status = to
			return o, nil
		}
	}
	return nil, store.ErrOrderNotFound
}

type mockCache struct {
	m          sync.Mutex
	version    int64
	products   []*models.Product
	categories []models.Category
	getErr     error
	sets       int
}

func (m *mockCache) Version(context.Context) (int64, error) {
	m.m.Lock()
	defer m.m.Unlock()
	return m.version, nil
}

func (m *mockCache) GetProducts(context.Context) ([]*models.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.products == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.products, nil
}

func (m *mockCache) SetProducts(_ context.Context, version int64, products []*models.Product) error {
	m.m.Lock()
	defer m.m.Unlock()
	if version != m.version {
		return cache.ErrStale
	}
	m.products = products
	m.sets++
	return nil
}

func (m *mockCache) GetCategories(context.Context) ([]models.Category, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.categories == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.categories, nil
}

func (m *mockCache) SetCategories(_ context.Context, version int64, categories []models.Category) error {
	m.m.Lock()
	defer m.m.Unlock()
	if version != m.version {
		return cache.ErrStale
	}
	m.categories = categories
	m.sets++
	return nil
}

func (m *mockCache) Invalidate(context.Context) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.version++
	m.products = nil
	m.categories = nil
	return nil
}

func (m *mockCache) cachedProducts() []*models.Product {
	m.m.Lock()
	defer m.m.Unlock()
	return m.products
}

type delayedEvent struct {
	event models.OrderEvent
	delay time.Duration
}

type mockPublisher struct {
	m          sync.Mutex
	events     []models.OrderEvent
	priorities []int
	delayed    []delayedEvent
	err        error
}

func (m *mockPublisher) PublishOrderEvent(_ context.Context, event models.OrderEvent, priority int) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	m.priorities = append(m.priorities, priority)
	return nil
}

func (m *mockPublisher) PublishDelayedEvent(_ context.Context, event models.OrderEvent, delay time.Duration) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.delayed = append(m.delayed, delayedEvent{event: event, delay: delay})
	return nil
}

type mockSender struct {
	m    sync.Mutex
	sent []notify.Message
}

func (m *mockSender) Send(_ context.Context, msg notify.Message) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type mockDrafts struct {
	m      sync.Mutex
	drafts map[string]drafts.Draft
}

func newMockDrafts() *mockDrafts {
	return &mockDrafts{drafts: map[string]drafts.Draft{}}
}

func (m *mockDrafts) Get(_ context.Context, id string) (*drafts.Draft, error) {
	m.m.Lock()
	defer m.m.Unlock()
	d, ok := m.drafts[id]
	if !ok {
		return nil, drafts.ErrDraftNotFound
	}
	return &d, nil
}

func (m *mockDrafts) Save(_ context.Context, d *drafts.Draft) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.drafts[d.ID] = *d
	return nil
}

func (m *mockDrafts) Delete(_ context.Context, id string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.drafts, id)
	return nil
}

// productSource adapts the mock store to ProductSource.
type productSource struct {
	store *mockStore
}

func (p productSource) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return p.store.GetProduct(ctx, id, true)
}

// gatedStore holds the first ListProducts call after it has read the store until gate
// is closed, returning what it read at that moment.
type gatedStore struct {
	*mockStore
	reading chan struct{}
	gate    chan struct{}
	once    sync.Once
}

func newGatedStore(st *mockStore) *gatedStore {
	return &gatedStore{mockStore: st, reading: make(chan struct{}), gate: make(chan struct{})}
}

func (g *gatedStore) ListProducts(ctx context.Context, activeOnly bool) ([]*models.Product, error) {
	products, err := g.mockStore.ListProducts(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	snapshot := make([]*models.Product, 0, len(products))
	for _, p := range products {
		cp := *p
		snapshot = append(snapshot, &cp)
	}

	g.once.Do(func() {
		close(g.reading)
		<-g.gate
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return snapshot, nil
}
