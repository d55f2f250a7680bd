package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"ecofinds/internal/domain"
	"ecofinds/internal/repository"

	"github.com/google/uuid"
)

// In-memory repository fakes shared by the service tests.

type mockUserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrEmailTaken
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) delete(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, user := range m.users {
		if user.ID == id {
			delete(m.users, email)
			return
		}
	}
}

type listingKey struct {
	sellerID  uuid.UUID
	title     string
	category  string
	price     float64
	condition domain.Condition
}

type mockProductRepository struct {
	mu       sync.Mutex
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *product
	m.products[product.ID] = &clone
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	clone := *product
	m.products[product.ID] = &clone
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	clone := *product
	return &clone, nil
}

func (m *mockProductRepository) FindByListingKey(ctx context.Context, sellerID uuid.UUID, title, category string, price float64, condition domain.Condition) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := listingKey{sellerID, title, category, price, condition}
	for _, p := range m.products {
		got := listingKey{p.SellerID, p.Title, p.Category, p.Price, p.Condition}
		if got == want {
			clone := *p
			return &clone, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) MergeListing(ctx context.Context, id uuid.UUID, addQuantity int, images, tags []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, exists := m.products[id]
	if !exists {
		return repository.ErrProductNotFound
	}
	product.Quantity += addQuantity
	product.Images = union(product.Images, images)
	product.Tags = union(product.Tags, tags)
	product.UpdatedAt = time.Now()
	return nil
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Product
	for _, p := range m.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.SellerID != nil && p.SellerID != *filter.SellerID {
			continue
		}
		if filter.ExcludeSeller != nil && p.SellerID == *filter.ExcludeSeller {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockProductRepository) ListCategories(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]struct{})
	for _, p := range m.products {
		if p.Category != "" {
			seen[p.Category] = struct{}{}
		}
	}
	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}

func union(existing, extra []string) []string {
	seen := make(map[string]struct{}, len(existing))
	out := append([]string{}, existing...)
	for _, v := range existing {
		seen[v] = struct{}{}
	}
	for _, v := range extra {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

type mockCartRepository struct {
	mu       sync.Mutex
	lines    map[uuid.UUID]map[uuid.UUID]*domain.CartItem
	products *mockProductRepository
}

func newMockCartRepository(products *mockProductRepository) *mockCartRepository {
	return &mockCartRepository{
		lines:    make(map[uuid.UUID]map[uuid.UUID]*domain.CartItem),
		products: products,
	}
}

func (m *mockCartRepository) ListItems(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.CartItem
	for _, line := range m.lines[userID] {
		clone := *line
		if m.products != nil {
			if p, err := m.products.FindByID(ctx, line.ProductID); err == nil {
				clone.Product = p
			}
		}
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out, nil
}

func (m *mockCartRepository) FindItem(ctx context.Context, userID, productID uuid.UUID) (*domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	line, exists := m.lines[userID][productID]
	if !exists {
		return nil, repository.ErrCartItemNotFound
	}
	clone := *line
	return &clone, nil
}

func (m *mockCartRepository) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lines[userID] == nil {
		m.lines[userID] = make(map[uuid.UUID]*domain.CartItem)
	}
	if line, exists := m.lines[userID][productID]; exists {
		line.Quantity += quantity
		return nil
	}
	m.lines[userID][productID] = &domain.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	}
	return nil
}

func (m *mockCartRepository) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	line, exists := m.lines[userID][productID]
	if !exists {
		return repository.ErrCartItemNotFound
	}
	line.Quantity = quantity
	return nil
}

func (m *mockCartRepository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lines[userID], productID)
	return nil
}

// mockOrderRepository mirrors the real repository's transactional
// contract: persisting an order also clears the user's cart.
type mockOrderRepository struct {
	mu     sync.Mutex
	orders map[uuid.UUID][]*domain.Order
	cart   *mockCartRepository
}

func newMockOrderRepository(cart *mockCartRepository) *mockOrderRepository {
	return &mockOrderRepository{
		orders: make(map[uuid.UUID][]*domain.Order),
		cart:   cart,
	}
}

func (m *mockOrderRepository) CreateFromCheckout(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *order
	m.orders[order.UserID] = append(m.orders[order.UserID], &clone)
	if m.cart != nil {
		m.cart.mu.Lock()
		delete(m.cart.lines, order.UserID)
		m.cart.mu.Unlock()
	}
	return nil
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	orders := m.orders[userID]
	out := make([]*domain.Order, len(orders))
	for i := range orders {
		clone := *orders[len(orders)-1-i]
		out[i] = &clone
	}
	return out, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, orders := range m.orders {
		for _, o := range orders {
			if o.ID == id {
				o.Status = status
				return nil
			}
		}
	}
	return repository.ErrOrderNotFound
}
