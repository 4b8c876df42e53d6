package repository

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/storefront/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock ProductStore ---

type mockProductStore struct {
	mock.Mock
}

func (m *mockProductStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductStore) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *mockProductStore) UpsertProduct(ctx context.Context, p domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductStore) UpsertProducts(ctx context.Context, products []domain.Product) error {
	return m.Called(ctx, products).Error(0)
}

// --- Mock RemoteDataSource ---

type mockRemote struct {
	mock.Mock
}

func (m *mockRemote) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockRemote) FetchProduct(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

// --- Mock CartStore ---

type mockCartStore struct {
	mock.Mock
}

func (m *mockCartStore) ListCartItems(ctx context.Context) ([]domain.CartItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *mockCartStore) GetCartItem(ctx context.Context, productID string) (domain.CartItem, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(domain.CartItem), args.Error(1)
}

func (m *mockCartStore) UpsertCartItem(ctx context.Context, item domain.CartItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockCartStore) UpdateCartItemQuantity(ctx context.Context, productID string, quantity int) error {
	return m.Called(ctx, productID, quantity).Error(0)
}

func (m *mockCartStore) DeleteCartItem(ctx context.Context, productID string) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *mockCartStore) ClearCart(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockCartStore) WatchCartItems(ctx context.Context) <-chan []domain.CartItem {
	return m.Called(ctx).Get(0).(<-chan []domain.CartItem)
}
