package api

import (
	"context"

	"github.com/example/storefront/pkg/auth"
	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/order"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) List(ctx context.Context) ([]models.Product, int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockCatalogService) Page(ctx context.Context, page int) ([]models.Product, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockCatalogService) Filter(ctx context.Context, checked []string, radio []float64) ([]models.Product, error) {
	args := m.Called(ctx, checked, radio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockCatalogService) Search(ctx context.Context, keyword string) ([]models.Product, error) {
	args := m.Called(ctx, keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockCatalogService) Related(ctx context.Context, productID, categoryID string) ([]models.Product, *models.Category, error) {
	args := m.Called(ctx, productID, categoryID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]models.Product), args.Get(1).(*models.Category), args.Error(2)
}

func (m *MockCatalogService) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogService) BySlug(ctx context.Context, slug string) (*models.Product, *models.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Product), args.Get(1).(*models.Category), args.Error(2)
}

func (m *MockCatalogService) Photo(ctx context.Context, productID string) (*models.Photo, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Photo), args.Error(1)
}

func (m *MockCatalogService) CategoryProducts(ctx context.Context, slug string) (*models.Category, []models.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Category), args.Get(1).([]models.Product), args.Error(2)
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, in catalog.ProductInput) (*models.Product, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCatalogService) UpdateProduct(ctx context.Context, productID string, in catalog.ProductInput) (*models.Product, error) {
	args := m.Called(ctx, productID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCatalogService) DeleteProduct(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockCatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCatalogService) UpdateCategory(ctx context.Context, categoryID, name string) (*models.Category, error) {
	args := m.Called(ctx, categoryID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCatalogService) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCatalogService) DeleteCategory(ctx context.Context, categoryID string) error {
	args := m.Called(ctx, categoryID)
	return args.Error(0)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, buyerID primitive.ObjectID, cart []string, payment models.PaymentResult) (*models.Order, error) {
	args := m.Called(ctx, buyerID, cart, payment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) ListForBuyer(ctx context.Context, buyerID primitive.ObjectID) ([]order.View, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.View), args.Error(1)
}

func (m *MockOrderService) ListAll(ctx context.Context) ([]order.View, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.View), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, orderID string, next models.OrderStatus) (*models.Order, error) {
	args := m.Called(ctx, orderID, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) PriceCart(ctx context.Context, cart []string) (float64, error) {
	args := m.Called(ctx, cart)
	return args.Get(0).(float64), args.Error(1)
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, in auth.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAccountService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAccountService) ForgotPassword(ctx context.Context, email, answer, newPassword string) error {
	args := m.Called(ctx, email, answer, newPassword)
	return args.Error(0)
}

func (m *MockAccountService) UpdateProfile(ctx context.Context, userID string, in auth.ProfileInput) (*models.User, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ClientToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) Charge(ctx context.Context, nonce string, amount float64) (models.PaymentResult, error) {
	args := m.Called(ctx, nonce, amount)
	return args.Get(0).(models.PaymentResult), args.Error(1)
}
