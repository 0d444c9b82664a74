package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type serviceMocks struct {
	repo      *MockRepository
	products  *MockProductFinder
	users     *MockUserFinder
	auditor   *MockAuditor
	publisher *MockPublisher
}

func newTestService() (*Service, *serviceMocks) {
	m := &serviceMocks{
		repo:      new(MockRepository),
		products:  new(MockProductFinder),
		users:     new(MockUserFinder),
		auditor:   new(MockAuditor),
		publisher: new(MockPublisher),
	}
	svc := NewService(m.repo, m.products, m.users, m.auditor, m.publisher, zap.NewNop())
	return svc, m
}

func TestCreateOrder(t *testing.T) {
	svc, m := newTestService()
	buyer := primitive.NewObjectID()
	p1 := primitive.NewObjectID()
	p2 := primitive.NewObjectID()

	m.repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).
		Run(func(args mock.Arguments) {
			o := args.Get(1).(*models.Order)
			o.ID = primitive.NewObjectID()
		})
	m.publisher.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil).Maybe()
	m.auditor.On("CreateAuditLog", mock.Anything, mock.Anything).Return(nil).Maybe()

	got, err := svc.Create(context.Background(), buyer, []string{p1.Hex(), p2.Hex()}, models.PaymentResult{
		Success:       true,
		TransactionID: "txn-1",
		Amount:        30,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.StatusNotProcess, got.Status)
	assert.Equal(t, buyer, got.Buyer)
	assert.Equal(t, []primitive.ObjectID{p1, p2}, got.Products)

	time.Sleep(50 * time.Millisecond)
	m.repo.AssertExpectations(t)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), primitive.NewObjectID(), nil, models.PaymentResult{})

	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateOrderMalformedProductID(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), primitive.NewObjectID(), []string{"oops"}, models.PaymentResult{})

	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestPriceCart(t *testing.T) {
	svc, m := newTestService()
	p1 := primitive.NewObjectID()
	p2 := primitive.NewObjectID()

	m.products.On("FindByIDs", mock.Anything, []primitive.ObjectID{p1, p2, p1}).
		Return([]models.Product{
			{ID: p1, Price: 10},
			{ID: p2, Price: 20},
		}, nil)

	total, err := svc.PriceCart(context.Background(), []string{p1.Hex(), p2.Hex(), p1.Hex()})

	assert.NoError(t, err)
	assert.Equal(t, 40.0, total)
}

func TestPriceCartMissingProduct(t *testing.T) {
	svc, m := newTestService()
	p1 := primitive.NewObjectID()

	m.products.On("FindByIDs", mock.Anything, mock.Anything).
		Return([]models.Product{}, nil)

	_, err := svc.PriceCart(context.Background(), []string{p1.Hex()})

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	orderID := primitive.NewObjectID()

	tests := []struct {
		name    string
		current models.OrderStatus
		next    models.OrderStatus
		wantErr error
	}{
		{"not process to processing", models.StatusNotProcess, models.StatusProcessing, nil},
		{"processing to shipped", models.StatusProcessing, models.StatusShipped, nil},
		{"shipped to delivered", models.StatusShipped, models.StatusDelivered, nil},
		{"any to cancelled", models.StatusProcessing, models.StatusCancelled, nil},
		{"delivered is terminal", models.StatusDelivered, models.StatusProcessing, ErrIllegalTransition},
		{"cancelled is terminal", models.StatusCancelled, models.StatusNotProcess, ErrIllegalTransition},
		{"no skipping ahead", models.StatusNotProcess, models.StatusDelivered, ErrIllegalTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService()
			m.repo.On("GetByID", mock.Anything, orderID).
				Return(&models.Order{ID: orderID, Status: tt.current}, nil)
			if tt.wantErr == nil {
				m.repo.On("UpdateStatus", mock.Anything, orderID, tt.next).
					Return(&models.Order{ID: orderID, Status: tt.next}, nil)
				m.publisher.On("Publish", mock.Anything, "order.status.changed", mock.Anything).Return(nil).Maybe()
				m.auditor.On("CreateAuditLog", mock.Anything, mock.Anything).Return(nil).Maybe()
			}

			got, err := svc.UpdateStatus(context.Background(), orderID.Hex(), tt.next)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				m.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.next, got.Status)
			}

			time.Sleep(50 * time.Millisecond)
			m.repo.AssertExpectations(t)
		})
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, m := newTestService()

	_, err := svc.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), "Refunded")

	assert.ErrorIs(t, err, ErrUnknownStatus)
	m.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUpdateStatusOrderNotFound(t *testing.T) {
	svc, m := newTestService()
	orderID := primitive.NewObjectID()
	m.repo.On("GetByID", mock.Anything, orderID).Return(nil, repository.ErrNotFound)

	_, err := svc.UpdateStatus(context.Background(), orderID.Hex(), models.StatusProcessing)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListForBuyerPopulates(t *testing.T) {
	svc, m := newTestService()
	buyerID := primitive.NewObjectID()
	productID := primitive.NewObjectID()
	orderID := primitive.NewObjectID()

	m.repo.On("FindByBuyer", mock.Anything, buyerID).Return([]models.Order{
		{ID: orderID, Buyer: buyerID, Products: []primitive.ObjectID{productID}, Status: models.StatusNotProcess},
	}, nil)
	m.users.On("GetByID", mock.Anything, buyerID).
		Return(&models.User{ID: buyerID, Name: "Ada"}, nil).Once()
	m.products.On("FindByIDs", mock.Anything, []primitive.ObjectID{productID}).
		Return([]models.Product{{ID: productID, Name: "Keyboard"}}, nil)

	views, err := svc.ListForBuyer(context.Background(), buyerID)

	assert.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, "Ada", views[0].Buyer.Name)
	assert.Equal(t, "Keyboard", views[0].Products[0].Name)
	m.users.AssertExpectations(t)
}

func TestListAllFetchesBuyerOncePerUser(t *testing.T) {
	svc, m := newTestService()
	buyerID := primitive.NewObjectID()

	m.repo.On("FindAll", mock.Anything).Return([]models.Order{
		{ID: primitive.NewObjectID(), Buyer: buyerID, Status: models.StatusShipped},
		{ID: primitive.NewObjectID(), Buyer: buyerID, Status: models.StatusDelivered},
	}, nil)
	m.users.On("GetByID", mock.Anything, buyerID).
		Return(&models.User{ID: buyerID, Name: "Ada"}, nil).Once()
	m.products.On("FindByIDs", mock.Anything, mock.Anything).
		Return([]models.Product{}, nil)

	views, err := svc.ListAll(context.Background())

	assert.NoError(t, err)
	assert.Len(t, views, 2)
	m.users.AssertExpectations(t)
}

func TestListAllPropagatesRepositoryError(t *testing.T) {
	svc, m := newTestService()
	m.repo.On("FindAll", mock.Anything).Return(nil, errors.New("cursor timeout"))

	_, err := svc.ListAll(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cursor timeout")
}
