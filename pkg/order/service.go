package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/pkg/events"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrInvalidID         = errors.New("invalid object id")
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrEmptyCart         = errors.New("cart is empty")
)

type Repository interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByBuyer(ctx context.Context, buyer primitive.ObjectID) ([]models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error)
}

type ProductFinder interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
}

type UserFinder interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Auditor interface {
	CreateAuditLog(ctx context.Context, log *repository.AuditLog) error
}

// Buyer is the populated owner reference on an order view.
type Buyer struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
}

// View is an order with its buyer and product references populated,
// photos excluded.
type View struct {
	ID        primitive.ObjectID   `json:"_id"`
	Products  []models.Product     `json:"products"`
	Payment   models.PaymentResult `json:"payment"`
	Buyer     Buyer                `json:"buyer"`
	Status    models.OrderStatus   `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
}

// Service walks orders through the status table and answers the buyer
// and admin listings.
type Service struct {
	orders    Repository
	products  ProductFinder
	users     UserFinder
	auditor   Auditor
	publisher events.Publisher
	logger    *zap.Logger
}

func NewService(orders Repository, products ProductFinder, users UserFinder, auditor Auditor, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		orders:    orders,
		products:  products,
		users:     users,
		auditor:   auditor,
		publisher: publisher,
		logger:    logger,
	}
}

// Create records a checkout: the cart contents, the buyer and the
// gateway outcome, with the initial "Not Process" status.
func (s *Service) Create(ctx context.Context, buyerID primitive.ObjectID, cart []string, payment models.PaymentResult) (*models.Order, error) {
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	productIDs := make([]primitive.ObjectID, 0, len(cart))
	for _, raw := range cart {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidID, raw)
		}
		productIDs = append(productIDs, id)
	}

	order := &models.Order{
		Products: productIDs,
		Payment:  payment,
		Buyer:    buyerID,
		Status:   models.StatusNotProcess,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	go s.record(order.ID, "order.created", bson.M{
		"buyer":    buyerID.Hex(),
		"products": len(productIDs),
		"amount":   payment.Amount,
	})

	return order, nil
}

// PriceCart totals the current catalog price of the cart contents.
func (s *Service) PriceCart(ctx context.Context, cart []string) (float64, error) {
	if len(cart) == 0 {
		return 0, ErrEmptyCart
	}

	ids := make([]primitive.ObjectID, 0, len(cart))
	for _, raw := range cart {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidID, raw)
		}
		ids = append(ids, id)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("price cart: %w", err)
	}

	prices := make(map[primitive.ObjectID]float64, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}

	// Duplicate cart entries price each unit.
	var total float64
	for _, id := range ids {
		price, ok := prices[id]
		if !ok {
			return 0, fmt.Errorf("%w: product %s", repository.ErrNotFound, id.Hex())
		}
		total += price
	}
	return total, nil
}

// ListForBuyer returns the buyer's own orders, populated.
func (s *Service) ListForBuyer(ctx context.Context, buyerID primitive.ObjectID) ([]View, error) {
	orders, err := s.orders.FindByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	return s.populate(ctx, orders)
}

// ListAll returns every order across buyers, newest first, populated.
func (s *Service) ListAll(ctx context.Context) ([]View, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	return s.populate(ctx, orders)
}

// UpdateStatus moves an order to the requested status. The target must
// be a known status and the move must be allowed by the transition
// table; Delivered and Cancelled are terminal.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, next models.OrderStatus) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, orderID)
	}
	if !next.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, next)
	}

	current, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if !current.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current.Status, next)
	}

	updated, err := s.orders.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	go s.record(id, "order.status.changed", bson.M{
		"from": string(current.Status),
		"to":   string(next),
	})

	return updated, nil
}

// record publishes the event and writes the audit entry off the
// request path. Failures are logged, never surfaced.
func (s *Service) record(orderID primitive.ObjectID, action string, data bson.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.publisher.Publish(ctx, action, bson.M{"order_id": orderID.Hex(), "data": data}); err != nil {
		s.logger.Warn("Failed to publish order event",
			zap.String("action", action),
			zap.String("order_id", orderID.Hex()),
			zap.Error(err))
	}

	if s.auditor == nil {
		return
	}
	if err := s.auditor.CreateAuditLog(ctx, &repository.AuditLog{
		Action:   action,
		EntityID: orderID.Hex(),
		Data:     data,
	}); err != nil {
		s.logger.Warn("Failed to write audit log",
			zap.String("action", action),
			zap.String("order_id", orderID.Hex()),
			zap.Error(err))
	}
}

func (s *Service) populate(ctx context.Context, orders []models.Order) ([]View, error) {
	views := make([]View, 0, len(orders))
	buyers := map[primitive.ObjectID]Buyer{}

	for _, o := range orders {
		buyer, ok := buyers[o.Buyer]
		if !ok {
			user, err := s.users.GetByID(ctx, o.Buyer)
			if err != nil {
				return nil, fmt.Errorf("get buyer: %w", err)
			}
			buyer = Buyer{ID: user.ID, Name: user.Name}
			buyers[o.Buyer] = buyer
		}

		products, err := s.products.FindByIDs(ctx, o.Products)
		if err != nil {
			return nil, fmt.Errorf("get order products: %w", err)
		}

		views = append(views, View{
			ID:        o.ID,
			Products:  products,
			Payment:   o.Payment,
			Buyer:     buyer,
			Status:    o.Status,
			CreatedAt: o.CreatedAt,
		})
	}
	return views, nil
}
