package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"foodtasker/internal/models"
	"foodtasker/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// OrderPlacedEvent is published after an order has been committed.
type OrderPlacedEvent struct {
	OrderID      uint      `json:"order_id"`
	CustomerID   uint      `json:"customer_id"`
	RestaurantID uint      `json:"restaurant_id"`
	Total        string    `json:"total"`
	Items        int       `json:"items"`
	CreatedAt    time.Time `json:"created_at"`
}

// RoutingKeyOrderPlaced is the routing key of OrderPlacedEvent messages.
const RoutingKeyOrderPlaced = "order.placed"

// EventPublisher delivers JSON encoded events to other services.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// LineItem is one (meal, quantity) pair of an order request.
type LineItem struct {
	MealID   uint `json:"meal_id" validate:"required"`
	Quantity int  `json:"quantity" validate:"required,gt=0,lte=1000"`
}

// maxAmount is the largest value a numeric(10,2) money column holds.
var maxAmount = decimal.RequireFromString("99999999.99")

type lineItems struct {
	Items []LineItem `validate:"required,min=1,dive"`
}

// PlaceOrderRequest carries the raw form values of an order placement.
// OrderDetails is a JSON array of {"meal_id", "quantity"} objects.
type PlaceOrderRequest struct {
	RestaurantID string
	Address      string
	OrderDetails string
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	catalogRepo repositories.CatalogRepository
	publisher   EventPublisher // nil disables publishing
	validate    *validator.Validate
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, catalogRepo repositories.CatalogRepository, publisher EventPublisher) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		publisher:   publisher,
		validate:    validator.New(),
	}
}

// PlaceOrder validates, prices and persists a new order for the customer.
// Checks run in a fixed order and the first failure is returned.
func (s *OrderService) PlaceOrder(ctx context.Context, customer *models.Customer, req PlaceOrderRequest) (*models.Order, error) {
	open, err := s.orderRepo.HasOpenOrder(ctx, customer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check open orders: %w", err)
	}
	if open {
		return nil, &ConflictError{Message: MsgOrderInFlight}
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, &ValidationError{Field: "address", Message: MsgAddressRequired}
	}

	restaurantID, items, err := s.parseRequest(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.catalogRepo.GetRestaurant(ctx, restaurantID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &ValidationError{Field: "restaurant_id", Message: MsgRestaurantNotFound, Err: err}
		}
		return nil, err
	}

	order, err := s.priceOrder(ctx, restaurantID, items)
	if err != nil {
		return nil, err
	}
	order.CustomerID = customer.ID
	order.Address = address

	if err := s.orderRepo.CreateWithDetails(ctx, order); err != nil {
		if errors.Is(err, repositories.ErrOpenOrderExists) {
			return nil, &ConflictError{Message: MsgOrderInFlight}
		}
		return nil, &PersistenceError{Op: "create order", Err: err}
	}

	log.Printf("Order %d placed by customer %d at restaurant %d, total %s", order.ID, customer.ID, restaurantID, order.Total.StringFixed(2))
	s.publishPlaced(order)
	return order, nil
}

func (s *OrderService) parseRequest(req PlaceOrderRequest) (uint, []LineItem, error) {
	restaurantID, err := strconv.ParseUint(strings.TrimSpace(req.RestaurantID), 10, 64)
	if err != nil || restaurantID == 0 {
		return 0, nil, &ValidationError{Field: "restaurant_id", Message: MsgRestaurantNotFound, Err: err}
	}

	var parsed lineItems
	if err := json.Unmarshal([]byte(req.OrderDetails), &parsed.Items); err != nil {
		return 0, nil, &ValidationError{Field: "order_details", Message: MsgInvalidOrderDetails, Err: err}
	}
	if err := s.validate.Struct(parsed); err != nil {
		return 0, nil, &ValidationError{Field: "order_details", Message: MsgInvalidOrderDetails, Err: err}
	}

	seen := make(map[uint]bool, len(parsed.Items))
	for _, item := range parsed.Items {
		if seen[item.MealID] {
			return 0, nil, &ValidationError{
				Field:   "order_details",
				Message: MsgInvalidOrderDetails,
				Err:     fmt.Errorf("meal %d listed more than once", item.MealID),
			}
		}
		seen[item.MealID] = true
	}
	return uint(restaurantID), parsed.Items, nil
}

// priceOrder builds an unsaved COOKING order whose details carry the current
// meal prices. Every meal must belong to the ordered restaurant.
func (s *OrderService) priceOrder(ctx context.Context, restaurantID uint, items []LineItem) (*models.Order, error) {
	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.MealID
	}
	meals, err := s.catalogRepo.GetMealsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load meals: %w", err)
	}

	order := &models.Order{
		RestaurantID: restaurantID,
		Status:       models.StatusCooking,
		Total:        decimal.Zero,
		Details:      make([]models.OrderDetails, 0, len(items)),
	}
	for _, item := range items {
		meal, ok := meals[item.MealID]
		if !ok || meal.RestaurantID != restaurantID {
			return nil, &ValidationError{
				Field:   "order_details",
				Message: MsgInvalidOrderDetails,
				Err:     fmt.Errorf("meal %d is not on the menu of restaurant %d", item.MealID, restaurantID),
			}
		}
		subTotal := meal.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		order.Total = order.Total.Add(subTotal)
		if order.Total.GreaterThan(maxAmount) {
			return nil, &ValidationError{
				Field:   "order_details",
				Message: MsgInvalidOrderDetails,
				Err:     fmt.Errorf("order total exceeds %s", maxAmount),
			}
		}
		order.Details = append(order.Details, models.OrderDetails{
			MealID:   item.MealID,
			Quantity: item.Quantity,
			SubTotal: subTotal,
		})
	}
	return order, nil
}

func (s *OrderService) publishPlaced(order *models.Order) {
	if s.publisher == nil {
		return
	}
	event := OrderPlacedEvent{
		OrderID:      order.ID,
		CustomerID:   order.CustomerID,
		RestaurantID: order.RestaurantID,
		Total:        order.Total.StringFixed(2),
		Items:        len(order.Details),
		CreatedAt:    order.CreatedAt,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal order placed event: %v", err)
		return
	}
	if err := s.publisher.Publish(RoutingKeyOrderPlaced, body); err != nil {
		log.Printf("Warning: Failed to publish order placed event for order %d: %v", order.ID, err)
	}
}

// LatestOrder returns the customer's most recent order, or nil if the
// customer has never ordered.
func (s *OrderService) LatestOrder(ctx context.Context, customer *models.Customer) (*models.Order, error) {
	order, err := s.orderRepo.LatestForCustomer(ctx, customer.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return order, nil
}

// CountNewOrders counts the restaurant's orders created after since.
func (s *OrderService) CountNewOrders(ctx context.Context, restaurant *models.Restaurant, since time.Time) (int64, error) {
	return s.orderRepo.CountForRestaurantSince(ctx, restaurant.ID, since)
}

var sinceLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ParseSince parses the last_request_time of a notification poll. Values
// without a zone are UTC; a bare integer is taken as unix seconds.
func ParseSince(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range sinceLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, &ValidationError{Field: "last_request_time", Message: "Invalid timestamp."}
}

// AdvanceOrderStatus moves one of the restaurant's orders forward to status.
// Statuses never move backwards and DELIVERED is final.
func (s *OrderService) AdvanceOrderStatus(ctx context.Context, restaurant *models.Restaurant, orderID uint, status string) (*models.Order, error) {
	next := models.OrderStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !next.Valid() {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("Invalid order status: %s", status)}
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &NotFoundError{Message: "Order not found."}
		}
		return nil, err
	}
	if order.RestaurantID != restaurant.ID {
		return nil, &NotFoundError{Message: "Order not found."}
	}
	if !order.Status.Before(next) {
		return nil, &ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("Order cannot move from %s to %s.", order.Status, next),
		}
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, order.Status, next); err != nil {
		if errors.Is(err, repositories.ErrStaleStatus) {
			return nil, &ConflictError{Message: "Order status changed, reload and try again."}
		}
		return nil, &PersistenceError{Op: "update order status", Err: err}
	}
	return s.orderRepo.GetByID(ctx, order.ID)
}
