package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"foodtasker/internal/models"
	"foodtasker/internal/repositories"
	"foodtasker/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, body []byte) error {
	return m.Called(routingKey, body).Error(0)
}

type orderFixture struct {
	orders   *repositories.MockOrderRepository
	catalog  *repositories.MockCatalogRepository
	service  *services.OrderService
	customer *models.Customer
	m1, m2   models.Meal
	foreign  models.Meal
}

func newOrderFixture(t *testing.T, publisher services.EventPublisher) *orderFixture {
	t.Helper()
	f := &orderFixture{
		orders:   repositories.NewMockOrderRepository(),
		catalog:  repositories.NewMockCatalogRepository(),
		customer: &models.Customer{ID: 1, Name: "C"},
	}
	f.catalog.AddRestaurant(models.Restaurant{ID: 1, Name: "R"})
	f.catalog.AddRestaurant(models.Restaurant{ID: 2, Name: "Other"})

	f.m1 = models.Meal{RestaurantID: 1, Name: "M1", Price: decimal.RequireFromString("5.00")}
	f.m2 = models.Meal{RestaurantID: 1, Name: "M2", Price: decimal.RequireFromString("3.00")}
	f.foreign = models.Meal{RestaurantID: 2, Name: "Elsewhere", Price: decimal.RequireFromString("9.99")}
	for _, m := range []*models.Meal{&f.m1, &f.m2, &f.foreign} {
		require.NoError(t, f.catalog.CreateMeal(context.Background(), m))
	}

	f.service = services.NewOrderService(f.orders, f.catalog, publisher)
	return f
}

func details(t *testing.T, items ...services.LineItem) string {
	t.Helper()
	b, err := json.Marshal(items)
	require.NoError(t, err)
	return string(b)
}

func (f *orderFixture) totalOrders(t *testing.T) int64 {
	t.Helper()
	n1, err := f.orders.CountForRestaurantSince(context.Background(), 1, time.Time{})
	require.NoError(t, err)
	n2, err := f.orders.CountForRestaurantSince(context.Background(), 2, time.Time{})
	require.NoError(t, err)
	return n1 + n2
}

func TestOrderService_PlaceOrder(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("Publish", services.RoutingKeyOrderPlaced, mock.MatchedBy(func(body []byte) bool {
		var event services.OrderPlacedEvent
		return json.Unmarshal(body, &event) == nil && event.Total == "13.00" && event.Items == 2
	})).Return(nil).Once()
	f := newOrderFixture(t, publisher)

	order, err := f.service.PlaceOrder(context.Background(), f.customer, services.PlaceOrderRequest{
		RestaurantID: "1",
		Address:      "221B Baker St",
		OrderDetails: details(t,
			services.LineItem{MealID: f.m1.ID, Quantity: 2},
			services.LineItem{MealID: f.m2.ID, Quantity: 1}),
	})
	require.NoError(t, err)

	stored, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCooking, stored.Status)
	assert.Equal(t, "221B Baker St", stored.Address)
	assert.Equal(t, uint(1), stored.CustomerID)
	assert.Equal(t, uint(1), stored.RestaurantID)
	assert.True(t, decimal.RequireFromString("13.00").Equal(stored.Total), "total was %s", stored.Total)
	require.Len(t, stored.Details, 2)
	assert.True(t, decimal.RequireFromString("10.00").Equal(stored.Details[0].SubTotal))
	assert.True(t, decimal.RequireFromString("3.00").Equal(stored.Details[1].SubTotal))

	sum := decimal.Zero
	for _, d := range stored.Details {
		assert.Equal(t, stored.ID, d.OrderID)
		sum = sum.Add(d.SubTotal)
	}
	assert.True(t, sum.Equal(stored.Total))
	publisher.AssertExpectations(t)
}

func TestOrderService_PlaceOrder_SecondOpenOrderConflicts(t *testing.T) {
	f := newOrderFixture(t, nil)
	req := services.PlaceOrderRequest{
		RestaurantID: "1",
		Address:      "221B Baker St",
		OrderDetails: details(t, services.LineItem{MealID: f.m1.ID, Quantity: 1}),
	}
	_, err := f.service.PlaceOrder(context.Background(), f.customer, req)
	require.NoError(t, err)

	_, err = f.service.PlaceOrder(context.Background(), f.customer, req)
	var conflictErr *services.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, "Your last order must be completed.", conflictErr.Message)
	assert.Equal(t, int64(1), f.totalOrders(t))

	// The conflict check runs before address validation.
	_, err = f.service.PlaceOrder(context.Background(), f.customer, services.PlaceOrderRequest{})
	assert.ErrorAs(t, err, &conflictErr)
}

func TestOrderService_PlaceOrder_ValidationFailures(t *testing.T) {
	f := newOrderFixture(t, nil)

	tests := []struct {
		name    string
		req     services.PlaceOrderRequest
		message string
	}{
		{
			name:    "empty address",
			req:     services.PlaceOrderRequest{RestaurantID: "1", Address: "", OrderDetails: details(t, services.LineItem{MealID: f.m1.ID, Quantity: 1})},
			message: "Address is required.",
		},
		{
			name:    "blank address",
			req:     services.PlaceOrderRequest{RestaurantID: "1", Address: "   ", OrderDetails: "not json"},
			message: "Address is required.",
		},
		{
			name:    "malformed json",
			req:     services.PlaceOrderRequest{RestaurantID: "1", Address: "a", OrderDetails: "[{"},
			message: services.MsgInvalidOrderDetails,
		},
		{
			name:    "empty line items",
			req:     services.PlaceOrderRequest{RestaurantID: "1", Address: "a", OrderDetails: "[]"},
			message: services.MsgInvalidOrderDetails,
		},
		{
			name:    "missing order details",
			req:     services.PlaceOrderRequest{RestaurantID: "1", Address: "a"},
			message: services.MsgInvalidOrderDetails,
		},
		{
			name:    "zero quantity",
			req:     services.PlaceOrderRequest{RestaurantID: "1", Address: "a", OrderDetails: details(t, services.LineItem{MealID: f.m1.ID, Quantity: 0})},
			message: services.MsgInvalidOrderDetails,
		},
		{
			name:    "negative quantity",
			req:     services.PlaceOrderRequest{RestaurantID: "1", Address: "a", OrderDetails: `[{"meal_id": 1, "quantity": -2}]`},
			message: services.MsgInvalidOrderDetails,
		},
		{
			name:    "quantity above limit",
			req:     services.PlaceOrderRequest{RestaurantID: "1", Address: "a", OrderDetails: details(t, services.LineItem{MealID: f.m1.ID, Quantity: 1001})},
			message: services.MsgInvalidOrderDetails,
		},
		{
			name:    "fractional quantity",
			req:     services.PlaceOrderRequest{RestaurantID: "1", Address: "a", OrderDetails: `[{"meal_id": 1, "quantity": 1.5}]`},
			message: services.MsgInvalidOrderDetails,
		},
		{
			name:    "missing meal id",
			req:     services.PlaceOrderRequest{RestaurantID: "1", Address: "a", OrderDetails: `[{"quantity": 1}]`},
			message: services.MsgInvalidOrderDetails,
		},
		{
			name:    "unknown meal",
			req:     services.PlaceOrderRequest{RestaurantID: "1", Address: "a", OrderDetails: details(t, services.LineItem{MealID: 999, Quantity: 1})},
			message: services.MsgInvalidOrderDetails,
		},
		{
			name:    "meal of another restaurant",
			req:     services.PlaceOrderRequest{RestaurantID: "1", Address: "a", OrderDetails: details(t, services.LineItem{MealID: f.foreign.ID, Quantity: 1})},
			message: services.MsgInvalidOrderDetails,
		},
		{
			name: "duplicate meal",
			req: services.PlaceOrderRequest{RestaurantID: "1", Address: "a", OrderDetails: details(t,
				services.LineItem{MealID: f.m1.ID, Quantity: 1},
				services.LineItem{MealID: f.m1.ID, Quantity: 2})},
			message: services.MsgInvalidOrderDetails,
		},
		{
			name:    "unknown restaurant",
			req:     services.PlaceOrderRequest{RestaurantID: "77", Address: "a", OrderDetails: details(t, services.LineItem{MealID: f.m1.ID, Quantity: 1})},
			message: services.MsgRestaurantNotFound,
		},
		{
			name:    "non numeric restaurant",
			req:     services.PlaceOrderRequest{RestaurantID: "abc", Address: "a", OrderDetails: details(t, services.LineItem{MealID: f.m1.ID, Quantity: 1})},
			message: services.MsgRestaurantNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.PlaceOrder(context.Background(), f.customer, tt.req)
			var validationErr *services.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.message, validationErr.Message)
			assert.Equal(t, int64(0), f.totalOrders(t))
		})
	}
}

func TestOrderService_PlaceOrder_TotalTooLarge(t *testing.T) {
	f := newOrderFixture(t, nil)
	pricey := models.Meal{RestaurantID: 1, Name: "Caviar", Price: decimal.RequireFromString("99999.99")}
	require.NoError(t, f.catalog.CreateMeal(context.Background(), &pricey))

	// 1000 x 99999.99 fits, adding one more meal does not.
	_, err := f.service.PlaceOrder(context.Background(), f.customer, services.PlaceOrderRequest{
		RestaurantID: "1",
		Address:      "a",
		OrderDetails: details(t,
			services.LineItem{MealID: pricey.ID, Quantity: 1000},
			services.LineItem{MealID: f.m1.ID, Quantity: 1}),
	})
	var validationErr *services.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, services.MsgInvalidOrderDetails, validationErr.Message)
	assert.Equal(t, int64(0), f.totalOrders(t))

	order, err := f.service.PlaceOrder(context.Background(), f.customer, services.PlaceOrderRequest{
		RestaurantID: "1",
		Address:      "a",
		OrderDetails: details(t, services.LineItem{MealID: pricey.ID, Quantity: 1000}),
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("99999990").Equal(order.Total))
}

// racingOrderRepository lets a competing order slip in between the open
// order check and the insert.
type racingOrderRepository struct {
	*repositories.MockOrderRepository
}

func (r racingOrderRepository) HasOpenOrder(context.Context, uint) (bool, error) {
	return false, nil
}

type failingOrderRepository struct {
	*repositories.MockOrderRepository
}

func (r failingOrderRepository) CreateWithDetails(context.Context, *models.Order) error {
	return errors.New("disk full")
}

func TestOrderService_PlaceOrder_CommitFailures(t *testing.T) {
	f := newOrderFixture(t, nil)
	req := services.PlaceOrderRequest{
		RestaurantID: "1",
		Address:      "a",
		OrderDetails: details(t, services.LineItem{MealID: f.m1.ID, Quantity: 1}),
	}
	_, err := f.service.PlaceOrder(context.Background(), f.customer, req)
	require.NoError(t, err)

	racing := services.NewOrderService(racingOrderRepository{f.orders}, f.catalog, nil)
	_, err = racing.PlaceOrder(context.Background(), f.customer, req)
	var conflictErr *services.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, int64(1), f.totalOrders(t))

	failing := services.NewOrderService(failingOrderRepository{repositories.NewMockOrderRepository()}, f.catalog, nil)
	_, err = failing.PlaceOrder(context.Background(), f.customer, req)
	var persistenceErr *services.PersistenceError
	assert.ErrorAs(t, err, &persistenceErr)
}

func TestOrderService_PlaceOrder_PublishFailureIsNotFatal(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("Publish", services.RoutingKeyOrderPlaced, mock.Anything).Return(errors.New("broker down")).Once()
	f := newOrderFixture(t, publisher)

	_, err := f.service.PlaceOrder(context.Background(), f.customer, services.PlaceOrderRequest{
		RestaurantID: "1",
		Address:      "a",
		OrderDetails: details(t, services.LineItem{MealID: f.m2.ID, Quantity: 3}),
	})
	assert.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestOrderService_LatestOrder(t *testing.T) {
	f := newOrderFixture(t, nil)
	ctx := context.Background()

	order, err := f.service.LatestOrder(ctx, f.customer)
	require.NoError(t, err)
	assert.Nil(t, order)

	first, err := f.service.PlaceOrder(ctx, f.customer, services.PlaceOrderRequest{
		RestaurantID: "1", Address: "a", OrderDetails: details(t, services.LineItem{MealID: f.m1.ID, Quantity: 1}),
	})
	require.NoError(t, err)
	require.NoError(t, f.orders.UpdateStatus(ctx, first.ID, models.StatusCooking, models.StatusDelivered))

	second, err := f.service.PlaceOrder(ctx, f.customer, services.PlaceOrderRequest{
		RestaurantID: "1", Address: "b", OrderDetails: details(t, services.LineItem{MealID: f.m2.ID, Quantity: 1}),
	})
	require.NoError(t, err)

	latest, err := f.service.LatestOrder(ctx, f.customer)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
}

func TestOrderService_CountNewOrders(t *testing.T) {
	f := newOrderFixture(t, nil)
	ctx := context.Background()
	restaurant := &models.Restaurant{ID: 1}

	before := time.Now().UTC().Add(-time.Second)
	for i := uint(1); i <= 3; i++ {
		_, err := f.service.PlaceOrder(ctx, &models.Customer{ID: 100 + i}, services.PlaceOrderRequest{
			RestaurantID: "1", Address: "a", OrderDetails: details(t, services.LineItem{MealID: f.m1.ID, Quantity: 1}),
		})
		require.NoError(t, err)
	}
	after := time.Now().UTC().Add(time.Second)

	n1, err := f.service.CountNewOrders(ctx, restaurant, before)
	require.NoError(t, err)
	n2, err := f.service.CountNewOrders(ctx, restaurant, before)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n1)
	assert.Equal(t, n1, n2)

	later, err := f.service.CountNewOrders(ctx, restaurant, after)
	require.NoError(t, err)
	assert.Equal(t, int64(0), later)
	assert.GreaterOrEqual(t, n1, later)

	other, err := f.service.CountNewOrders(ctx, &models.Restaurant{ID: 2}, before)
	require.NoError(t, err)
	assert.Equal(t, int64(0), other)
}

func TestParseSince(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	for _, raw := range []string{
		"2024-03-01T12:30:00Z",
		"2024-03-01T14:30:00+02:00",
		"2024-03-01 12:30:00",
		"2024-03-01T12:30:00",
		"1709296200",
	} {
		got, err := services.ParseSince(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), "%s parsed as %s", raw, got)
	}

	got, err := services.ParseSince("2024-03-01 12:30:00.250000")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, got.Sub(want))

	_, err = services.ParseSince("yesterday")
	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestOrderService_AdvanceOrderStatus(t *testing.T) {
	f := newOrderFixture(t, nil)
	ctx := context.Background()
	owner := &models.Restaurant{ID: 1}
	req := services.PlaceOrderRequest{
		RestaurantID: "1", Address: "a", OrderDetails: details(t, services.LineItem{MealID: f.m1.ID, Quantity: 1}),
	}

	order, err := f.service.PlaceOrder(ctx, f.customer, req)
	require.NoError(t, err)

	var notFoundErr *services.NotFoundError
	_, err = f.service.AdvanceOrderStatus(ctx, &models.Restaurant{ID: 2}, order.ID, "READY")
	assert.ErrorAs(t, err, &notFoundErr)
	_, err = f.service.AdvanceOrderStatus(ctx, owner, 9999, "READY")
	assert.ErrorAs(t, err, &notFoundErr)

	var validationErr *services.ValidationError
	_, err = f.service.AdvanceOrderStatus(ctx, owner, order.ID, "EATEN")
	assert.ErrorAs(t, err, &validationErr)
	_, err = f.service.AdvanceOrderStatus(ctx, owner, order.ID, "COOKING")
	assert.ErrorAs(t, err, &validationErr)

	updated, err := f.service.AdvanceOrderStatus(ctx, owner, order.ID, "on_the_way")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnTheWay, updated.Status)
	assert.NotNil(t, updated.PickedAt)

	_, err = f.service.AdvanceOrderStatus(ctx, owner, order.ID, "READY")
	assert.ErrorAs(t, err, &validationErr)

	// Still undelivered, so the customer is blocked.
	_, err = f.service.PlaceOrder(ctx, f.customer, req)
	var conflictErr *services.ConflictError
	assert.ErrorAs(t, err, &conflictErr)

	updated, err = f.service.AdvanceOrderStatus(ctx, owner, order.ID, "DELIVERED")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)

	_, err = f.service.AdvanceOrderStatus(ctx, owner, order.ID, "DELIVERED")
	assert.ErrorAs(t, err, &validationErr)

	_, err = f.service.PlaceOrder(ctx, f.customer, req)
	assert.NoError(t, err)
}
