package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/ecom-shop/internal/app/handlers"
	"github.com/linemk/ecom-shop/internal/domain/models"
	"github.com/linemk/ecom-shop/internal/service"
	"github.com/linemk/ecom-shop/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// fakeUserService — фиктивная реализация для тестирования.
type fakeUserService struct {
	user  *models.User
	token string
	err   error
}

func (f *fakeUserService) Register(ctx context.Context, username, password, confirmPassword string) (*models.User, error) {
	return f.user, f.err
}

func (f *fakeUserService) Login(ctx context.Context, username, password string) (string, error) {
	return f.token, f.err
}

func (f *fakeUserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return f.user, f.err
}

// fakeCartService — фиктивная реализация интерфейса CartService
type fakeCartService struct {
	cart *models.Cart
	err  error
}

func (f *fakeCartService) AddItems(ctx context.Context, username string, itemID int64, quantity int) (*models.Cart, error) {
	return f.cart, f.err
}

func (f *fakeCartService) RemoveItems(ctx context.Context, username string, itemID int64, quantity int) (*models.Cart, error) {
	return f.cart, f.err
}

type fakeOrderService struct {
	order  *models.Order
	orders []*models.Order
	err    error
}

func (f *fakeOrderService) Submit(ctx context.Context, username string) (*models.Order, error) {
	return f.order, f.err
}

func (f *fakeOrderService) History(ctx context.Context, username string) ([]*models.Order, error) {
	return f.orders, f.err
}

type fakeItemService struct {
	items []*models.Item
	item  *models.Item
	err   error
}

func (f *fakeItemService) List(ctx context.Context) ([]*models.Item, error) {
	return f.items, f.err
}

func (f *fakeItemService) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	return f.item, f.err
}

func (f *fakeItemService) GetByName(ctx context.Context, name string) ([]*models.Item, error) {
	return f.items, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestCreateUserHandler_Success(t *testing.T) {
	fakeSvc := &fakeUserService{user: &models.User{ID: 1, Username: "testUser"}}
	handler := handlers.CreateUserHandler(testLogger(), fakeSvc)

	reqBody := `{"username": "testUser", "password": "password@123", "confirmPassword": "password@123"}`
	req := httptest.NewRequest("POST", "/api/user/create", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "Expected status 200 OK")

	var resp models.User
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err, "Response decoding should succeed")
	assert.Equal(t, "testUser", resp.Username)
	assert.Equal(t, int64(1), resp.ID)
	// Хэш пароля в ответ не попадает
	assert.NotContains(t, rr.Body.String(), "pass_hash")
}

func TestCreateUserHandler_InvalidJSON(t *testing.T) {
	fakeSvc := &fakeUserService{}
	handler := handlers.CreateUserHandler(testLogger(), fakeSvc)

	reqBody := `{"username": "testUser", "password":`
	req := httptest.NewRequest("POST", "/api/user/create", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected status 400 for invalid JSON")
}

func TestCreateUserHandler_ConfirmationMismatch(t *testing.T) {
	// Несовпадение пароля и подтверждения отсекается валидатором (eqfield)
	fakeSvc := &fakeUserService{}
	handler := handlers.CreateUserHandler(testLogger(), fakeSvc)

	reqBody := `{"username": "testUser", "password": "password@123", "confirmPassword": "password@456"}`
	req := httptest.NewRequest("POST", "/api/user/create", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected status 400 for mismatched confirmation")
}

func TestCreateUserHandler_ShortPassword(t *testing.T) {
	fakeSvc := &fakeUserService{}
	handler := handlers.CreateUserHandler(testLogger(), fakeSvc)

	reqBody := `{"username": "testUser", "password": "short", "confirmPassword": "short"}`
	req := httptest.NewRequest("POST", "/api/user/create", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected status 400 for short password")
}

func TestCreateUserHandler_DuplicateUsername(t *testing.T) {
	fakeSvc := &fakeUserService{err: storage.ErrUserAlreadyExists}
	handler := handlers.CreateUserHandler(testLogger(), fakeSvc)

	reqBody := `{"username": "testUser", "password": "password@123", "confirmPassword": "password@123"}`
	req := httptest.NewRequest("POST", "/api/user/create", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected status 400 for duplicate username")
}

// withURLParam добавляет chi-параметр пути в контекст запроса.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestFindUserHandler_Success(t *testing.T) {
	fakeSvc := &fakeUserService{user: &models.User{ID: 1, Username: "testUser"}}
	handler := handlers.FindUserHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("GET", "/api/user/testUser", nil)
	req = withURLParam(req, "username", "testUser")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.User
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.Equal(t, "testUser", resp.Username)
}

func TestFindUserHandler_NotFound(t *testing.T) {
	fakeSvc := &fakeUserService{err: storage.ErrUserNotFound}
	handler := handlers.FindUserHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("GET", "/api/user/ghost", nil)
	req = withURLParam(req, "username", "ghost")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code, "Expected status 404 for unknown user")
}

func TestLoginHandler_Success(t *testing.T) {
	fakeSvc := &fakeUserService{token: "test-token"}
	handler := handlers.LoginHandler(testLogger(), fakeSvc)

	reqBody := `{"username": "testUser", "password": "password@123"}`
	req := httptest.NewRequest("POST", "/api/login", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.LoginResponse
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.Equal(t, "test-token", resp.Token)
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	fakeSvc := &fakeUserService{err: service.ErrInvalidCredentials}
	handler := handlers.LoginHandler(testLogger(), fakeSvc)

	reqBody := `{"username": "testUser", "password": "wrongpassword"}`
	req := httptest.NewRequest("POST", "/api/login", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected status 401 for invalid credentials")
}

func TestAddToCartHandler_Success(t *testing.T) {
	apple := &models.Item{ID: 1, Name: "Apple", Price: decimal.RequireFromString("2.99")}
	fakeSvc := &fakeCartService{cart: &models.Cart{
		ID:     7,
		UserID: 1,
		Items:  []*models.Item{apple},
		Total:  decimal.RequireFromString("2.99"),
	}}
	handler := handlers.AddToCartHandler(testLogger(), fakeSvc)

	reqBody := `{"username": "testUser", "itemId": 1, "quantity": 1}`
	req := httptest.NewRequest("POST", "/api/cart/addToCart", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.Cart
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.Len(t, resp.Items, 1)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("2.99")), "cart total should be 2.99, got %s", resp.Total)
}

func TestAddToCartHandler_ItemNotFound(t *testing.T) {
	fakeSvc := &fakeCartService{err: storage.ErrItemNotFound}
	handler := handlers.AddToCartHandler(testLogger(), fakeSvc)

	reqBody := `{"username": "testUser", "itemId": 42, "quantity": 1}`
	req := httptest.NewRequest("POST", "/api/cart/addToCart", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code, "Expected status 404 for unknown item")
}

func TestAddToCartHandler_NonPositiveQuantity(t *testing.T) {
	fakeSvc := &fakeCartService{}
	handler := handlers.AddToCartHandler(testLogger(), fakeSvc)

	reqBody := `{"username": "testUser", "itemId": 1, "quantity": -1}`
	req := httptest.NewRequest("POST", "/api/cart/addToCart", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected status 400 for non-positive quantity")
}

func TestRemoveFromCartHandler_Success(t *testing.T) {
	// После удаления единственного товара корзина пуста, итог 0.00
	fakeSvc := &fakeCartService{cart: &models.Cart{
		ID:     7,
		UserID: 1,
		Items:  []*models.Item{},
		Total:  decimal.RequireFromString("0.00"),
	}}
	handler := handlers.RemoveFromCartHandler(testLogger(), fakeSvc)

	reqBody := `{"username": "testUser", "itemId": 1, "quantity": 1}`
	req := httptest.NewRequest("POST", "/api/cart/removeFromCart", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.Cart
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.True(t, resp.Total.IsZero(), "cart total should be zero, got %s", resp.Total)
}

func TestRemoveFromCartHandler_UserNotFound(t *testing.T) {
	fakeSvc := &fakeCartService{err: storage.ErrUserNotFound}
	handler := handlers.RemoveFromCartHandler(testLogger(), fakeSvc)

	reqBody := `{"username": "ghost", "itemId": 1, "quantity": 1}`
	req := httptest.NewRequest("POST", "/api/cart/removeFromCart", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code, "Expected status 404 for unknown user")
}

func TestSubmitOrderHandler_Success(t *testing.T) {
	fakeSvc := &fakeOrderService{order: &models.Order{
		ID:     10,
		UserID: 1,
		Items: []*models.OrderItem{
			{ItemID: 1, Name: "Apple", Price: decimal.RequireFromString("2.99")},
		},
		Total: decimal.RequireFromString("2.99"),
	}}
	handler := handlers.SubmitOrderHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("POST", "/api/order/submit/testUser", nil)
	req = withURLParam(req, "username", "testUser")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.Order
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("2.99")), "order total should be 2.99, got %s", resp.Total)
	assert.Len(t, resp.Items, 1)
}

func TestSubmitOrderHandler_UserNotFound(t *testing.T) {
	fakeSvc := &fakeOrderService{err: storage.ErrUserNotFound}
	handler := handlers.SubmitOrderHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("POST", "/api/order/submit/ghost", nil)
	req = withURLParam(req, "username", "ghost")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code, "Expected status 404 for unknown user")
}

func TestOrderHistoryHandler_Success(t *testing.T) {
	fakeSvc := &fakeOrderService{orders: []*models.Order{
		{ID: 10, UserID: 1, Total: decimal.RequireFromString("2.99")},
		{ID: 11, UserID: 1, Total: decimal.RequireFromString("5.98")},
	}}
	handler := handlers.OrderHistoryHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("GET", "/api/order/history/testUser", nil)
	req = withURLParam(req, "username", "testUser")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp []*models.Order
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.Len(t, resp, 2)
}

func TestGetItemHandler_Success(t *testing.T) {
	fakeSvc := &fakeItemService{item: &models.Item{ID: 1, Name: "Apple", Price: decimal.RequireFromString("2.99")}}
	handler := handlers.GetItemHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("GET", "/api/items/1", nil)
	req = withURLParam(req, "id", "1")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.Item
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.Equal(t, "Apple", resp.Name)
}

func TestGetItemHandler_NotFound(t *testing.T) {
	fakeSvc := &fakeItemService{err: storage.ErrItemNotFound}
	handler := handlers.GetItemHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("GET", "/api/items/42", nil)
	req = withURLParam(req, "id", "42")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetItemsByNameHandler_EmptyResult(t *testing.T) {
	// Пустой список товаров с таким названием трактуется как 404
	fakeSvc := &fakeItemService{items: nil}
	handler := handlers.GetItemsByNameHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("GET", "/api/items/name/Unknown", nil)
	req = withURLParam(req, "name", "Unknown")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
