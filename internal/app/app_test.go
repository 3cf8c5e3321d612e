package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"stylesync/internal/app"
	"stylesync/internal/config"
	"stylesync/internal/database"
	"stylesync/internal/repositories"
	"stylesync/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// envelope mirrors handlers.Envelope with raw data for per-test decoding.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`

	Timestamp string `json:"timestamp"` // health only
}

func testConfig(authRequired bool) *config.Config {
	return &config.Config{
		DBDriver:     config.DriverSQLite,
		JWTSecret:    "test_jwt_secret",
		TokenTTL:     time.Hour,
		AuthRequired: authRequired,
	}
}

// setupApp builds the app over a private in-memory SQLite database.
func setupApp(t *testing.T, authRequired bool) (*fiber.App, *services.AuthService) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.OpenGORM("sqlite", dsn)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	fiberApp, authService := app.NewFiberApp(testConfig(authRequired), repositories.NewGORMSet(db), nil)
	return fiberApp, authService
}

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func do(t *testing.T, a *fiber.App, method, path string, body any, token string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(b)
		}
		reader = bytes.NewReader([]byte(raw))
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func register(t *testing.T, a *fiber.App, email, password, role string) {
	t.Helper()
	status, env := do(t, a, http.MethodPost, "/api/v1/register", map[string]string{
		"name": "Test User", "email": email, "password": password, "role": role,
	}, "")
	require.Equal(t, http.StatusCreated, status, env.Message)
}

func login(t *testing.T, a *fiber.App, email, password string) string {
	t.Helper()
	status, env := do(t, a, http.MethodPost, "/api/v1/login", map[string]string{
		"email": email, "password": password,
	}, "")
	require.Equal(t, http.StatusOK, status, env.Message)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestAuthRegisterAndLogin(t *testing.T) {
	a, authService := setupApp(t, false)

	register(t, a, "test@example.com", "password123", "admin")

	// Duplicate registration is a 400, not a 409
	status, env := do(t, a, http.MethodPost, "/api/v1/register", map[string]string{
		"name": "Again", "email": "test@example.com", "password": "x",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Equal(t, "User already exists", env.Message)

	token := login(t, a, "test@example.com", "password123")
	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.NotEmpty(t, claims.UserID)

	status, env = do(t, a, http.MethodGet, "/api/v1/me", nil, token)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, fmt.Sprintf(`{"userId":%q,"email":"test@example.com","role":"admin"}`, claims.UserID), string(env.Data))

	// Wrong password and unknown email look the same
	for _, creds := range []map[string]string{
		{"email": "test@example.com", "password": "wrong"},
		{"email": "nobody@example.com", "password": "password123"},
	} {
		status, env = do(t, a, http.MethodPost, "/api/v1/login", creds, "")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.False(t, env.Success)
		assert.Equal(t, "Invalid email or password", env.Message)
		assert.Empty(t, env.Data)
	}
}

func TestRegisterValidation(t *testing.T) {
	a, _ := setupApp(t, false)

	status, env := do(t, a, http.MethodPost, "/api/v1/register", map[string]string{"email": "not-an-email"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Contains(t, env.Errors, "Name")
	assert.Contains(t, env.Errors, "Email")
	assert.Contains(t, env.Errors, "Password")

	status, env = do(t, a, http.MethodPost, "/api/v1/login", `{"email": 5}`, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", env.Message)
}

func TestRegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	a, _ := setupApp(t, false)

	status, env := do(t, a, http.MethodPost, "/api/v1/register", map[string]string{
		"name": "Multi", "email": "multi@example.com", "password": strings.Repeat("é", 40),
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid password", env.Message)

	register(t, a, "multi@example.com", strings.Repeat("é", 36), "")
	login(t, a, "multi@example.com", strings.Repeat("é", 36))
}

func TestProductEndpoints(t *testing.T) {
	a, _ := setupApp(t, false)

	newProduct := map[string]any{
		"image": "runner.png", "title": "Runner", "rating": 4.5, "price": 120.0,
		"brand": "Acme", "description": "Light", "sale": true, "salePrice": 99.0, "category": "shoes",
	}
	status, env := do(t, a, http.MethodPost, "/api/v1/products", newProduct, "")
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, env.Success)

	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id, _ := created["_id"].(string)
	require.NotEmpty(t, id)

	_, env = do(t, a, http.MethodPost, "/api/v1/products", map[string]any{"title": "Cap", "price": 15.0, "category": "hats"}, "")
	require.True(t, env.Success)

	// Round trip by id
	status, env = do(t, a, http.MethodGet, "/api/v1/products/"+id, nil, "")
	assert.Equal(t, http.StatusOK, status)
	var fetched map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	for k, v := range newProduct {
		assert.Equal(t, v, fetched[k], k)
	}

	// Exact category filter
	status, env = do(t, a, http.MethodGet, "/api/v1/products?category=shoes", nil, "")
	assert.Equal(t, http.StatusOK, status)
	var shoes []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &shoes))
	require.Len(t, shoes, 1)
	assert.Equal(t, "shoes", shoes[0]["category"])

	_, env = do(t, a, http.MethodGet, "/api/v1/products", nil, "")
	var all []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 2)

	_, env = do(t, a, http.MethodGet, "/api/v1/products?limit=1&offset=1", nil, "")
	var page []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page, 1)
	assert.Equal(t, "Cap", page[0]["title"])

	status, _ = do(t, a, http.MethodGet, "/api/v1/products?limit=-1", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)

	// Missing product: 200 with null data
	status, env = do(t, a, http.MethodGet, "/api/v1/products/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "null", string(env.Data))

	status, env = do(t, a, http.MethodPost, "/api/v1/products", map[string]any{"price": 1.0}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Errors, "Title")
}

func TestReviewEndpoints(t *testing.T) {
	a, _ := setupApp(t, false)

	status, env := do(t, a, http.MethodPost, "/api/v1/reviews", map[string]string{
		"review": "Great fit", "productId": "p1", "userName": "ana",
	}, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Review posted successfully", env.Message)

	status, env = do(t, a, http.MethodGet, "/api/v1/reviews/p1", nil, "")
	assert.Equal(t, http.StatusCreated, status)
	var reviews []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &reviews))
	require.Len(t, reviews, 1)
	assert.Equal(t, "ana", reviews[0]["userName"])

	_, env = do(t, a, http.MethodGet, "/api/v1/reviews/unknown", nil, "")
	assert.Equal(t, "[]", string(env.Data))

	status, _ = do(t, a, http.MethodPost, "/api/v1/reviews", map[string]string{"review": "no product"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestOrderEndpoints(t *testing.T) {
	a, _ := setupApp(t, false)

	status, env := do(t, a, http.MethodPost, "/api/v1/orders", map[string]any{
		"userId": "u1",
		"items":  []map[string]any{{"productId": "p1", "quantity": 2}},
		"total":  240,
		"status": "shipped",
	}, "")
	require.Equal(t, http.StatusOK, status, env.Error)
	var order map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &order))
	id, _ := order["_id"].(string)
	require.NotEmpty(t, id)
	assert.NotEmpty(t, order["createdAt"])
	assert.NotContains(t, order, "status")

	_, env = do(t, a, http.MethodPost, "/api/v1/orders", map[string]any{"userId": "u2"}, "")
	require.True(t, env.Success)

	status, env = do(t, a, http.MethodGet, "/api/v1/orders/u1", nil, "")
	assert.Equal(t, http.StatusOK, status)
	var mine []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, id, mine[0]["_id"])
	assert.Equal(t, 240.0, mine[0]["total"])
	assert.NotNil(t, mine[0]["createdAt"])

	_, env = do(t, a, http.MethodGet, "/api/v1/orders", nil, "")
	var all []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 2)

	// Delivered twice: same status, no error
	for i, modified := range []int{1, 0} {
		status, env = do(t, a, http.MethodPatch, "/api/v1/orders/"+id, nil, "")
		require.Equal(t, http.StatusOK, status, "call %d", i)
		assert.JSONEq(t, fmt.Sprintf(`{"matchedCount":1,"modifiedCount":%d}`, modified), string(env.Data))
	}
	_, env = do(t, a, http.MethodGet, "/api/v1/orders/u1", nil, "")
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	assert.Equal(t, "delivered", mine[0]["status"])

	status, env = do(t, a, http.MethodPatch, "/api/v1/orders/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"matchedCount":0,"modifiedCount":0}`, string(env.Data))

	status, _ = do(t, a, http.MethodPost, "/api/v1/orders", `[1,2,3]`, "")
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = do(t, a, http.MethodPost, "/api/v1/orders", map[string]any{"userId": 7}, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

// MockPublisher stands in for the RabbitMQ client.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, body []byte) error {
	args := m.Called(routingKey, body)
	return args.Error(0)
}

func TestOrderEventsArePublished(t *testing.T) {
	mockMQ := new(MockPublisher)
	mockMQ.On("Publish", services.EventOrderCreated, mock.Anything).Return(nil).Once()
	mockMQ.On("Publish", services.EventOrderDelivered, mock.Anything).Return(nil).Once()

	fiberApp, _ := app.NewFiberApp(testConfig(false), repositories.NewMemorySet(), mockMQ)

	_, env := do(t, fiberApp, http.MethodPost, "/api/v1/orders", map[string]any{"userId": "u9"}, "")
	require.True(t, env.Success)
	var order map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &order))

	id := order["_id"].(string)
	do(t, fiberApp, http.MethodPatch, "/api/v1/orders/"+id, nil, "")
	do(t, fiberApp, http.MethodPatch, "/api/v1/orders/"+id, nil, "")

	mockMQ.AssertExpectations(t)
	mockMQ.AssertNumberOfCalls(t, "Publish", 2)
}

func TestAuthRequiredGuardsMutatingRoutes(t *testing.T) {
	a, _ := setupApp(t, true)

	status, env := do(t, a, http.MethodPost, "/api/v1/products", map[string]any{"title": "Cap"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, _ = do(t, a, http.MethodPost, "/api/v1/orders", map[string]any{"userId": "u1"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	// Reads stay open
	status, _ = do(t, a, http.MethodGet, "/api/v1/products", nil, "")
	assert.Equal(t, http.StatusOK, status)

	register(t, a, "auth@example.com", "securepassword", "")
	token := login(t, a, "auth@example.com", "securepassword")

	status, _ = do(t, a, http.MethodPost, "/api/v1/products", map[string]any{"title": "Cap"}, token)
	assert.Equal(t, http.StatusCreated, status)

	status, _ = do(t, a, http.MethodPost, "/api/v1/products", map[string]any{"title": "Cap"}, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMeRequiresToken(t *testing.T) {
	a, _ := setupApp(t, false)

	status, env := do(t, a, http.MethodGet, "/api/v1/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Authorization header is required", env.Message)
}

func TestHealthAndUnknownRoute(t *testing.T) {
	a, _ := setupApp(t, false)

	status, env := do(t, a, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Server is running smoothly", env.Message)
	var data struct {
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	_, err := time.Parse(time.RFC3339, data.Timestamp)
	assert.NoError(t, err)
	assert.Equal(t, data.Timestamp, env.Timestamp)

	status, env = do(t, a, http.MethodGet, "/api/v1/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
}

func TestMetricsEndpoint(t *testing.T) {
	a, _ := setupApp(t, false)
	for i := 0; i < 3; i++ {
		do(t, a, http.MethodPost, "/api/v1/products", map[string]any{"title": "Cap"}, "")
		do(t, a, http.MethodGet, "/api/v1/products", nil, "")
		do(t, a, http.MethodPatch, "/api/v1/orders/"+uuid.NewString(), nil, "")
		do(t, a, http.MethodGet, "/", nil, "")
	}

	// Scrape twice: a corrupted label would fail every later scrape
	resp, err := a.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = a.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "stylesync_http_request_duration_seconds")
	assert.Contains(t, string(body), `method="POST",route="/api/v1/products/"`)
	assert.Contains(t, string(body), `method="PATCH",route="/api/v1/orders/:id"`)
}

func TestNewWithMemoryDriver(t *testing.T) {
	cfg := testConfig(false)
	cfg.DBDriver = config.DriverMemory

	server, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { server.Close(context.Background()) })

	register(t, server.Fiber, "mem@example.com", "pw", "")
	login(t, server.Fiber, "mem@example.com", "pw")
}

func TestNewFailsWhenStoreUnreachable(t *testing.T) {
	cfg := testConfig(false)
	cfg.DBDriver = config.DriverSQLite
	cfg.DatabaseDSN = "file:/nonexistent-dir/stylesync.db"

	_, err := app.New(context.Background(), cfg)
	assert.Error(t, err)
}
