package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trendhive/internal/handler"
	"trendhive/internal/insight"
	"trendhive/internal/model"
	"trendhive/pkg/config"
	"trendhive/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		ServiceName: "trendhive",
		DB:          config.DBConfig{Driver: config.DriverMemory},
		Server:      config.ServerConfig{Port: "0", Env: "test", ShutdownTimeout: time.Second},
		JWT:         config.JWTConfig{SigningKey: "test-secret", ExpirationHours: 1},
		Session:     config.SessionConfig{CookieName: "trendhive_session"},
		AI:          config.AIConfig{Model: "gpt-4o", Timeout: time.Second, CacheTTL: time.Minute},
		Shop:        config.ShopConfig{FreeShippingThreshold: 10000, ShippingFee: 599},
		Admin:       config.AdminConfig{Email: "admin@example.com", Name: "Admin", Password: "admin-secret"},
	}
}

type client struct {
	t *testing.T
	e *echo.Echo
}

func (c client) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (c client) login(email, password string) string {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/login", "", map[string]string{"email": email, "password": password})
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[struct {
		Token string `json:"token"`
	}](c.t, rec).Token
}

func (c client) register(email, name string) string {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/register", "", map[string]string{
		"email": email, "name": name, "password": "secret1",
	})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[struct {
		Token string `json:"token"`
	}](c.t, rec).Token
}

func newClient(t *testing.T) (client, []model.Product) {
	t.Helper()
	ctx := logger.WithContext(context.Background(), logger.GetLogger())
	a, err := New(ctx, testConfig(), logger.GetLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.NoError(t, a.Migrate(ctx))
	require.NoError(t, a.Seed(ctx))

	c := client{t: t, e: a.Echo()}
	rec := c.do(http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return c, decode[[]model.Product](t, rec)
}

func titles(products []model.Product) []string {
	out := []string{}
	for _, p := range products {
		out = append(out, p.Title)
	}
	return out
}

func TestCatalogRoutes(t *testing.T) {
	c, products := newClient(t)
	require.Len(t, products, 6)

	rec := c.do(http.MethodGet, "/api/products?category=WOMEN&subCategory=Dresses", "", nil)
	assert.Equal(t, []string{"Summer Dress"}, titles(decode[[]model.Product](t, rec)))

	rec = c.do(http.MethodGet, "/api/products?search=cotton", "", nil)
	assert.Equal(t, []string{"Oversized Cotton Shirt", "Cotton Trousers"}, titles(decode[[]model.Product](t, rec)))

	rec = c.do(http.MethodGet, "/api/products/featured", "", nil)
	assert.Equal(t, []string{"Slim Fit Jeans", "Linen Blazer", "Summer Dress"}, titles(decode[[]model.Product](t, rec)))

	rec = c.do(http.MethodGet, "/api/products/new", "", nil)
	assert.Len(t, decode[[]model.Product](t, rec), 3)

	rec = c.do(http.MethodGet, "/api/products/sale", "", nil)
	assert.Len(t, decode[[]model.Product](t, rec), 5)

	rec = c.do(http.MethodGet, "/api/products/"+products[0].ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "Oversized Cotton Shirt", body["title"])
	assert.Equal(t, float64(21), body["discountPercent"])

	rec = c.do(http.MethodGet, "/api/products/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestCheckoutFlow(t *testing.T) {
	c, products := newClient(t)
	dress := products[5]
	token := c.register("ada@example.com", "Ada")

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/cart", "", nil).Code)

	rec := c.do(http.MethodPost, "/api/orders", token, map[string]interface{}{"shippingAddress": address()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, "/api/cart/add", token, map[string]interface{}{"productId": dress.ID, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for i := 0; i < 2; i++ {
		rec = c.do(http.MethodPost, "/api/cart/add", token, map[string]interface{}{
			"productId": dress.ID, "quantity": 1, "size": "M", "color": "Floral",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	cart := decode[model.Cart](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	rec = c.do(http.MethodGet, "/api/cart/summary", token, nil)
	summary := decode[struct {
		Subtotal    int64 `json:"subtotal"`
		ShippingFee int64 `json:"shippingFee"`
		Total       int64 `json:"total"`
	}](t, rec)
	assert.Equal(t, int64(15800), summary.Subtotal)
	assert.Zero(t, summary.ShippingFee)

	rec = c.do(http.MethodPost, "/api/orders", token, map[string]interface{}{
		"shippingAddress": map[string]string{"fullName": "Ada"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, "/api/orders", token, map[string]interface{}{"shippingAddress": address()})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[model.Order](t, rec)
	assert.Equal(t, model.OrderProcessing, order.Status)
	assert.Equal(t, int64(15800), order.TotalAmount)
	assert.Equal(t, "Summer Dress", order.Items[0].Title)

	rec = c.do(http.MethodGet, "/api/cart", token, nil)
	assert.Empty(t, decode[model.Cart](t, rec).Items)

	rec = c.do(http.MethodGet, "/api/orders", token, nil)
	assert.Len(t, decode[[]model.Order](t, rec), 1)

	other := c.register("grace@example.com", "Grace")
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodGet, "/api/orders/"+order.ID, other, nil).Code)
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodPost, "/api/orders/"+order.ID+"/cancel", other, nil).Code)

	admin := c.login("admin@example.com", "admin-secret")
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/orders/"+order.ID, admin, nil).Code)

	rec = c.do(http.MethodPut, "/api/orders/"+order.ID+"/status", token, map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = c.do(http.MethodPut, "/api/orders/"+order.ID+"/status", admin, map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, "/api/orders/"+order.ID+"/cancel", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func address() map[string]string {
	return map[string]string{
		"fullName": "Ada Lovelace", "streetAddress": "12 Analytical Way", "city": "London",
		"state": "LDN", "zipCode": "N1 1AA", "country": "UK",
	}
}

func TestWishlistAndReviews(t *testing.T) {
	c, products := newClient(t)
	token := c.register("ada@example.com", "Ada")
	jeans := products[1]

	rec := c.do(http.MethodPost, "/api/wishlist/toggle", token, map[string]string{"productId": jeans.ID})
	assert.Equal(t, []string{jeans.ID}, decode[model.Wishlist](t, rec).ProductIDs)
	rec = c.do(http.MethodPost, "/api/wishlist/toggle", token, map[string]string{"productId": jeans.ID})
	assert.Empty(t, decode[model.Wishlist](t, rec).ProductIDs)

	rec = c.do(http.MethodPost, "/api/reviews", token, map[string]interface{}{"productId": jeans.ID, "rating": 6})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, rating := range []int{4, 5} {
		rec = c.do(http.MethodPost, "/api/reviews", token, map[string]interface{}{
			"productId": jeans.ID, "rating": rating, "comment": "Fits well",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = c.do(http.MethodGet, "/api/products/"+jeans.ID, "", nil)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, 4.5, body["rating"])
	assert.Equal(t, float64(5), body["ratingRounded"])
	assert.Equal(t, float64(2), body["reviewCount"])

	rec = c.do(http.MethodGet, "/api/products/"+jeans.ID+"/reviews", "", nil)
	reviews := decode[[]model.Review](t, rec)
	require.Len(t, reviews, 2)
	assert.Equal(t, 5, reviews[0].Rating)
}

func TestAccountRoutes(t *testing.T) {
	c, _ := newClient(t)

	rec := c.do(http.MethodPost, "/api/register", "", map[string]string{"email": "bad", "name": "Ada", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	token := c.register("ada@example.com", "Ada")
	rec = c.do(http.MethodPost, "/api/register", "", map[string]string{"email": "ADA@example.com", "name": "Ada", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = c.do(http.MethodPost, "/api/login", "", map[string]string{"email": "ada@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodPost, "/api/login", "", map[string]string{"email": "ada@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "trendhive_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	rec = c.do(http.MethodGet, "/api/user", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "ada@example.com", user["email"])
	assert.NotContains(t, user, "passwordHash")

	assert.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/user", token, nil).Code)
}

func TestAdminCatalogEdits(t *testing.T) {
	c, products := newClient(t)
	user := c.register("ada@example.com", "Ada")
	admin := c.login("admin@example.com", "admin-secret")

	newProduct := map[string]interface{}{"title": "Wool Scarf", "price": 2900, "category": "accessories"}
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodPost, "/api/products", user, newProduct).Code)

	rec := c.do(http.MethodPost, "/api/products", admin, newProduct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Product](t, rec)

	rec = c.do(http.MethodPost, "/api/products", admin, map[string]interface{}{"title": "", "price": 100})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPut, "/api/products/"+created.ID, admin, map[string]interface{}{"title": "Wool Scarf", "price": 2500})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2500), decode[model.Product](t, rec).Price)

	assert.Equal(t, http.StatusOK, c.do(http.MethodDelete, "/api/products/"+created.ID, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodDelete, "/api/products/"+created.ID, admin, nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/products/"+products[0].ID, "", nil).Code)
}

func TestInsightAndTryOnRoutes(t *testing.T) {
	c, products := newClient(t)
	token := c.register("ada@example.com", "Ada")

	rec := c.do(http.MethodGet, "/api/trends", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(insight.SourceFallback), rec.Header().Get(handler.HeaderInsightSource))
	trends := decode[insight.TrendAnalysis](t, rec)
	assert.Equal(t, "women", trends.TrendingCategories[0])
	assert.NotEmpty(t, trends.Recommendations.ForInventory)

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/recommendations/personalized", "", nil).Code)
	rec = c.do(http.MethodGet, "/api/recommendations/personalized", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(insight.SourceFallback), rec.Header().Get(handler.HeaderInsightSource))
	recs := decode[[]insight.Recommendation](t, rec)
	assert.Len(t, recs, 5)

	rec = c.do(http.MethodPost, "/api/virtual-try-on", "", map[string]string{"imageBase64": "data:image/png;base64,AAAA"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = c.do(http.MethodPost, "/api/virtual-try-on", "", map[string]string{"productId": "missing", "imageBase64": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = c.do(http.MethodPost, "/api/virtual-try-on", "", map[string]string{"productId": products[2].ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, "/api/virtual-try-on", "", map[string]string{
		"productId": products[2].ID, "imageBase64": "data:image/png;base64,AAAA",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "data:image/png;base64,AAAA", body["imageUrl"])
	assert.NotEmpty(t, body["tryOnId"])
	assert.Equal(t, "Linen Blazer", body["product"].(map[string]interface{})["title"])
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	c, _ := newClient(t)

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/metrics", "", nil).Code)

	rec := c.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "Not Found"}`, rec.Body.String())
}
