package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GonzanDev/sellos-pro/internal/cart"
	"github.com/GonzanDev/sellos-pro/internal/cart/persistence"
	"github.com/GonzanDev/sellos-pro/internal/catalog/repository"
	"github.com/GonzanDev/sellos-pro/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type catalogMock struct {
	products map[int64]*domain.Product
}

func (m catalogMock) ListProducts(context.Context, string) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m catalogMock) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, repository.ErrProductNotFound
}

func testCatalog() catalogMock {
	return catalogMock{products: map[int64]*domain.Product{
		1: {ID: 1, Name: "Sello automático", Price: 8500, Category: "plain"},
		3: {ID: 3, Name: "Sello con logo", Price: 15800, Category: "logo-kit"},
	}}
}

func newCartHandler() *CartHandler {
	store := cart.NewStore(persistence.NewMemoryStore(), zap.NewNop())
	return NewCartHandler(store, testCatalog(), 5*time.Second)
}

func withSession(r *http.Request, sessionID string) *http.Request {
	ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
	return r.WithContext(ctx)
}

func decodeCart(t *testing.T, recorder *httptest.ResponseRecorder) CartResponse {
	t.Helper()
	var resp CartResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	return resp
}

func TestAddLine_CreatesLine(t *testing.T) {
	handler := newCartHandler()

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/api/v1/cart/lines",
		strings.NewReader(`{"product_id":1,"quantity":2,"customization":{"text":"ACME"}}`)), "s1")

	handler.AddLine(recorder, request)

	require.Equal(t, http.StatusCreated, recorder.Code)
	resp := decodeCart(t, recorder)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 17000.0, resp.Total)
	assert.True(t, resp.Open)
}

func TestAddLine_MergesEquivalentRequests(t *testing.T) {
	handler := newCartHandler()

	for i := 0; i < 3; i++ {
		recorder := httptest.NewRecorder()
		request := withSession(httptest.NewRequest("POST", "/api/v1/cart/lines",
			strings.NewReader(`{"product_id":1,"quantity":1,"customization":{"text":"ACME","note":""}}`)), "s1")
		handler.AddLine(recorder, request)
		require.Equal(t, http.StatusCreated, recorder.Code)
	}

	recorder := httptest.NewRecorder()
	handler.Get(recorder, withSession(httptest.NewRequest("GET", "/api/v1/cart", nil), "s1"))

	resp := decodeCart(t, recorder)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 3, resp.Count)
}

func TestAddLine_UnknownProduct(t *testing.T) {
	handler := newCartHandler()

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/api/v1/cart/lines",
		strings.NewReader(`{"product_id":99,"quantity":1}`)), "s1")

	handler.AddLine(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestAddLine_InvalidCustomization(t *testing.T) {
	handler := newCartHandler()

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/api/v1/cart/lines",
		strings.NewReader(`{"product_id":3,"quantity":1,"customization":{"logo":""}}`)), "s1")

	handler.AddLine(recorder, request)

	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Contains(t, resp.Fields, "logo")
}

func TestAddLine_InvalidBody(t *testing.T) {
	handler := newCartHandler()

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/api/v1/cart/lines",
		strings.NewReader(`{broken`)), "s1")

	handler.AddLine(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestUpdateLine_QuantityZeroRemovesLine(t *testing.T) {
	handler := newCartHandler()

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/api/v1/cart/lines",
		strings.NewReader(`{"product_id":1,"quantity":2,"customization":{"text":"ACME"}}`)), "s1")
	handler.AddLine(recorder, request)
	resp := decodeCart(t, recorder)
	lineID := resp.Lines[0].LineID

	recorder = httptest.NewRecorder()
	request = withSession(httptest.NewRequest("PUT", "/api/v1/cart/lines/"+lineID,
		strings.NewReader(`{"quantity":0}`)), "s1")
	request = withURLParam(request, "lineID", lineID)
	handler.UpdateLine(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	resp = decodeCart(t, recorder)
	assert.Empty(t, resp.Lines)
	assert.Equal(t, 0, resp.Count)
}

func TestUpdateLine_ReplaceCustomization(t *testing.T) {
	handler := newCartHandler()

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/api/v1/cart/lines",
		strings.NewReader(`{"product_id":1,"quantity":2,"customization":{"text":"ACME"}}`)), "s1")
	handler.AddLine(recorder, request)
	resp := decodeCart(t, recorder)
	lineID := resp.Lines[0].LineID

	recorder = httptest.NewRecorder()
	request = withSession(httptest.NewRequest("PUT", "/api/v1/cart/lines/"+lineID,
		strings.NewReader(`{"customization":{"text":"ACME SRL"}}`)), "s1")
	request = withURLParam(request, "lineID", lineID)
	handler.UpdateLine(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	resp = decodeCart(t, recorder)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, lineID, resp.Lines[0].LineID)
	assert.Equal(t, "ACME SRL", resp.Lines[0].Customization["text"])
}

func TestRemoveLine_UnknownLineIsOK(t *testing.T) {
	handler := newCartHandler()

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("DELETE", "/api/v1/cart/lines/none", nil), "s1")
	request = withURLParam(request, "lineID", "none")

	handler.RemoveLine(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestClear_EmptiesCart(t *testing.T) {
	handler := newCartHandler()

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/api/v1/cart/lines",
		strings.NewReader(`{"product_id":1,"quantity":2,"customization":{"text":"ACME"}}`)), "s1")
	handler.AddLine(recorder, request)

	recorder = httptest.NewRecorder()
	handler.Clear(recorder, withSession(httptest.NewRequest("DELETE", "/api/v1/cart", nil), "s1"))

	require.Equal(t, http.StatusOK, recorder.Code)
	resp := decodeCart(t, recorder)
	assert.Empty(t, resp.Lines)
}
