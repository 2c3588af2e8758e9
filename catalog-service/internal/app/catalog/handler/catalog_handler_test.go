package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/pricing"
	"storefront/catalog-service/internal/app/catalog/service"
	"storefront/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) GetAllCategories(ctx context.Context) ([]entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCatalogService) GetProductPricing(ctx context.Context, id string) (*entity.ProductPricingResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductPricingResponse), args.Error(1)
}

func (m *MockCatalogService) UpdateProductPricing(ctx context.Context, id string, raw map[string]any) (*entity.ProductPricingResponse, error) {
	args := m.Called(ctx, id, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductPricingResponse), args.Error(1)
}

type MockCategoryAssigner struct {
	mock.Mock
}

func (m *MockCategoryAssigner) AssignCategoryToProducts(ctx context.Context, input entity.CategoryInput, productIDs []string) (*entity.AssignmentReport, error) {
	args := m.Called(ctx, input, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AssignmentReport), args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter() (*gin.Engine, *MockCatalogService, *MockCategoryAssigner) {
	catalogSvc := new(MockCatalogService)
	assigner := new(MockCategoryAssigner)
	router := SetupRoutes(NewCatalogHandler(catalogSvc, assigner), auth.NewMiddleware(testSecret))
	return router, catalogSvc, assigner
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	claims := auth.Claims{
		UserID:   "user-1",
		RoleName: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doRequest(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router, _, _ := setupRouter()

	w := doRequest(router, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "catalog-service")
}

func TestAssignCategory_PartialSuccessIsCreated(t *testing.T) {
	router, _, assigner := setupRouter()

	report := entity.NewAssignmentReport("cat-acc", []entity.AssignmentOutcome{
		{ProductID: "p1", Status: entity.AssignmentSuccess},
		{ProductID: "p2", Status: entity.AssignmentFailed, ErrorDetail: "product not found"},
		{ProductID: "p3", Status: entity.AssignmentSkippedAlreadyMember},
	})
	assigner.On("AssignCategoryToProducts", mock.Anything,
		entity.CategoryInput{CategoryName: "Accessories"}, []string{"p1", "p2", "p3"}).
		Return(report, nil)

	w := doRequest(router, http.MethodPost, "/categories/assignments", signToken(t, auth.RoleManager),
		map[string]any{"category_name": "Accessories", "product_ids": []string{"p1", "p2", "p3"}})

	require.Equal(t, http.StatusCreated, w.Code)
	var resp entity.AssignmentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Partial)
	assert.Equal(t, 1, resp.Report.SuccessCount)
	assert.Equal(t, 1, resp.Report.SkippedCount)
	assert.Equal(t, 1, resp.Report.FailedCount)
	assert.Equal(t, "p2", resp.Report.Failures[0].ProductID)
	assert.Equal(t, "product not found", resp.Report.Failures[0].ErrorDetail)
}

func TestAssignCategory_MissingNameIsBadRequest(t *testing.T) {
	router, _, assigner := setupRouter()

	w := doRequest(router, http.MethodPost, "/categories/assignments", signToken(t, auth.RoleAdmin),
		map[string]any{"product_ids": []string{"p1"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assigner.AssertNotCalled(t, "AssignCategoryToProducts", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignCategory_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", service.ErrValidation, http.StatusBadRequest},
		{"creation", errors.Join(service.ErrCategoryCreation, errors.New("db down")), http.StatusBadGateway},
		{"invariant", service.ErrInvariantViolation, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _, assigner := setupRouter()
			assigner.On("AssignCategoryToProducts", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			w := doRequest(router, http.MethodPost, "/categories/assignments", signToken(t, auth.RoleAdmin),
				map[string]any{"category_name": " x ", "product_ids": []string{}})

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAssignCategory_CustomerForbidden(t *testing.T) {
	router, _, _ := setupRouter()

	w := doRequest(router, http.MethodPost, "/categories/assignments", signToken(t, auth.RoleCustomer),
		map[string]any{"category_name": "Accessories"})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetAllCategories_RequiresToken(t *testing.T) {
	router, _, _ := setupRouter()

	w := doRequest(router, http.MethodGet, "/categories", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetAllCategories(t *testing.T) {
	router, catalogSvc, _ := setupRouter()
	catalogSvc.On("GetAllCategories", mock.Anything).Return([]entity.Category{{ID: "c1", Name: "Кофе"}}, nil)

	w := doRequest(router, http.MethodGet, "/categories", signToken(t, auth.RoleCustomer), nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp entity.CategoryListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
}

func TestGetProductPricing_NotFound(t *testing.T) {
	router, catalogSvc, _ := setupRouter()
	catalogSvc.On("GetProductPricing", mock.Anything, "p404").Return(nil, service.ErrProductNotFound)

	w := doRequest(router, http.MethodGet, "/products/p404/pricing", signToken(t, auth.RoleCustomer), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProductPricing_StoredDataInvalid(t *testing.T) {
	router, catalogSvc, _ := setupRouter()
	catalogSvc.On("GetProductPricing", mock.Anything, "p1").
		Return(nil, fmt.Errorf("%w: discount 20 exceeds price 10", pricing.ErrInvalidInput))

	w := doRequest(router, http.MethodGet, "/products/p1/pricing", signToken(t, auth.RoleCustomer), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUpdateProductPricing_PassesRawNumbers(t *testing.T) {
	router, catalogSvc, _ := setupRouter()

	expectedRaw := map[string]any{"price": json.Number("80"), "discount": "10"}
	catalogSvc.On("UpdateProductPricing", mock.Anything, "p1", expectedRaw).
		Return(&entity.ProductPricingResponse{Pricing: entity.PricingQuote{FinalPrice: 70}}, nil)

	w := doRequest(router, http.MethodPatch, "/products/p1/pricing", signToken(t, auth.RoleManager),
		map[string]any{"price": 80, "discount": "10"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"final_price":70`)
}

func TestUpdateProductPricing_InvalidBody(t *testing.T) {
	router, _, _ := setupRouter()

	w := doRequest(router, http.MethodPatch, "/products/p1/pricing", signToken(t, auth.RoleManager), []int{1, 2})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProductPricing_ValidationError(t *testing.T) {
	router, catalogSvc, _ := setupRouter()
	catalogSvc.On("UpdateProductPricing", mock.Anything, "p1", mock.Anything).Return(nil, service.ErrValidation)

	w := doRequest(router, http.MethodPatch, "/products/p1/pricing", signToken(t, auth.RoleAdmin),
		map[string]any{"discount": 500})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
