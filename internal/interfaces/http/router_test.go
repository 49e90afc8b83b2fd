package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appanalytics "github.com/jhoicas/inventario-pos/internal/application/analytics"
	"github.com/jhoicas/inventario-pos/internal/application/auth"
	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/application/insight"
	"github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/application/sales"
	"github.com/jhoicas/inventario-pos/internal/application/usecase"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/excel"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/observability"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/inventario-pos/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type testServer struct {
	app    *fiber.App
	store  *memory.Store
	authUC *auth.AuthUseCase
}

// newTestServer arma la API completa sobre el store en memoria, sin IA configurada.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	metrics := observability.NewMetrics("test")
	log := zerolog.Nop()

	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{
		Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
	}).WithBcryptCost(bcrypt.MinCost)
	dashboardUC := appanalytics.NewDashboardUseCase(store.Analytics(), store.Movements(), appanalytics.Thresholds{LowStock: 5, ZombieDays: 30})

	app := apphttp.NewApp(apphttp.AppConfig{Name: "test"}, log, metrics)
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      authUC,
		UserUC:      usecase.NewUserUseCase(store.Users()),
		ProductUC:   usecase.NewProductUseCase(store, store.Products()),
		TicketUC:    usecase.NewTicketUseCase(store.Tickets()),
		AdjustStock: inventory.NewAdjustStockUseCase(store, store.Movements()),
		SaleProc:    sales.NewProcessor(store, metrics, log),
		SaleQuery: sales.NewQueryUseCase(store.Sales(), store.Products(), store.Users(),
			pdf.NewReceiptGenerator(), excel.NewSalesExporter()),
		DashboardUC: dashboardUC,
		ReportUC:    appanalytics.NewReportUseCase(store.Analytics()),
		Advisor:     insight.NewAdvisor(nil, cache.NewMemoryModelCache(), insight.Config{}, metrics, log),
		Metrics:     metrics.Handler(),
		ServiceName: "test",
		JWTSecret:   testJWTSecret,
	})
	return &testServer{app: app, store: store, authUC: authUC}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// signup registra y loguea una cuenta; devuelve el token.
func (s *testServer) signup(t *testing.T, email string) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: email, Password: "secreta123", FirstName: "Ana"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	return s.login(t, email)
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: "secreta123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[dto.LoginResponse](t, resp).Token
}

func (s *testServer) createProduct(t *testing.T, token, barcode string, stock int) dto.ProductResponse {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/products", token, map[string]any{
		"barcode": barcode, "name": "Producto " + barcode,
		"cost_price": "600", "sale_price": "1000", "stock": stock,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.ProductResponse](t, resp)
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth y perfil
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_RegistroLoginYPerfil(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "Ana@Tienda.cl")

	me := decode[dto.UserResponse](t, s.do(t, http.MethodGet, "/api/users/me", token, nil))
	assert.Equal(t, "ana@tienda.cl", me.Email)
	assert.Equal(t, "user", me.Role)

	phone := "+56 9 1234 5678"
	resp := s.do(t, http.MethodPut, "/api/users/me", token, dto.UpdateProfileRequest{Phone: &phone})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, phone, decode[dto.UserResponse](t, resp).Phone)
}

func TestAPI_RegistroDuplicado_409(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "ana@tienda.cl")

	resp := s.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: "ANA@tienda.cl", Password: "secreta123"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, dto.CodeDuplicate, decode[dto.ErrorResponse](t, resp).Code)
}

func TestAPI_RegistroInvalido_400(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: "no-es-email", Password: "corta"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, dto.CodeValidation, decode[dto.ErrorResponse](t, resp).Code)
}

func TestAPI_LoginPasswordIncorrecta_401(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "ana@tienda.cl")
	resp := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ana@tienda.cl", Password: "otra-clave"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_Venta_Exitosa(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "caja@tienda.cl")
	p := s.createProduct(t, token, "780001", 10)

	resp := s.do(t, http.MethodPost, "/api/sales", token, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 3}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sale := decode[dto.SaleResponse](t, resp)
	assert.Equal(t, "3000", sale.TotalAmount.String())
	assert.Equal(t, "Efectivo", sale.PaymentMethod)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, "600", sale.Items[0].CostPrice.String())

	got := decode[dto.ProductResponse](t, s.do(t, http.MethodGet, "/api/products/"+itoa(p.ID), token, nil))
	assert.Equal(t, 7, got.Stock)

	detail := s.do(t, http.MethodGet, "/api/sales/"+itoa(sale.ID), token, nil)
	assert.Equal(t, http.StatusOK, detail.StatusCode)
	detail.Body.Close()
}

func TestAPI_Venta_StockInsuficiente_409ConProducto(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "caja@tienda.cl")
	a := s.createProduct(t, token, "A", 10)
	b := s.createProduct(t, token, "B", 1)

	resp := s.do(t, http.MethodPost, "/api/sales", token, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: a.ID, Quantity: 2}, {ProductID: b.ID, Quantity: 5}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, dto.CodeInsufficientStock, body.Code)
	require.NotNil(t, body.ProductID)
	assert.Equal(t, b.ID, *body.ProductID)

	// Nada se aplicó: A conserva su stock.
	got := decode[dto.ProductResponse](t, s.do(t, http.MethodGet, "/api/products/"+itoa(a.ID), token, nil))
	assert.Equal(t, 10, got.Stock)
}

func TestAPI_Venta_ProductoDeOtroUsuario_404(t *testing.T) {
	s := newTestServer(t)
	owner := s.signup(t, "duena@tienda.cl")
	other := s.signup(t, "otro@tienda.cl")
	p := s.createProduct(t, owner, "X1", 5)

	resp := s.do(t, http.MethodPost, "/api/sales", other, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, dto.CodeNotFound, body.Code)
	require.NotNil(t, body.ProductID)
	assert.Equal(t, p.ID, *body.ProductID)
}

func TestAPI_Venta_SinItems_400(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "caja@tienda.cl")
	resp := s.do(t, http.MethodPost, "/api/sales", token, dto.CreateSaleRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, dto.CodeValidation, decode[dto.ErrorResponse](t, resp).Code)
}

func TestAPI_Venta_ComprobanteYExportacion(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "caja@tienda.cl")
	p := s.createProduct(t, token, "780002", 4)
	sale := decode[dto.SaleResponse](t, s.do(t, http.MethodPost, "/api/sales", token, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 1}}, PaymentMethod: "Débito",
	}))

	resp := s.do(t, http.MethodGet, "/api/sales/"+itoa(sale.ID)+"/receipt.pdf", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	resp = s.do(t, http.MethodGet, "/api/sales/export", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	raw, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, bytes.HasPrefix(raw, []byte("PK")), "xlsx es un zip")
}

func TestAPI_ListaVentas_FechaInvalida_400(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "caja@tienda.cl")
	resp := s.do(t, http.MethodGet, "/api/sales?from=01-02-2026", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

// ──────────────────────────────────────────────────────────────────────────────
// Inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_Ajuste_DecreaseMayorAlStock_409(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "bodega@tienda.cl")
	p := s.createProduct(t, token, "780003", 2)

	resp := s.do(t, http.MethodPost, "/api/inventory/adjust", token, dto.AdjustStockRequest{
		ProductID: p.ID, Type: "decrease", Quantity: 5,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, dto.CodeInsufficientStock, decode[dto.ErrorResponse](t, resp).Code)
}

func TestAPI_Ajuste_PorBarcodeYHistorial(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "bodega@tienda.cl")
	p := s.createProduct(t, token, "780004", 2)

	resp := s.do(t, http.MethodPost, "/api/inventory/adjust", token, dto.AdjustStockRequest{
		Barcode: "780004", Type: "increase", Quantity: 3,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	mov := decode[dto.MovementResponse](t, resp)
	assert.Equal(t, 5, mov.FinalStock)

	list := decode[dto.MovementListResponse](t, s.do(t, http.MethodGet, "/api/inventory/movements?product_id="+itoa(p.ID), token, nil))
	require.Len(t, list.Items, 2, "stock inicial (set) + increase")
	assert.Equal(t, "increase", list.Items[0].Type)
}

func TestAPI_Ajuste_TipoInvalido_400(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "bodega@tienda.cl")
	p := s.createProduct(t, token, "780005", 2)
	resp := s.do(t, http.MethodPost, "/api/inventory/adjust", token, map[string]any{"product_id": p.ID, "type": "clamp", "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

// ──────────────────────────────────────────────────────────────────────────────
// Insight, admin y transversales
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_Insight_SinConfigurar_503(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "duena@tienda.cl")
	resp := s.do(t, http.MethodPost, "/api/insights/analyze", token, dto.InsightRequest{AnalysisType: "general"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, insight.MsgNotConfigured, decode[dto.ErrorResponse](t, resp).Message)
}

func TestAPI_Admin_RequiereRolAdmin(t *testing.T) {
	s := newTestServer(t)
	userToken := s.signup(t, "user@tienda.cl")

	resp := s.do(t, http.MethodGet, "/api/admin/stats", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	_, err := s.authUC.RegisterAdmin(context.Background(), dto.RegisterRequest{Email: "admin@tienda.cl", Password: "secreta123"})
	require.NoError(t, err)
	adminToken := s.login(t, "admin@tienda.cl")

	s.createProduct(t, userToken, "780006", 3)
	stats := decode[dto.AdminStatsDTO](t, s.do(t, http.MethodGet, "/api/admin/stats", adminToken, nil))
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalProducts)
}

func TestAPI_Tickets_AltaYCierre(t *testing.T) {
	s := newTestServer(t)
	userToken := s.signup(t, "user@tienda.cl")
	_, err := s.authUC.RegisterAdmin(context.Background(), dto.RegisterRequest{Email: "admin@tienda.cl", Password: "secreta123"})
	require.NoError(t, err)
	adminToken := s.login(t, "admin@tienda.cl")

	resp := s.do(t, http.MethodPost, "/api/tickets", userToken, dto.CreateTicketRequest{Subject: "No imprime", Message: "El PDF sale vacío"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	ticket := decode[dto.TicketResponse](t, resp)

	resp = s.do(t, http.MethodPut, "/api/admin/tickets/"+itoa(ticket.ID)+"/close", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "closed", decode[dto.TicketResponse](t, resp).Status)

	resp = s.do(t, http.MethodPut, "/api/admin/tickets/"+itoa(ticket.ID)+"/close", adminToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	mine := decode[[]dto.TicketResponse](t, s.do(t, http.MethodGet, "/api/tickets/mine", userToken, nil))
	require.Len(t, mine, 1)
}

func TestAPI_HealthMetricsYRequestID(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(apphttp.HeaderRequestID, "req-123")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-123", resp.Header.Get(apphttp.HeaderRequestID))
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, strings.Contains(string(raw), "test_http_requests_total"))
}

func TestAPI_RutaInexistente_404JSON(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/no-existe", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, dto.CodeNotFound, decode[dto.ErrorResponse](t, resp).Code)
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestAPI_EliminarProducto_ConservaHistorial(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "bodega@tienda.cl")
	p := s.createProduct(t, token, "780010", 5)

	resp := s.do(t, http.MethodPost, "/api/inventory/adjust", token, dto.AdjustStockRequest{
		ProductID: p.ID, Type: "increase", Quantity: 3,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodDelete, "/api/products/"+itoa(p.ID), token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/products/"+itoa(p.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	list := decode[dto.MovementListResponse](t, s.do(t, http.MethodGet, "/api/inventory/movements?product_id="+itoa(p.ID), token, nil))
	assert.Len(t, list.Items, 2, "set inicial + increase siguen en el historial")

	// El código queda libre para un producto nuevo.
	again := s.createProduct(t, token, "780010", 1)
	assert.NotEqual(t, p.ID, again.ID)
}

func TestAPI_Producto_CamposMasLargosQueLaColumna_400(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "bodega@tienda.cl")

	resp := s.do(t, http.MethodPost, "/api/products", token, map[string]any{
		"barcode": strings.Repeat("7", 51), "name": "Yerba", "cost_price": "1", "sale_price": "2",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, dto.CodeValidation, decode[dto.ErrorResponse](t, resp).Code)

	resp = s.do(t, http.MethodPost, "/api/products", token, map[string]any{
		"barcode": "780011", "name": strings.Repeat("n", 101), "cost_price": "1", "sale_price": "2",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	p := s.createProduct(t, token, "780012", 0)
	resp = s.do(t, http.MethodPut, "/api/products/"+itoa(p.ID), token, map[string]any{"barcode": strings.Repeat("7", 51)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_Registro_CamposMasLargosQueLaColumna_400(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Email: "ana@tienda.cl", Password: "secreta123", FirstName: strings.Repeat("a", 61),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Email: strings.Repeat("a", 110) + "@tienda.cl", Password: "secreta123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_Ajuste_StockFueraDeRango_400(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "bodega@tienda.cl")
	p := s.createProduct(t, token, "780013", 10)

	resp := s.do(t, http.MethodPost, "/api/inventory/adjust", token, dto.AdjustStockRequest{
		ProductID: p.ID, Type: "increase", Quantity: math.MaxInt32,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, dto.CodeValidation, decode[dto.ErrorResponse](t, resp).Code)

	got := decode[dto.ProductResponse](t, s.do(t, http.MethodGet, "/api/products/"+itoa(p.ID), token, nil))
	assert.Equal(t, 10, got.Stock)
}
