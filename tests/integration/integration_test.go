package integration_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/fakeapi"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/handler"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/api"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/observability"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/pdf"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/resilience"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/session"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/service"
)

type browser struct {
	t      *testing.T
	client *http.Client
	base   string
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.PostForm(b.base+path, form)
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

// startStack runs the fake remote API and the BFF in front of it, wired the
// way cmd/verona wires them.
func startStack(t *testing.T) *browser {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	fake, err := fakeapi.New(fakeapi.Options{JWTSecret: "integration-secret-0123456789abcdef", AdminPassword: "admin123"}, logger)
	require.NoError(t, err)
	upstream := httptest.NewServer(fake.Handler())
	t.Cleanup(upstream.Close)

	remote := api.NewClient(&http.Client{Timeout: 5 * time.Second}, upstream.URL,
		resilience.Config{MaxRetries: 1, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 10}, logger, metrics)

	sessions := session.NewStore(session.Options{Secret: "integration-session-secret-0123456789", TTL: time.Hour}, metrics, logger)
	t.Cleanup(sessions.Close)
	views := handler.NewViews(time.Hour)
	t.Cleanup(views.Close)

	router := handler.NewRouter(handler.Deps{
		Sessions:   sessions,
		Views:      views,
		Auth:       service.NewAuthService(remote, metrics, logger),
		Sales:      service.NewSalesService(remote, remote, metrics, logger),
		Blueprints: service.NewBlueprintService(remote, remote, nil, metrics, logger),
		Users:      service.NewUserAdminService(remote, remote, metrics, logger),
		Dashboard:  service.NewDashboardService(nil, nil, logger),
		Receipts:   service.NewReceiptService(remote, remote, pdf.NewReceiptRenderer(), logger),
		Metrics:    metrics,
		Logger:     logger,
	})
	bff := httptest.NewServer(router)
	t.Cleanup(bff.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, client: &http.Client{Jar: jar, Timeout: 10 * time.Second}, base: bff.URL}
}

func TestIntegration_BackOfficeFlow(t *testing.T) {
	b := startStack(t)

	// --- Guarded screens bounce to login ---
	resp, body := b.get("/sales")
	assert.Equal(t, "/login", resp.Request.URL.Path)
	assert.Contains(t, body, "Iniciar sesión")

	// --- Wrong password ---
	resp, body = b.post("/login", url.Values{"name": {"admin"}, "password": {"nope"}})
	assert.Equal(t, "/login", resp.Request.URL.Path)
	assert.Contains(t, body, "Invalid credentials")

	// --- Login ---
	resp, body = b.post("/login", url.Values{"name": {"admin"}, "password": {"admin123"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Request.URL.Path)
	assert.Contains(t, body, "Bienvenido, admin!")

	// --- Empty list ---
	_, body = b.get("/sales")
	assert.Contains(t, body, service.MsgNoSales)

	// --- Create a sale ---
	_, body = b.post("/sales", url.Values{
		"customer_name":       {"Julieta Ramos"},
		"details":             {"Mesada de granito gris"},
		"payment_method":      {"Efectivo"},
		"phone_number":        {"3415551234"},
		"status":              {"in_production"},
		"branch_id":           {"1"},
		"total_amount":        {"2500,50"},
		"total_money_entries": {"1000"},
	})
	assert.Contains(t, body, "Venta creada con éxito.")
	assert.Contains(t, body, "Julieta Ramos")

	// --- Business rule rejection keeps the list ---
	_, body = b.post("/sales", url.Values{
		"customer_name":  {"Sin Sucursal"},
		"payment_method": {"Efectivo"},
		"status":         {"in_production"},
		"branch_id":      {"99"},
		"total_amount":   {"10"},
	})
	assert.Contains(t, body, "Sucursal inexistente")
	assert.Contains(t, body, "Julieta Ramos")

	// --- Search and filter ---
	_, body = b.get("/sales?q=granito")
	assert.Contains(t, body, "Julieta Ramos")
	_, body = b.get("/sales?q=marmol")
	assert.Contains(t, body, service.MsgNoSales)
	_, body = b.get("/sales?status=delivered")
	assert.Contains(t, body, service.MsgNoSales)
	_, body = b.get("/sales?complete=false")
	assert.Contains(t, body, "Julieta Ramos")

	// --- Receipt ---
	resp, body = b.get("/sales/1/receipt.pdf")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "%PDF-"))

	// --- Blueprint and photo ---
	_, body = b.post("/blueprints", url.Values{
		"scope":          {"1"},
		"sale_id":        {"1"},
		"blueprint_code": {"PL-0001"},
		"material":       {"Granito"},
		"colour":         {"Gris mara"},
		"status":         {"pendiente"},
	})
	assert.Contains(t, body, "Plano creado con éxito.")
	assert.Contains(t, body, "PL-0001")

	_, body = b.post("/blueprints/photos", url.Values{
		"blueprint_id": {"1"},
		"sale_id":      {"1"},
		"photo_url":    {"https://fotos.verona.test/pl-0001.jpg"},
	})
	assert.Contains(t, body, service.MsgPhotoAdded)
	assert.Contains(t, body, "https://fotos.verona.test/pl-0001.jpg")

	// --- Delete needs the exact confirmation ---
	_, body = b.post("/sales/1/delete", url.Values{"confirm": {"borrar"}})
	assert.Contains(t, body, service.MsgConfirmMismatch)
	assert.Contains(t, body, "Julieta Ramos")

	_, body = b.post("/sales/1/delete", url.Values{"confirm": {service.ConfirmWord}})
	assert.Contains(t, body, "Venta eliminada con éxito.")
	assert.Contains(t, body, service.MsgNoSales)

	// --- Users are admin-only, and admin sees them ---
	_, body = b.get("/users")
	assert.Contains(t, body, "Gestión de Usuarios")

	// --- Logout ---
	resp, _ = b.post("/logout", nil)
	assert.Equal(t, "/login", resp.Request.URL.Path)
	resp, _ = b.get("/dashboard")
	assert.Equal(t, "/login", resp.Request.URL.Path)
}

func TestIntegration_NonAdminCannotManageUsers(t *testing.T) {
	b := startStack(t)

	_, body := b.post("/login", url.Values{"name": {"admin"}, "password": {"admin123"}})
	require.Contains(t, body, "Bienvenido, admin!")

	_, body = b.post("/users", url.Values{"user_name": {"sofia"}, "password": {"clave1"}, "branch_id": {"2"}})
	assert.Contains(t, body, "sofia")

	b.post("/logout", nil)
	_, body = b.post("/login", url.Values{"name": {"sofia"}, "password": {"clave1"}})
	require.Contains(t, body, "Bienvenido, sofia!")
	assert.NotContains(t, body, `href="/users"`)

	resp, _ := b.get("/users")
	assert.Equal(t, "/dashboard", resp.Request.URL.Path)
}

func TestIntegration_OperationalEndpoints(t *testing.T) {
	b := startStack(t)

	resp, body := b.get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "healthy")

	resp, body = b.get("/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "verona_active_sessions")
}
