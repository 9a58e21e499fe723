package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/fakeapi"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/api"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/observability"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/resilience"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/service"
)

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = orig })
}

func newTestApp(t *testing.T, input string) (*App, *bytes.Buffer, *fakeapi.Server) {
	t.Helper()
	fake, err := fakeapi.New(fakeapi.Options{JWTSecret: "cli-test-secret-0123456789abcdef", AdminPassword: "admin123"}, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	remote := api.NewClient(srv.Client(), srv.URL, resilience.Config{MaxConcurrency: 2}, nil, nil)
	out := &bytes.Buffer{}
	metrics, logger := observability.NewMetrics(), zap.NewNop()
	app := NewApp(Deps{
		Auth:       service.NewAuthService(remote, metrics, logger),
		Sales:      service.NewSalesService(remote, remote, metrics, logger),
		Blueprints: service.NewBlueprintService(remote, remote, nil, metrics, logger),
		Logger:     logger,
	}, strings.NewReader(input), out, 0)
	return app, out, fake
}

func TestRun_LoginThenListSales(t *testing.T) {
	stubPassword(t, "admin123")
	app, out, fake := newTestApp(t, "login\nadmin\nsales\nexit\n")
	fake.SeedSale(domain.SaleDraft{BranchID: 1, CustomerName: "Rosa Ibarra", PaymentMethod: "Efectivo", TotalAmount: 200, TotalMoneyEntries: 50, Status: domain.SaleInProduction})

	require.NoError(t, app.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "Bienvenido, admin!")
	assert.Contains(t, got, "Rosa Ibarra")
	assert.Contains(t, got, "En producción")
	assert.Contains(t, got, "$ 150.00")
}

func TestRun_WrongPasswordKeepsLoggedOut(t *testing.T) {
	stubPassword(t, "nope")
	app, out, _ := newTestApp(t, "login\nadmin\nsales\n")

	require.NoError(t, app.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "Invalid credentials")
	assert.Contains(t, got, domain.MsgSessionExpired)
	assert.False(t, app.sess.IsAuthenticated())
}

func TestExec_BlueprintsAndBranches(t *testing.T) {
	stubPassword(t, "admin123")
	app, out, fake := newTestApp(t, "admin\n")
	ctx := context.Background()

	assert.False(t, app.Exec(ctx, "login"))
	require.True(t, app.sess.IsAuthenticated())

	sale := fake.SeedSale(domain.SaleDraft{BranchID: 1, CustomerName: "Teo", PaymentMethod: "Efectivo", Status: domain.SaleInProduction})

	out.Reset()
	app.Exec(ctx, "blueprints")
	assert.Contains(t, out.String(), "Uso: blueprints")

	out.Reset()
	app.Exec(ctx, "blueprints abc")
	assert.Contains(t, out.String(), "Número de venta inválido.")

	out.Reset()
	app.Exec(ctx, "blueprints 1")
	assert.Equal(t, int64(1), sale.SaleID)
	assert.Contains(t, out.String(), "No se encontraron planos")

	out.Reset()
	app.Exec(ctx, "branches")
	assert.Contains(t, out.String(), "Casa Central")
	assert.Contains(t, out.String(), "Sucursal Norte")

	out.Reset()
	app.Exec(ctx, "logout")
	assert.False(t, app.sess.IsAuthenticated())

	assert.True(t, app.Exec(ctx, "exit"))
}

func TestExec_UnknownCommand(t *testing.T) {
	app, out, _ := newTestApp(t, "")
	app.Exec(context.Background(), "frobnicate")
	assert.Contains(t, out.String(), "Comando desconocido: frobnicate")
}

func TestExec_SaleDetailAndStatusChange(t *testing.T) {
	stubPassword(t, "admin123")
	app, out, fake := newTestApp(t, "admin\n")
	ctx := context.Background()
	require.False(t, app.Exec(ctx, "login"))

	fake.SeedSale(domain.SaleDraft{BranchID: 1, CustomerName: "Rosa Ibarra", Details: "Mesada", PaymentMethod: "Efectivo", TotalAmount: 200, TotalMoneyEntries: 50, Status: domain.SaleInProduction})

	out.Reset()
	app.Exec(ctx, "sale 1")
	assert.Contains(t, out.String(), "Rosa Ibarra")
	assert.Contains(t, out.String(), "$ 150.00")
	assert.Contains(t, out.String(), "En producción")

	out.Reset()
	app.Exec(ctx, "status 1 lost")
	assert.Contains(t, out.String(), "Estado inválido")

	out.Reset()
	app.Exec(ctx, "status 1 delivered")
	assert.Contains(t, out.String(), "Venta actualizada con éxito.")

	out.Reset()
	app.Exec(ctx, "sale 1")
	assert.Contains(t, out.String(), "Entregada")
	assert.Contains(t, out.String(), "Mesada", "fields other than the status survive the update")
	assert.Contains(t, out.String(), "$ 150.00")

	out.Reset()
	app.Exec(ctx, "sale 99")
	assert.Contains(t, out.String(), "Error:")
}

func TestExec_BlueprintDetail(t *testing.T) {
	stubPassword(t, "admin123")
	app, out, fake := newTestApp(t, "admin\n")
	ctx := context.Background()
	require.False(t, app.Exec(ctx, "login"))

	fake.SeedSale(domain.SaleDraft{BranchID: 1, CustomerName: "Teo", PaymentMethod: "Efectivo", Status: domain.SaleInProduction})
	created := app.blueprints.Create(ctx, app.sess, domain.BlueprintDraft{SaleID: 1, BlueprintCode: "PL-0007", Material: "Granito", Colour: "Negro"}, 1)
	require.True(t, created.Succeeded(), "%v", created.Err)

	out.Reset()
	app.Exec(ctx, "blueprint 1")
	assert.Contains(t, out.String(), "PL-0007")
	assert.Contains(t, out.String(), "Granito")

	out.Reset()
	app.Exec(ctx, "blueprint x")
	assert.Contains(t, out.String(), "Número de plano inválido.")
}
