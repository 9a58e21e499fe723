package service_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/port"
)

// --- Mocks ---

// mockAPI records every call by name and answers from its fields.
type mockAPI struct {
	mu    sync.Mutex
	calls map[string]int

	loginResult *port.LoginResult
	loginErr    error

	users      []domain.User
	sales      []domain.Sale
	blueprints []domain.Blueprint
	photos     []domain.BlueprintPhoto
	branches   []domain.Branch

	listErr     error
	mutateErr   error
	branchesErr error

	lastToken     string
	lastUpdate    domain.UserUpdate
	lastSaleDraft domain.SaleDraft
	lastFilter    domain.SaleFilter
	lastPhoto     domain.BlueprintPhoto
}

func newMockAPI() *mockAPI {
	return &mockAPI{calls: map[string]int{}}
}

func (m *mockAPI) hit(name, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
	if token != "" {
		m.lastToken = token
	}
}

func (m *mockAPI) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockAPI) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func (m *mockAPI) Login(_ context.Context, _, _ string) (*port.LoginResult, error) {
	m.hit("Login", "")
	return m.loginResult, m.loginErr
}

func (m *mockAPI) ListUsers(_ context.Context, token string) ([]domain.User, error) {
	m.hit("ListUsers", token)
	return m.users, m.listErr
}

func (m *mockAPI) CreateUser(_ context.Context, token string, _ domain.NewUser) error {
	m.hit("CreateUser", token)
	return m.mutateErr
}

func (m *mockAPI) UpdateUser(_ context.Context, token string, _ int64, u domain.UserUpdate) error {
	m.hit("UpdateUser", token)
	m.lastUpdate = u
	return m.mutateErr
}

func (m *mockAPI) DeleteUser(_ context.Context, token string, _ int64) error {
	m.hit("DeleteUser", token)
	return m.mutateErr
}

func (m *mockAPI) ListSales(_ context.Context, token string) ([]domain.Sale, error) {
	m.hit("ListSales", token)
	return m.sales, m.listErr
}

func (m *mockAPI) GetSale(_ context.Context, token string, id int64) (*domain.Sale, error) {
	m.hit("GetSale", token)
	for _, s := range m.sales {
		if s.SaleID == id {
			return &s, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "sale"}
}

func (m *mockAPI) SearchSales(_ context.Context, token, _ string) ([]domain.Sale, error) {
	m.hit("SearchSales", token)
	return m.sales, m.listErr
}

func (m *mockAPI) FilterSales(_ context.Context, token string, f domain.SaleFilter) ([]domain.Sale, error) {
	m.hit("FilterSales", token)
	m.lastFilter = f
	return m.sales, m.listErr
}

func (m *mockAPI) CreateSale(_ context.Context, token string, d domain.SaleDraft) error {
	m.hit("CreateSale", token)
	m.lastSaleDraft = d
	return m.mutateErr
}

func (m *mockAPI) UpdateSale(_ context.Context, token string, _ int64, d domain.SaleDraft) error {
	m.hit("UpdateSale", token)
	m.lastSaleDraft = d
	return m.mutateErr
}

func (m *mockAPI) DeleteSale(_ context.Context, token string, _ int64) error {
	m.hit("DeleteSale", token)
	return m.mutateErr
}

func (m *mockAPI) ListBlueprints(_ context.Context, token string) ([]domain.Blueprint, error) {
	m.hit("ListBlueprints", token)
	return m.blueprints, m.listErr
}

func (m *mockAPI) GetBlueprint(_ context.Context, token string, _ int64) (*domain.Blueprint, error) {
	m.hit("GetBlueprint", token)
	if len(m.blueprints) == 0 {
		return nil, &domain.ErrNotFound{Resource: "blueprint"}
	}
	return &m.blueprints[0], nil
}

func (m *mockAPI) ListBlueprintsBySale(_ context.Context, token string, _ int64) ([]domain.Blueprint, error) {
	m.hit("ListBlueprintsBySale", token)
	return m.blueprints, m.listErr
}

func (m *mockAPI) ListPhotosBySale(_ context.Context, token string, _ int64) ([]domain.BlueprintPhoto, error) {
	m.hit("ListPhotosBySale", token)
	return m.photos, m.listErr
}

func (m *mockAPI) CreateBlueprint(_ context.Context, token string, _ domain.BlueprintDraft) error {
	m.hit("CreateBlueprint", token)
	return m.mutateErr
}

func (m *mockAPI) UpdateBlueprint(_ context.Context, token string, _ int64, _ domain.BlueprintDraft) error {
	m.hit("UpdateBlueprint", token)
	return m.mutateErr
}

func (m *mockAPI) DeleteBlueprint(_ context.Context, token string, _ int64) error {
	m.hit("DeleteBlueprint", token)
	return m.mutateErr
}

func (m *mockAPI) AddBlueprintPhoto(_ context.Context, token string, p domain.BlueprintPhoto) error {
	m.hit("AddBlueprintPhoto", token)
	m.lastPhoto = p
	return m.mutateErr
}

func (m *mockAPI) ListBranches(_ context.Context, token string) ([]domain.Branch, error) {
	m.hit("ListBranches", token)
	return m.branches, m.branchesErr
}

type mockRates struct {
	rates map[string]*domain.CurrencyRate
	err   map[string]error
}

func (m *mockRates) GetRate(_ context.Context, code string) (*domain.CurrencyRate, error) {
	if err := m.err[code]; err != nil {
		return nil, err
	}
	return m.rates[code], nil
}

type mockPhotoStore struct {
	url  string
	err  error
	body string
}

func (m *mockPhotoStore) Put(_ context.Context, _ int64, _, _ string, body io.Reader) (string, error) {
	b, _ := io.ReadAll(body)
	m.body = string(b)
	return m.url, m.err
}

type mockRenderer struct {
	sale   domain.Sale
	branch *domain.Branch
}

func (m *mockRenderer) Render(w io.Writer, sale domain.Sale, branch *domain.Branch) error {
	m.sale = sale
	m.branch = branch
	_, err := io.WriteString(w, "%PDF-fake")
	return err
}

// --- Sessions ---

func sessionFor(user domain.User) *domain.Session {
	sess := domain.NewSession()
	if err := sess.Login(user, "tok-"+user.UserName); err != nil {
		panic(err)
	}
	return sess
}

func userSession() *domain.Session {
	return sessionFor(domain.User{UserID: 2, UserName: "vendedor", BranchID: 3})
}

func adminSession() *domain.Session {
	return sessionFor(domain.User{UserID: 1, UserName: "admin", BranchID: 1, IsAdmin: true})
}

func expiredSession() *domain.Session {
	claims := jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	if err != nil {
		panic(err)
	}
	sess := domain.NewSession()
	if err := sess.Login(domain.User{UserID: 9, UserName: "old"}, token); err != nil {
		panic(err)
	}
	return sess
}
