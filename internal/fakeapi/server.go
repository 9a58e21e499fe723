// Package fakeapi is an in-memory stand-in for the shop's remote REST API.
// It speaks the same envelope contract as the real backend and is used by
// cmd/fakeapi for local development and by the integration tests.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Options configure the fake.
type Options struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminPassword string
	// Branches seeded at start; defaults to two shops when empty.
	Branches []string
}

// Server is the fake remote API.
type Server struct {
	store      *store
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a fake seeded with the branches and an "admin" user.
func New(opts Options, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 8 * time.Hour
	}
	if len(opts.Branches) == 0 {
		opts.Branches = []string{"Casa Central", "Sucursal Norte"}
	}

	s := &Server{
		store:      newStore(time.Now),
		secret:     []byte(opts.JWTSecret),
		tokenTTL:   opts.TokenTTL,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger,
		now:        time.Now,
	}
	for _, name := range opts.Branches {
		s.store.addBranch(name)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), s.bcryptCost)
	if err != nil {
		return nil, err
	}
	s.store.addUser(domain.User{UserName: "admin", BranchID: 1, IsAdmin: true}, hash)
	return s, nil
}

// SeedUser adds a user directly; tests use it to get non-admin accounts.
func (s *Server) SeedUser(name, password string, branchID int64, admin bool) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return domain.User{}, err
	}
	return s.store.addUser(domain.User{UserName: name, BranchID: branchID, IsAdmin: domain.Flag(admin)}, hash), nil
}

// SeedSale adds a sale directly.
func (s *Server) SeedSale(d domain.SaleDraft) domain.Sale {
	return s.store.addSale(d)
}

// Handler returns the routes of the remote API contract.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(observability.ZapLoggerMiddleware(s.logger))
	r.Use(middleware.Recoverer)

	r.Post("/users/login", s.login)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)

		r.Get("/users", s.listUsers)
		r.Post("/users", s.createUser)
		r.Put("/users/{id}", s.updateUser)
		r.Delete("/users/{id}", s.deleteUser)

		r.Get("/branches", s.listBranches)

		r.Get("/sales", s.listSales)
		r.Post("/sales", s.createSale)
		r.Get("/sales/search/{term}", s.searchSales)
		r.Get("/sales/filter/{status}/{branch}/{complete}/{date}", s.filterSales)
		r.Get("/sales/{id}", s.getSale)
		r.Put("/sales/{id}", s.updateSale)
		r.Delete("/sales/{id}", s.deleteSale)

		r.Get("/blueprints", s.listBlueprints)
		r.Post("/blueprints", s.createBlueprint)
		r.Get("/blueprints/sales/photos/{saleId}", s.photosBySale)
		r.Get("/blueprints/sales/{saleId}", s.blueprintsBySale)
		r.Get("/blueprints/{id}", s.getBlueprint)
		r.Put("/blueprints/{id}", s.updateBlueprint)
		r.Delete("/blueprints/{id}", s.deleteBlueprint)
		r.Post("/blueprintPhotos", s.addPhoto)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusNotFound, "Ruta inexistente")
	})
	return r
}

// ============================================================
// Envelope helpers
// ============================================================

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Results any    `json:"results,omitempty"`
	Result  any    `json:"result,omitempty"`
	User    any    `json:"user,omitempty"`
	Token   string `json:"token,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

func done(w http.ResponseWriter, message string) {
	writeEnvelope(w, http.StatusOK, envelope{Success: true, Message: message})
}

// list always sends the results field, an empty array included.
func list[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	writeEnvelope(w, http.StatusOK, envelope{Success: true, Results: items})
}

func one(w http.ResponseWriter, item any) {
	writeEnvelope(w, http.StatusOK, envelope{Success: true, Result: item})
}

// rejectApp answers 200 with success=false, the way the backend reports
// business rule violations.
func rejectApp(w http.ResponseWriter, message string) {
	writeEnvelope(w, http.StatusOK, envelope{Success: false, Message: message})
}

func fail(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, envelope{Success: false, Message: message})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst); err != nil {
		fail(w, http.StatusBadRequest, "Cuerpo JSON inválido")
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		fail(w, http.StatusBadRequest, "Identificador inválido")
		return 0, false
	}
	return id, true
}
