// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the service layer
// from the remote API client, storage and rendering adapters.
package port

import (
	"context"
	"io"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
)

// LoginResult is what the remote API hands back on a successful login.
type LoginResult struct {
	User    domain.User
	Token   string
	Message string
}

// UserAPI covers /users on the remote API.
type UserAPI interface {
	Login(ctx context.Context, name, password string) (*LoginResult, error)
	ListUsers(ctx context.Context, token string) ([]domain.User, error)
	CreateUser(ctx context.Context, token string, u domain.NewUser) error
	UpdateUser(ctx context.Context, token string, userID int64, u domain.UserUpdate) error
	DeleteUser(ctx context.Context, token string, userID int64) error
}

// SalesAPI covers /sales on the remote API.
type SalesAPI interface {
	ListSales(ctx context.Context, token string) ([]domain.Sale, error)
	GetSale(ctx context.Context, token string, saleID int64) (*domain.Sale, error)
	SearchSales(ctx context.Context, token, term string) ([]domain.Sale, error)
	FilterSales(ctx context.Context, token string, f domain.SaleFilter) ([]domain.Sale, error)
	CreateSale(ctx context.Context, token string, d domain.SaleDraft) error
	UpdateSale(ctx context.Context, token string, saleID int64, d domain.SaleDraft) error
	DeleteSale(ctx context.Context, token string, saleID int64) error
}

// BlueprintAPI covers /blueprints and /blueprintPhotos on the remote API.
type BlueprintAPI interface {
	ListBlueprints(ctx context.Context, token string) ([]domain.Blueprint, error)
	GetBlueprint(ctx context.Context, token string, blueprintID int64) (*domain.Blueprint, error)
	ListBlueprintsBySale(ctx context.Context, token string, saleID int64) ([]domain.Blueprint, error)
	ListPhotosBySale(ctx context.Context, token string, saleID int64) ([]domain.BlueprintPhoto, error)
	CreateBlueprint(ctx context.Context, token string, d domain.BlueprintDraft) error
	UpdateBlueprint(ctx context.Context, token string, blueprintID int64, d domain.BlueprintDraft) error
	DeleteBlueprint(ctx context.Context, token string, blueprintID int64) error
	AddBlueprintPhoto(ctx context.Context, token string, p domain.BlueprintPhoto) error
}

// BranchAPI covers /branches on the remote API.
type BranchAPI interface {
	ListBranches(ctx context.Context, token string) ([]domain.Branch, error)
}

// RatesFetcher retrieves one currency rate by its code (e.g. "oficial").
type RatesFetcher interface {
	GetRate(ctx context.Context, code string) (*domain.CurrencyRate, error)
}

// PhotoStore persists uploaded blueprint photos and returns their public URL.
type PhotoStore interface {
	Put(ctx context.Context, saleID int64, filename, contentType string, body io.Reader) (string, error)
}

// ReceiptRenderer draws a sale receipt.
type ReceiptRenderer interface {
	Render(w io.Writer, sale domain.Sale, branch *domain.Branch) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
