package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/observability"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ConfirmWord must be typed verbatim before anything is deleted.
const ConfirmWord = "Borrar"

const (
	MsgNoSales          = "No se encontraron ventas"
	MsgSaleFailed       = "Error al procesar la venta."
	MsgConfirmMismatch  = "Escriba " + ConfirmWord + " para confirmar la eliminación."
	MsgSalesLoadFailed  = "Error al cargar las ventas."
	MsgBranchLoadFailed = "Error al cargar las sucursales."
)

// SalesService backs the sales screen.
type SalesService struct {
	sales    port.SalesAPI
	branches port.BranchAPI
	metrics  *observability.Metrics
	logger   *zap.Logger
}

func NewSalesService(sales port.SalesAPI, branches port.BranchAPI, metrics *observability.Metrics, logger *zap.Logger) *SalesService {
	return &SalesService{sales: sales, branches: branches, metrics: metrics, logger: logger}
}

// List returns every sale the session can see.
func (s *SalesService) List(ctx context.Context, sess *domain.Session) ([]domain.Sale, error) {
	ctx, span := tracer.Start(ctx, "SalesService.List")
	defer span.End()

	token, err := authorize(sess)
	if err != nil {
		return nil, err
	}
	return s.sales.ListSales(ctx, token)
}

// Search runs a free-text search; a blank term lists everything.
func (s *SalesService) Search(ctx context.Context, sess *domain.Session, term string) ([]domain.Sale, error) {
	ctx, span := tracer.Start(ctx, "SalesService.Search")
	defer span.End()

	term = strings.TrimSpace(term)
	if term == "" {
		return s.List(ctx, sess)
	}
	token, err := authorize(sess)
	if err != nil {
		return nil, err
	}
	return s.sales.SearchSales(ctx, token, term)
}

// Filter narrows the list; an empty filter lists everything.
func (s *SalesService) Filter(ctx context.Context, sess *domain.Session, f domain.SaleFilter) ([]domain.Sale, error) {
	ctx, span := tracer.Start(ctx, "SalesService.Filter")
	defer span.End()

	if err := f.Validate(); err != nil {
		return nil, err
	}
	if f.IsZero() {
		return s.List(ctx, sess)
	}
	token, err := authorize(sess)
	if err != nil {
		return nil, err
	}
	return s.sales.FilterSales(ctx, token, f)
}

func (s *SalesService) Get(ctx context.Context, sess *domain.Session, saleID int64) (*domain.Sale, error) {
	ctx, span := tracer.Start(ctx, "SalesService.Get")
	defer span.End()
	span.SetAttributes(attribute.Int64("sale.id", saleID))

	token, err := authorize(sess)
	if err != nil {
		return nil, err
	}
	return s.sales.GetSale(ctx, token, saleID)
}

// Branches feeds the branch selectors of the sales forms.
func (s *SalesService) Branches(ctx context.Context, sess *domain.Session) ([]domain.Branch, error) {
	ctx, span := tracer.Start(ctx, "SalesService.Branches")
	defer span.End()

	token, err := authorize(sess)
	if err != nil {
		return nil, err
	}
	return s.branches.ListBranches(ctx, token)
}

// Create registers a new sale. A draft without branch is booked on the
// session user's branch.
func (s *SalesService) Create(ctx context.Context, sess *domain.Session, d domain.SaleDraft) domain.Outcome[domain.Sale] {
	ctx, span := tracer.Start(ctx, "SalesService.Create")
	defer span.End()

	token, err := authorize(sess)
	if err != nil {
		return rejected[domain.Sale](s.metrics, "sale", domain.ActionCreate, err, MsgSaleFailed)
	}
	if d.BranchID == 0 {
		d.BranchID = sess.BranchID()
	}
	if d.Status == "" {
		d.Status = domain.SaleInProduction
	}

	return runAction(ctx, s.metrics, s.logger, s.spec(token, domain.ActionCreate, func(ctx context.Context) error {
		if err := d.Validate(); err != nil {
			return err
		}
		return s.sales.CreateSale(ctx, token, d)
	}))
}

func (s *SalesService) Update(ctx context.Context, sess *domain.Session, saleID int64, d domain.SaleDraft) domain.Outcome[domain.Sale] {
	ctx, span := tracer.Start(ctx, "SalesService.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("sale.id", saleID))

	token, err := authorize(sess)
	if err != nil {
		return rejected[domain.Sale](s.metrics, "sale", domain.ActionUpdate, err, MsgSaleFailed)
	}

	return runAction(ctx, s.metrics, s.logger, s.spec(token, domain.ActionUpdate, func(ctx context.Context) error {
		if err := d.Validate(); err != nil {
			return err
		}
		return s.sales.UpdateSale(ctx, token, saleID, d)
	}))
}

// Delete removes a sale once confirmation equals ConfirmWord exactly.
func (s *SalesService) Delete(ctx context.Context, sess *domain.Session, saleID int64, confirmation string) domain.Outcome[domain.Sale] {
	ctx, span := tracer.Start(ctx, "SalesService.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("sale.id", saleID))

	token, err := authorize(sess)
	if err != nil {
		return rejected[domain.Sale](s.metrics, "sale", domain.ActionDelete, err, MsgSaleFailed)
	}

	return runAction(ctx, s.metrics, s.logger, s.spec(token, domain.ActionDelete, func(ctx context.Context) error {
		if confirmation != ConfirmWord {
			return &domain.ErrValidation{Field: "confirmation", Message: MsgConfirmMismatch}
		}
		return s.sales.DeleteSale(ctx, token, saleID)
	}))
}

func (s *SalesService) spec(token string, kind domain.ActionKind, mutate func(context.Context) error) actionSpec[domain.Sale] {
	return actionSpec[domain.Sale]{
		entity:  "sale",
		kind:    kind,
		success: fmt.Sprintf("Venta %s con éxito.", kind.Verb()),
		failure: MsgSaleFailed,
		mutate:  mutate,
		refetch: func(ctx context.Context) ([]domain.Sale, error) {
			return s.sales.ListSales(ctx, token)
		},
	}
}
