package service

import (
	"context"
	"fmt"
	"io"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ReceiptService renders a printable receipt for a sale.
type ReceiptService struct {
	sales    port.SalesAPI
	branches port.BranchAPI
	renderer port.ReceiptRenderer
	logger   *zap.Logger
}

func NewReceiptService(sales port.SalesAPI, branches port.BranchAPI, renderer port.ReceiptRenderer, logger *zap.Logger) *ReceiptService {
	return &ReceiptService{sales: sales, branches: branches, renderer: renderer, logger: logger}
}

// Render writes the receipt of saleID to w. The branch name is best effort;
// the receipt falls back to the branch number when branches cannot load.
func (s *ReceiptService) Render(ctx context.Context, sess *domain.Session, saleID int64, w io.Writer) error {
	ctx, span := tracer.Start(ctx, "ReceiptService.Render")
	defer span.End()
	span.SetAttributes(attribute.Int64("sale.id", saleID))

	token, err := authorize(sess)
	if err != nil {
		return err
	}

	sale, err := s.sales.GetSale(ctx, token, saleID)
	if err != nil {
		return fmt.Errorf("receipt sale %d: %w", saleID, err)
	}

	var branch *domain.Branch
	if branches, err := s.branches.ListBranches(ctx, token); err != nil {
		s.logger.Warn("receipt: branches unavailable", zap.Error(err))
	} else {
		for i := range branches {
			if branches[i].BranchID == sale.BranchID {
				branch = &branches[i]
				break
			}
		}
	}

	return s.renderer.Render(w, *sale, branch)
}
