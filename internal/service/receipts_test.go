package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/service"

	"go.uber.org/zap"
)

func TestReceipt_RendersWithBranch(t *testing.T) {
	api := newMockAPI()
	api.sales = []domain.Sale{{SaleID: 3, BranchID: 2, CustomerName: "Eva"}}
	api.branches = []domain.Branch{{BranchID: 1, BranchName: "Norte"}, {BranchID: 2, BranchName: "Centro"}}
	r := &mockRenderer{}

	var buf bytes.Buffer
	err := service.NewReceiptService(api, api, r, zap.NewNop()).Render(context.Background(), userSession(), 3, &buf)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if r.sale.CustomerName != "Eva" || r.branch == nil || r.branch.BranchName != "Centro" {
		t.Errorf("unexpected render input %+v / %+v", r.sale, r.branch)
	}
	if buf.String() != "%PDF-fake" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestReceipt_BranchesUnavailable(t *testing.T) {
	api := newMockAPI()
	api.sales = []domain.Sale{{SaleID: 3, BranchID: 2}}
	api.branchesErr = errors.New("boom")
	r := &mockRenderer{}

	var buf bytes.Buffer
	if err := service.NewReceiptService(api, api, r, zap.NewNop()).Render(context.Background(), userSession(), 3, &buf); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if r.branch != nil {
		t.Errorf("expected nil branch, got %+v", r.branch)
	}
}

func TestReceipt_UnknownSale(t *testing.T) {
	api := newMockAPI()

	var buf bytes.Buffer
	err := service.NewReceiptService(api, api, &mockRenderer{}, zap.NewNop()).Render(context.Background(), userSession(), 42, &buf)

	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if buf.Len() != 0 {
		t.Error("nothing must be written for an unknown sale")
	}
}
