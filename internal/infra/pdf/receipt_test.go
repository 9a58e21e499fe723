package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
)

func TestRender_WritesPDF(t *testing.T) {
	r := &ReceiptRenderer{now: func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }}
	sale := domain.Sale{
		SaleID:            31,
		BranchID:          2,
		CustomerName:      "Ana Perez",
		Details:           "Mesada de granito gris mara 2,40 x 0,60 con bacha",
		PaymentMethod:     "Efectivo",
		TotalAmount:       250000,
		TotalMoneyEntries: 100000,
		Status:            domain.SaleInProduction,
	}

	var buf bytes.Buffer
	err := r.Render(&buf, sale, &domain.Branch{BranchID: 2, BranchName: "Centro"})
	require.NoError(t, err)

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "Ana Perez")
	assert.Contains(t, string(out), "$ 150000.00")
	assert.Contains(t, string(out), "Centro")
}

func TestRender_WithoutBranch(t *testing.T) {
	r := NewReceiptRenderer()

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, domain.Sale{SaleID: 1, CustomerName: "X"}, nil))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
