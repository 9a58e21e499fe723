package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
)

func TestUser_AdminFlagEncodings(t *testing.T) {
	for raw, want := range map[string]bool{
		`{"is_adm":true}`:    true,
		`{"is_adm":1}`:       true,
		`{"is_adm":"1"}`:     true,
		`{"is_adm":2}`:       true,
		`{"is_adm":"S"}`:     true,
		`{"is_adm":"TRUE"}`:  true,
		`{"is_adm":0}`:       false,
		`{"is_adm":"0"}`:     false,
		`{"is_adm":""}`:      false,
		`{"is_adm":"false"}`: false,
		`{"is_adm":false}`:   false,
		`{"is_adm":null}`:    false,
		`{}`:                 false,
	} {
		var u domain.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
		if bool(u.IsAdmin) != want {
			t.Errorf("%s: expected %v", raw, want)
		}
	}
}

func TestSaleFilter_Segments(t *testing.T) {
	tests := []struct {
		f    domain.SaleFilter
		want [4]string
	}{
		{domain.SaleFilter{}, [4]string{"all", "all", "all", "all"}},
		{domain.SaleFilter{BranchID: 2, Date: "2024-01-31"}, [4]string{"all", "2", "all", "2024-01-31"}},
		{domain.SaleFilter{Status: domain.SaleDelivered, CompletePayment: domain.PaymentPending}, [4]string{"delivered", "all", "false", "all"}},
	}
	for _, tt := range tests {
		if got := tt.f.Segments(); got != tt.want {
			t.Errorf("%+v: expected %v, got %v", tt.f, tt.want, got)
		}
	}
}

func TestSaleFilter_Validate(t *testing.T) {
	bad := []domain.SaleFilter{
		{Status: "lost"},
		{CompletePayment: "maybe"},
		{Date: "31-01-2024"},
	}
	for _, f := range bad {
		var v *domain.ErrValidation
		if !errors.As(f.Validate(), &v) {
			t.Errorf("%+v: expected validation error", f)
		}
	}
	if err := (domain.SaleFilter{Status: domain.SaleSuspended, Date: "2024-02-29"}).Validate(); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestSaleStatus_Labels(t *testing.T) {
	for _, s := range domain.SaleStatuses {
		if !s.Valid() || s.Label() == string(s) {
			t.Errorf("%s needs a label", s)
		}
	}
}

func TestSale_Balance(t *testing.T) {
	s := domain.Sale{TotalAmount: 1000, TotalMoneyEntries: 400}
	if s.Balance() != 600 || s.FullyPaid() {
		t.Errorf("unexpected balance %v", s.Balance())
	}
	s.TotalMoneyEntries = 1000
	if !s.FullyPaid() {
		t.Error("expected fully paid")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&domain.ErrApplication{Message: "m"}, "m"},
		{&domain.ErrApplication{}, "fb"},
		{&domain.ErrHTTPStatus{Status: 500}, "fb"},
		{&domain.ErrMalformed{}, "fb"},
		{&domain.ErrNetwork{Err: errors.New("x")}, domain.MsgConnectionFailed},
		{&domain.ErrCircuitOpen{Service: "api"}, domain.MsgServiceDown},
		{&domain.ErrValidation{Message: "v"}, "v"},
		{&domain.ErrForbidden{}, domain.MsgForbidden},
		{errors.New("other"), "fb"},
	}
	for _, tt := range tests {
		if got := domain.UserMessage(tt.err, "fb"); got != tt.want {
			t.Errorf("%v: expected %q, got %q", tt.err, tt.want, got)
		}
	}
}
