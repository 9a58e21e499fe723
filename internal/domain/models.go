package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ============================================================
// Wire-tolerant scalar types
// ============================================================

// Flag is a boolean the remote API may encode as true/false, a number or a
// string. Any non-zero number and any string other than "", "0", "false"
// and "null" is true.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = v != 0
		return nil
	}
	switch strings.ToLower(s) {
	case "false", "0", "", "null":
		*f = false
	default:
		*f = true
	}
	return nil
}

// Money is an amount the remote API may encode as a JSON number or as a
// decimal string.
type Money float64

func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		*m = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	*m = Money(v)
	return nil
}

// String formats the amount the way receipts and tables show it.
func (m Money) String() string {
	return fmt.Sprintf("$ %.2f", float64(m))
}

// Timestamp accepts RFC3339 and SQL DATETIME layouts.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// Display renders the timestamp for tables; zero renders as a dash.
func (t Timestamp) Display() string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02/01/2006 15:04")
}

// ============================================================
// Users & branches
// ============================================================

// User is the read-only snapshot of a remote user record.
type User struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
	BranchID int64  `json:"branch_id"`
	IsAdmin  Flag   `json:"is_adm"`
}

// NewUser is the body for POST /users.
type NewUser struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
	BranchID int64  `json:"branch_id"`
}

// Validate mirrors the form's required fields.
func (u NewUser) Validate() error {
	switch {
	case strings.TrimSpace(u.UserName) == "":
		return &ErrValidation{Field: "user_name", Message: "El nombre de usuario es obligatorio."}
	case u.Password == "":
		return &ErrValidation{Field: "password", Message: "La contraseña es obligatoria."}
	case u.BranchID <= 0:
		return &ErrValidation{Field: "branch_id", Message: "La sucursal es obligatoria."}
	}
	return nil
}

// UserUpdate is the body for PUT /users/{id}.
type UserUpdate struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Branch is a physical shop location.
type Branch struct {
	BranchID   int64  `json:"branch_id"`
	BranchName string `json:"branch_name,omitempty"`
}

// Label is what selectors show for the branch.
func (b Branch) Label() string {
	if b.BranchName != "" {
		return b.BranchName
	}
	return fmt.Sprintf("Sucursal %d", b.BranchID)
}

// ============================================================
// Sales
// ============================================================

// SaleStatus is the closed set of sale lifecycle states.
type SaleStatus string

const (
	SaleSuspended           SaleStatus = "suspended"
	SaleInProduction        SaleStatus = "in_production"
	SaleFinishedUndelivered SaleStatus = "finished_undelivered"
	SaleDelivered           SaleStatus = "delivered"
)

// SaleStatuses lists every status in lifecycle order.
var SaleStatuses = []SaleStatus{SaleSuspended, SaleInProduction, SaleFinishedUndelivered, SaleDelivered}

// Label returns the Spanish label shown on screens and receipts.
func (s SaleStatus) Label() string {
	switch s {
	case SaleSuspended:
		return "Suspendida"
	case SaleInProduction:
		return "En producción"
	case SaleFinishedUndelivered:
		return "Terminada sin entregar"
	case SaleDelivered:
		return "Entregada"
	}
	return string(s)
}

func (s SaleStatus) Valid() bool {
	switch s {
	case SaleSuspended, SaleInProduction, SaleFinishedUndelivered, SaleDelivered:
		return true
	}
	return false
}

// PaymentMethods are the options offered by the sale form.
var PaymentMethods = []string{"Efectivo", "Tarjeta de Crédito", "Transferencia Bancaria"}

// Sale is an order owned by the remote API.
type Sale struct {
	SaleID            int64      `json:"sale_id"`
	BranchID          int64      `json:"branch_id"`
	CustomerName      string     `json:"customer_name"`
	Details           string     `json:"details"`
	PaymentMethod     string     `json:"payment_method"`
	TotalAmount       Money      `json:"total_amount"`
	TotalMoneyEntries Money      `json:"total_money_entries"`
	PhoneNumber       string     `json:"phone_number"`
	Status            SaleStatus `json:"status"`
	CreatedAt         Timestamp  `json:"created_at"`
	UpdatedAt         Timestamp  `json:"updated_at"`
}

// Balance is what the customer still owes.
func (s Sale) Balance() Money {
	return s.TotalAmount - s.TotalMoneyEntries
}

// FullyPaid reports whether the deposits cover the total.
func (s Sale) FullyPaid() bool {
	return s.TotalMoneyEntries >= s.TotalAmount
}

// SaleDraft is the copy staged by the sale form; it is the body of
// POST /sales and PUT /sales/{id}.
type SaleDraft struct {
	BranchID          int64      `json:"branch_id"`
	CustomerName      string     `json:"customer_name"`
	Details           string     `json:"details"`
	PaymentMethod     string     `json:"payment_method"`
	TotalAmount       float64    `json:"total_amount"`
	TotalMoneyEntries float64    `json:"total_money_entries"`
	PhoneNumber       string     `json:"phone_number"`
	Status            SaleStatus `json:"status"`
}

// Validate mirrors the form's required fields; ranges are the remote API's job.
func (d SaleDraft) Validate() error {
	switch {
	case strings.TrimSpace(d.CustomerName) == "":
		return &ErrValidation{Field: "customer_name", Message: "El nombre del cliente es obligatorio."}
	case d.PaymentMethod == "":
		return &ErrValidation{Field: "payment_method", Message: "Seleccione un método de pago."}
	case d.Status != "" && !d.Status.Valid():
		return &ErrValidation{Field: "status", Message: "Estado de venta inválido."}
	}
	return nil
}

// DraftFromSale stages an existing sale for editing.
func DraftFromSale(s Sale) SaleDraft {
	return SaleDraft{
		BranchID:          s.BranchID,
		CustomerName:      s.CustomerName,
		Details:           s.Details,
		PaymentMethod:     s.PaymentMethod,
		TotalAmount:       float64(s.TotalAmount),
		TotalMoneyEntries: float64(s.TotalMoneyEntries),
		PhoneNumber:       s.PhoneNumber,
		Status:            s.Status,
	}
}

// PaymentFilter narrows sales by whether they are fully paid.
type PaymentFilter string

const (
	PaymentAny      PaymentFilter = ""
	PaymentComplete PaymentFilter = "true"
	PaymentPending  PaymentFilter = "false"
)

// FilterWildcard fills unset path segments of /sales/filter.
const FilterWildcard = "all"

// SaleFilter drives GET /sales/filter/:status/:branch/:completePayment/:date.
type SaleFilter struct {
	Status          SaleStatus
	BranchID        int64
	CompletePayment PaymentFilter
	Date            string // YYYY-MM-DD
}

// IsZero reports whether no criterion is set.
func (f SaleFilter) IsZero() bool {
	return f.Status == "" && f.BranchID == 0 && f.CompletePayment == PaymentAny && f.Date == ""
}

// Segments returns the four path segments in order, wildcards included.
func (f SaleFilter) Segments() [4]string {
	seg := [4]string{FilterWildcard, FilterWildcard, FilterWildcard, FilterWildcard}
	if f.Status != "" {
		seg[0] = string(f.Status)
	}
	if f.BranchID > 0 {
		seg[1] = strconv.FormatInt(f.BranchID, 10)
	}
	if f.CompletePayment != PaymentAny {
		seg[2] = string(f.CompletePayment)
	}
	if f.Date != "" {
		seg[3] = f.Date
	}
	return seg
}

// Validate rejects values the path cannot carry.
func (f SaleFilter) Validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return &ErrValidation{Field: "status", Message: "Estado de venta inválido."}
	}
	switch f.CompletePayment {
	case PaymentAny, PaymentComplete, PaymentPending:
	default:
		return &ErrValidation{Field: "complete", Message: "Filtro de pago inválido."}
	}
	if f.Date != "" {
		if _, err := time.Parse("2006-01-02", f.Date); err != nil {
			return &ErrValidation{Field: "date", Message: "Fecha inválida (AAAA-MM-DD)."}
		}
	}
	return nil
}

// ============================================================
// Blueprints
// ============================================================

// Blueprint is a technical drawing linked to a sale.
type Blueprint struct {
	BlueprintID   int64  `json:"blueprint_id"`
	SaleID        int64  `json:"sale_id"`
	BlueprintCode string `json:"blueprint_code"`
	Description   string `json:"description"`
	Material      string `json:"material"`
	Colour        string `json:"colour"`
	Status        string `json:"status"`
	PhotoURL      string `json:"photo_url,omitempty"`
}

// BlueprintDraft is the body of POST /blueprints and PUT /blueprints/{id}.
type BlueprintDraft struct {
	SaleID        int64  `json:"sale_id"`
	BlueprintCode string `json:"blueprint_code"`
	Description   string `json:"description"`
	Material      string `json:"material"`
	Colour        string `json:"colour"`
	Status        string `json:"status"`
}

func (d BlueprintDraft) Validate() error {
	switch {
	case d.SaleID <= 0:
		return &ErrValidation{Field: "sale_id", Message: "La venta asociada es obligatoria."}
	case strings.TrimSpace(d.BlueprintCode) == "":
		return &ErrValidation{Field: "blueprint_code", Message: "El código de plano es obligatorio."}
	}
	return nil
}

// BlueprintPhoto is a photo reference attached to a blueprint.
type BlueprintPhoto struct {
	PhotoID     int64  `json:"photo_id,omitempty"`
	BlueprintID int64  `json:"blueprint_id"`
	SaleID      int64  `json:"sale_id,omitempty"`
	PhotoURL    string `json:"photo_url"`
}

// ============================================================
// Currency rates
// ============================================================

// CurrencyRate is one dashboard widget.
type CurrencyRate struct {
	Code      string    `json:"casa"`
	Name      string    `json:"nombre"`
	Currency  string    `json:"moneda"`
	Buy       float64   `json:"compra"`
	Sell      float64   `json:"venta"`
	UpdatedAt time.Time `json:"fechaActualizacion"`
}
