package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// notificationFor maps a failed read or a rejected form to the one notice
// the screen shows, logging it at a level that matches its class.
func notificationFor(err error, fallback string, logger *zap.Logger) domain.Notification {
	var (
		network     *domain.ErrNetwork
		status      *domain.ErrHTTPStatus
		app         *domain.ErrApplication
		malformed   *domain.ErrMalformed
		circuitOpen *domain.ErrCircuitOpen
		validation  *domain.ErrValidation
		notFound    *domain.ErrNotFound
		forbidden   *domain.ErrForbidden
	)

	switch {
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("field", validation.Field))
	case errors.As(err, &app):
		logger.Debug("rejected by remote api", zap.String("error", err.Error()))
	case errors.As(err, &status):
		logger.Warn("remote api error status", zap.Int("status", status.Status), zap.Error(err))
	case errors.As(err, &network):
		logger.Error("remote api unreachable", zap.Error(err))
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
	case errors.As(err, &malformed):
		logger.Error("malformed response", zap.Error(err))
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
	case errors.As(err, &forbidden):
		logger.Warn("forbidden access", zap.String("error", err.Error()))
	default:
		logger.Error("unhandled error", zap.Error(err))
	}
	return domain.ErrorNotice(domain.UserMessage(err, fallback))
}

// statusFor picks the HTTP status for non-HTML responses such as receipts.
func statusFor(err error) int {
	var (
		network     *domain.ErrNetwork
		status      *domain.ErrHTTPStatus
		circuitOpen *domain.ErrCircuitOpen
		validation  *domain.ErrValidation
		notFound    *domain.ErrNotFound
		forbidden   *domain.ErrForbidden
		unauth      *domain.ErrUnauthorized
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &unauth):
		return http.StatusUnauthorized
	case errors.As(err, &circuitOpen):
		return http.StatusServiceUnavailable
	case errors.As(err, &status):
		if status.Status == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case errors.As(err, &network):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func isUnauthorized(err error) bool {
	var unauth *domain.ErrUnauthorized
	return errors.As(err, &unauth)
}

// redirectToLogin ends a request whose session died mid-flight.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ============================================================
// Form and path parsing
// ============================================================

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ErrValidation{Field: name, Message: "Identificador inválido."}
	}
	return id, nil
}

// formInt reads an optional positive integer; blank is zero.
func formInt(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, &domain.ErrValidation{Field: key, Message: "Valor numérico inválido."}
	}
	return v, nil
}

// formAmount reads an optional non-negative amount; a comma decimal
// separator is accepted.
func formAmount(r *http.Request, key string) (float64, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || v < 0 {
		return 0, &domain.ErrValidation{Field: key, Message: "Monto inválido."}
	}
	return v, nil
}

func parseSaleDraft(r *http.Request) (domain.SaleDraft, error) {
	d := domain.SaleDraft{
		CustomerName:  strings.TrimSpace(r.FormValue("customer_name")),
		Details:       strings.TrimSpace(r.FormValue("details")),
		PaymentMethod: r.FormValue("payment_method"),
		PhoneNumber:   strings.TrimSpace(r.FormValue("phone_number")),
		Status:        domain.SaleStatus(r.FormValue("status")),
	}

	var err error
	if d.BranchID, err = formInt(r, "branch_id"); err != nil {
		return d, err
	}
	if d.TotalAmount, err = formAmount(r, "total_amount"); err != nil {
		return d, err
	}
	if d.TotalMoneyEntries, err = formAmount(r, "total_money_entries"); err != nil {
		return d, err
	}
	return d, nil
}

func parseSaleFilter(r *http.Request) (domain.SaleFilter, error) {
	q := r.URL.Query()
	f := domain.SaleFilter{
		Status:          domain.SaleStatus(q.Get("status")),
		CompletePayment: domain.PaymentFilter(q.Get("complete")),
		Date:            strings.TrimSpace(q.Get("date")),
	}
	if raw := strings.TrimSpace(q.Get("branch")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			return f, &domain.ErrValidation{Field: "branch", Message: "Sucursal inválida."}
		}
		f.BranchID = id
	}
	return f, nil
}

func parseBlueprintDraft(r *http.Request) (domain.BlueprintDraft, error) {
	d := domain.BlueprintDraft{
		BlueprintCode: strings.TrimSpace(r.FormValue("blueprint_code")),
		Description:   strings.TrimSpace(r.FormValue("description")),
		Material:      strings.TrimSpace(r.FormValue("material")),
		Colour:        strings.TrimSpace(r.FormValue("colour")),
		Status:        strings.TrimSpace(r.FormValue("status")),
	}
	saleID, err := formInt(r, "sale_id")
	if err != nil {
		return d, err
	}
	d.SaleID = saleID
	return d, nil
}
