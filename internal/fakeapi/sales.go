package fakeapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"

	"github.com/go-chi/chi/v5"
)

// GET /sales
func (s *Server) listSales(w http.ResponseWriter, r *http.Request) {
	list(w, s.store.findSales(nil))
}

// GET /sales/search/{term} matches customer, details and phone, ignoring case.
func (s *Server) searchSales(w http.ResponseWriter, r *http.Request) {
	term := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "term")))
	list(w, s.store.findSales(func(sale domain.Sale) bool {
		return strings.Contains(strings.ToLower(sale.CustomerName), term) ||
			strings.Contains(strings.ToLower(sale.Details), term) ||
			strings.Contains(sale.PhoneNumber, term)
	}))
}

// GET /sales/filter/{status}/{branch}/{complete}/{date}; "all" disables a
// criterion.
func (s *Server) filterSales(w http.ResponseWriter, r *http.Request) {
	keep, msg := saleMatcher(
		chi.URLParam(r, "status"),
		chi.URLParam(r, "branch"),
		chi.URLParam(r, "complete"),
		chi.URLParam(r, "date"),
	)
	if msg != "" {
		fail(w, http.StatusBadRequest, msg)
		return
	}
	list(w, s.store.findSales(keep))
}

func saleMatcher(status, branch, complete, date string) (func(domain.Sale) bool, string) {
	var checks []func(domain.Sale) bool

	if status != domain.FilterWildcard {
		st := domain.SaleStatus(status)
		if !st.Valid() {
			return nil, "Estado inválido"
		}
		checks = append(checks, func(s domain.Sale) bool { return s.Status == st })
	}
	if branch != domain.FilterWildcard {
		id, err := strconv.ParseInt(branch, 10, 64)
		if err != nil {
			return nil, "Sucursal inválida"
		}
		checks = append(checks, func(s domain.Sale) bool { return s.BranchID == id })
	}
	switch complete {
	case domain.FilterWildcard:
	case "true", "false":
		want := complete == "true"
		checks = append(checks, func(s domain.Sale) bool { return s.FullyPaid() == want })
	default:
		return nil, "Filtro de pago inválido"
	}
	if date != domain.FilterWildcard {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, "Fecha inválida"
		}
		checks = append(checks, func(s domain.Sale) bool {
			y1, m1, d1 := s.CreatedAt.Time.Date()
			y2, m2, d2 := day.Date()
			return y1 == y2 && m1 == m2 && d1 == d2
		})
	}

	return func(s domain.Sale) bool {
		for _, check := range checks {
			if !check(s) {
				return false
			}
		}
		return true
	}, ""
}

// GET /sales/{id} answers an empty results array for unknown ids, the way
// the backend does.
func (s *Server) getSale(w http.ResponseWriter, r *http.Request) {
	id, valid := idParam(w, r, "id")
	if !valid {
		return
	}
	sale, found := s.store.sale(id)
	if !found {
		list(w, []domain.Sale{})
		return
	}
	list(w, []domain.Sale{sale})
}

// POST /sales
func (s *Server) createSale(w http.ResponseWriter, r *http.Request) {
	var in domain.SaleDraft
	if !decode(w, r, &in) {
		return
	}
	if msg := s.checkSale(in); msg != "" {
		rejectApp(w, msg)
		return
	}
	s.store.addSale(in)
	done(w, "Venta creada")
}

// PUT /sales/{id}
func (s *Server) updateSale(w http.ResponseWriter, r *http.Request) {
	id, valid := idParam(w, r, "id")
	if !valid {
		return
	}
	var in domain.SaleDraft
	if !decode(w, r, &in) {
		return
	}
	if msg := s.checkSale(in); msg != "" {
		rejectApp(w, msg)
		return
	}
	if !s.store.updateSale(id, in) {
		rejectApp(w, "La venta no existe")
		return
	}
	done(w, "Venta actualizada")
}

// DELETE /sales/{id}
func (s *Server) deleteSale(w http.ResponseWriter, r *http.Request) {
	id, valid := idParam(w, r, "id")
	if !valid {
		return
	}
	if !s.store.deleteSale(id) {
		rejectApp(w, "La venta no existe")
		return
	}
	done(w, "Venta eliminada")
}

// checkSale applies the backend's business rules and returns the rejection
// message, or "" when the draft is acceptable.
func (s *Server) checkSale(d domain.SaleDraft) string {
	switch {
	case strings.TrimSpace(d.CustomerName) == "":
		return "El nombre del cliente es obligatorio"
	case !s.store.branchExists(d.BranchID):
		return "Sucursal inexistente"
	case !d.Status.Valid():
		return "Estado inválido"
	case d.TotalAmount < 0 || d.TotalMoneyEntries < 0:
		return "Los montos no pueden ser negativos"
	case d.TotalMoneyEntries > d.TotalAmount:
		return "Las entregas superan el total"
	}
	return ""
}
