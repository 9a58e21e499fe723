package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type salesBody struct {
	Sales       []domain.Sale
	Branches    []domain.Branch
	Query       string
	Filter      domain.SaleFilter
	Empty       string
	ConfirmWord string
	Draft       domain.Sale
}

func (s *screens) newSalesBody(r *http.Request, sales []domain.Sale) salesBody {
	sid := sessionIDFromContext(r.Context())
	branches, _ := s.views.branches.Get(sid)
	return salesBody{
		Sales:       sales,
		Branches:    branches,
		Empty:       service.MsgNoSales,
		ConfirmWord: service.ConfirmWord,
		Draft: domain.Sale{
			BranchID: SessionFromContext(r.Context()).BranchID(),
			Status:   domain.SaleInProduction,
		},
	}
}

// GET /sales?q=&status=&branch=&complete=&date=
//
// A search term wins over the filter; neither lists every sale.
func (s *screens) salesPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := SessionFromContext(ctx)
	sid := sessionIDFromContext(ctx)

	if branches, err := s.Sales.Branches(ctx, sess); err == nil {
		s.views.branches.Set(sid, branches)
	} else {
		s.Logger.Warn("sales: branches unavailable", zap.Error(err))
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	filter, err := parseSaleFilter(r)

	var sales []domain.Sale
	switch {
	case err != nil:
	case query != "":
		sales, err = s.Sales.Search(ctx, sess, query)
	case !filter.IsZero():
		sales, err = s.Sales.Filter(ctx, sess, filter)
	default:
		sales, err = s.Sales.List(ctx, sess)
	}

	var notice domain.Notification
	if err != nil {
		if isUnauthorized(err) {
			redirectToLogin(w, r)
			return
		}
		notice = notificationFor(err, service.MsgSalesLoadFailed, s.Logger)
		sales, _ = s.views.sales.Get(sid)
	} else {
		s.views.sales.Set(sid, sales)
	}

	body := s.newSalesBody(r, sales)
	body.Query = query
	body.Filter = filter
	s.rd.render(w, r, http.StatusOK, "sales", page{Title: "Ventas", Notice: notice, Body: body})
}

// POST /sales
func (s *screens) createSale(w http.ResponseWriter, r *http.Request) {
	draft, err := parseSaleDraft(r)
	if err != nil {
		s.rejectSaleForm(w, r, err)
		return
	}
	s.renderSaleOutcome(w, r, s.Sales.Create(r.Context(), SessionFromContext(r.Context()), draft))
}

// POST /sales/{id}
func (s *screens) updateSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.rejectSaleForm(w, r, err)
		return
	}
	draft, err := parseSaleDraft(r)
	if err != nil {
		s.rejectSaleForm(w, r, err)
		return
	}
	s.renderSaleOutcome(w, r, s.Sales.Update(r.Context(), SessionFromContext(r.Context()), id, draft))
}

// POST /sales/{id}/delete
func (s *screens) deleteSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.rejectSaleForm(w, r, err)
		return
	}
	s.renderSaleOutcome(w, r, s.Sales.Delete(r.Context(), SessionFromContext(r.Context()), id, r.FormValue("confirm")))
}

func (s *screens) renderSaleOutcome(w http.ResponseWriter, r *http.Request, o domain.Outcome[domain.Sale]) {
	if isUnauthorized(o.Err) {
		redirectToLogin(w, r)
		return
	}
	sales := settle(s.views.sales, sessionIDFromContext(r.Context()), o)
	s.rd.render(w, r, http.StatusOK, "sales", page{Title: "Ventas", Notice: o.Notification, Body: s.newSalesBody(r, sales)})
}

// rejectSaleForm redraws the last list with the form error; nothing was sent.
func (s *screens) rejectSaleForm(w http.ResponseWriter, r *http.Request, err error) {
	sales, _ := s.views.sales.Get(sessionIDFromContext(r.Context()))
	s.rd.render(w, r, http.StatusOK, "sales", page{
		Title:  "Ventas",
		Notice: notificationFor(err, service.MsgSaleFailed, s.Logger),
		Body:   s.newSalesBody(r, sales),
	})
}

// GET /sales/{id}/receipt.pdf
func (s *screens) saleReceipt(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "handler.saleReceipt")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int64("sale.id", id))

	var buf bytes.Buffer
	if err := s.Receipts.Render(ctx, SessionFromContext(ctx), id, &buf); err != nil {
		if isUnauthorized(err) {
			redirectToLogin(w, r)
			return
		}
		notice := notificationFor(err, "Error al generar el comprobante.", s.Logger)
		http.Error(w, notice.Message, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="venta-%d.pdf"`, id))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
