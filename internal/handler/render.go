package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// page is what every screen template receives. Body carries the
// screen-specific data.
type page struct {
	Title  string
	User   *domain.User
	Admin  bool
	Notice domain.Notification
	Body   any
}

// saleForm feeds the shared sale form fields. New leaves the amounts blank.
type saleForm struct {
	Branches []domain.Branch
	Sale     domain.Sale
	New      bool
}

var funcs = template.FuncMap{
	"statuses":       func() []domain.SaleStatus { return domain.SaleStatuses },
	"paymentMethods": func() []string { return domain.PaymentMethods },
	"saleForm": func(branches []domain.Branch, sale domain.Sale, isNew bool) saleForm {
		return saleForm{Branches: branches, Sale: sale, New: isNew}
	},
}

// renderer holds one parsed template set per screen, each sharing the layout.
type renderer struct {
	pages  map[string]*template.Template
	logger *zap.Logger
}

func newRenderer(logger *zap.Logger) *renderer {
	screens := []string{"login", "dashboard", "sales", "blueprints", "profile", "users"}
	pages := make(map[string]*template.Template, len(screens))
	for _, name := range screens {
		pages[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		))
	}
	return &renderer{pages: pages, logger: logger}
}

// render executes the screen into a buffer first so a template error never
// leaves a half-written page.
func (rd *renderer) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	if sess := SessionFromContext(r.Context()); sess != nil {
		p.User = sess.User()
		p.Admin = sess.IsAdmin()
	}

	var buf bytes.Buffer
	if err := rd.pages[name].ExecuteTemplate(&buf, "layout", p); err != nil {
		rd.logger.Error("render failed", zap.String("screen", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
