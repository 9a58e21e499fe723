package handler

import (
	"net/http"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/service"
)

// GET /dashboard
func (s *screens) dashboard(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	dash, err := s.Dashboard.Load(r.Context(), sess)
	if err != nil {
		if isUnauthorized(err) {
			redirectToLogin(w, r)
			return
		}
		s.rd.render(w, r, http.StatusOK, "dashboard", page{
			Title:  "Panel de control",
			Notice: notificationFor(err, "Error al cargar el panel.", s.Logger),
			Body:   &service.Dashboard{},
		})
		return
	}

	s.rd.render(w, r, http.StatusOK, "dashboard", page{Title: "Panel de control", Body: dash})
}
