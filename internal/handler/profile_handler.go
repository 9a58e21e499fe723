package handler

import (
	"net/http"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
)

// GET /profile
func (s *screens) profilePage(w http.ResponseWriter, r *http.Request) {
	s.rd.render(w, r, http.StatusOK, "profile", page{Title: "Tu Perfil"})
}

// POST /profile/name
func (s *screens) changeName(w http.ResponseWriter, r *http.Request) {
	o := s.Auth.ChangeUserName(r.Context(), SessionFromContext(r.Context()), r.FormValue("name"), r.FormValue("password"))
	s.renderProfileOutcome(w, r, o)
}

// POST /profile/password
func (s *screens) changePassword(w http.ResponseWriter, r *http.Request) {
	o := s.Auth.ChangePassword(r.Context(), SessionFromContext(r.Context()), r.FormValue("new_password"), r.FormValue("confirm_password"))
	s.renderProfileOutcome(w, r, o)
}

func (s *screens) renderProfileOutcome(w http.ResponseWriter, r *http.Request, o domain.Outcome[domain.User]) {
	if isUnauthorized(o.Err) {
		redirectToLogin(w, r)
		return
	}
	s.rd.render(w, r, http.StatusOK, "profile", page{Title: "Tu Perfil", Notice: o.Notification})
}
