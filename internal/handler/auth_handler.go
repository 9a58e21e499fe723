package handler

import (
	"net/http"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/service"

	"go.uber.org/zap"
)

type loginBody struct {
	Name string
}

// GET /login
func (s *screens) loginPage(w http.ResponseWriter, r *http.Request) {
	if sess, _, found := s.Sessions.Load(r); found && sess.IsAuthenticated() && !sess.Expired(now()) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.rd.render(w, r, http.StatusOK, "login", page{Title: "Ingresar", Body: loginBody{}})
}

// POST /login
//
// A fresh session is filled by the login call and only then bound to the
// browser, so a failed attempt never touches an existing session.
func (s *screens) login(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "handler.login")
	defer span.End()

	name := r.FormValue("name")
	sess := domain.NewSession()
	if err := s.Auth.Login(ctx, sess, name, r.FormValue("password")); err != nil {
		s.rd.render(w, r, http.StatusOK, "login", page{
			Title:  "Ingresar",
			Notice: domain.ErrorNotice(service.LoginMessage(err)),
			Body:   loginBody{Name: name},
		})
		return
	}

	if _, oldID, found := s.Sessions.Load(r); found {
		s.views.Forget(oldID)
		if err := s.Sessions.Destroy(w, r, oldID); err != nil {
			s.Logger.Warn("login: drop previous session", zap.Error(err))
		}
	}
	if _, err := s.Sessions.Issue(w, r, sess); err != nil {
		s.Logger.Error("login: issue session", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// POST /logout
func (s *screens) logout(w http.ResponseWriter, r *http.Request) {
	sess, id, found := s.Sessions.Load(r)
	if found {
		s.Auth.Logout(sess)
		s.views.Forget(id)
	}
	if err := s.Sessions.Destroy(w, r, id); err != nil {
		s.Logger.Warn("logout: destroy session", zap.Error(err))
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
