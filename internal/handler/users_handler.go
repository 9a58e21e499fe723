package handler

import (
	"net/http"
	"strings"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/service"

	"go.uber.org/zap"
)

type usersBody struct {
	Users    []domain.User
	Branches []domain.Branch
	SelfID   int64
}

func (s *screens) newUsersBody(r *http.Request, users []domain.User) usersBody {
	branches, _ := s.views.branches.Get(sessionIDFromContext(r.Context()))
	return usersBody{
		Users:    users,
		Branches: branches,
		SelfID:   SessionFromContext(r.Context()).UserID(),
	}
}

// GET /users
func (s *screens) usersPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := SessionFromContext(ctx)
	sid := sessionIDFromContext(ctx)

	if branches, err := s.Users.ListBranches(ctx, sess); err == nil {
		s.views.branches.Set(sid, branches)
	} else {
		s.Logger.Warn("users: branches unavailable", zap.Error(err))
	}

	var notice domain.Notification
	users, err := s.Users.List(ctx, sess)
	if err != nil {
		if isUnauthorized(err) {
			redirectToLogin(w, r)
			return
		}
		notice = notificationFor(err, "Error al cargar los usuarios.", s.Logger)
		users, _ = s.views.users.Get(sid)
	} else {
		s.views.users.Set(sid, users)
	}

	s.rd.render(w, r, http.StatusOK, "users", page{Title: "Usuarios", Notice: notice, Body: s.newUsersBody(r, users)})
}

// POST /users
func (s *screens) createUser(w http.ResponseWriter, r *http.Request) {
	branchID, err := formInt(r, "branch_id")
	if err != nil {
		s.rejectUserForm(w, r, err)
		return
	}
	u := domain.NewUser{
		UserName: strings.TrimSpace(r.FormValue("user_name")),
		Password: r.FormValue("password"),
		BranchID: branchID,
	}
	s.renderUserOutcome(w, r, s.Users.Create(r.Context(), SessionFromContext(r.Context()), u))
}

// POST /users/{id}/delete
func (s *screens) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.rejectUserForm(w, r, err)
		return
	}
	s.renderUserOutcome(w, r, s.Users.Delete(r.Context(), SessionFromContext(r.Context()), id))
}

func (s *screens) renderUserOutcome(w http.ResponseWriter, r *http.Request, o domain.Outcome[domain.User]) {
	if isUnauthorized(o.Err) {
		redirectToLogin(w, r)
		return
	}
	users := settle(s.views.users, sessionIDFromContext(r.Context()), o)
	s.rd.render(w, r, http.StatusOK, "users", page{Title: "Usuarios", Notice: o.Notification, Body: s.newUsersBody(r, users)})
}

func (s *screens) rejectUserForm(w http.ResponseWriter, r *http.Request, err error) {
	users, _ := s.views.users.Get(sessionIDFromContext(r.Context()))
	s.rd.render(w, r, http.StatusOK, "users", page{
		Title:  "Usuarios",
		Notice: notificationFor(err, service.MsgUserFailed, s.Logger),
		Body:   s.newUsersBody(r, users),
	})
}
