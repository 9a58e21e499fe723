package fakeapi

import (
	"net/http"
	"strings"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// GET /users
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	list(w, s.store.listUsers())
}

// POST /users
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	var in domain.NewUser
	if !decode(w, r, &in) {
		return
	}

	name := strings.TrimSpace(in.UserName)
	switch {
	case name == "" || in.Password == "":
		rejectApp(w, "Usuario y contraseña son obligatorios")
		return
	case !s.store.branchExists(in.BranchID):
		rejectApp(w, "Sucursal inexistente")
		return
	}
	if _, taken := s.store.userByName(name); taken {
		rejectApp(w, "El nombre de usuario ya existe")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("fakeapi: hash password", zap.Error(err))
		fail(w, http.StatusInternalServerError, "Error interno")
		return
	}
	s.store.addUser(domain.User{UserName: name, BranchID: in.BranchID}, hash)
	done(w, "Usuario creado")
}

// PUT /users/{id} sets both name and password. Only the user itself or an
// admin may call it.
func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, valid := idParam(w, r, "id")
	if !valid {
		return
	}
	if c := claimsFrom(r.Context()); c.UserID != id && !c.IsAdmin {
		fail(w, http.StatusForbidden, "No puede modificar otro usuario")
		return
	}

	var in domain.UserUpdate
	if !decode(w, r, &in) {
		return
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Password == "" {
		rejectApp(w, "Usuario y contraseña son obligatorios")
		return
	}
	if other, taken := s.store.userByName(name); taken && other.UserID != id {
		rejectApp(w, "El nombre de usuario ya existe")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("fakeapi: hash password", zap.Error(err))
		fail(w, http.StatusInternalServerError, "Error interno")
		return
	}
	if !s.store.updateUser(id, name, hash) {
		fail(w, http.StatusNotFound, "Usuario inexistente")
		return
	}
	done(w, "Usuario actualizado")
}

// DELETE /users/{id}
func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	id, valid := idParam(w, r, "id")
	if !valid {
		return
	}

	u, found := s.store.userByID(id)
	switch {
	case !found:
		fail(w, http.StatusNotFound, "Usuario inexistente")
		return
	case bool(u.IsAdmin):
		rejectApp(w, "No se puede eliminar un administrador")
		return
	}
	s.store.deleteUser(id)
	done(w, "Usuario eliminado")
}

// GET /branches
func (s *Server) listBranches(w http.ResponseWriter, r *http.Request) {
	list(w, s.store.listBranches())
}
