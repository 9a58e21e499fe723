package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/observability"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// User-facing strings of the login and profile screens.
const (
	MsgLoginFailed        = "Error en la autenticación"
	MsgMissingCredentials = "Ingrese usuario y contraseña."
	MsgPasswordMismatch   = "Las contraseñas no coinciden."
	MsgEmptyPassword      = "La contraseña no puede estar vacía."
	MsgEmptyUserName      = "El nombre de usuario no puede estar vacío."
	MsgNameUpdated        = "Nombre de usuario actualizado con éxito."
	MsgNameUpdateFailed   = "Error al actualizar el nombre de usuario."
	MsgPasswordUpdated    = "Contraseña actualizada con éxito."
	MsgPasswordFailed     = "Error al actualizar la contraseña."
)

// AuthService handles login, logout and the profile screen.
type AuthService struct {
	users   port.UserAPI
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewAuthService(users port.UserAPI, metrics *observability.Metrics, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, metrics: metrics, logger: logger}
}

// Login authenticates against the remote API. On success the session holds
// the returned user and token; on any failure the session is left exactly
// as it was and the error's user message is ready for the login screen.
func (s *AuthService) Login(ctx context.Context, sess *domain.Session, name, password string) error {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return &domain.ErrValidation{Field: "credentials", Message: MsgMissingCredentials}
	}

	res, err := s.users.Login(ctx, name, password)
	if err != nil {
		s.logger.Info("login rejected", zap.String("user_name", name), zap.Error(err))
		return fmt.Errorf("login: %w", err)
	}

	if err := sess.Login(res.User, res.Token); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	span.SetAttributes(attribute.Int64("user.id", res.User.UserID))
	s.logger.Info("login ok",
		zap.Int64("user_id", res.User.UserID),
		zap.Int64("branch_id", res.User.BranchID),
		zap.Bool("admin", bool(res.User.IsAdmin)),
	)
	return nil
}

// LoginMessage is the text the login screen shows for err.
func LoginMessage(err error) string {
	return domain.UserMessage(err, MsgLoginFailed)
}

// Logout clears the session. It never talks to the remote API.
func (s *AuthService) Logout(sess *domain.Session) {
	sess.Logout()
}

// ChangeUserName renames the session user. The remote API checks the
// current password. On success the session snapshot is refreshed.
func (s *AuthService) ChangeUserName(ctx context.Context, sess *domain.Session, newName, currentPassword string) domain.Outcome[domain.User] {
	ctx, span := tracer.Start(ctx, "AuthService.ChangeUserName")
	defer span.End()

	token, err := authorize(sess)
	if err != nil {
		return rejected[domain.User](s.metrics, "profile", domain.ActionUpdate, err, MsgNameUpdateFailed)
	}
	user := sess.User()
	newName = strings.TrimSpace(newName)

	return runAction(ctx, s.metrics, s.logger, actionSpec[domain.User]{
		entity:  "profile",
		kind:    domain.ActionUpdate,
		success: MsgNameUpdated,
		failure: MsgNameUpdateFailed,
		mutate: func(ctx context.Context) error {
			if newName == "" {
				return &domain.ErrValidation{Field: "name", Message: MsgEmptyUserName}
			}
			if currentPassword == "" {
				return &domain.ErrValidation{Field: "password", Message: MsgMissingCredentials}
			}
			if err := s.users.UpdateUser(ctx, token, user.UserID, domain.UserUpdate{Name: newName, Password: currentPassword}); err != nil {
				return err
			}
			renamed := *user
			renamed.UserName = newName
			return sess.Login(renamed, token)
		},
	})
}

// ChangePassword sets a new password for the session user. A mismatched
// confirmation is reported inline and nothing is sent.
func (s *AuthService) ChangePassword(ctx context.Context, sess *domain.Session, newPassword, confirm string) domain.Outcome[domain.User] {
	ctx, span := tracer.Start(ctx, "AuthService.ChangePassword")
	defer span.End()

	token, err := authorize(sess)
	if err != nil {
		return rejected[domain.User](s.metrics, "profile", domain.ActionUpdate, err, MsgPasswordFailed)
	}
	user := sess.User()

	return runAction(ctx, s.metrics, s.logger, actionSpec[domain.User]{
		entity:  "profile",
		kind:    domain.ActionUpdate,
		success: MsgPasswordUpdated,
		failure: MsgPasswordFailed,
		mutate: func(ctx context.Context) error {
			if newPassword != confirm {
				return &domain.ErrValidation{Field: "confirm", Message: MsgPasswordMismatch}
			}
			if newPassword == "" {
				return &domain.ErrValidation{Field: "password", Message: MsgEmptyPassword}
			}
			return s.users.UpdateUser(ctx, token, user.UserID, domain.UserUpdate{Name: user.UserName, Password: newPassword})
		},
	})
}
