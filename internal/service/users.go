package service

import (
	"context"
	"strconv"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/observability"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	MsgUserFailed       = "Error al procesar el usuario."
	MsgUserCreated      = "Usuario creado con éxito."
	MsgUserDeleted      = "Usuario eliminado con éxito."
	MsgCannotDeleteAdm  = "No se puede eliminar un usuario administrador."
	MsgCannotDeleteSelf = "No puede eliminar su propio usuario."
)

// UserAdminService backs the admin-only user management screen.
type UserAdminService struct {
	users    port.UserAPI
	branches port.BranchAPI
	metrics  *observability.Metrics
	logger   *zap.Logger
}

func NewUserAdminService(users port.UserAPI, branches port.BranchAPI, metrics *observability.Metrics, logger *zap.Logger) *UserAdminService {
	return &UserAdminService{users: users, branches: branches, metrics: metrics, logger: logger}
}

func requireAdmin(sess *domain.Session, action string) (string, error) {
	token, err := authorize(sess)
	if err != nil {
		return "", err
	}
	if !sess.IsAdmin() {
		return "", &domain.ErrForbidden{Action: action}
	}
	return token, nil
}

func (s *UserAdminService) List(ctx context.Context, sess *domain.Session) ([]domain.User, error) {
	ctx, span := tracer.Start(ctx, "UserAdminService.List")
	defer span.End()

	token, err := requireAdmin(sess, "list users")
	if err != nil {
		return nil, err
	}
	return s.users.ListUsers(ctx, token)
}

func (s *UserAdminService) ListBranches(ctx context.Context, sess *domain.Session) ([]domain.Branch, error) {
	ctx, span := tracer.Start(ctx, "UserAdminService.ListBranches")
	defer span.End()

	token, err := requireAdmin(sess, "list branches")
	if err != nil {
		return nil, err
	}
	return s.branches.ListBranches(ctx, token)
}

func (s *UserAdminService) Create(ctx context.Context, sess *domain.Session, u domain.NewUser) domain.Outcome[domain.User] {
	ctx, span := tracer.Start(ctx, "UserAdminService.Create")
	defer span.End()

	token, err := requireAdmin(sess, "create user")
	if err != nil {
		return rejected[domain.User](s.metrics, "user", domain.ActionCreate, err, MsgUserFailed)
	}

	return runAction(ctx, s.metrics, s.logger, s.spec(token, domain.ActionCreate, MsgUserCreated, func(ctx context.Context) error {
		if err := u.Validate(); err != nil {
			return err
		}
		return s.users.CreateUser(ctx, token, u)
	}))
}

// Delete removes a non-admin user. Administrators, including the session
// user, cannot be deleted from this screen.
func (s *UserAdminService) Delete(ctx context.Context, sess *domain.Session, userID int64) domain.Outcome[domain.User] {
	ctx, span := tracer.Start(ctx, "UserAdminService.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", userID))

	token, err := requireAdmin(sess, "delete user")
	if err != nil {
		return rejected[domain.User](s.metrics, "user", domain.ActionDelete, err, MsgUserFailed)
	}

	return runAction(ctx, s.metrics, s.logger, s.spec(token, domain.ActionDelete, MsgUserDeleted, func(ctx context.Context) error {
		if userID == sess.UserID() {
			return &domain.ErrValidation{Field: "user_id", Message: MsgCannotDeleteSelf}
		}
		users, err := s.users.ListUsers(ctx, token)
		if err != nil {
			return err
		}
		target, ok := findUser(users, userID)
		if !ok {
			return &domain.ErrNotFound{Resource: "user", ID: strconv.FormatInt(userID, 10)}
		}
		if target.IsAdmin {
			return &domain.ErrValidation{Field: "user_id", Message: MsgCannotDeleteAdm}
		}
		return s.users.DeleteUser(ctx, token, userID)
	}))
}

func (s *UserAdminService) spec(token string, kind domain.ActionKind, success string, mutate func(context.Context) error) actionSpec[domain.User] {
	return actionSpec[domain.User]{
		entity:  "user",
		kind:    kind,
		success: success,
		failure: MsgUserFailed,
		mutate:  mutate,
		refetch: func(ctx context.Context) ([]domain.User, error) {
			return s.users.ListUsers(ctx, token)
		},
	}
}

func findUser(users []domain.User, id int64) (domain.User, bool) {
	for _, u := range users {
		if u.UserID == id {
			return u, true
		}
	}
	return domain.User{}, false
}
