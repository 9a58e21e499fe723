package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/observability"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/port"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/service"

	"go.uber.org/zap"
)

func newAuth(api *mockAPI) *service.AuthService {
	return service.NewAuthService(api, observability.NewMetrics(), zap.NewNop())
}

func TestLogin_Success(t *testing.T) {
	api := newMockAPI()
	api.loginResult = &port.LoginResult{
		User:  domain.User{UserID: 5, UserName: "ana", BranchID: 2, IsAdmin: true},
		Token: "jwt-token",
	}
	sess := domain.NewSession()

	if err := newAuth(api).Login(context.Background(), sess, " ana ", "pw"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !sess.IsAuthenticated() || sess.Token() != "jwt-token" {
		t.Fatal("expected authenticated session with token")
	}
	if sess.UserID() != 5 || sess.BranchID() != 2 || !sess.IsAdmin() {
		t.Errorf("unexpected identity: %+v", sess.User())
	}
}

func TestLogin_FailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"status without message", &domain.ErrHTTPStatus{Status: 401}, "Error en la autenticación"},
		{"status with message", &domain.ErrHTTPStatus{Status: 401, Message: "Contraseña incorrecta"}, "Contraseña incorrecta"},
		{"application message", &domain.ErrApplication{Message: "Usuario inexistente"}, "Usuario inexistente"},
		{"no response", &domain.ErrNetwork{Err: errors.New("dial tcp: refused")}, "No se pudo conectar al servidor"},
		{"malformed", &domain.ErrMalformed{Reason: "missing token"}, "Error en la autenticación"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newMockAPI()
			api.loginErr = tt.err
			sess := domain.NewSession()

			err := newAuth(api).Login(context.Background(), sess, "ana", "pw")
			if err == nil {
				t.Fatal("expected error")
			}
			if got := service.LoginMessage(err); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if sess.IsAuthenticated() {
				t.Error("session must stay logged out")
			}
		})
	}
}

func TestLogin_FailureKeepsPriorSession(t *testing.T) {
	api := newMockAPI()
	api.loginErr = &domain.ErrApplication{Message: "no"}
	sess := userSession()

	_ = newAuth(api).Login(context.Background(), sess, "otro", "pw")

	if sess.UserID() != 2 || sess.Token() != "tok-vendedor" {
		t.Errorf("session changed on failed login: %+v", sess.User())
	}
}

func TestLogin_MissingCredentialsSendsNothing(t *testing.T) {
	api := newMockAPI()

	err := newAuth(api).Login(context.Background(), domain.NewSession(), "  ", "")
	if got := service.LoginMessage(err); got != service.MsgMissingCredentials {
		t.Errorf("expected %q, got %q", service.MsgMissingCredentials, got)
	}
	if api.total() != 0 {
		t.Errorf("expected no calls, got %d", api.total())
	}
}

func TestLogout(t *testing.T) {
	sess := userSession()
	newAuth(newMockAPI()).Logout(sess)

	if sess.IsAuthenticated() || sess.User() != nil || sess.Token() != "" {
		t.Fatal("expected cleared session")
	}
}

func TestChangePassword_MismatchSendsNothing(t *testing.T) {
	api := newMockAPI()

	out := newAuth(api).ChangePassword(context.Background(), userSession(), "nueva1", "nueva2")

	if out.Succeeded() {
		t.Fatal("expected failure")
	}
	if out.Notification.Message != "Las contraseñas no coinciden." {
		t.Errorf("unexpected message %q", out.Notification.Message)
	}
	if api.total() != 0 {
		t.Errorf("expected zero network calls, got %d", api.total())
	}
}

func TestChangePassword_Success(t *testing.T) {
	api := newMockAPI()

	out := newAuth(api).ChangePassword(context.Background(), userSession(), "nueva", "nueva")

	if !out.Succeeded() {
		t.Fatalf("expected success, got %v", out.Err)
	}
	if api.lastUpdate != (domain.UserUpdate{Name: "vendedor", Password: "nueva"}) {
		t.Errorf("unexpected update body %+v", api.lastUpdate)
	}
	if api.lastToken != "tok-vendedor" {
		t.Errorf("expected session token, got %q", api.lastToken)
	}
	if out.Notification.Message != service.MsgPasswordUpdated {
		t.Errorf("unexpected message %q", out.Notification.Message)
	}
}

func TestChangeUserName_UpdatesSession(t *testing.T) {
	api := newMockAPI()
	sess := userSession()

	out := newAuth(api).ChangeUserName(context.Background(), sess, "vendedora", "actual")

	if !out.Succeeded() {
		t.Fatalf("expected success, got %v", out.Err)
	}
	if api.lastUpdate != (domain.UserUpdate{Name: "vendedora", Password: "actual"}) {
		t.Errorf("unexpected update body %+v", api.lastUpdate)
	}
	if sess.User().UserName != "vendedora" || sess.Token() != "tok-vendedor" {
		t.Errorf("session not refreshed: %+v", sess.User())
	}
}

func TestChangeUserName_RejectedKeepsName(t *testing.T) {
	api := newMockAPI()
	api.mutateErr = &domain.ErrApplication{Message: "Contraseña actual incorrecta"}
	sess := userSession()

	out := newAuth(api).ChangeUserName(context.Background(), sess, "otro", "mal")

	if out.Succeeded() || out.Notification.Message != "Contraseña actual incorrecta" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if sess.User().UserName != "vendedor" {
		t.Error("session name must not change on failure")
	}
}

func TestProfile_ExpiredSession(t *testing.T) {
	api := newMockAPI()

	out := newAuth(api).ChangePassword(context.Background(), expiredSession(), "a", "a")

	var unauth *domain.ErrUnauthorized
	if !errors.As(out.Err, &unauth) {
		t.Fatalf("expected ErrUnauthorized, got %v", out.Err)
	}
	if api.total() != 0 {
		t.Errorf("expected zero calls, got %d", api.total())
	}
}
