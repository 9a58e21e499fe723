package service

import (
	"context"
	"time"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/observability"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service")

// MsgListStale is appended to a success message when the list could not be
// reloaded afterwards.
const MsgListStale = "No se pudo actualizar el listado."

// now is swapped in tests that exercise token expiry.
var now = time.Now

// authorize returns the bearer token of a live session.
func authorize(sess *domain.Session) (string, error) {
	if sess == nil || !sess.IsAuthenticated() {
		return "", &domain.ErrUnauthorized{Message: "no hay sesión activa"}
	}
	if sess.Expired(now()) {
		return "", &domain.ErrUnauthorized{Message: domain.MsgSessionExpired}
	}
	return sess.Token(), nil
}

// actionSpec describes one CRUD action run.
type actionSpec[T any] struct {
	entity  string
	kind    domain.ActionKind
	success string
	failure string
	mutate  func(ctx context.Context) error
	// refetch reloads the list the screen shows. Nil means the action has
	// no list to refresh.
	refetch func(ctx context.Context) ([]T, error)
}

// runAction drives idle -> pending -> succeeded|failed. The remote API is
// the only authority: nothing changes on screen before it confirms. A
// confirmed action refetches its list exactly once; a failed one never
// refetches and yields exactly one error notification. Either way the
// tracker ends back at idle.
func runAction[T any](ctx context.Context, metrics *observability.Metrics, logger *zap.Logger, spec actionSpec[T]) domain.Outcome[T] {
	tracker := domain.NewActionTracker(spec.kind)
	out := domain.Outcome[T]{Action: spec.kind}
	finish := func() domain.Outcome[T] {
		_ = tracker.Reset()
		out.Trail = tracker.History()
		return out
	}

	_ = tracker.Begin()
	if err := spec.mutate(ctx); err != nil {
		_ = tracker.Fail()
		out.State = tracker.State()
		out.Err = err
		out.Notification = domain.ErrorNotice(domain.UserMessage(err, spec.failure))
		metrics.IncrAction(spec.entity, spec.kind.String(), out.State.String())
		logger.Info("action failed",
			zap.String("entity", spec.entity),
			zap.Stringer("action", spec.kind),
			zap.Error(err),
		)
		return finish()
	}

	_ = tracker.Succeed()
	out.State = tracker.State()
	out.Notification = domain.SuccessNotice(spec.success)
	metrics.IncrAction(spec.entity, spec.kind.String(), out.State.String())

	if spec.refetch != nil {
		items, err := spec.refetch(ctx)
		if err != nil {
			// The mutation stands; only the list could not be reloaded.
			out.Notification = domain.InfoNotice(spec.success + " " + MsgListStale)
			logger.Warn("list refetch failed",
				zap.String("entity", spec.entity),
				zap.Stringer("action", spec.kind),
				zap.Error(err),
			)
		} else {
			out.Items = items
			out.Refreshed = true
		}
	}
	return finish()
}

// rejected builds the outcome of an action that never reached the remote
// API (bad input, missing session, no permission).
func rejected[T any](metrics *observability.Metrics, entity string, kind domain.ActionKind, err error, fallback string) domain.Outcome[T] {
	metrics.IncrAction(entity, kind.String(), domain.StateFailed.String())
	return domain.Outcome[T]{
		Action:       kind,
		State:        domain.StateFailed,
		Notification: domain.ErrorNotice(domain.UserMessage(err, fallback)),
		Err:          err,
	}
}
