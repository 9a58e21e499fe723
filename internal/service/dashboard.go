package service

import (
	"context"
	"time"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/port"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const MsgRateUnavailable = "Cotización no disponible"

// RateWidget is one currency card on the dashboard. Exactly one of Rate
// and Error is set.
type RateWidget struct {
	Code  string
	Rate  *domain.CurrencyRate
	Error string
}

// Dashboard is the landing screen after login.
type Dashboard struct {
	User  domain.User
	Rates []RateWidget
	At    time.Time
}

// DashboardService greets the user and shows exchange rates.
type DashboardService struct {
	rates  port.RatesFetcher
	codes  []string
	logger *zap.Logger
}

// NewDashboardService creates the service. rates may be nil to hide the widgets.
func NewDashboardService(rates port.RatesFetcher, codes []string, logger *zap.Logger) *DashboardService {
	return &DashboardService{rates: rates, codes: codes, logger: logger}
}

// Load fetches every configured rate concurrently. A failing rate only
// affects its own widget.
func (s *DashboardService) Load(ctx context.Context, sess *domain.Session) (*Dashboard, error) {
	ctx, span := tracer.Start(ctx, "DashboardService.Load")
	defer span.End()

	if _, err := authorize(sess); err != nil {
		return nil, err
	}

	// The session may be logged out concurrently after authorize.
	user := sess.User()
	if user == nil {
		return nil, &domain.ErrUnauthorized{Message: domain.MsgSessionExpired}
	}

	d := &Dashboard{User: *user, At: now()}
	if s.rates == nil || len(s.codes) == 0 {
		return d, nil
	}

	d.Rates = make([]RateWidget, len(s.codes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, code := range s.codes {
		i, code := i, code
		g.Go(func() error {
			w := RateWidget{Code: code}
			rate, err := s.rates.GetRate(gctx, code)
			if err != nil {
				s.logger.Warn("dashboard: rate unavailable", zap.String("code", code), zap.Error(err))
				w.Error = MsgRateUnavailable
			} else {
				w.Rate = rate
			}
			d.Rates[i] = w
			return nil
		})
	}
	_ = g.Wait()

	return d, nil
}
