package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/observability"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	MsgBlueprintFailed   = "Error al procesar el plano."
	MsgPhotoFailed       = "Error al agregar la foto."
	MsgPhotoAdded        = "Foto agregada con éxito."
	MsgPhotoUnconfigured = "La carga de archivos no está habilitada; indique la URL de la foto."
	MsgPhotoMissing      = "Seleccione una foto o indique su URL."
	MsgPhotoBadURL       = "La URL de la foto no es válida."
)

// BlueprintPage is everything the blueprint screen shows at once.
type BlueprintPage struct {
	SaleID     int64
	Sale       *domain.Sale
	Sales      []domain.Sale
	Blueprints []domain.Blueprint
	Photos     []domain.BlueprintPhoto
}

// PhotoUpload is one photo for a blueprint, either as a file to upload or
// as an already-hosted URL.
type PhotoUpload struct {
	BlueprintID int64
	SaleID      int64
	URL         string
	Filename    string
	ContentType string
	Body        io.Reader
}

// BlueprintService backs the blueprint screen.
type BlueprintService struct {
	blueprints port.BlueprintAPI
	sales      port.SalesAPI
	photos     port.PhotoStore
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewBlueprintService creates the service. photos may be nil when no
// object storage is configured.
func NewBlueprintService(blueprints port.BlueprintAPI, sales port.SalesAPI, photos port.PhotoStore, metrics *observability.Metrics, logger *zap.Logger) *BlueprintService {
	return &BlueprintService{blueprints: blueprints, sales: sales, photos: photos, metrics: metrics, logger: logger}
}

// UploadsEnabled reports whether photo files can be uploaded.
func (s *BlueprintService) UploadsEnabled() bool {
	return s.photos != nil
}

// List returns the blueprints of one sale, or all of them when saleID is 0.
func (s *BlueprintService) List(ctx context.Context, sess *domain.Session, saleID int64) ([]domain.Blueprint, error) {
	ctx, span := tracer.Start(ctx, "BlueprintService.List")
	defer span.End()

	token, err := authorize(sess)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, token, saleID)
}

func (s *BlueprintService) list(ctx context.Context, token string, saleID int64) ([]domain.Blueprint, error) {
	if saleID > 0 {
		return s.blueprints.ListBlueprintsBySale(ctx, token, saleID)
	}
	return s.blueprints.ListBlueprints(ctx, token)
}

// Page loads the blueprint list, the sale selector and, for a single sale,
// its photos, concurrently.
func (s *BlueprintService) Page(ctx context.Context, sess *domain.Session, saleID int64) (*BlueprintPage, error) {
	ctx, span := tracer.Start(ctx, "BlueprintService.Page")
	defer span.End()
	span.SetAttributes(attribute.Int64("sale.id", saleID))

	token, err := authorize(sess)
	if err != nil {
		return nil, err
	}

	page := &BlueprintPage{SaleID: saleID}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		bps, err := s.list(gctx, token, saleID)
		if err != nil {
			return fmt.Errorf("blueprints: %w", err)
		}
		page.Blueprints = bps
		return nil
	})
	g.Go(func() error {
		sales, err := s.sales.ListSales(gctx, token)
		if err != nil {
			return fmt.Errorf("sales: %w", err)
		}
		page.Sales = sales
		return nil
	})
	if saleID > 0 {
		g.Go(func() error {
			photos, err := s.blueprints.ListPhotosBySale(gctx, token, saleID)
			if err != nil {
				return fmt.Errorf("photos: %w", err)
			}
			page.Photos = photos
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range page.Sales {
		if page.Sales[i].SaleID == saleID {
			sale := page.Sales[i]
			page.Sale = &sale
			break
		}
	}
	return page, nil
}

func (s *BlueprintService) Get(ctx context.Context, sess *domain.Session, blueprintID int64) (*domain.Blueprint, error) {
	ctx, span := tracer.Start(ctx, "BlueprintService.Get")
	defer span.End()

	token, err := authorize(sess)
	if err != nil {
		return nil, err
	}
	return s.blueprints.GetBlueprint(ctx, token, blueprintID)
}

// Create adds a blueprint; scope is the sale whose list the screen shows
// (0 for all) and is what gets refetched.
func (s *BlueprintService) Create(ctx context.Context, sess *domain.Session, d domain.BlueprintDraft, scope int64) domain.Outcome[domain.Blueprint] {
	ctx, span := tracer.Start(ctx, "BlueprintService.Create")
	defer span.End()

	token, err := authorize(sess)
	if err != nil {
		return rejected[domain.Blueprint](s.metrics, "blueprint", domain.ActionCreate, err, MsgBlueprintFailed)
	}

	return runAction(ctx, s.metrics, s.logger, s.spec(token, domain.ActionCreate, scope, func(ctx context.Context) error {
		if err := d.Validate(); err != nil {
			return err
		}
		return s.blueprints.CreateBlueprint(ctx, token, d)
	}))
}

func (s *BlueprintService) Update(ctx context.Context, sess *domain.Session, blueprintID int64, d domain.BlueprintDraft, scope int64) domain.Outcome[domain.Blueprint] {
	ctx, span := tracer.Start(ctx, "BlueprintService.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("blueprint.id", blueprintID))

	token, err := authorize(sess)
	if err != nil {
		return rejected[domain.Blueprint](s.metrics, "blueprint", domain.ActionUpdate, err, MsgBlueprintFailed)
	}

	return runAction(ctx, s.metrics, s.logger, s.spec(token, domain.ActionUpdate, scope, func(ctx context.Context) error {
		if err := d.Validate(); err != nil {
			return err
		}
		return s.blueprints.UpdateBlueprint(ctx, token, blueprintID, d)
	}))
}

// Delete removes a blueprint once confirmation equals ConfirmWord exactly.
func (s *BlueprintService) Delete(ctx context.Context, sess *domain.Session, blueprintID int64, confirmation string, scope int64) domain.Outcome[domain.Blueprint] {
	ctx, span := tracer.Start(ctx, "BlueprintService.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("blueprint.id", blueprintID))

	token, err := authorize(sess)
	if err != nil {
		return rejected[domain.Blueprint](s.metrics, "blueprint", domain.ActionDelete, err, MsgBlueprintFailed)
	}

	return runAction(ctx, s.metrics, s.logger, s.spec(token, domain.ActionDelete, scope, func(ctx context.Context) error {
		if confirmation != ConfirmWord {
			return &domain.ErrValidation{Field: "confirmation", Message: MsgConfirmMismatch}
		}
		return s.blueprints.DeleteBlueprint(ctx, token, blueprintID)
	}))
}

// AddPhoto uploads the file (when given) and registers its URL with the
// remote API. The photo list of the sale is refetched on success.
func (s *BlueprintService) AddPhoto(ctx context.Context, sess *domain.Session, up PhotoUpload) domain.Outcome[domain.BlueprintPhoto] {
	ctx, span := tracer.Start(ctx, "BlueprintService.AddPhoto")
	defer span.End()
	span.SetAttributes(attribute.Int64("blueprint.id", up.BlueprintID))

	token, err := authorize(sess)
	if err != nil {
		return rejected[domain.BlueprintPhoto](s.metrics, "photo", domain.ActionCreate, err, MsgPhotoFailed)
	}

	spec := actionSpec[domain.BlueprintPhoto]{
		entity:  "photo",
		kind:    domain.ActionCreate,
		success: MsgPhotoAdded,
		failure: MsgPhotoFailed,
		mutate: func(ctx context.Context) error {
			if up.BlueprintID <= 0 {
				return &domain.ErrValidation{Field: "blueprint_id", Message: "Seleccione un plano."}
			}
			photoURL, err := s.photoURL(ctx, up)
			if err != nil {
				return err
			}
			return s.blueprints.AddBlueprintPhoto(ctx, token, domain.BlueprintPhoto{
				BlueprintID: up.BlueprintID,
				SaleID:      up.SaleID,
				PhotoURL:    photoURL,
			})
		},
	}
	if up.SaleID > 0 {
		spec.refetch = func(ctx context.Context) ([]domain.BlueprintPhoto, error) {
			return s.blueprints.ListPhotosBySale(ctx, token, up.SaleID)
		}
	}
	return runAction(ctx, s.metrics, s.logger, spec)
}

func (s *BlueprintService) photoURL(ctx context.Context, up PhotoUpload) (string, error) {
	if up.Body != nil {
		if s.photos == nil {
			return "", &domain.ErrValidation{Field: "photo", Message: MsgPhotoUnconfigured}
		}
		return s.photos.Put(ctx, up.SaleID, up.Filename, up.ContentType, up.Body)
	}

	raw := strings.TrimSpace(up.URL)
	if raw == "" {
		return "", &domain.ErrValidation{Field: "photo_url", Message: MsgPhotoMissing}
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", &domain.ErrValidation{Field: "photo_url", Message: MsgPhotoBadURL}
	}
	return raw, nil
}

func (s *BlueprintService) spec(token string, kind domain.ActionKind, scope int64, mutate func(context.Context) error) actionSpec[domain.Blueprint] {
	var success string
	switch kind {
	case domain.ActionCreate:
		success = "Plano creado con éxito."
	case domain.ActionUpdate:
		success = "Plano actualizado con éxito."
	case domain.ActionDelete:
		success = "Plano eliminado con éxito."
	}
	return actionSpec[domain.Blueprint]{
		entity:  "blueprint",
		kind:    kind,
		success: success,
		failure: MsgBlueprintFailed,
		mutate:  mutate,
		refetch: func(ctx context.Context) ([]domain.Blueprint, error) {
			return s.list(ctx, token, scope)
		},
	}
}
