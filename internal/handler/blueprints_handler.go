package handler

import (
	"errors"
	"net/http"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/storage"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/service"

	"go.uber.org/zap"
)

// multipart overhead allowed on top of the photo itself
const formSlack = 1 << 20

type blueprintsBody struct {
	*service.BlueprintPage
	Draft          domain.Blueprint
	ConfirmWord    string
	UploadsEnabled bool
}

func (s *screens) newBlueprintsBody(p *service.BlueprintPage) blueprintsBody {
	return blueprintsBody{
		BlueprintPage:  p,
		ConfirmWord:    service.ConfirmWord,
		UploadsEnabled: s.Blueprints.UploadsEnabled(),
	}
}

// GET /blueprints?sale_id=
func (s *screens) blueprintsPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := sessionIDFromContext(ctx)

	saleID, err := formInt(r, "sale_id")
	var p *service.BlueprintPage
	if err == nil {
		p, err = s.Blueprints.Page(ctx, SessionFromContext(ctx), saleID)
	}

	var notice domain.Notification
	if err != nil {
		if isUnauthorized(err) {
			redirectToLogin(w, r)
			return
		}
		notice = notificationFor(err, "Error al cargar los planos.", s.Logger)
		p = s.lastBlueprintPage(sid, saleID)
	} else {
		s.views.blueprints.Set(sid, p)
	}

	s.rd.render(w, r, http.StatusOK, "blueprints", page{Title: "Planos", Notice: notice, Body: s.newBlueprintsBody(p)})
}

// POST /blueprints
func (s *screens) createBlueprint(w http.ResponseWriter, r *http.Request) {
	scope, _ := formInt(r, "scope")
	draft, err := parseBlueprintDraft(r)
	if err != nil {
		s.rejectBlueprintForm(w, r, scope, err, service.MsgBlueprintFailed)
		return
	}
	s.renderBlueprintOutcome(w, r, scope, s.Blueprints.Create(r.Context(), SessionFromContext(r.Context()), draft, scope))
}

// POST /blueprints/{id}
func (s *screens) updateBlueprint(w http.ResponseWriter, r *http.Request) {
	scope, _ := formInt(r, "scope")
	id, err := pathID(r, "id")
	if err != nil {
		s.rejectBlueprintForm(w, r, scope, err, service.MsgBlueprintFailed)
		return
	}
	draft, err := parseBlueprintDraft(r)
	if err != nil {
		s.rejectBlueprintForm(w, r, scope, err, service.MsgBlueprintFailed)
		return
	}
	s.renderBlueprintOutcome(w, r, scope, s.Blueprints.Update(r.Context(), SessionFromContext(r.Context()), id, draft, scope))
}

// POST /blueprints/{id}/delete
func (s *screens) deleteBlueprint(w http.ResponseWriter, r *http.Request) {
	scope, _ := formInt(r, "scope")
	id, err := pathID(r, "id")
	if err != nil {
		s.rejectBlueprintForm(w, r, scope, err, service.MsgBlueprintFailed)
		return
	}
	o := s.Blueprints.Delete(r.Context(), SessionFromContext(r.Context()), id, r.FormValue("confirm"), scope)
	s.renderBlueprintOutcome(w, r, scope, o)
}

// POST /blueprints/photos
//
// Multipart form: blueprint_id, sale_id and either a "photo" file or a
// "photo_url".
func (s *screens) addBlueprintPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxPhotoBytes+formSlack)
	if err := r.ParseMultipartForm(storage.MaxPhotoBytes + formSlack); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.Logger.Info("photo form rejected", zap.Error(err))
		s.rejectBlueprintForm(w, r, 0, &domain.ErrValidation{Field: "photo", Message: "La foto supera el tamaño permitido."}, service.MsgPhotoFailed)
		return
	}

	blueprintID, err := formInt(r, "blueprint_id")
	if err != nil {
		s.rejectBlueprintForm(w, r, 0, err, service.MsgPhotoFailed)
		return
	}
	saleID, err := formInt(r, "sale_id")
	if err != nil {
		s.rejectBlueprintForm(w, r, 0, err, service.MsgPhotoFailed)
		return
	}

	up := service.PhotoUpload{BlueprintID: blueprintID, SaleID: saleID, URL: r.FormValue("photo_url")}
	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		up.Body = file
		up.Filename = header.Filename
		up.ContentType = header.Header.Get("Content-Type")
	}

	o := s.Blueprints.AddPhoto(r.Context(), SessionFromContext(r.Context()), up)
	if isUnauthorized(o.Err) {
		redirectToLogin(w, r)
		return
	}

	sid := sessionIDFromContext(r.Context())
	p := *s.lastBlueprintPage(sid, saleID)
	if o.Refreshed {
		p.Photos = o.Items
		s.views.blueprints.Set(sid, &p)
	}
	s.rd.render(w, r, http.StatusOK, "blueprints", page{Title: "Planos", Notice: o.Notification, Body: s.newBlueprintsBody(&p)})
}

func (s *screens) renderBlueprintOutcome(w http.ResponseWriter, r *http.Request, scope int64, o domain.Outcome[domain.Blueprint]) {
	if isUnauthorized(o.Err) {
		redirectToLogin(w, r)
		return
	}

	sid := sessionIDFromContext(r.Context())
	p := *s.lastBlueprintPage(sid, scope)
	if o.Refreshed {
		p.SaleID = scope
		p.Blueprints = o.Items
		s.views.blueprints.Set(sid, &p)
	}
	s.rd.render(w, r, http.StatusOK, "blueprints", page{Title: "Planos", Notice: o.Notification, Body: s.newBlueprintsBody(&p)})
}

func (s *screens) rejectBlueprintForm(w http.ResponseWriter, r *http.Request, scope int64, err error, fallback string) {
	p := s.lastBlueprintPage(sessionIDFromContext(r.Context()), scope)
	s.rd.render(w, r, http.StatusOK, "blueprints", page{
		Title:  "Planos",
		Notice: notificationFor(err, fallback, s.Logger),
		Body:   s.newBlueprintsBody(p),
	})
}

// lastBlueprintPage returns the page last shown to the session, or an empty
// one for scope.
func (s *screens) lastBlueprintPage(sid string, scope int64) *service.BlueprintPage {
	if p, ok := s.views.blueprints.Get(sid); ok && p != nil {
		return p
	}
	return &service.BlueprintPage{SaleID: scope}
}
