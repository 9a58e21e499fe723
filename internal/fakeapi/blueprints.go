package fakeapi

import (
	"net/http"
	"strings"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
)

// GET /blueprints
func (s *Server) listBlueprints(w http.ResponseWriter, r *http.Request) {
	list(w, s.store.findBlueprints(0))
}

// GET /blueprints/sales/{saleId}
func (s *Server) blueprintsBySale(w http.ResponseWriter, r *http.Request) {
	saleID, valid := idParam(w, r, "saleId")
	if !valid {
		return
	}
	list(w, s.store.findBlueprints(saleID))
}

// GET /blueprints/sales/photos/{saleId}
func (s *Server) photosBySale(w http.ResponseWriter, r *http.Request) {
	saleID, valid := idParam(w, r, "saleId")
	if !valid {
		return
	}
	list(w, s.store.photosBySale(saleID))
}

// GET /blueprints/{id}
func (s *Server) getBlueprint(w http.ResponseWriter, r *http.Request) {
	id, valid := idParam(w, r, "id")
	if !valid {
		return
	}
	bp, found := s.store.blueprint(id)
	if !found {
		list(w, []domain.Blueprint{})
		return
	}
	one(w, bp)
}

// POST /blueprints
func (s *Server) createBlueprint(w http.ResponseWriter, r *http.Request) {
	var in domain.BlueprintDraft
	if !decode(w, r, &in) {
		return
	}
	if msg := s.checkBlueprint(in); msg != "" {
		rejectApp(w, msg)
		return
	}
	s.store.addBlueprint(in)
	done(w, "Plano creado")
}

// PUT /blueprints/{id}
func (s *Server) updateBlueprint(w http.ResponseWriter, r *http.Request) {
	id, valid := idParam(w, r, "id")
	if !valid {
		return
	}
	var in domain.BlueprintDraft
	if !decode(w, r, &in) {
		return
	}
	if msg := s.checkBlueprint(in); msg != "" {
		rejectApp(w, msg)
		return
	}
	if !s.store.updateBlueprint(id, in) {
		rejectApp(w, "El plano no existe")
		return
	}
	done(w, "Plano actualizado")
}

// DELETE /blueprints/{id}
func (s *Server) deleteBlueprint(w http.ResponseWriter, r *http.Request) {
	id, valid := idParam(w, r, "id")
	if !valid {
		return
	}
	if !s.store.deleteBlueprint(id) {
		rejectApp(w, "El plano no existe")
		return
	}
	done(w, "Plano eliminado")
}

// POST /blueprintPhotos
func (s *Server) addPhoto(w http.ResponseWriter, r *http.Request) {
	var in domain.BlueprintPhoto
	if !decode(w, r, &in) {
		return
	}
	url := strings.TrimSpace(in.PhotoURL)
	if url == "" {
		rejectApp(w, "La URL de la foto es obligatoria")
		return
	}
	in.PhotoURL = url
	if _, found := s.store.addPhoto(in); !found {
		rejectApp(w, "El plano no existe")
		return
	}
	done(w, "Foto agregada")
}

func (s *Server) checkBlueprint(d domain.BlueprintDraft) string {
	if strings.TrimSpace(d.BlueprintCode) == "" {
		return "El código de plano es obligatorio"
	}
	if _, found := s.store.sale(d.SaleID); !found {
		return "La venta no existe"
	}
	return ""
}
