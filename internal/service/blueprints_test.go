package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/observability"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/port"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/service"

	"go.uber.org/zap"
)

func newBlueprints(api *mockAPI, photos port.PhotoStore) *service.BlueprintService {
	return service.NewBlueprintService(api, api, photos, observability.NewMetrics(), zap.NewNop())
}

func TestBlueprintPage_LoadsConcurrently(t *testing.T) {
	api := newMockAPI()
	api.sales = []domain.Sale{{SaleID: 1}, {SaleID: 4, CustomerName: "Lía"}}
	api.blueprints = []domain.Blueprint{{BlueprintID: 10, SaleID: 4}}
	api.photos = []domain.BlueprintPhoto{{PhotoID: 1, BlueprintID: 10}}

	page, err := newBlueprints(api, nil).Page(context.Background(), userSession(), 4)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if page.Sale == nil || page.Sale.CustomerName != "Lía" {
		t.Errorf("expected selected sale, got %+v", page.Sale)
	}
	if len(page.Blueprints) != 1 || len(page.Photos) != 1 || len(page.Sales) != 2 {
		t.Errorf("unexpected page %+v", page)
	}
	if api.count("ListBlueprintsBySale") != 1 || api.count("ListBlueprints") != 0 {
		t.Errorf("unexpected calls %v", api.calls)
	}
}

func TestBlueprintPage_AllSales(t *testing.T) {
	api := newMockAPI()

	_, err := newBlueprints(api, nil).Page(context.Background(), userSession(), 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if api.count("ListBlueprints") != 1 || api.count("ListPhotosBySale") != 0 {
		t.Errorf("unexpected calls %v", api.calls)
	}
}

func TestBlueprintPage_Failure(t *testing.T) {
	api := newMockAPI()
	api.listErr = &domain.ErrHTTPStatus{Status: 500}

	_, err := newBlueprints(api, nil).Page(context.Background(), userSession(), 2)

	var status *domain.ErrHTTPStatus
	if !errors.As(err, &status) {
		t.Fatalf("expected ErrHTTPStatus, got %v", err)
	}
}

func TestCreateBlueprint_RefetchesScope(t *testing.T) {
	api := newMockAPI()
	svc := newBlueprints(api, nil)

	out := svc.Create(context.Background(), userSession(),
		domain.BlueprintDraft{SaleID: 4, BlueprintCode: "P-001"}, 4)

	if !out.Succeeded() {
		t.Fatalf("expected success, got %v", out.Err)
	}
	if api.count("ListBlueprintsBySale") != 1 || api.count("ListBlueprints") != 0 {
		t.Errorf("unexpected calls %v", api.calls)
	}
	if out.Notification.Message != "Plano creado con éxito." {
		t.Errorf("unexpected message %q", out.Notification.Message)
	}
}

func TestDeleteBlueprint_WrongConfirmation(t *testing.T) {
	api := newMockAPI()

	out := newBlueprints(api, nil).Delete(context.Background(), userSession(), 10, "si", 0)

	if out.Succeeded() || api.count("DeleteBlueprint") != 0 {
		t.Fatalf("expected rejected delete, calls %v", api.calls)
	}
}

func TestAddPhoto_UploadsThenRegisters(t *testing.T) {
	api := newMockAPI()
	store := &mockPhotoStore{url: "https://cdn.test/p.jpg"}

	out := newBlueprints(api, store).AddPhoto(context.Background(), userSession(), service.PhotoUpload{
		BlueprintID: 10,
		SaleID:      4,
		Filename:    "p.jpg",
		ContentType: "image/jpeg",
		Body:        strings.NewReader("bytes"),
	})

	if !out.Succeeded() {
		t.Fatalf("expected success, got %v", out.Err)
	}
	if store.body != "bytes" {
		t.Errorf("expected upload body, got %q", store.body)
	}
	if api.lastPhoto.PhotoURL != "https://cdn.test/p.jpg" || api.lastPhoto.BlueprintID != 10 {
		t.Errorf("unexpected photo %+v", api.lastPhoto)
	}
	if api.count("ListPhotosBySale") != 1 {
		t.Errorf("expected one photo refetch, got %d", api.count("ListPhotosBySale"))
	}
}

func TestAddPhoto_WithoutStorage(t *testing.T) {
	api := newMockAPI()

	out := newBlueprints(api, nil).AddPhoto(context.Background(), userSession(), service.PhotoUpload{
		BlueprintID: 10,
		Body:        strings.NewReader("bytes"),
	})

	if out.Succeeded() || out.Notification.Message != service.MsgPhotoUnconfigured {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if api.total() != 0 {
		t.Errorf("expected zero calls, got %d", api.total())
	}
}

func TestAddPhoto_URLValidation(t *testing.T) {
	api := newMockAPI()
	svc := newBlueprints(api, nil)

	for _, raw := range []string{"", "ftp://x/y.jpg", "not a url"} {
		out := svc.AddPhoto(context.Background(), userSession(), service.PhotoUpload{BlueprintID: 10, URL: raw})
		if out.Succeeded() {
			t.Errorf("%q: expected failure", raw)
		}
	}
	if api.total() != 0 {
		t.Errorf("expected zero calls, got %d", api.total())
	}

	out := svc.AddPhoto(context.Background(), userSession(), service.PhotoUpload{BlueprintID: 10, URL: "https://img.test/a.png"})
	if !out.Succeeded() || api.count("AddBlueprintPhoto") != 1 {
		t.Fatalf("expected hosted URL to be registered, got %+v", out)
	}
}
