package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
)

func (c *Client) ListBlueprints(ctx context.Context, token string) ([]domain.Blueprint, error) {
	env, err := c.do(ctx, http.MethodGet, "/blueprints", token, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Blueprint]("GET /blueprints", env)
}

func (c *Client) GetBlueprint(ctx context.Context, token string, blueprintID int64) (*domain.Blueprint, error) {
	path := blueprintPath(blueprintID)
	env, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[domain.Blueprint]("GET "+path, "blueprint", strconv.FormatInt(blueprintID, 10), env)
}

func (c *Client) ListBlueprintsBySale(ctx context.Context, token string, saleID int64) ([]domain.Blueprint, error) {
	path := fmt.Sprintf("/blueprints/sales/%d", saleID)
	env, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Blueprint]("GET "+path, env)
}

func (c *Client) ListPhotosBySale(ctx context.Context, token string, saleID int64) ([]domain.BlueprintPhoto, error) {
	path := fmt.Sprintf("/blueprints/sales/photos/%d", saleID)
	env, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.BlueprintPhoto]("GET "+path, env)
}

func (c *Client) CreateBlueprint(ctx context.Context, token string, d domain.BlueprintDraft) error {
	_, err := c.do(ctx, http.MethodPost, "/blueprints", token, d)
	return err
}

func (c *Client) UpdateBlueprint(ctx context.Context, token string, blueprintID int64, d domain.BlueprintDraft) error {
	_, err := c.do(ctx, http.MethodPut, blueprintPath(blueprintID), token, d)
	return err
}

func (c *Client) DeleteBlueprint(ctx context.Context, token string, blueprintID int64) error {
	_, err := c.do(ctx, http.MethodDelete, blueprintPath(blueprintID), token, nil)
	return err
}

// AddBlueprintPhoto registers an already-hosted photo URL for a blueprint.
func (c *Client) AddBlueprintPhoto(ctx context.Context, token string, p domain.BlueprintPhoto) error {
	_, err := c.do(ctx, http.MethodPost, "/blueprintPhotos", token, p)
	return err
}

func blueprintPath(id int64) string {
	return fmt.Sprintf("/blueprints/%d", id)
}
