package api

import (
	"context"
	"net/http"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/port"
)

var (
	_ port.UserAPI      = (*Client)(nil)
	_ port.SalesAPI     = (*Client)(nil)
	_ port.BlueprintAPI = (*Client)(nil)
	_ port.BranchAPI    = (*Client)(nil)
)

func (c *Client) ListBranches(ctx context.Context, token string) ([]domain.Branch, error) {
	env, err := c.do(ctx, http.MethodGet, "/branches", token, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Branch]("GET /branches", env)
}
