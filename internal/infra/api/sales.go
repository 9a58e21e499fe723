package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
)

func (c *Client) ListSales(ctx context.Context, token string) ([]domain.Sale, error) {
	return c.listSales(ctx, token, "/sales")
}

func (c *Client) GetSale(ctx context.Context, token string, saleID int64) (*domain.Sale, error) {
	path := salePath(saleID)
	env, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[domain.Sale]("GET "+path, "sale", strconv.FormatInt(saleID, 10), env)
}

// SearchSales runs a free-text search over customer and details.
func (c *Client) SearchSales(ctx context.Context, token, term string) ([]domain.Sale, error) {
	return c.listSales(ctx, token, "/sales/search/"+url.PathEscape(term))
}

// FilterSales narrows the list by status, branch, payment and date. Unset
// criteria travel as the "all" wildcard.
func (c *Client) FilterSales(ctx context.Context, token string, f domain.SaleFilter) ([]domain.Sale, error) {
	seg := f.Segments()
	for i := range seg {
		seg[i] = url.PathEscape(seg[i])
	}
	return c.listSales(ctx, token, "/sales/filter/"+strings.Join(seg[:], "/"))
}

func (c *Client) CreateSale(ctx context.Context, token string, d domain.SaleDraft) error {
	_, err := c.do(ctx, http.MethodPost, "/sales", token, d)
	return err
}

func (c *Client) UpdateSale(ctx context.Context, token string, saleID int64, d domain.SaleDraft) error {
	_, err := c.do(ctx, http.MethodPut, salePath(saleID), token, d)
	return err
}

func (c *Client) DeleteSale(ctx context.Context, token string, saleID int64) error {
	_, err := c.do(ctx, http.MethodDelete, salePath(saleID), token, nil)
	return err
}

func (c *Client) listSales(ctx context.Context, token, path string) ([]domain.Sale, error) {
	env, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Sale]("GET "+path, env)
}

func salePath(id int64) string {
	return fmt.Sprintf("/sales/%d", id)
}
