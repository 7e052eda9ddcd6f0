// Package erp mirrors café orders into Odoo as sales orders over Odoo's
// JSON-RPC endpoint. Synchronisation is best effort: failures are recorded on
// the order and retried later, never surfaced to the customer.
package erp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/yishak-cs/cafe_order/internal/models"
)

// ErrProductNotFound is returned when a menu item has no matching Odoo product
var ErrProductNotFound = errors.New("product not found in odoo")

// Config holds the Odoo connection configuration
type Config struct {
	URL      string
	Database string
	Username string
	Password string
	Timeout  time.Duration
}

// Enabled reports whether an Odoo URL was configured
func (c Config) Enabled() bool {
	return c.URL != ""
}

// RPCError is an error object returned by the Odoo JSON-RPC endpoint
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"data"`
}

func (e *RPCError) Error() string {
	if e.Data.Message != "" {
		return fmt.Sprintf("odoo rpc error %d: %s: %s", e.Code, e.Message, e.Data.Message)
	}
	return fmt.Sprintf("odoo rpc error %d: %s", e.Code, e.Message)
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int64     `json:"id"`
}

type rpcParams struct {
	Service string        `json:"service"`
	Method  string        `json:"method"`
	Args    []interface{} `json:"args"`
}

type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// Client is a thin Odoo JSON-RPC client
type Client struct {
	cfg        Config
	httpClient *http.Client
	nextID     atomic.Int64

	mu  sync.Mutex
	uid int64
}

// NewClient creates a new Odoo client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// call posts one JSON-RPC request and decodes its result into out
func (c *Client) call(ctx context.Context, service, method string, args []interface{}, out interface{}) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  rpcParams{Service: service, Method: method, Args: args},
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return fmt.Errorf("failed to encode rpc request: %w", err)
	}

	endpoint := strings.TrimSuffix(c.cfg.URL, "/") + "/jsonrpc"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("odoo %s.%s: %w", service, method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read rpc response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("odoo %s.%s: unexpected status %d", service, method, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return fmt.Errorf("failed to decode rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("failed to decode %s.%s result: %w", service, method, err)
	}
	return nil
}

// Login authenticates and caches the Odoo user id
func (c *Client) Login(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.uid != 0 {
		return c.uid, nil
	}

	// Odoo answers false instead of an error for bad credentials.
	var result json.RawMessage
	args := []interface{}{c.cfg.Database, c.cfg.Username, c.cfg.Password}
	if err := c.call(ctx, "common", "login", args, &result); err != nil {
		return 0, err
	}

	var uid int64
	if err := json.Unmarshal(result, &uid); err != nil || uid == 0 {
		return 0, fmt.Errorf("odoo login rejected for user %q", c.cfg.Username)
	}

	c.uid = uid
	return uid, nil
}

// ExecuteKw calls model.method through object.execute_kw
func (c *Client) ExecuteKw(ctx context.Context, model, method string, args []interface{}, kwargs map[string]interface{}, out interface{}) error {
	uid, err := c.Login(ctx)
	if err != nil {
		return err
	}
	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}

	callArgs := []interface{}{c.cfg.Database, uid, c.cfg.Password, model, method, args, kwargs}
	if err := c.call(ctx, "object", "execute_kw", callArgs, out); err != nil {
		return fmt.Errorf("%s.%s: %w", model, method, err)
	}
	return nil
}

type idRecord struct {
	ID int64 `json:"id"`
}

func (c *Client) searchOne(ctx context.Context, model string, domain []interface{}) (int64, error) {
	var records []idRecord
	kwargs := map[string]interface{}{"fields": []string{"id"}, "limit": 1}
	if err := c.ExecuteKw(ctx, model, "search_read", []interface{}{domain}, kwargs, &records); err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	return records[0].ID, nil
}

// EnsurePartner finds the customer's res.partner by phone or email, creating it when missing
func (c *Client) EnsurePartner(ctx context.Context, customer models.Customer) (int64, error) {
	var domain []interface{}
	switch {
	case customer.Phone != "" && customer.Email != "":
		domain = []interface{}{"|", []interface{}{"phone", "=", customer.Phone}, []interface{}{"email", "=", customer.Email}}
	case customer.Phone != "":
		domain = []interface{}{[]interface{}{"phone", "=", customer.Phone}}
	default:
		domain = []interface{}{[]interface{}{"email", "=", customer.Email}}
	}

	id, err := c.searchOne(ctx, "res.partner", domain)
	if err != nil || id != 0 {
		return id, err
	}

	vals := map[string]interface{}{"name": customer.Name}
	if customer.Phone != "" {
		vals["phone"] = customer.Phone
	}
	if customer.Email != "" {
		vals["email"] = customer.Email
	}

	var created int64
	if err := c.ExecuteKw(ctx, "res.partner", "create", []interface{}{vals}, nil, &created); err != nil {
		return 0, err
	}
	return created, nil
}

// FindProduct maps a menu item to a product.product, by internal reference
// (the menu item id) first and then by name.
func (c *Client) FindProduct(ctx context.Context, line models.LineItem) (int64, error) {
	id, err := c.searchOne(ctx, "product.product", []interface{}{[]interface{}{"default_code", "=", line.ItemID}})
	if err != nil || id != 0 {
		return id, err
	}

	id, err = c.searchOne(ctx, "product.product", []interface{}{[]interface{}{"name", "=", line.Name}})
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, fmt.Errorf("%s (%s): %w", line.Name, line.ItemID, ErrProductNotFound)
	}
	return id, nil
}

// FindSaleOrder returns the id of the sale.order whose client_order_ref is
// number, or 0 when there is none.
func (c *Client) FindSaleOrder(ctx context.Context, number string) (int64, error) {
	return c.searchOne(ctx, "sale.order", []interface{}{[]interface{}{"client_order_ref", "=", number}})
}

// CreateSaleOrder creates a draft sale.order mirroring order and returns its
// id. An existing sale order carrying the same order number is reused, so a
// create whose reply was lost is not repeated.
func (c *Client) CreateSaleOrder(ctx context.Context, order models.Order) (int64, error) {
	existing, err := c.FindSaleOrder(ctx, order.Number)
	if err != nil {
		return 0, fmt.Errorf("failed to look up sale order: %w", err)
	}
	if existing != 0 {
		return existing, nil
	}

	partnerID, err := c.EnsurePartner(ctx, order.Customer)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve partner: %w", err)
	}

	lines := make([]interface{}, 0, len(order.Items))
	for _, l := range order.Items {
		productID, err := c.FindProduct(ctx, l)
		if err != nil {
			return 0, err
		}
		name := l.Name
		if l.Size != "" {
			name += " (" + l.Size + ")"
		}
		if l.Notes != "" {
			name += " - " + l.Notes
		}
		// (0, 0, vals) is Odoo's "create and link" one2many command.
		lines = append(lines, []interface{}{0, 0, map[string]interface{}{
			"product_id":      productID,
			"product_uom_qty": l.Quantity,
			"price_unit":      l.UnitPrice,
			"name":            name,
		}})
	}

	vals := map[string]interface{}{
		"partner_id":       partnerID,
		"client_order_ref": order.Number,
		"order_line":       lines,
	}
	if order.Notes != "" {
		vals["note"] = order.Notes
	}

	var id int64
	if err := c.ExecuteKw(ctx, "sale.order", "create", []interface{}{vals}, nil, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// ConfirmSaleOrder moves a draft sale order to a confirmed sale
func (c *Client) ConfirmSaleOrder(ctx context.Context, id int64) error {
	return c.ExecuteKw(ctx, "sale.order", "action_confirm", []interface{}{[]int64{id}}, nil, nil)
}

// CancelSaleOrder cancels a sale order
func (c *Client) CancelSaleOrder(ctx context.Context, id int64) error {
	return c.ExecuteKw(ctx, "sale.order", "action_cancel", []interface{}{[]int64{id}}, nil, nil)
}
