// Package cloud implements ports.ControlPlane against a Neutron-style
// network API over HTTP.
package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/osvik/riskwatch/internal/core/domain"
	"github.com/osvik/riskwatch/internal/core/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client is an HTTP control-plane client. Requests carry the service
// token and are traced through the otelhttp transport.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Wire representations of control-plane responses.

type portPayload struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	DeviceID    string    `json:"device_id"`
	DeviceOwner string    `json:"device_owner"`
	CreatedAt   time.Time `json:"created_at"`
	NetworkID   string    `json:"network_id"`
}

type networkPayload struct {
	ID             string `json:"id"`
	RouterExternal bool   `json:"router:external"`
}

// NewClient creates a control-plane client for the given endpoint.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// ListPorts returns the ports matching the filter.
func (c *Client) ListPorts(ctx context.Context, filter domain.PortFilter) ([]domain.Port, error) {
	endpoint := c.baseURL + "/v2.0/ports"
	if filter.IP != "" {
		endpoint += "?fixed_ips=ip_address=" + url.QueryEscape(filter.IP)
	}

	var payload struct {
		Ports []portPayload `json:"ports"`
	}
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("listing ports: %w", err)
	}

	result := make([]domain.Port, len(payload.Ports))
	for i, p := range payload.Ports {
		result[i] = domain.Port{
			ID:          p.ID,
			ProjectID:   p.ProjectID,
			DeviceID:    p.DeviceID,
			DeviceOwner: p.DeviceOwner,
			CreatedAt:   p.CreatedAt,
			NetworkID:   p.NetworkID,
		}
	}
	return result, nil
}

// GetNetwork returns the network with the given id.
func (c *Client) GetNetwork(ctx context.Context, id string) (*domain.Network, error) {
	var payload struct {
		Network networkPayload `json:"network"`
	}
	endpoint := c.baseURL + "/v2.0/networks/" + url.PathEscape(id)
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("fetching network %s: %w", id, err)
	}

	return &domain.Network{
		ID:             payload.Network.ID,
		RouterExternal: payload.Network.RouterExternal,
	}, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("X-Auth-Token", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Ensure interface compliance
var _ ports.ControlPlane = (*Client)(nil)
