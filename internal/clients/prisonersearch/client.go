// Package prisonersearch wraps the prisoner search API consulted while
// rendering step view-models.
package prisonersearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"contactsadmin/internal/contacts/models"
	dErrors "contactsadmin/pkg/domain-errors"
)

// Client looks up prisoners by their number.
type Client interface {
	GetPrisoner(ctx context.Context, prisonerNumber string) (Prisoner, error)
}

// Prisoner is the search API's response shape.
type Prisoner struct {
	PrisonerNumber string `json:"prisonerNumber"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	PrisonID       string `json:"prisonId"`
}

// Name converts the prisoner's shape into the shared name model for display
// formatting.
func (p Prisoner) Name() models.Name {
	return models.Name{FirstName: p.FirstName, LastName: p.LastName}
}

// HTTPClient talks to a real prisoner search deployment.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, client *http.Client) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{baseURL: baseURL, client: client}
}

func (c *HTTPClient) GetPrisoner(ctx context.Context, prisonerNumber string) (Prisoner, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/prisoner/"+prisonerNumber, nil)
	if err != nil {
		return Prisoner{}, fmt.Errorf("build prisoner request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Prisoner{}, dErrors.Wrap(dErrors.CodeUnavailable, "prisoner search unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Prisoner{}, dErrors.New(dErrors.CodeNotFound, "prisoner not found")
	}
	if resp.StatusCode != http.StatusOK {
		return Prisoner{}, dErrors.New(dErrors.CodeUnavailable, fmt.Sprintf("prisoner search returned %d", resp.StatusCode))
	}

	var prisoner Prisoner
	if err := json.NewDecoder(resp.Body).Decode(&prisoner); err != nil {
		return Prisoner{}, dErrors.Wrap(dErrors.CodeUnavailable, "decode prisoner response", err)
	}
	return prisoner, nil
}
