// Package referencedata wraps the reference data API that defines the code
// sets step controllers offer as options.
package referencedata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"contactsadmin/internal/contacts/models"
	dErrors "contactsadmin/pkg/domain-errors"
)

// Code groups used by the journey steps.
const (
	GroupSocialRelationship   = "SOCIAL_RELATIONSHIP"
	GroupOfficialRelationship = "OFFICIAL_RELATIONSHIP"
	GroupRestrictionType      = "RESTRICTION"
	GroupTitle                = "TITLE"
)

// Code is one reference data entry.
type Code struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Client fetches reference code groups.
type Client interface {
	GetGroup(ctx context.Context, group string) ([]Code, error)
}

// RelationshipGroup maps a relationship classification onto the code group
// that holds its valid relationship-to-prisoner codes.
func RelationshipGroup(relationshipType string) string {
	if relationshipType == models.RelationshipTypeOfficial {
		return GroupOfficialRelationship
	}
	return GroupSocialRelationship
}

// GetGroups fetches several groups in parallel; a step that needs titles and
// relationship codes waits once.
func GetGroups(ctx context.Context, client Client, groups ...string) (map[string][]Code, error) {
	results := make([][]Code, len(groups))
	g, ctx := errgroup.WithContext(ctx)
	for i, group := range groups {
		g.Go(func() error {
			codes, err := client.GetGroup(ctx, group)
			if err != nil {
				return err
			}
			results[i] = codes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byGroup := make(map[string][]Code, len(groups))
	for i, group := range groups {
		byGroup[group] = results[i]
	}
	return byGroup, nil
}

// Describe resolves a code to its description within a group, falling back to
// the raw code when the group does not contain it.
func Describe(codes []Code, code string) string {
	for _, c := range codes {
		if c.Code == code {
			return c.Description
		}
	}
	return code
}

// HTTPClient talks to a real reference data deployment.
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

func (c *HTTPClient) GetGroup(ctx context.Context, group string) ([]Code, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reference-codes/group/"+group, nil)
	if err != nil {
		return nil, fmt.Errorf("build reference data request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "reference data unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, dErrors.New(dErrors.CodeUnavailable, fmt.Sprintf("reference data returned %d for group %s", resp.StatusCode, group))
	}

	var codes []Code
	if err := json.NewDecoder(resp.Body).Decode(&codes); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "decode reference data response", err)
	}
	return codes, nil
}
