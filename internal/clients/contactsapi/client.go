// Package contactsapi wraps the external contacts API that owns persistent
// contact records. Journeys accumulate their answers in the session and only
// call this client on completion.
package contactsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"contactsadmin/internal/contacts/models"
	dErrors "contactsadmin/pkg/domain-errors"
)

// Client is the subset of the contacts API the journey controllers need.
type Client interface {
	CreateContact(ctx context.Context, req CreateContactRequest) (Contact, error)
	AddContactAddress(ctx context.Context, contactID int64, address models.Address) error
	AddRestriction(ctx context.Context, prisonerContactID int64, restriction models.Restriction) error
	GetRelationship(ctx context.Context, prisonerContactID int64) (models.Relationship, error)
	UpdateContactRelationship(ctx context.Context, prisonerContactID int64, relationship models.Relationship) error
	GetEmployments(ctx context.Context, contactID int64) ([]models.Employment, error)
	SyncEmployments(ctx context.Context, contactID int64, employments []models.Employment) error
	SearchContacts(ctx context.Context, term string, page int) (SearchResult, error)
}

// CreateContactRequest is the completion payload for the add-contact journey.
type CreateContactRequest struct {
	PrisonerNumber string              `json:"prisonerNumber"`
	Name           models.Name         `json:"name"`
	DateOfBirth    *models.DateOfBirth `json:"dateOfBirth,omitempty"`
	Relationship   models.Relationship `json:"relationship"`
	CreatedBy      string              `json:"createdBy"`
}

// Contact is the API's view of a persisted contact.
type Contact struct {
	ID          int64       `json:"id"`
	Name        models.Name `json:"name"`
	DateOfBirth string      `json:"dateOfBirth,omitempty"`
}

// SearchResult is one page of contact search matches.
type SearchResult struct {
	Contacts   []Contact `json:"contacts"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
}

// HTTPClient talks to a real contacts API deployment.
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

func (c *HTTPClient) CreateContact(ctx context.Context, req CreateContactRequest) (Contact, error) {
	var contact Contact
	err := c.do(ctx, http.MethodPost, "/contact", req, &contact)
	return contact, err
}

func (c *HTTPClient) AddContactAddress(ctx context.Context, contactID int64, address models.Address) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/contact/%d/address", contactID), address, nil)
}

func (c *HTTPClient) AddRestriction(ctx context.Context, prisonerContactID int64, restriction models.Restriction) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/prisoner-contact/%d/restriction", prisonerContactID), restriction, nil)
}

func (c *HTTPClient) GetRelationship(ctx context.Context, prisonerContactID int64) (models.Relationship, error) {
	var relationship models.Relationship
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/prisoner-contact/%d/relationship", prisonerContactID), nil, &relationship)
	return relationship, err
}

func (c *HTTPClient) UpdateContactRelationship(ctx context.Context, prisonerContactID int64, relationship models.Relationship) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/prisoner-contact/%d/relationship", prisonerContactID), relationship, nil)
}

func (c *HTTPClient) GetEmployments(ctx context.Context, contactID int64) ([]models.Employment, error) {
	var employments []models.Employment
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/contact/%d/employment", contactID), nil, &employments)
	return employments, err
}

func (c *HTTPClient) SyncEmployments(ctx context.Context, contactID int64, employments []models.Employment) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/contact/%d/employment", contactID), employments, nil)
}

func (c *HTTPClient) SearchContacts(ctx context.Context, term string, page int) (SearchResult, error) {
	var result SearchResult
	query := url.Values{"term": {term}, "page": {strconv.Itoa(page)}}
	err := c.do(ctx, http.MethodGet, "/contact/search?"+query.Encode(), nil, &result)
	return result, err
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeUnavailable, "contacts API unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return dErrors.New(dErrors.CodeUnavailable, fmt.Sprintf("contacts API returned %d for %s %s", resp.StatusCode, method, path))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.Wrap(dErrors.CodeUnavailable, "decode contacts API response", err)
	}
	return nil
}
