package moco

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ClientConfig represents the configuration for MOCO API client.
type ClientConfig struct {
	APIURL   string        // e.g. https://example.mocoapp.com/api/v1
	APIToken string
	Timeout  time.Duration // Default: 30 seconds
	PerPage  int           // Default: 100
}

// Client is a MOCO API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
	perPage    int
}

// APIError is returned for non-successful MOCO API responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("moco API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("moco API error (status %d): %s", e.StatusCode, e.Message)
}

// NewClient creates a new MOCO API client.
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	perPage := config.PerPage
	if perPage <= 0 {
		perPage = 100
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:  strings.TrimRight(config.APIURL, "/"),
		apiToken: config.APIToken,
		perPage:  perPage,
	}
}

// ListInvoices lists a single page of invoices matching params.
// It returns the invoices and the total number of matching invoices
// as reported by the X-Total header (-1 if absent).
func (c *Client) ListInvoices(ctx context.Context, params map[string]string) ([]Invoice, int, error) {
	queryParams := url.Values{}
	for k, v := range params {
		queryParams.Set(k, v)
	}

	resp, err := c.get(ctx, "invoices", queryParams)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, c.parseError(resp)
	}

	var invoices []Invoice
	if err := json.NewDecoder(resp.Body).Decode(&invoices); err != nil {
		return nil, 0, fmt.Errorf("failed to decode response: %w", err)
	}

	total := -1
	if h := resp.Header.Get("X-Total"); h != "" {
		if n, err := strconv.Atoi(h); err == nil {
			total = n
		}
	}

	return invoices, total, nil
}

// FetchSentInvoices fetches all invoices with status "sent", following pagination.
func (c *Client) FetchSentInvoices(ctx context.Context) ([]Invoice, error) {
	return c.FetchAllInvoices(ctx, map[string]string{"status": "sent"})
}

// FetchAllInvoices fetches all invoices matching params with pagination.
func (c *Client) FetchAllInvoices(ctx context.Context, params map[string]string) ([]Invoice, error) {
	var allInvoices []Invoice
	seen := make(map[int64]bool)
	page := 1

	for {
		pageParams := map[string]string{
			"page":     strconv.Itoa(page),
			"per_page": strconv.Itoa(c.perPage),
		}
		for k, v := range params {
			pageParams[k] = v
		}

		invoices, total, err := c.ListInvoices(ctx, pageParams)
		if err != nil {
			return nil, fmt.Errorf("failed to list invoices (page=%d): %w", page, err)
		}

		if len(invoices) == 0 {
			break
		}

		// A page without new invoices means the server ignores paging.
		fresh := 0
		for _, inv := range invoices {
			if !seen[inv.ID] {
				seen[inv.ID] = true
				allInvoices = append(allInvoices, inv)
				fresh++
			}
		}
		if fresh == 0 {
			break
		}

		if total >= 0 && len(allInvoices) >= total {
			break
		}
		if len(invoices) < c.perPage {
			break
		}

		page++
	}

	return allInvoices, nil
}

// FetchProject fetches a project by ID.
// Returns nil without error if the project does not exist.
func (c *Client) FetchProject(ctx context.Context, id int64) (*Project, error) {
	var project Project
	found, err := c.fetchOne(ctx, fmt.Sprintf("projects/%d", id), &project)
	if err != nil || !found {
		return nil, err
	}
	return &project, nil
}

// FetchCustomer fetches a customer by ID.
// Returns nil without error if the customer does not exist.
func (c *Client) FetchCustomer(ctx context.Context, id int64) (*Customer, error) {
	var customer Customer
	found, err := c.fetchOne(ctx, fmt.Sprintf("customers/%d", id), &customer)
	if err != nil || !found {
		return nil, err
	}
	return &customer, nil
}

// fetchOne decodes a single resource into out. A 404 is reported as found=false.
func (c *Client) fetchOne(ctx context.Context, path string, out interface{}) (bool, error) {
	resp, err := c.get(ctx, path, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, c.parseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}

	return true, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, path)
	if len(query) > 0 {
		endpoint = fmt.Sprintf("%s?%s", endpoint, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Token token=%q", c.apiToken))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	return resp, nil
}

// parseError parses an error response from MOCO API.
func (c *Client) parseError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "failed to read error response"}
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Message == "" {
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	return &APIError{StatusCode: resp.StatusCode, Message: errResp.Message}
}
