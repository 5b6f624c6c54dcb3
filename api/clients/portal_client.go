package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ruteri/sites-portal-backend/api"
)

// maxErrorBody bounds how much of a non-JSON error body is kept.
const maxErrorBody = 4096

// APIError is returned for any non-200 response.
type APIError struct {
	StatusCode int
	Response   api.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Response.Details != "" {
		return fmt.Sprintf("portal returned %d: %s (%s)", e.StatusCode, e.Response.Error, e.Response.Details)
	}
	return fmt.Sprintf("portal returned %d: %s", e.StatusCode, e.Response.Error)
}

// PortalClient talks to a portal server.
type PortalClient struct {
	// ServerAddr is the base URL of the portal server
	ServerAddr string

	httpClient *http.Client
}

// NewPortalClient creates a client for the server at serverAddr. A nil
// httpClient gets a default one with a one minute timeout.
func NewPortalClient(serverAddr string, httpClient *http.Client) *PortalClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Minute}
	}
	return &PortalClient{
		ServerAddr: strings.TrimSuffix(serverAddr, "/"),
		httpClient: httpClient,
	}
}

// FetchBlobs fetches every file of the site at siteURL.
func (c *PortalClient) FetchBlobs(ctx context.Context, siteURL string) (*api.FetchBlobsResponse, error) {
	resp, err := c.get(ctx, api.FetchBlobsPath, siteURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed api.FetchBlobsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("could not parse fetch-blobs response: %w", err)
	}
	return &parsed, nil
}

// FetchResource fetches the single file addressed by siteURL. An empty site
// yields an empty body.
func (c *PortalClient) FetchResource(ctx context.Context, siteURL string) ([]byte, http.Header, error) {
	resp, err := c.get(ctx, api.FetchResourcePath, siteURL)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read resource body: %w", err)
	}
	return body, resp.Header, nil
}

func (c *PortalClient) get(ctx context.Context, route, siteURL string) (*http.Response, error) {
	endpoint := c.ServerAddr + route + "?" + url.Values{api.NameParam: {siteURL}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not request %s: %w", route, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, readAPIError(resp)
	}
	return resp, nil
}

func readAPIError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Response: api.ErrorResponse{Error: resp.Status}}
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	if json.Unmarshal(body, &apiErr.Response) != nil || apiErr.Response.Error == "" {
		apiErr.Response.Error = strings.TrimSpace(string(body))
	}
	return apiErr
}
