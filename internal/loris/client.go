package loris

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// ErrNoProjects is returned when the API reports no projects at all. An empty
// project list means the account or instance is misconfigured, not that there
// is simply nothing new.
var ErrNoProjects = errors.New("no projects returned by API")

// AuthError reports a login exchange that did not yield a usable token.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "login failed: " + e.Reason
}

// Client represents a LORIS API client
type Client struct {
	BaseURL    string
	token      string
	httpClient *http.Client
}

// Image represents one imaging record as returned by the LORIS images endpoint
type Image struct {
	Candidate string `json:"Candidate"`
	Visit     string `json:"Visit"`
	ScanType  string `json:"ScanType"`
	Link      string `json:"Link"` // relative download URL
}

// NewClient creates a new LORIS client for the given API base URL
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Login exchanges the credential for a bearer token. The token is held by the
// client and presented on every subsequent API call.
func (c *Client) Login(username, password string) error {
	loginURL := c.BaseURL + "/login"

	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("failed to encode login payload: %w", err)
	}

	resp, err := c.httpClient.Post(loginURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", loginURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &AuthError{Reason: fmt.Sprintf("login returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return &AuthError{Reason: fmt.Sprintf("malformed login response: %v", err)}
	}

	if loginResp.Token == "" {
		return &AuthError{Reason: "login succeeded but no token returned"}
	}

	c.token = loginResp.Token
	return nil
}

// Token returns the bearer token obtained by Login. Empty before a successful
// login.
func (c *Client) Token() string {
	return c.token
}

// ListProjects fetches the set of visible projects, sorted by name
func (c *Client) ListProjects() ([]string, error) {
	var projResp struct {
		Projects map[string]json.RawMessage `json:"Projects"`
	}
	if err := c.get(c.BaseURL+"/projects", &projResp); err != nil {
		return nil, err
	}

	if len(projResp.Projects) == 0 {
		return nil, ErrNoProjects
	}

	names := make([]string, 0, len(projResp.Projects))
	for name := range projResp.Projects {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

// ListImages fetches the imaging records for one project. An empty result is
// valid: the project has nothing to ingest.
func (c *Client) ListImages(project string) ([]Image, error) {
	var imgResp struct {
		Images []Image `json:"Images"`
	}
	listURL := fmt.Sprintf("%s/projects/%s/images", c.BaseURL, url.PathEscape(project))
	if err := c.get(listURL, &imgResp); err != nil {
		return nil, err
	}

	return imgResp.Images, nil
}

// ImageURL returns the absolute download URL for an image record
func (c *Client) ImageURL(img Image) string {
	return c.BaseURL + img.Link
}

func (c *Client) get(requestURL string, out any) error {
	req, err := http.NewRequest(http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", requestURL, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", requestURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s returned status %d: %s", requestURL, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", requestURL, err)
	}

	return nil
}
