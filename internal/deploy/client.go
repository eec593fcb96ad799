// Package deploy uploads the built front end and server entry point to the
// hosting provider's REST API.
package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Project is a hosting provider project.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Deployment is the provider's view of an uploaded deployment.
type Deployment struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Status    string `json:"status"`
}

// Asset is one uploaded file.
type Asset struct {
	Kind     string `json:"kind"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// DeploymentRequest is the body of the create-deployment call.
type DeploymentRequest struct {
	EntryPointURL string            `json:"entryPointUrl"`
	Assets        map[string]Asset  `json:"assets"`
	EnvVars       map[string]string `json:"envVars"`
}

// APIError is returned for any non-2xx response.  Body holds the response
// body verbatim.
type APIError struct {
	Op     string
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %d %s: %s", e.Op, e.Status, http.StatusText(e.Status), bytes.TrimSpace(e.Body))
}

// PrettyBody returns the body indented when it is JSON, verbatim otherwise.
func (e *APIError) PrettyBody() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, e.Body, "", "  "); err != nil {
		return string(e.Body)
	}
	return buf.String()
}

// Client talks to the hosting API with a bearer token.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// ListProjects returns the projects of an organization.
func (c *Client) ListProjects(ctx context.Context, orgID string) ([]Project, error) {
	var out []Project
	err := c.do(ctx, "list projects", http.MethodGet, "/organizations/"+url.PathEscape(orgID)+"/projects", nil, &out)
	return out, err
}

// FindProject returns the project named name, if the organization has one.
func (c *Client) FindProject(ctx context.Context, orgID, name string) (Project, bool, error) {
	projects, err := c.ListProjects(ctx, orgID)
	if err != nil {
		return Project{}, false, err
	}
	for _, p := range projects {
		if p.Name == name {
			return p, true, nil
		}
	}
	return Project{}, false, nil
}

// CreateProject creates a project.  An empty name lets the provider generate one.
func (c *Client) CreateProject(ctx context.Context, orgID, name string) (Project, error) {
	body := struct {
		Name *string `json:"name"`
	}{}
	if name != "" {
		body.Name = &name
	}
	var p Project
	err := c.do(ctx, "create project", http.MethodPost, "/organizations/"+url.PathEscape(orgID)+"/projects", body, &p)
	return p, err
}

// CreateDeployment uploads assets as a new deployment of projectID.
func (c *Client) CreateDeployment(ctx context.Context, projectID string, req DeploymentRequest) (Deployment, error) {
	if req.EnvVars == nil {
		req.EnvVars = map[string]string{}
	}
	var d Deployment
	err := c.do(ctx, "create deployment", http.MethodPost, "/projects/"+url.PathEscape(projectID)+"/deployments", req, &d)
	return d, err
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		bs, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(bs)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Op: op, Status: resp.StatusCode, Body: raw}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
