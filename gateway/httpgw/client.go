// Package httpgw implements gateway.Service against the HTTP APIs of the
// three providers: a DocuSeal-style documents service, a directory service
// for account provisioning and an LMS for training enrollment.
//
// Every call carries a bounded timeout; a timed-out call surfaces as an
// ordinary error and the engine records it as a step execution failure.
package httpgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/viant/scy"

	"github.com/talentops/onboard/gateway"
)

// Credentials identifies a provider API key, either inline or stored in an
// encrypted scy resource.
type Credentials struct {
	APIKey string `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
	// SecretURL points at an encrypted secret, e.g. "blowfish://default"
	// keyed resource; when set it takes precedence over APIKey.
	SecretURL string `json:"secretURL,omitempty" yaml:"secretURL,omitempty"`
	SecretKey string `json:"secretKey,omitempty" yaml:"secretKey,omitempty"`
}

// Config holds the provider endpoints and credentials.
type Config struct {
	DocumentsBaseURL string      `json:"documentsBaseURL" yaml:"documentsBaseURL"`
	DirectoryBaseURL string      `json:"directoryBaseURL" yaml:"directoryBaseURL"`
	TrainingBaseURL  string      `json:"trainingBaseURL" yaml:"trainingBaseURL"`
	Documents        Credentials `json:"documents" yaml:"documents"`
	Directory        Credentials `json:"directory" yaml:"directory"`
	Training         Credentials `json:"training" yaml:"training"`
	// TimeoutSec bounds each provider call; defaults to 30.
	TimeoutSec int `json:"timeoutSec" yaml:"timeoutSec"`
}

// Validate checks that all endpoints are present.
func (c *Config) Validate() error {
	if c.DocumentsBaseURL == "" {
		return fmt.Errorf("documentsBaseURL is required")
	}
	if c.DirectoryBaseURL == "" {
		return fmt.Errorf("directoryBaseURL is required")
	}
	if c.TrainingBaseURL == "" {
		return fmt.Errorf("trainingBaseURL is required")
	}
	return nil
}

// Client implements gateway.Service over HTTP.
type Client struct {
	config     *Config
	httpClient *http.Client
	secrets    *scy.Service
}

var _ gateway.Service = (*Client)(nil)

// New creates a gateway client for the configured providers.
func New(config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	timeout := time.Duration(config.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		secrets:    scy.New(),
	}, nil
}

// CreateSigningRequest opens a signing submission for the offer letter.
func (c *Client) CreateSigningRequest(ctx context.Context, request *gateway.SigningRequest) (*gateway.SigningResponse, error) {
	body := map[string]interface{}{
		"template_id": request.TemplateRef,
		"data":        request.Fields,
	}
	var response struct {
		ID          string `json:"id"`
		DownloadURL string `json:"download_url"`
	}
	if err := c.post(ctx, c.config.DocumentsBaseURL+"/submissions", c.config.Documents, body, &response); err != nil {
		return nil, fmt.Errorf("create signing request: %w", err)
	}
	return &gateway.SigningResponse{SubmissionID: response.ID, DownloadURL: response.DownloadURL}, nil
}

// ProvisionAccount creates a directory user account.
func (c *Client) ProvisionAccount(ctx context.Context, request *gateway.AccountRequest) (*gateway.AccountResponse, error) {
	body := map[string]interface{}{
		"userPrincipalName": request.PrincipalName,
		"displayName":       request.DisplayName,
		"accountEnabled":    true,
	}
	var response struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, c.config.DirectoryBaseURL+"/users", c.config.Directory, body, &response); err != nil {
		return nil, fmt.Errorf("provision account: %w", err)
	}
	return &gateway.AccountResponse{UserID: response.ID}, nil
}

// EnrollInTraining creates an LMS user and course enrollment.
func (c *Client) EnrollInTraining(ctx context.Context, request *gateway.TrainingRequest) (*gateway.TrainingResponse, error) {
	body := map[string]interface{}{
		"first_name": request.FirstName,
		"last_name":  request.LastName,
		"email":      request.Email,
		"login":      request.Email,
		"course_id":  request.CourseRef,
	}
	var response struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, c.config.TrainingBaseURL+"/enrollments", c.config.Training, body, &response); err != nil {
		return nil, fmt.Errorf("enroll in training: %w", err)
	}
	return &gateway.TrainingResponse{EnrollmentID: response.ID}, nil
}

// post sends a JSON request and decodes a JSON response; non-2xx responses
// become errors carrying a body snippet.
func (c *Client) post(ctx context.Context, endpoint string, credentials Credentials, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	apiKey, err := c.apiKey(ctx, credentials)
	if err != nil {
		return err
	}
	if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned status %d: %s", endpoint, resp.StatusCode, snippet)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", endpoint, err)
	}
	return nil
}

// apiKey resolves the provider credential, decrypting the scy resource when
// one is configured.
func (c *Client) apiKey(ctx context.Context, credentials Credentials) (string, error) {
	if credentials.SecretURL == "" {
		return credentials.APIKey, nil
	}
	resource := scy.NewResource(nil, credentials.SecretURL, credentials.SecretKey)
	secret, err := c.secrets.Load(ctx, resource)
	if err != nil {
		return "", fmt.Errorf("failed to load secret from %s: %w", credentials.SecretURL, err)
	}
	return secret.String(), nil
}
