package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/voiceforge/voiceforge/domain/entities"
	"github.com/voiceforge/voiceforge/domain/repositories"
	"github.com/voiceforge/voiceforge/internal/config"
)

// CustomVoiceClient talks to the customvoice REST API (projects, consents,
// personal voices, operations).
type CustomVoiceClient struct {
	key        string
	baseURL    string
	apiVersion string
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure CustomVoiceClient implements the CustomVoice interface
var _ repositories.CustomVoice = (*CustomVoiceClient)(nil)

// NewCustomVoiceClient creates a custom voice client from the speech config.
func NewCustomVoiceClient(cfg config.Speech, logger *zap.Logger) (*CustomVoiceClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CustomVoiceClient{
		key:        cfg.Key,
		baseURL:    strings.TrimRight(cfg.BaseURL(), "/"),
		apiVersion: cfg.CustomVoiceAPIVersion,
		httpClient: newHTTPClient(defaultHTTPTimeout),
		logger:     logger,
	}, nil
}

// projectResponse mirrors the customvoice project resource.
type projectResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	CreatedAt   string `json:"createdDateTime"`
}

// operationResponse mirrors the customvoice operation resource.
type operationResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// consentResponse mirrors the customvoice consent resource.
type consentResponse struct {
	ID              string `json:"id"`
	ProjectID       string `json:"projectId"`
	VoiceTalentName string `json:"voiceTalentName"`
	CompanyName     string `json:"companyName"`
	Locale          string `json:"locale"`
	Status          string `json:"status"`
}

// voiceResponse mirrors the customvoice personal voice resource.
type voiceResponse struct {
	ID               string `json:"id"`
	ProjectID        string `json:"projectId"`
	ConsentID        string `json:"consentId"`
	Status           string `json:"status"`
	SpeakerProfileID string `json:"speakerProfileId"`
	CreatedAt        string `json:"createdDateTime"`
	LastActionAt     string `json:"lastActionDateTime"`
}

func (c *CustomVoiceClient) endpoint(path string) string {
	return fmt.Sprintf("%s%s?api-version=%s", c.baseURL, path, url.QueryEscape(c.apiVersion))
}

// CreateProject creates the project grouping entity. The service rejects
// duplicate identifiers and invalid characters; those surface as
// *ServiceError with the response body attached.
func (c *CustomVoiceClient) CreateProject(ctx context.Context, projectID, description string) (entities.Project, error) {
	payload, err := json.Marshal(map[string]string{
		"description": description,
		"kind":        "PersonalVoice",
	})
	if err != nil {
		return entities.Project{}, fmt.Errorf("failed to encode project payload: %w", err)
	}

	endpoint := c.endpoint("/customvoice/projects/" + url.PathEscape(projectID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return entities.Project{}, fmt.Errorf("failed to build project request: %w", err)
	}
	req.Header.Set(subscriptionKeyHeader, c.key)
	req.Header.Set("Content-Type", "application/json")

	body, _, err := c.do(req)
	if err != nil {
		return entities.Project{}, err
	}

	var resp projectResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return entities.Project{}, fmt.Errorf("failed to decode project response: %w", err)
	}

	c.logger.Info("project created", zap.String("projectID", resp.ID))

	return entities.Project{
		ID:          resp.ID,
		Description: resp.Description,
		Kind:        resp.Kind,
		CreatedAt:   parseServiceTime(resp.CreatedAt),
	}, nil
}

// UploadConsent uploads the consent audio as multipart form data and returns
// the consent record together with the validation operation handle.
func (c *CustomVoiceClient) UploadConsent(ctx context.Context, upload repositories.ConsentUpload) (entities.Consent, entities.Operation, error) {
	fields := map[string]string{
		"description":     upload.Description,
		"projectId":       upload.ProjectID,
		"voiceTalentName": upload.VoiceTalentName,
		"companyName":     upload.CompanyName,
		"locale":          upload.Locale,
	}
	samples := []repositories.VoiceSample{{Filename: upload.AudioFilename, Audio: upload.Audio}}

	endpoint := c.endpoint("/customvoice/consents/" + url.PathEscape(upload.ConsentID))
	body, header, err := c.postMultipart(ctx, endpoint, fields, samples)
	if err != nil {
		return entities.Consent{}, entities.Operation{}, err
	}

	var resp consentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return entities.Consent{}, entities.Operation{}, fmt.Errorf("failed to decode consent response: %w", err)
	}
	if resp.ID == "" {
		resp.ID = upload.ConsentID
	}

	operation := operationFromResponse(header, resp.ID, resp.Status)

	c.logger.Info("consent uploaded",
		zap.String("consentID", resp.ID),
		zap.String("operationID", operation.ID))

	consent := entities.Consent{
		ID:              resp.ID,
		ProjectID:       upload.ProjectID,
		VoiceTalentName: upload.VoiceTalentName,
		CompanyName:     upload.CompanyName,
		Locale:          upload.Locale,
		Status:          entities.ParseOperationStatus(resp.Status),
	}
	return consent, operation, nil
}

// GetOperation fetches the state of an asynchronous job.
func (c *CustomVoiceClient) GetOperation(ctx context.Context, operationID string) (entities.Operation, error) {
	endpoint := c.endpoint("/customvoice/operations/" + url.PathEscape(operationID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return entities.Operation{}, fmt.Errorf("failed to build operation request: %w", err)
	}
	req.Header.Set(subscriptionKeyHeader, c.key)

	body, _, err := c.do(req)
	if err != nil {
		return entities.Operation{}, err
	}

	var resp operationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return entities.Operation{}, fmt.Errorf("failed to decode operation response: %w", err)
	}

	operation := entities.Operation{
		ID:     resp.ID,
		Status: entities.ParseOperationStatus(resp.Status),
	}
	if resp.Error != nil {
		operation.Diagnostic = resp.Error.Message
	}
	if operation.ID == "" {
		operation.ID = operationID
	}
	return operation, nil
}

// CreateVoice uploads the training samples as multipart form data and starts
// the training job.
func (c *CustomVoiceClient) CreateVoice(ctx context.Context, creation repositories.VoiceCreation) (entities.PersonalVoice, entities.Operation, error) {
	fields := map[string]string{
		"projectId": creation.ProjectID,
		"consentId": creation.ConsentID,
	}

	endpoint := c.endpoint("/customvoice/personalvoices/" + url.PathEscape(creation.VoiceID))
	body, header, err := c.postMultipart(ctx, endpoint, fields, creation.Samples)
	if err != nil {
		return entities.PersonalVoice{}, entities.Operation{}, err
	}

	var resp voiceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return entities.PersonalVoice{}, entities.Operation{}, fmt.Errorf("failed to decode voice response: %w", err)
	}
	if resp.ID == "" {
		resp.ID = creation.VoiceID
	}

	operation := operationFromResponse(header, resp.ID, resp.Status)

	c.logger.Info("personal voice creation started",
		zap.String("voiceID", resp.ID),
		zap.String("operationID", operation.ID),
		zap.Int("samples", len(creation.Samples)))

	voice := entities.PersonalVoice{
		ID:               resp.ID,
		ProjectID:        creation.ProjectID,
		ConsentID:        creation.ConsentID,
		Status:           entities.ParseOperationStatus(resp.Status),
		SpeakerProfileID: resp.SpeakerProfileID,
	}
	return voice, operation, nil
}

// GetVoice fetches the personal voice resource. SpeakerProfileID is present
// once training has succeeded.
func (c *CustomVoiceClient) GetVoice(ctx context.Context, voiceID string) (entities.PersonalVoice, error) {
	endpoint := c.endpoint("/customvoice/personalvoices/" + url.PathEscape(voiceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return entities.PersonalVoice{}, fmt.Errorf("failed to build voice request: %w", err)
	}
	req.Header.Set(subscriptionKeyHeader, c.key)

	body, _, err := c.do(req)
	if err != nil {
		return entities.PersonalVoice{}, err
	}

	var resp voiceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return entities.PersonalVoice{}, fmt.Errorf("failed to decode voice response: %w", err)
	}

	return entities.PersonalVoice{
		ID:               resp.ID,
		ProjectID:        resp.ProjectID,
		ConsentID:        resp.ConsentID,
		Status:           entities.ParseOperationStatus(resp.Status),
		SpeakerProfileID: resp.SpeakerProfileID,
		CreatedAt:        parseServiceTime(resp.CreatedAt),
		LastActionAt:     parseServiceTime(resp.LastActionAt),
	}, nil
}

// DeleteProject removes a project and everything scoped under it.
func (c *CustomVoiceClient) DeleteProject(ctx context.Context, projectID string) error {
	endpoint := c.endpoint("/customvoice/projects/" + url.PathEscape(projectID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}
	req.Header.Set(subscriptionKeyHeader, c.key)

	_, _, err = c.do(req)
	if err != nil {
		return err
	}

	c.logger.Info("project deleted", zap.String("projectID", projectID))
	return nil
}

// postMultipart sends fields plus one audiodata part per sample and returns
// the response body and headers.
func (c *CustomVoiceClient) postMultipart(ctx context.Context, endpoint string, fields map[string]string, samples []repositories.VoiceSample) ([]byte, http.Header, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := writer.WriteField(name, value); err != nil {
			return nil, nil, fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	for _, sample := range samples {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="audiodata"; filename="%s"`, sample.Filename))
		header.Set("Content-Type", "audio/wav")
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create audio part: %w", err)
		}
		if _, err := part.Write(sample.Audio); err != nil {
			return nil, nil, fmt.Errorf("failed to write audio part: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build multipart request: %w", err)
	}
	req.Header.Set(subscriptionKeyHeader, c.key)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req)
}

// do executes the request, mapping non-2xx statuses to *ServiceError.
func (c *CustomVoiceClient) do(req *http.Request) ([]byte, http.Header, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response from %s: %w", req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &ServiceError{
			StatusCode: resp.StatusCode,
			Endpoint:   req.URL.Path,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return body, resp.Header, nil
}

// operationFromResponse resolves the operation handle for an asynchronous
// call: the Operation-Location header when the service sent one, the
// resource id otherwise (older API versions report status on the resource
// itself).
func operationFromResponse(header http.Header, resourceID, status string) entities.Operation {
	id := resourceID
	if loc := header.Get("Operation-Location"); loc != "" {
		id = operationIDFromLocation(loc)
	} else if opID := header.Get("Operation-Id"); opID != "" {
		id = opID
	}
	return entities.Operation{
		ID:     id,
		Status: entities.ParseOperationStatus(status),
	}
}

// operationIDFromLocation extracts the trailing path segment of an
// Operation-Location URL, dropping any query string.
func operationIDFromLocation(location string) string {
	if u, err := url.Parse(location); err == nil {
		location = u.Path
	}
	location = strings.TrimRight(location, "/")
	if idx := strings.LastIndex(location, "/"); idx >= 0 {
		return location[idx+1:]
	}
	return location
}

// parseServiceTime parses the RFC3339-ish timestamps the service returns,
// falling back to the zero value on anything unexpected.
func parseServiceTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}
