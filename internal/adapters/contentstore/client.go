package contentstore

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

	"github.com/horse37/corretores-sub000/internal/contextkeys"
	"github.com/horse37/corretores-sub000/internal/contracts"
	"github.com/horse37/corretores-sub000/internal/core/domain"
	"github.com/horse37/corretores-sub000/internal/core/port"
)

const (
	payloadType    = "ImovelPayload"
	payloadVersion = "1.0.0"
)

// Client talks to the headless CMS REST API. Lookups degrade to nil on
// failure, writes return *domain.RemoteWriteError on non-2xx responses.
type Client struct {
	baseURL    string
	apiToken   string
	collection string
	httpClient *http.Client
}

func NewClient(baseURL, apiToken, collection string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiToken:   apiToken,
		collection: collection,
		httpClient: &http.Client{},
	}
}

// doRequest is the shared request helper: trace propagation plus auth.
func (c *Client) doRequest(ctx context.Context, method, url, contentType string, body io.Reader) (*http.Response, error) {
	traceID := contextkeys.TraceIDFromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

func (c *Client) collectionURL() string {
	return fmt.Sprintf("%s/api/%s", c.baseURL, c.collection)
}

func (c *Client) FindByIntegrationID(ctx context.Context, integrationID int64) (*domain.RemoteProperty, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":      "ContentStoreClient",
		"method":         "FindByIntegrationID",
		"integration_id": integrationID,
	})

	url := fmt.Sprintf("%s?filters[id_integracao][$eq]=%d&pagination[pageSize]=1", c.collectionURL(), integrationID)
	logger.Debug("Sending lookup request to content store", port.Fields{"url": url})

	resp, err := c.doRequest(ctx, http.MethodGet, url, "application/json", nil)
	if err != nil {
		logger.Error("Failed to perform request to content store", err, nil)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("content store returned non-success status code %d: %s", resp.StatusCode, string(bodyBytes))
		logger.Error("Received error response from content store", err, port.Fields{"status_code": resp.StatusCode})
		return nil, err
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("Failed to read response from content store", err, nil)
		return nil, err
	}

	entries, err := decodePropertyList(bodyBytes)
	if err != nil {
		logger.Error("Failed to decode response from content store", err, nil)
		return nil, err
	}

	if len(entries) == 0 {
		logger.Debug("No remote record carries this integration id", nil)
		return nil, nil
	}

	remote := entries[0].toDomain()
	logger.Debug("Found existing remote record", port.Fields{"remote_id": remote.ID})
	return &remote, nil
}

// FindFileByName is permissive: any failure is logged and reported as
// "not found" so the caller re-uploads instead of aborting the sync.
func (c *Client) FindFileByName(ctx context.Context, name string) *int64 {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ContentStoreClient",
		"method":    "FindFileByName",
		"file_name": name,
	})

	reqURL := fmt.Sprintf("%s/api/upload/files?filters[name][$eq]=%s", c.baseURL, url.QueryEscape(name))

	resp, err := c.doRequest(ctx, http.MethodGet, reqURL, "application/json", nil)
	if err != nil {
		logger.Warn("File lookup request failed", port.Fields{"error": err.Error()})
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("File lookup returned non-success status", port.Fields{"status_code": resp.StatusCode})
		return nil
	}

	var files []fileDTO
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		logger.Warn("Failed to decode file lookup response", port.Fields{"error": err.Error()})
		return nil
	}
	if len(files) == 0 {
		return nil
	}

	id := files[0].ID
	logger.Debug("File already exists in content store", port.Fields{"file_id": id})
	return &id
}

// UploadFile consumes and closes src.Body. Like FindFileByName it never
// returns an error: a failed upload is logged and the asset is skipped.
func (c *Client) UploadFile(ctx context.Context, src *domain.AssetSource) *int64 {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ContentStoreClient",
		"method":    "UploadFile",
		"file_name": src.Filename,
	})
	defer src.Body.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, src.Filename))
	if src.ContentType != "" {
		header.Set("Content-Type", src.ContentType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		logger.Warn("Failed to build multipart body", port.Fields{"error": err.Error()})
		return nil
	}
	if _, err := io.Copy(part, src.Body); err != nil {
		logger.Warn("Failed to read asset bytes", port.Fields{"error": err.Error()})
		return nil
	}
	if err := writer.Close(); err != nil {
		logger.Warn("Failed to finalize multipart body", port.Fields{"error": err.Error()})
		return nil
	}

	reqURL := fmt.Sprintf("%s/api/upload", c.baseURL)
	resp, err := c.doRequest(ctx, http.MethodPost, reqURL, writer.FormDataContentType(), &buf)
	if err != nil {
		logger.Warn("Upload request failed", port.Fields{"error": err.Error()})
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		logger.Warn("Upload returned non-success status", port.Fields{
			"status_code": resp.StatusCode,
			"body":        string(bodyBytes),
		})
		return nil
	}

	var files []fileDTO
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		logger.Warn("Failed to decode upload response", port.Fields{"error": err.Error()})
		return nil
	}
	if len(files) == 0 {
		logger.Warn("Upload response contained no file entries", nil)
		return nil
	}

	id := files[0].ID
	logger.Info("Uploaded file to content store", port.Fields{"file_id": id})
	return &id
}

func (c *Client) CreateProperty(ctx context.Context, payload domain.RemoteProperty) (*domain.RemoteProperty, error) {
	return c.writeProperty(ctx, "create", http.MethodPost, c.collectionURL(), payload)
}

func (c *Client) UpdateProperty(ctx context.Context, remoteID int64, payload domain.RemoteProperty) (*domain.RemoteProperty, error) {
	url := fmt.Sprintf("%s/%d", c.collectionURL(), remoteID)
	return c.writeProperty(ctx, "update", http.MethodPut, url, payload)
}

func (c *Client) writeProperty(ctx context.Context, operation, method, url string, payload domain.RemoteProperty) (*domain.RemoteProperty, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":      "ContentStoreClient",
		"method":         operation,
		"integration_id": payload.IDIntegracao,
	})

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal property payload", err, nil)
		return nil, err
	}

	// Validate the outbound payload against the registered contract before
	// letting it leave the service.
	if err := contracts.ValidatePayload(payloadType, payloadVersion, payloadBytes); err != nil {
		logger.Error("Property payload violates contract", err, nil)
		return nil, err
	}

	body, err := json.Marshal(map[string]json.RawMessage{"data": payloadBytes})
	if err != nil {
		logger.Error("Failed to marshal request envelope", err, nil)
		return nil, err
	}

	logger.Debug("Sending write request to content store", port.Fields{"url": url})

	resp, err := c.doRequest(ctx, method, url, "application/json", bytes.NewReader(body))
	if err != nil {
		logger.Error("Failed to perform request to content store", err, nil)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		writeErr := &domain.RemoteWriteError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
		}
		logger.Error("Received error response from content store", writeErr, port.Fields{"status_code": resp.StatusCode})
		return nil, writeErr
	}

	var entry entryResponseDTO
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		logger.Error("Failed to decode response from content store", err, nil)
		return nil, err
	}

	remote := entry.Data.toDomain()
	logger.Info("Property written to content store", port.Fields{"remote_id": remote.ID})
	return &remote, nil
}

func (c *Client) DeleteProperty(ctx context.Context, remoteID int64) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ContentStoreClient",
		"method":    "DeleteProperty",
		"remote_id": remoteID,
	})

	url := fmt.Sprintf("%s/%d", c.collectionURL(), remoteID)
	logger.Debug("Sending delete request to content store", port.Fields{"url": url})

	resp, err := c.doRequest(ctx, http.MethodDelete, url, "application/json", nil)
	if err != nil {
		logger.Error("Failed to perform request to content store", err, nil)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		writeErr := &domain.RemoteWriteError{
			Operation:  "delete",
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
		}
		logger.Error("Received error response from content store", writeErr, port.Fields{"status_code": resp.StatusCode})
		return writeErr
	}

	logger.Info("Property deleted from content store", nil)
	return nil
}
