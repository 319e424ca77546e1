package imoveisapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/horse37/corretores-sub000/internal/contextkeys"
	"github.com/horse37/corretores-sub000/internal/core/domain"
	"github.com/horse37/corretores-sub000/internal/core/port"
)

// Client implements the property repository port over the legacy listings
// API. Deployments of that API disagree about the response envelope, so
// every list response goes through normalizeListResponse.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

func (c *Client) doRequest(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	traceID := contextkeys.TraceIDFromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// normalizeListResponse accepts the four envelope shapes observed in the
// wild: a bare array, {"data": [...]}, {"imoveis": [...]} and
// {"data": {"imoveis": [...], "pagination": {...}}}.
func normalizeListResponse(body []byte) ([]propertyDTO, *paginationDTO, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil, fmt.Errorf("empty response body")
	}

	if trimmed[0] == '[' {
		var items []propertyDTO
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, nil, fmt.Errorf("failed to decode bare array response: %w", err)
		}
		return items, nil, nil
	}

	var envelope struct {
		Data       json.RawMessage `json:"data"`
		Imoveis    []propertyDTO   `json:"imoveis"`
		Pagination *paginationDTO  `json:"pagination"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}

	if len(envelope.Data) > 0 {
		inner := bytes.TrimSpace(envelope.Data)
		if len(inner) > 0 && inner[0] == '[' {
			var items []propertyDTO
			if err := json.Unmarshal(inner, &items); err != nil {
				return nil, nil, fmt.Errorf("failed to decode data array: %w", err)
			}
			return items, envelope.Pagination, nil
		}

		var nested struct {
			Imoveis    []propertyDTO  `json:"imoveis"`
			Pagination *paginationDTO `json:"pagination"`
		}
		if err := json.Unmarshal(inner, &nested); err != nil {
			return nil, nil, fmt.Errorf("failed to decode nested data object: %w", err)
		}
		pagination := nested.Pagination
		if pagination == nil {
			pagination = envelope.Pagination
		}
		return nested.Imoveis, pagination, nil
	}

	return envelope.Imoveis, envelope.Pagination, nil
}

func (c *Client) ListAll(ctx context.Context, page, pageSize int) (*domain.PropertyPage, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ImoveisApiClient",
		"method":    "ListAll",
		"page":      page,
	})

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	url := fmt.Sprintf("%s/api/imoveis?page=%d&limit=%d", c.baseURL, page, pageSize)
	logger.Debug("Sending request to listings API", port.Fields{"url": url})

	resp, err := c.doRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		logger.Error("Failed to perform request to listings API", err, nil)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("listings API returned non-success status code %d: %s", resp.StatusCode, string(bodyBytes))
		logger.Error("Received error response from listings API", err, port.Fields{"status_code": resp.StatusCode})
		return nil, err
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("Failed to read listings API response", err, nil)
		return nil, err
	}

	dtos, pagination, err := normalizeListResponse(bodyBytes)
	if err != nil {
		logger.Error("Failed to normalize listings API response", err, nil)
		return nil, err
	}

	items := make([]domain.LocalProperty, len(dtos))
	for i := range dtos {
		items[i] = dtos[i].toDomain()
	}

	result := &domain.PropertyPage{Items: items, Page: page}
	if pagination != nil {
		result.TotalPages = pagination.TotalPages.orZero()
		result.TotalItems = pagination.Total.orZero()
	}
	if result.TotalPages == 0 {
		// No pagination metadata: a short page is the last one.
		if len(items) < pageSize {
			result.TotalPages = page
		} else {
			result.TotalPages = page + 1
		}
	}
	if result.TotalItems == 0 {
		result.TotalItems = len(items)
	}

	logger.Info("Received properties page", port.Fields{
		"items_count": len(items),
		"total_pages": result.TotalPages,
	})
	return result, nil
}

func (c *Client) GetByID(ctx context.Context, id int64) (*domain.LocalProperty, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "ImoveisApiClient",
		"method":      "GetByID",
		"property_id": id,
	})

	url := fmt.Sprintf("%s/api/imoveis/%d", c.baseURL, id)
	logger.Debug("Sending request to listings API", port.Fields{"url": url})

	resp, err := c.doRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		logger.Error("Failed to perform request to listings API", err, nil)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrPropertyNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("listings API returned non-success status code %d: %s", resp.StatusCode, string(bodyBytes))
		logger.Error("Received error response from listings API", err, port.Fields{"status_code": resp.StatusCode})
		return nil, err
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("Failed to read listings API response", err, nil)
		return nil, err
	}

	// Single-item responses come either bare or wrapped in {"data": {...}}.
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	raw := bytes.TrimSpace(bodyBytes)
	if json.Unmarshal(raw, &envelope) == nil && len(envelope.Data) > 0 {
		raw = envelope.Data
	}

	var dto propertyDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		logger.Error("Failed to decode listings API response", err, nil)
		return nil, err
	}

	property := dto.toDomain()
	return &property, nil
}
