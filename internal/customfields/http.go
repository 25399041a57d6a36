package customfields

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oakwood-commons/tplx/internal/completion"
)

const (
	// FieldsPath is appended to the base URL.
	FieldsPath     = "/custom-fields"
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// HTTPSource fetches fields with GET <BaseURL>/custom-fields. The body is
// either a JSON array of fields or an object with the array under "data".
type HTTPSource struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Client  *http.Client
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("custom fields request failed: %s", e.Status)
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]completion.CustomField, error) {
	if strings.TrimSpace(s.BaseURL) == "" {
		return nil, errors.New("custom fields URL is not configured")
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(s.BaseURL, "/")+FieldsPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return decodeFields(body)
}

func decodeFields(body []byte) ([]completion.CustomField, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var fields []completion.CustomField
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, fmt.Errorf("decode custom fields: %w", err)
		}
		return fields, nil
	}
	var envelope struct {
		Data []completion.CustomField `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode custom fields: %w", err)
	}
	return envelope.Data, nil
}
