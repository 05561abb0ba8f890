// Package apiclient implements the outbound request pipeline. Every call to a
// collaborator HTTP service goes through Client.Do, which performs exactly one
// network attempt and converts non-success responses into taxonomy errors.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/startificial/requireflow/internal/errors"
	"github.com/startificial/requireflow/internal/logger"
)

// Descriptor describes one outbound call. The zero value is a GET with JSON
// decoding enabled.
type Descriptor struct {
	// Method is the HTTP method; empty means GET.
	Method string

	// Body is serialized as JSON when non-nil, and forces a
	// Content-Type: application/json header.
	Body any

	// Header overrides the client's default headers for this call only.
	Header http.Header

	// Raw skips response decoding; the caller owns the returned response
	// body and must close it.
	Raw bool
}

// Client is a stateless request pipeline. It holds configuration only; no
// state is shared between calls, and concurrent calls are independent.
type Client struct {
	baseURL string
	http    *http.Client
	header  http.Header
	debug   bool
	log     logger.Logger
}

// New constructs a Client from an explicit Config.
func New(cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    cfg.HTTPClient,
		header:  cfg.Header,
		debug:   cfg.Debug,
		log:     cfg.Logger,
	}
}

// errorEnvelope is the JSON error body shape used by collaborator services.
type errorEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// Do performs one call to target and decodes a JSON success body into result.
//
// On a success status the body is decoded into result when the response
// declares a JSON content type and d.Raw is unset; otherwise the raw response
// is returned with its body intact. On a non-success status the body's error
// envelope is converted into a taxonomy variant. A transport-level failure is
// returned unchanged after being logged, since there is no response to
// classify.
func (c *Client) Do(ctx context.Context, target string, d Descriptor, result any) (*http.Response, error) {
	if target == "" {
		return nil, errors.NewValidation("request target must not be empty", nil)
	}

	method := d.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if d.Body != nil {
		b, err := json.Marshal(d.Body)
		if err != nil {
			return nil, errors.NewValidation("failed to serialize request body: "+err.Error(), nil)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(target), bodyReader)
	if err != nil {
		return nil, errors.NewValidation("invalid request target: "+err.Error(), nil)
	}

	for key, values := range c.header {
		req.Header[key] = append([]string(nil), values...)
	}
	for key, values := range d.Header {
		req.Header[key] = append([]string(nil), values...)
	}
	if d.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.debug {
		c.log.Debug().
			Str("method", method).
			Str("url", req.URL.String()).
			Bool("has_body", d.Body != nil).
			Msg("API request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// No response was received, so there is nothing to classify.
		// The transport error propagates unchanged.
		if c.debug {
			c.log.Debug().
				Str("method", method).
				Str("url", req.URL.String()).
				Err(err).
				Msg("API transport failure")
		}
		return nil, err
	}

	if c.debug {
		c.log.Debug().
			Str("method", method).
			Str("url", req.URL.String()).
			Int("status", resp.StatusCode).
			Msg("API response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, c.errorFromResponse(resp)
	}

	if d.Raw {
		return resp, nil
	}
	defer resp.Body.Close()

	if result != nil && isJSON(resp.Header.Get("Content-Type")) {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return nil, errors.NewAPI("failed to decode response body: "+err.Error(), resp.StatusCode, nil)
		}
	}
	return resp, nil
}

// errorFromResponse converts a non-success response into a taxonomy variant.
// When the error envelope carries a recognized code the matching variant is
// reconstructed with the remote message; otherwise an Api variant with the
// message "<status>: <message>" is produced.
func (c *Client) errorFromResponse(resp *http.Response) error {
	body, readErr := io.ReadAll(resp.Body)

	var env errorEnvelope
	message := ""
	if readErr == nil && json.Unmarshal(body, &env) == nil {
		if env.Message != "" {
			message = env.Message
		} else if env.Error != "" {
			message = env.Error
		}
	}
	if message == "" {
		if text := strings.TrimSpace(string(body)); text != "" {
			message = text
		} else {
			message = http.StatusText(resp.StatusCode)
		}
	}

	if env.Code != "" && errors.KnownCode(errors.ErrorCode(env.Code)) {
		return errors.FromCode(errors.ErrorCode(env.Code), message, resp.StatusCode)
	}
	return errors.NewAPI(fmt.Sprintf("%d: %s", resp.StatusCode, message), resp.StatusCode, nil)
}

func (c *Client) resolve(target string) string {
	if c.baseURL != "" && strings.HasPrefix(target, "/") {
		return c.baseURL + target
	}
	return target
}

func isJSON(contentType string) bool {
	return strings.Contains(contentType, "json")
}

// Get issues a GET request and decodes the JSON response into result.
func (c *Client) Get(ctx context.Context, target string, result any) error {
	_, err := c.Do(ctx, target, Descriptor{Method: http.MethodGet}, result)
	return err
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, target string, body, result any) error {
	_, err := c.Do(ctx, target, Descriptor{Method: http.MethodPost, Body: body}, result)
	return err
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, target string, body, result any) error {
	_, err := c.Do(ctx, target, Descriptor{Method: http.MethodPut, Body: body}, result)
	return err
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, target string, body, result any) error {
	_, err := c.Do(ctx, target, Descriptor{Method: http.MethodPatch, Body: body}, result)
	return err
}

// Delete issues a DELETE request with no body.
func (c *Client) Delete(ctx context.Context, target string, result any) error {
	_, err := c.Do(ctx, target, Descriptor{Method: http.MethodDelete}, result)
	return err
}
