// Package client is the device-side half of the system: an API client for
// the document-exchange protocol, a durable local cache and the sync engine
// tying them together.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shared-memo-pad/internal/memo"
)

// APIClient speaks the /api save/load/delete protocol with one credential.
type APIClient struct {
	baseURL    string
	credential string
	httpClient *http.Client
}

func NewAPIClient(baseURL, credential string) *APIClient {
	return &APIClient{
		baseURL:    baseURL,
		credential: credential,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (c *APIClient) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.credential)
}

// Load fetches the remote document for the credential.
func (c *APIClient) Load(ctx context.Context) (*memo.Document, error) {
	url := fmt.Sprintf("%s/api/load", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf(
			"remote load error: status=%d body=%s",
			resp.StatusCode,
			string(b),
		)
	}

	var doc memo.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// Save pushes a serialized document. The payload is a snapshot taken at
// commit time so later local mutations cannot leak into an in-flight save.
func (c *APIClient) Save(ctx context.Context, payload []byte) error {
	url := fmt.Sprintf("%s/api/save", c.baseURL)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		url,
		bytes.NewReader(payload),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf(
			"remote save error: status=%d body=%s",
			resp.StatusCode,
			string(b),
		)
	}

	return nil
}

// Delete removes the credential's remote document.
func (c *APIClient) Delete(ctx context.Context) error {
	url := fmt.Sprintf("%s/api/delete", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf(
			"remote delete error: status=%d body=%s",
			resp.StatusCode,
			string(b),
		)
	}

	return nil
}
