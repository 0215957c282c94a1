// Package pinning uploads files and JSON documents to a pinning
// service. The only contract with the service is: given content, it
// returns a resolvable URI. No retry or consistency logic lives here.
package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/tokenbay/tokenbay/logger"
	"github.com/tokenbay/tokenbay/types"
)

// Config carries the two pinning endpoints, the public gateway used to
// build resolvable URIs and the bearer credential.
type Config struct {
	FileEndpoint string
	JSONEndpoint string
	GatewayURL   string
	JWT          string
}

type Client struct {
	cfg  Config
	http *http.Client
	log  logger.Logger
}

func New(cfg Config, httpClient *http.Client, log logger.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &Client{cfg: cfg, http: httpClient, log: log}
}

// pinResponse is the subset of the service response we rely on.
type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// PinFile uploads the file content and returns a gateway URI for it.
func (c *Client) PinFile(ctx context.Context, filename string, content io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("read file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize upload form: %w", err)
	}

	return c.post(ctx, c.cfg.FileEndpoint, &body, writer.FormDataContentType())
}

// PinJSON uploads v as a JSON document and returns a gateway URI for it.
func (c *Client) PinJSON(ctx context.Context, v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return c.post(ctx, c.cfg.JSONEndpoint, bytes.NewReader(raw), "application/json")
}

func (c *Client) post(ctx context.Context, endpoint string, body io.Reader, contentType string) (string, error) {
	if endpoint == "" || c.cfg.JWT == "" {
		return "", &types.Error{
			Code:    types.ErrConfigError,
			Message: "pinning service is not configured",
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("build pin request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.JWT)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("pin content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("pin content: status %d: %s", resp.StatusCode, raw)
	}

	var pinned pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&pinned); err != nil {
		return "", fmt.Errorf("decode pin response: %w", err)
	}
	if pinned.IpfsHash == "" {
		return "", fmt.Errorf("pin response carried no content hash")
	}

	uri := fmt.Sprintf("%s/ipfs/%s", c.cfg.GatewayURL, pinned.IpfsHash)
	c.log.Debug("content pinned", map[string]any{"uri": uri})
	return uri, nil
}
