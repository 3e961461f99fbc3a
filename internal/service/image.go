package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/recipebook/backend/config"
	"github.com/pageza/recipebook/backend/internal/apperrors"
	"github.com/pageza/recipebook/backend/internal/logger"
)

const (
	deliveryURLFormat = "https://imagedelivery.net/%s/%s/recipe"
	defaultAPIBaseURL = "https://api.cloudflare.com/client/v4"
)

var deliveryURLPattern = regexp.MustCompile(`imagedelivery\.net/[^/]+/([^/]+)/`)

// ErrImagesNotConfigured is returned when the provider credentials are missing.
var ErrImagesNotConfigured = apperrors.New("Cloudflare credentials not configured", http.StatusInternalServerError, "", nil)

// UploadError carries the errors a provider reported for a rejected upload.
type UploadError struct{ apperrors.APIError }

func (e *UploadError) Unwrap() error { return &e.APIError }

func newUploadError(details interface{}) *UploadError {
	return &UploadError{apperrors.APIError{
		Message: "Failed to upload image",
		Status:  http.StatusInternalServerError,
		Details: details,
	}}
}

type cloudflareMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type cloudflareEnvelope struct {
	Success bool                `json:"success"`
	Errors  []cloudflareMessage `json:"errors"`
	Result  json.RawMessage     `json:"result"`
}

// CloudflareImages stores images with Cloudflare Images
type CloudflareImages struct {
	cfg    config.CloudflareConfig
	client *http.Client
	logger *zap.Logger
}

// NewCloudflareImages creates a provider. Missing credentials are reported
// per call, not here.
func NewCloudflareImages(cfg config.CloudflareConfig, log *zap.Logger) *CloudflareImages {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	return &CloudflareImages{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger.OrNop(log).Named("cloudflare"),
	}
}

func (c *CloudflareImages) Name() string { return "Cloudflare Images" }

// Configured reports whether account id, token and delivery hash are all set.
func (c *CloudflareImages) Configured() bool {
	return c.cfg.AccountID != "" && c.cfg.APIToken != "" && c.cfg.AccountHash != ""
}

// DeliveryURL builds the public URL for an uploaded image id.
func (c *CloudflareImages) DeliveryURL(id string) string {
	return fmt.Sprintf(deliveryURLFormat, c.cfg.AccountHash, id)
}

// ImageIDFromURL extracts the image id from a delivery URL.
func ImageIDFromURL(url string) (string, bool) {
	m := deliveryURLPattern.FindStringSubmatch(url)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}

func (c *CloudflareImages) endpoint(parts ...string) string {
	base := strings.TrimRight(c.cfg.APIBaseURL, "/")
	return base + "/accounts/" + c.cfg.AccountID + "/images/v1" + strings.Join(parts, "")
}

// Upload sends the file as multipart field "file"
func (c *CloudflareImages) Upload(ctx context.Context, filename, contentType string, body io.Reader) (*UploadedImage, error) {
	if !c.Configured() {
		return nil, ErrImagesNotConfigured
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	env, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		c.logger.Error("Cloudflare upload failed", zap.Any("errors", env.Errors))
		return nil, newUploadError(env.Errors)
	}

	var result struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
	}
	if err := json.Unmarshal(env.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to decode upload result: %w", err)
	}

	c.logger.Info("image uploaded", zap.String("id", result.ID))
	return &UploadedImage{
		ID:       result.ID,
		Filename: result.Filename,
		URL:      c.DeliveryURL(result.ID),
	}, nil
}

// Delete removes the image behind a delivery URL. Other URLs are ignored.
func (c *CloudflareImages) Delete(ctx context.Context, url string) error {
	id, ok := ImageIDFromURL(url)
	if !ok {
		return nil
	}
	if !c.Configured() {
		return ErrImagesNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("/", id), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	env, err := c.do(req)
	if err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("failed to delete image %s: %v", id, env.Errors)
	}
	c.logger.Info("image deleted", zap.String("id", id))
	return nil
}

// Check lists images to verify the credentials.
func (c *CloudflareImages) Check(ctx context.Context) (int, error) {
	if c.cfg.AccountID == "" || c.cfg.APIToken == "" {
		return 0, ErrImagesNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	env, err := c.do(req)
	if err != nil {
		return 0, err
	}
	if !env.Success {
		return 0, apperrors.New("Failed to connect to Cloudflare", http.StatusInternalServerError, "", env.Errors)
	}

	var result struct {
		Count  *int              `json:"count"`
		Images []json.RawMessage `json:"images"`
	}
	if len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, &result); err != nil {
			return 0, fmt.Errorf("failed to decode list result: %w", err)
		}
	}
	if result.Count != nil {
		return *result.Count, nil
	}
	return len(result.Images), nil
}

func (c *CloudflareImages) do(req *http.Request) (*cloudflareEnvelope, error) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError("", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var env cloudflareEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("unexpected response (status %d): %w", resp.StatusCode, err)
	}
	return &env, nil
}
