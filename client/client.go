// Package client is a Go client for the recipe API together with the list,
// form and AI-assist state a UI binds to.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/recipebook/backend/internal/apperrors"
	"github.com/pageza/recipebook/backend/internal/model"
	"github.com/pageza/recipebook/backend/internal/service"
)

var (
	_ RecipeLister = (*Client)(nil)
	_ FormAPI      = (*Client)(nil)
	_ AssistAPI    = (*Client)(nil)
)

// Client talks JSON to the recipe API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the API rooted at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 90 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ImageUpload is the result of UploadImage.
type ImageUpload struct {
	Success  bool   `json:"success"`
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Error    string `json:"error,omitempty"`
}

type aiRequest struct {
	Action       string   `json:"action"`
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients,omitempty"`
	Instructions []string `json:"instructions,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return apperrors.NewNetworkError("", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	return c.do(ctx, method, path, body, "application/json", out)
}

// ListRecipes fetches every recipe summary, newest first.
func (c *Client) ListRecipes(ctx context.Context) ([]model.RecipeSummary, error) {
	var out []model.RecipeSummary
	if err := c.doJSON(ctx, http.MethodGet, "/api/recipes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	var out model.Recipe
	if err := c.doJSON(ctx, http.MethodGet, "/api/recipes/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRecipe stores recipe and returns the new id.
func (c *Client) CreateRecipe(ctx context.Context, recipe *model.Recipe) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/recipes", recipe, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) UpdateRecipe(ctx context.Context, id string, recipe *model.Recipe) (*model.Recipe, error) {
	var out model.Recipe
	if err := c.doJSON(ctx, http.MethodPut, "/api/recipes/"+url.PathEscape(id), recipe, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/recipes/"+url.PathEscape(id), nil, nil)
}

// AI posts an action to /api/ai and decodes the response into out.
func (c *Client) AI(ctx context.Context, action, title string, ingredients, instructions []string, out interface{}) error {
	return c.doJSON(ctx, http.MethodPost, "/api/ai", aiRequest{
		Action:       action,
		Title:        title,
		Ingredients:  ingredients,
		Instructions: instructions,
	}, out)
}

func (c *Client) GenerateDescription(ctx context.Context, title string, ingredients, instructions []string) (string, error) {
	var out struct {
		Description string `json:"description"`
	}
	if err := c.AI(ctx, service.ActionGenerateDescription, title, ingredients, instructions, &out); err != nil {
		return "", err
	}
	return out.Description, nil
}

func (c *Client) SuggestTags(ctx context.Context, title string, ingredients, instructions []string) ([]string, error) {
	var out struct {
		Tags []string `json:"tags"`
	}
	if err := c.AI(ctx, service.ActionSuggestTags, title, ingredients, instructions, &out); err != nil {
		return nil, err
	}
	return out.Tags, nil
}

func (c *Client) GenerateCompleteRecipe(ctx context.Context, title string) (*service.RecipeDraft, error) {
	var out struct {
		Recipe service.RecipeDraft `json:"recipe"`
	}
	if err := c.AI(ctx, service.ActionGenerateComplete, title, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Recipe, nil
}

// UploadImage sends r as the multipart "file" field.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (*ImageUpload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	var out ImageUpload
	if err := c.do(ctx, http.MethodPost, "/api/images", &buf, w.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, apperrors.New(or(out.Error, "Failed to upload image"), http.StatusInternalServerError, "", nil)
	}
	return &out, nil
}
