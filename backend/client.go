package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fwojciec/tutor"
	"github.com/tidwall/gjson"
)

// Interface compliance checks.
var (
	_ tutor.ChatService    = (*Client)(nil)
	_ tutor.Catalog        = (*Client)(nil)
	_ tutor.TokenValidator = (*Client)(nil)
)

// Client talks to the study platform's backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     tutor.TokenStore
	logger     *slog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenStore sets the store the bearer token is read from on every
// request. Without one, requests are sent unauthenticated.
func WithTokenStore(s tutor.TokenStore) Option {
	return func(c *Client) { c.tokens = s }
}

// WithLogger sets the logger used by the client and its stream decoders.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new [Client] for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Chat sends one message to the tutor and returns a [tutor.Stream] of the
// streamed answer.
func (c *Client) Chat(ctx context.Context, req tutor.ChatRequest) (tutor.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	body, err := json.Marshal(apiChatRequest{
		BookID:   req.BookID,
		ChatType: string(req.EffectiveChatType()),
		Message:  req.Message,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}

	httpReq, err := c.newRequest(ctx, chatPath, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	if !isSuccess(resp.StatusCode) {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}

	c.logger.Debug("backend: chat stream opened",
		slog.String("book_id", req.BookID),
		slog.String("chat_type", string(req.EffectiveChatType())))
	return newStream(ctx, resp.Body, c.logger), nil
}

// SearchBooks queries the book catalog.
func (c *Client) SearchBooks(ctx context.Context, filter tutor.BookFilter) ([]tutor.Book, error) {
	body, err := json.Marshal(apiBookSearch{
		Keyword:   filter.Keyword,
		BoardID:   filter.BoardID,
		SubjectID: filter.SubjectID,
	})
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	data, err := c.do(ctx, booksPath, body, "")
	if err != nil {
		return nil, err
	}
	return parseBooks(data)
}

// ValidateToken asks the backend whether token is still valid. A rejected
// token yields Valid=false rather than an error.
func (c *Client) ValidateToken(ctx context.Context, token string) (tutor.TokenStatus, error) {
	if token == "" {
		return tutor.TokenStatus{}, fmt.Errorf("backend: %w", tutor.ErrNoToken)
	}
	data, err := c.do(ctx, validatePath, []byte("{}"), token)
	if errors.Is(err, tutor.ErrUnauthorized) {
		return tutor.TokenStatus{Valid: false}, nil
	}
	if err != nil {
		return tutor.TokenStatus{}, err
	}
	if !gjson.ValidBytes(data) {
		return tutor.TokenStatus{}, fmt.Errorf("backend: invalid validation response: %s", truncateBody(data))
	}
	res := gjson.ParseBytes(data)
	status := tutor.TokenStatus{
		Valid: res.Get("valid").Bool(),
		Token: res.Get("token").String(),
	}
	if status.Valid && status.Token == "" {
		status.Token = token
	}
	return status, nil
}

// do performs a JSON POST and returns the response body. A non-empty token
// overrides the token store.
func (c *Client) do(ctx context.Context, path string, body []byte, token string) ([]byte, error) {
	httpReq, err := c.newRequest(ctx, path, body)
	if err != nil {
		return nil, err
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()
	if !isSuccess(resp.StatusCode) {
		return nil, parseHTTPError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, path string, body []byte) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if err := c.authorize(httpReq); err != nil {
		return nil, err
	}
	return httpReq, nil
}

func (c *Client) authorize(req *http.Request) error {
	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.Load()
	switch {
	case errors.Is(err, tutor.ErrNoToken):
		return nil
	case err != nil:
		return fmt.Errorf("backend: load token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// transportError wraps a network failure. Context cancellation is returned
// unchanged so callers can tell it apart with errors.Is.
func transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("backend: %w", &tutor.TransportError{Err: err})
}

// parseHTTPError builds a TransportError from a non-2xx response. The message
// is taken from the first of "message", "detail" or "error" in a JSON body,
// falling back to the raw body.
func parseHTTPError(resp *http.Response) error {
	terr := &tutor.TransportError{StatusCode: resp.StatusCode}
	if resp.StatusCode == http.StatusUnauthorized {
		terr.Err = tutor.ErrUnauthorized
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		terr.Message = fmt.Sprintf("failed to read body: %v", err)
		return fmt.Errorf("backend: %w", terr)
	}
	if gjson.ValidBytes(body) {
		res := gjson.ParseBytes(body)
		for _, key := range []string{"message", "detail", "error.message", "error"} {
			if v := res.Get(key); v.Type == gjson.String && v.String() != "" {
				terr.Message = v.String()
				break
			}
		}
	}
	if terr.Message == "" {
		terr.Message = truncateBody(body)
	}
	return fmt.Errorf("backend: %w", terr)
}

const maxErrorBody = 200

func truncateBody(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
