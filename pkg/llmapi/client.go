// Package llmapi is the outbound client for the remote LLM service. The
// gateway forwards chat, RAG and upload calls here with the caller's bearer
// token attached; nothing is transformed beyond header injection and nothing
// is retried.
package llmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"govllminer-be/internal/pkg/apperrors"
)

const DefaultTimeout = 30 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client with one uniform timeout on every outbound call.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP injects the HTTP client directly, for test transports.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
	}
}

// ChatResult is the subset of the remote /chat response the gateway needs:
// the continuity token the remote assigned and the answer text.
type ChatResult struct {
	SessionId string `json:"session_id"`
	Response  string `json:"response"`
}

type chatRequest struct {
	Message   string `json:"message"`
	UserId    string `json:"user_id"`
	SessionId string `json:"session_id,omitempty"`
}

// Chat sends one message. externalSessionId is the remote's own session id
// (never our internal primary key); empty for a new conversation.
func (c *Client) Chat(ctx context.Context, token, message, userId, externalSessionId string) (*ChatResult, error) {
	body := chatRequest{
		Message:   message,
		UserId:    userId,
		SessionId: externalSessionId,
	}
	raw, err := c.postJSON(ctx, "chat", token, body, apperrors.ErrChatAPI)
	if err != nil {
		return nil, err
	}

	var result ChatResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, apperrors.ErrChatAPI
	}
	return &result, nil
}

// RAGQuery is a pure pass-through; the raw upstream body goes back to the
// caller (it may carry answer and top_documents).
func (c *Client) RAGQuery(ctx context.Context, token string, payload interface{}) (json.RawMessage, error) {
	return c.postJSON(ctx, "query/rag", token, payload, apperrors.ErrRAGQuery)
}

func (c *Client) DirectQuery(ctx context.Context, token string, payload interface{}) (json.RawMessage, error) {
	return c.postJSON(ctx, "query/direct", token, payload, apperrors.ErrDirectQuery)
}

func (c *Client) ListFeatures(ctx context.Context, token string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/features", nil)
	if err != nil {
		return nil, apperrors.ErrChatAPI
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.do(req, apperrors.ErrChatAPI)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// createFilePart is CreateFormFile with the caller's media type instead of a
// hardcoded application/octet-stream; the remote keys processing off it.
func createFilePart(w *multipart.Writer, filename, contentType string) (io.Writer, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)
	return w.CreatePart(h)
}

// UploadFile forwards a single file to the remote /upload endpoint.
func (c *Client) UploadFile(ctx context.Context, token, filename, contentType string, content []byte) (json.RawMessage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := createFilePart(w, filename, contentType)
	if err != nil {
		return nil, apperrors.ErrFileUpload
	}
	if _, err := part.Write(content); err != nil {
		return nil, apperrors.ErrFileUpload
	}
	if err := w.Close(); err != nil {
		return nil, apperrors.ErrFileUpload
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, apperrors.ErrFileUpload
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, apperrors.ErrFileUpload)
}

// ChatUpload forwards a file plus its accompanying chat fields to the remote
// /chat/upload endpoint.
func (c *Client) ChatUpload(ctx context.Context, token, filename, contentType string, content []byte, message, sessionId, documentId string, clearHistory bool) (json.RawMessage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := createFilePart(w, filename, contentType)
	if err != nil {
		return nil, apperrors.ErrChatUpload
	}
	if _, err := part.Write(content); err != nil {
		return nil, apperrors.ErrChatUpload
	}
	fields := map[string]string{
		"message":       message,
		"session_id":    sessionId,
		"document_id":   documentId,
		"clear_history": fmt.Sprintf("%t", clearHistory),
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, apperrors.ErrChatUpload
		}
	}
	if err := w.Close(); err != nil {
		return nil, apperrors.ErrChatUpload
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/upload", &buf)
	if err != nil {
		return nil, apperrors.ErrChatUpload
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, apperrors.ErrChatUpload)
}

func (c *Client) postJSON(ctx context.Context, endpoint, token string, payload interface{}, failure *apperrors.AppError) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, failure
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, failure
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, failure)
}

func (c *Client) do(req *http.Request, failure *apperrors.AppError) (json.RawMessage, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, failure
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, apperrors.ErrInvalidToken
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, failure
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failure
	}
	return json.RawMessage(raw), nil
}
