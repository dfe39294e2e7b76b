package llmapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"govllminer-be/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestChat(t *testing.T) {
	t.Run("Sends bearer token and parses response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat", r.URL.Path)
			assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))

			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "hello", body["message"])
			assert.Equal(t, "ext-42", body["session_id"])

			json.NewEncoder(w).Encode(map[string]string{
				"session_id": "ext-42",
				"response":   "hi there",
			})
		}))
		defer srv.Close()

		client := NewClientWithHTTP(srv.URL, srv.Client())
		result, err := client.Chat(context.Background(), "token-123", "hello", "user-1", "ext-42")

		assert.NoError(t, err)
		assert.Equal(t, "ext-42", result.SessionId)
		assert.Equal(t, "hi there", result.Response)
	})

	t.Run("New conversation omits session_id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]interface{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			_, present := body["session_id"]
			assert.False(t, present)

			json.NewEncoder(w).Encode(map[string]string{
				"session_id": "ext-fresh",
				"response":   "welcome",
			})
		}))
		defer srv.Close()

		client := NewClientWithHTTP(srv.URL, srv.Client())
		result, err := client.Chat(context.Background(), "t", "hello", "user-1", "")

		assert.NoError(t, err)
		assert.Equal(t, "ext-fresh", result.SessionId)
	})

	t.Run("Upstream 401 maps to invalid token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := NewClientWithHTTP(srv.URL, srv.Client())
		_, err := client.Chat(context.Background(), "bad", "hello", "user-1", "")

		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("Upstream 500 maps to chat api error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewClientWithHTTP(srv.URL, srv.Client())
		_, err := client.Chat(context.Background(), "t", "hello", "user-1", "")

		assert.ErrorIs(t, err, apperrors.ErrChatAPI)
	})
}

func TestRAGQuery(t *testing.T) {
	t.Run("Body passes through untouched", func(t *testing.T) {
		upstream := `{"answer":"42","top_documents":[{"id":"d1"}]}`
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/query/rag", r.URL.Path)
			w.Write([]byte(upstream))
		}))
		defer srv.Close()

		client := NewClientWithHTTP(srv.URL, srv.Client())
		raw, err := client.RAGQuery(context.Background(), "t", map[string]string{"query": "q"})

		assert.NoError(t, err)
		assert.JSONEq(t, upstream, string(raw))
	})

	t.Run("Upstream failure maps to rag error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client := NewClientWithHTTP(srv.URL, srv.Client())
		_, err := client.RAGQuery(context.Background(), "t", map[string]string{"query": "q"})

		assert.ErrorIs(t, err, apperrors.ErrRAGQuery)
	})
}

func TestChatUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/upload", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "summarize this", r.FormValue("message"))
		assert.Equal(t, "true", r.FormValue("clear_history"))

		file, header, err := r.FormFile("file")
		assert.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "notes.txt", header.Filename)
		assert.Equal(t, "text/plain", header.Header.Get("Content-Type"))

		w.Write([]byte(`{"response":"done"}`))
	}))
	defer srv.Close()

	client := NewClientWithHTTP(srv.URL, srv.Client())
	raw, err := client.ChatUpload(context.Background(), "t", "notes.txt", "text/plain",
		[]byte("contents"), "summarize this", "", "", true)

	assert.NoError(t, err)
	assert.JSONEq(t, `{"response":"done"}`, string(raw))
}

func TestUploadFile(t *testing.T) {
	t.Run("Forwards the caller's content type", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/upload", r.URL.Path)
			assert.NoError(t, r.ParseMultipartForm(1<<20))

			file, header, err := r.FormFile("file")
			assert.NoError(t, err)
			defer file.Close()
			assert.Equal(t, "report.pdf", header.Filename)
			assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))

			w.Write([]byte(`{"document_id":"d1"}`))
		}))
		defer srv.Close()

		client := NewClientWithHTTP(srv.URL, srv.Client())
		raw, err := client.UploadFile(context.Background(), "t", "report.pdf", "application/pdf", []byte("%PDF-"))

		assert.NoError(t, err)
		assert.JSONEq(t, `{"document_id":"d1"}`, string(raw))
	})

	t.Run("Empty content type falls back to octet-stream", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			_, header, err := r.FormFile("file")
			assert.NoError(t, err)
			assert.Equal(t, "application/octet-stream", header.Header.Get("Content-Type"))
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		client := NewClientWithHTTP(srv.URL, srv.Client())
		_, err := client.UploadFile(context.Background(), "t", "blob.bin", "", []byte{0x01})
		assert.NoError(t, err)
	})
}

func TestListFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/features", r.URL.Path)
		w.Write([]byte(`{"features":["rag","direct"]}`))
	}))
	defer srv.Close()

	client := NewClientWithHTTP(srv.URL, srv.Client())
	raw, err := client.ListFeatures(context.Background(), "t")

	assert.NoError(t, err)
	assert.JSONEq(t, `{"features":["rag","direct"]}`, string(raw))
}
