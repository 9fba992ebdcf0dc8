package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/biblio-core/internal/infrastructure/config"
)

func TestNewEmbedder(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EmbedderConfig
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			cfg: config.EmbedderConfig{
				APIKey: "test-key",
			},
			wantErr: false,
		},
		{
			name: "valid config with model",
			cfg: config.EmbedderConfig{
				APIKey: "test-key",
				Model:  "text-embedding-ada-002",
			},
			wantErr: false,
		},
		{
			name:    "missing API key",
			cfg:     config.EmbedderConfig{},
			wantErr: true,
			errMsg:  "API key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder, err := NewEmbedder(tt.cfg)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, embedder)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, embedder)
			}
		})
	}
}

// embeddingServer answers with one vector per input, returned in reverse
// order so callers must sort by index.
func embeddingServer(t *testing.T, requests *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*requests++
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		type item struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]item, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, item{Object: "embedding", Embedding: []float32{float32(len(req.Input[i])), float32(i)}, Index: i})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbedder_EmbedBatch(t *testing.T) {
	var requests int
	srv := embeddingServer(t, &requests)

	embedder, err := NewEmbedder(config.EmbedderConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	embeddings, err := embedder.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {2, 1}, {3, 2}}, embeddings)
	assert.Equal(t, 1, requests)
}

func TestEmbedder_Embed(t *testing.T) {
	var requests int
	srv := embeddingServer(t, &requests)

	embedder, err := NewEmbedder(config.EmbedderConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	embedding, err := embedder.Embed(context.Background(), "Franz Kafka")
	require.NoError(t, err)
	assert.Equal(t, []float32{11, 0}, embedding)
}

func TestEmbedder_EmbedBatch_Empty(t *testing.T) {
	var requests int
	srv := embeddingServer(t, &requests)

	embedder, err := NewEmbedder(config.EmbedderConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	embeddings, err := embedder.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, embeddings)
	assert.Zero(t, requests)
}

func TestEmbedder_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	t.Cleanup(srv.Close)

	embedder, err := NewEmbedder(config.EmbedderConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = embedder.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating embeddings")
}

func TestVectorSize(t *testing.T) {
	// Verify the constant matches OpenAI's text-embedding-3-small dimension
	assert.Equal(t, 1536, VectorSize)
}
