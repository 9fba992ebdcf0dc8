package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ersonp/biblio-core/internal/infrastructure/config"
)

func TestExportMetrics_PushesToGateway(t *testing.T) {
	var pushes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics/job/biblio" {
			pushes.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	exportMetrics(context.Background(), config.MetricsConfig{PushgatewayURL: srv.URL, Job: "biblio"}, logger)
	assert.Equal(t, int32(1), pushes.Load())
}

func TestExportMetrics_CanceledCommandStillPushes(t *testing.T) {
	var pushes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		pushes.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	exportMetrics(ctx, config.MetricsConfig{PushgatewayURL: srv.URL, Job: "biblio"}, logger)
	assert.Equal(t, int32(1), pushes.Load())
}
