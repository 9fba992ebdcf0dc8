// Package metrics exports the Prometheus metrics gathered during a CLI run.
// A run ends before any scraper could reach it, so metrics are pushed to a
// Pushgateway or written out as text when the command finishes.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/prometheus/common/expfmt"

	"github.com/ersonp/biblio-core/internal/infrastructure/config"
)

// Push sends every gathered metric to the configured Pushgateway, replacing
// the previous push of the same job. It does nothing when no URL is set.
func Push(ctx context.Context, cfg config.MetricsConfig, g prometheus.Gatherer) error {
	if cfg.PushgatewayURL == "" {
		return nil
	}
	job := cfg.Job
	if job == "" {
		return errors.New("metrics job is required")
	}

	err := push.New(cfg.PushgatewayURL, job).
		Gatherer(g).
		Format(expfmt.NewFormat(expfmt.TypeTextPlain)).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("pushing metrics: %w", err)
	}
	return nil
}

// WriteText writes every gathered metric in the Prometheus text format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encoding %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
