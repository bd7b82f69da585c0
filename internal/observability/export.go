package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// ExportJob is the Pushgateway job name of the batch commands.
const ExportJob = "wheat_yield_etl"

// Exporter publishes the metrics of a finished batch run to a
// node-exporter textfile, a Pushgateway, or both.
type Exporter struct {
	gatherer       prometheus.Gatherer
	textfile       string
	pushgatewayURL string
}

// NewExporter creates an Exporter. Empty destinations are skipped.
func NewExporter(g prometheus.Gatherer, textfile, pushgatewayURL string) *Exporter {
	return &Exporter{gatherer: g, textfile: textfile, pushgatewayURL: pushgatewayURL}
}

// Enabled reports whether any destination is configured.
func (e *Exporter) Enabled() bool {
	return e.textfile != "" || e.pushgatewayURL != ""
}

// Export writes and pushes the gathered metrics, grouped by command.
func (e *Exporter) Export(ctx context.Context, command string) error {
	var errs []error
	if e.textfile != "" {
		if err := prometheus.WriteToTextfile(e.textfile, e.gatherer); err != nil {
			errs = append(errs, fmt.Errorf("write metrics textfile: %w", err))
		}
	}
	if e.pushgatewayURL != "" {
		err := push.New(e.pushgatewayURL, ExportJob).
			Gatherer(e.gatherer).
			Grouping("command", command).
			PushContext(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("push metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}
