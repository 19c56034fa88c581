package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cuemby/coordinator/internal/config"
	"github.com/spf13/cobra"
)

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Probe a running coordinator's /health endpoint and exit non-zero if it is unhealthy",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHealthcheck(cmd.Context())
	},
}

func runHealthcheck(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("coordinator: load config: %w", err)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+metricsHost(cfg.MetricsAddr)+"/health", nil)
	if err != nil {
		return fmt.Errorf("coordinator: build healthcheck request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("coordinator: healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("coordinator: unhealthy (status %d)", resp.StatusCode)
	}

	fmt.Println("✓ healthy")
	return nil
}

// metricsHost turns a listen address like ":9090" into something dialable
// over loopback ("localhost:9090"), leaving an already-qualified host alone.
func metricsHost(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
