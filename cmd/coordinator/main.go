// Command coordinator runs the release-coordination engine: the serve
// subcommand starts the HTTP API and its background job runner, migrate
// applies the Postgres schema, and healthcheck gives operators a one-shot
// liveness probe against a running instance.
package main

import (
	"fmt"
	"os"

	"github.com/cuemby/coordinator/pkg/log"
	"github.com/spf13/cobra"
)

var (
	// Version information, set via ldflags during build.
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "coordinator",
	Short:   "Coordinator - release orchestration engine",
	Long:    `Coordinator drives scheduled data releases through a fleet of remote task services, one state machine per release and per task.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"coordinator version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(healthcheckCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}
