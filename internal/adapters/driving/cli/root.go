// Package cli implements the command-line driving adapter for lectern.
// Commands hold no business logic; they parse flags, call the core
// services through their driving ports, and format the results.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lectern-cli/internal/logger"
)

// version is set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Services used by the commands. Set by the composition root via
// SetServices before Execute; commands nil-check before use.
var (
	ingestService   driving.IngestService
	queryService    driving.QueryService
	chatService     driving.ChatService
	settingsService driving.SettingsService
	watchService    driving.WatchService
	manifestStore   driven.ManifestStore
)

var verboseFlag bool

// rootCmd is the base command; subcommands register themselves in
// their file's init.
var rootCmd = &cobra.Command{
	Use:   "lectern",
	Short: "Ask questions about your local documents",
	Long: `Lectern indexes local documents and answers natural-language
questions about them, grounded in the retrieved passages.

Point it at a file or directory to ingest, then query or chat:

  lectern ingest --directory ./docs
  lectern query "How do I configure the retry policy?"
  lectern chat

Documents are chunked, embedded, and stored locally under ~/.lectern.
Run 'lectern settings wizard' to choose embedding and LLM providers.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

// Services bundles everything the command tree needs. The composition
// root constructs the adapters and core services, then hands them over
// in one call.
type Services struct {
	Ingest   driving.IngestService
	Query    driving.QueryService
	Chat     driving.ChatService
	Settings driving.SettingsService
	Watch    driving.WatchService
	Manifest driven.ManifestStore
}

// SetServices wires the injected services into the command tree.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	ingestService = s.Ingest
	queryService = s.Query
	chatService = s.Chat
	settingsService = s.Settings
	watchService = s.Watch
	manifestStore = s.Manifest
}

// SetVersion overrides the build metadata printed by the version
// command.
func SetVersion(v, c, d string) {
	if v != "" {
		version = v
	}
	if c != "" {
		commit = c
	}
	if d != "" {
		date = d
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging to stderr")
}
