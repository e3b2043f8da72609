// Command indexer runs the configured ThorIndexor indexers against a Thor node.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	_ "github.com/goran-ethernal/ThorIndexor/indexers/ledger"
	_ "github.com/goran-ethernal/ThorIndexor/indexers/transfers"
	"github.com/goran-ethernal/ThorIndexor/internal/common"
	"github.com/goran-ethernal/ThorIndexor/internal/config"
	"github.com/goran-ethernal/ThorIndexor/internal/db"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/internal/migrations"
	"github.com/goran-ethernal/ThorIndexor/internal/store"
	pkgconfig "github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/goran-ethernal/ThorIndexor/pkg/indexer"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

const (
	version = "1.0.0"
	banner  = `
╔═══════════════════════════════════════════╗
║           ThorIndexor v%s              ║
║   Reorg-safe VeChainThor Indexing Engine  ║
╚═══════════════════════════════════════════╝
`
)

var (
	configPath string
	envPath    string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "indexer",
		Short: "ThorIndexor - reorg-safe VeChainThor indexing engine",
		Long: `ThorIndexor follows the VeChainThor trunk and applies every block to a set of
indexers. Recent blocks stay reversible: when the chain reorganizes, indexed data
is rolled back from snapshots and the new branch is applied in its place.`,
		Version: version,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := config.LoadEnv(envPath); err != nil {
				return fmt.Errorf("failed to load env file: %w", err)
			}
			return nil
		},
		RunE: runIndexer,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")
	flags.StringVar(&envPath, "env", ".env", "path to an optional dotenv file")

	root.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the indexer types that can be used in the configuration file",
			Run:   func(cmd *cobra.Command, _ []string) { printTypes(cmd.OutOrStdout()) },
		},
		&cobra.Command{
			Use:   "schema",
			Short: "Print the JSON schema of the configuration file",
			RunE:  func(cmd *cobra.Command, _ []string) error { return printSchema(cmd.OutOrStdout()) },
		},
		&cobra.Command{
			Use:   "heads",
			Short: "Print the committed head of every indexer",
			RunE:  func(cmd *cobra.Command, _ []string) error { return printHeads(cmd.OutOrStdout()) },
		},
	)

	return root
}

func printTypes(out io.Writer) {
	types := indexer.ListRegistered()
	if len(types) == 0 {
		fmt.Fprintln(out, "no indexer types registered")
		return
	}
	fmt.Fprintln(out, "Available indexer types:")
	for _, t := range types {
		fmt.Fprintf(out, "  - %s\n", t)
	}
}

func printSchema(out io.Writer) error {
	r := &jsonschema.Reflector{FieldNameTag: "json", RequiredFromJSONSchemaTags: true}
	schema := r.Reflect(&pkgconfig.Config{})
	schema.Title = "ThorIndexor configuration"

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(schema); err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	return nil
}

// printHeads reads the committed heads without starting any indexer.
func printHeads(out io.Writer) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewComponentLoggerFromConfig(common.ComponentStore, cfg.Logging)

	database, err := db.NewSQLiteDBFromConfig(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := db.RunMigrationsDB(log, database, migrations.Engine()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	heads, err := store.New(database, log).Heads()
	if err != nil {
		return err
	}
	if len(heads) == 0 {
		fmt.Fprintln(out, "no indexer has committed a head yet")
		return nil
	}

	for _, name := range slices.Sorted(maps.Keys(heads)) {
		fmt.Fprintf(out, "%-24s %s\n", name, heads[name].Hex())
	}
	return nil
}
