package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marvin-bot/marvin/ingest"
)

func ingesterFromConfig() (*ingest.Ingester, error) {
	return ingest.New(ingest.Config{
		DocsDir:    viper.GetString("marvin_docs_dir"),
		DBPath:     viper.GetString("marvin_vector_db"),
		Collection: viper.GetString("marvin_vector_collection"),
	})
}

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Ingest community docs into the vector database",
		Long: `Walk the configured docs directory and embed every new or changed
document into the vector database. Unchanged files are skipped based on
the ingest ledger.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ing, err := ingesterFromConfig()
			if err != nil {
				return err
			}
			stats, err := ing.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("scanned %d, ingested %d (%d chunks), skipped %d\n",
				stats.Scanned, stats.Ingested, stats.Chunks, stats.Skipped)
			return nil
		},
	}
}

func newSearchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantic search over ingested docs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ing, err := ingesterFromConfig()
			if err != nil {
				return err
			}
			results, err := ing.Query(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			for _, res := range results {
				fmt.Printf("%.3f  %s\n    %s\n", res.Similarity, res.ID, firstLine(res.Content))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "maximum number of results")
	return cmd
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
