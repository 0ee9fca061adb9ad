package cli

import (
	"github.com/spf13/cobra"
)

type BulkOptions struct {
	MappingFile string
	Backend     string
	Filter      string
	PageSize    int
	ChunkSize   int
	Yes         bool
}

func NewBulkCmd() *cobra.Command {
	opts := &BulkOptions{}

	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Apply the last-row mappings to every record matching the filter",
		RunE: func(c *cobra.Command, args []string) error {
			return runBulk(c.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.MappingFile, "mapping", "m", "configs/mapping.json", "Path to mapping file")
	cmd.Flags().StringVarP(&opts.Backend, "store", "s", "mongo", "Record store backend (mongo or sql)")
	cmd.Flags().StringVarP(&opts.Filter, "filter", "f", "", "Record filter (backend-specific syntax)")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "Records per fetch page")
	cmd.Flags().IntVar(&opts.ChunkSize, "chunk-size", 0, "Records per batched write")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func NewValidateCmd() *cobra.Command {
	opts := &BulkOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the mapping configuration, against the form schema when a store is reachable",
		RunE: func(c *cobra.Command, args []string) error {
			return runValidate(c.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.MappingFile, "mapping", "m", "configs/mapping.json", "Path to mapping file")
	cmd.Flags().StringVarP(&opts.Backend, "store", "s", "", "Record store backend for schema checks (mongo or sql)")

	return cmd
}
