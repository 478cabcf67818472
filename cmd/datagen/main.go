package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanshika/hopgraph/internal/dataset"
	"github.com/vanshika/hopgraph/internal/generator"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := generator.DefaultConfig()
	var (
		output      string
		writeStdout bool
	)

	root := &cobra.Command{
		Use:           "hopgraph-datagen",
		Short:         "Generate a synthetic weighted person/software graph as YAML",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			ds, err := generator.New(cfg).Generate(ctx)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			if writeStdout {
				return dataset.Encode(cmd.OutOrStdout(), ds)
			}
			if err := generator.WriteDataset(ds, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d vertices and %d edges into %s\n", len(ds.Vertices), len(ds.Edges), output)
			return nil
		},
	}

	flags := root.Flags()
	flags.IntVar(&cfg.NumPersons, "persons", cfg.NumPersons, "number of person vertices")
	flags.IntVar(&cfg.NumSoftware, "software", cfg.NumSoftware, "number of software vertices")
	flags.IntVar(&cfg.KnowsPerPerson, "knows", cfg.KnowsPerPerson, "outgoing knows edges per person")
	flags.IntVar(&cfg.CreatedPerPerson, "created", cfg.CreatedPerPerson, "outgoing created edges per person")
	flags.Float64Var(&cfg.MinWeight, "min-weight", cfg.MinWeight, "lower bound of edge weights")
	flags.Float64Var(&cfg.MaxWeight, "max-weight", cfg.MaxWeight, "upper bound of edge weights")
	flags.Float64Var(&cfg.UnweightedChance, "unweighted-chance", cfg.UnweightedChance, "probability an edge has no weight property")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for deterministic generation")
	flags.StringVarP(&output, "output", "o", "data/graph.yaml", "dataset file to write")
	flags.BoolVar(&writeStdout, "stdout", false, "write the dataset to stdout instead of a file")
	return root
}
