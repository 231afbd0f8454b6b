package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/extractify/internal/bulk"
)

var (
	sampleOutDir string
	sampleSizes  []int
)

func init() {
	sampleCmd.Flags().StringVar(&sampleOutDir, "out", ".", "directory to write sample files into")
	sampleCmd.Flags().IntSliceVar(&sampleSizes, "sizes", bulk.DefaultSampleSizes, "sample sizes to write")
}

var sampleCmd = &cobra.Command{
	Use:   "sample <abcd.json[.gz]>",
	Short: "Write small ABCD samples for testing bulk extraction",
	Long: `Write abcd_sample_<N>.json files holding the first N train conversations
of an ABCD dataset.

Examples:
  # Default sizes 10, 50 and 100
  extractify sample abcd_v1.1.json.gz --out samples

  # Custom sizes
  extractify sample abcd_v1.1.json --sizes 5,25`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := bulk.WriteSamples(args[0], sampleOutDir, sampleSizes)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}
