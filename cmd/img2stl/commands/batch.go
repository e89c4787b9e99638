package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"img2stl/internal/batch"
)

var (
	batchFlags   reliefFlags
	batchOutput  string
	batchWorkers int
)

func init() {
	batchFlags.bind(batchCmd)
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "Output directory (default: next to each image)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "Number of worker goroutines (default: NumCPU)")
	rootCmd.AddCommand(batchCmd)
}

var batchCmd = &cobra.Command{
	Use:   "batch <dir> [-o outdir]",
	Short: "Converts every image below a directory.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fl := batchFlags.overrides(cmd)
		fl.OutputDir = batchOutput
		fl.Workers = batchWorkers
		cfg, err := setup(fl)
		if err != nil {
			return err
		}

		dir := args[0]
		inputs, err := batch.Collect(dir, cfg.Output.Dir)
		if err != nil {
			return fmt.Errorf("batch: list %s: %w", dir, err)
		}

		out := cmd.OutOrStdout()
		if len(inputs) == 0 {
			fmt.Fprintln(out, "No images to convert.")
			return nil
		}

		fmt.Fprintf(out, "Images: %d, Workers: %d\n", len(inputs), cfg.Workers)
		if cfg.Output.Dir != "" {
			fmt.Fprintf(out, "Output: %s\n", cfg.Output.Dir)
		}
		fmt.Fprintln(out, "------------------------------------------------------------")

		start := time.Now()
		results := batch.Run(cmd.Context(), batch.Config{
			InputDir:       dir,
			OutputDir:      cfg.Output.Dir,
			Params:         cfg.Relief,
			Format:         cfg.Format(),
			MaxSide:        cfg.Output.MaxSide,
			Preview:        cfg.Preview.Enabled,
			PreviewOptions: cfg.Preview.Options,
			Workers:        cfg.Workers,
		}, inputs)

		fmt.Fprintln(out, "------------------------------------------------------------")
		fmt.Fprintf(out, "Done in %.1fs\n", time.Since(start).Seconds())

		failed := batch.Failed(results)
		fmt.Fprintf(out, "Converted: %d/%d\n", len(results)-failed, len(results))

		if failed > 0 {
			fmt.Fprintf(out, "\nFailed (%d):\n", failed)
			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.AppendHeader(table.Row{"Input", "Kind", "Error"})
			shown := 0
			for _, r := range results {
				if r.Success {
					continue
				}
				if shown == 20 {
					t.AppendFooter(table.Row{fmt.Sprintf("... and %d more", failed-shown)})
					break
				}
				kind := "processing"
				if r.NotFound {
					kind = "not found"
				}
				t.AppendRow(table.Row{r.Input, kind, r.Error})
				shown++
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
		}

		manifestDir := cfg.Output.Dir
		if manifestDir == "" {
			manifestDir = dir
		}
		manifestPath := filepath.Join(manifestDir, "manifest.json")
		if err := batch.WriteManifest(manifestPath, results); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		} else {
			fmt.Fprintf(out, "Manifest: %s\n", manifestPath)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d conversions failed", failed, len(results))
		}
		return nil
	},
}
