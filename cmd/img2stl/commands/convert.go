package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"img2stl/internal/convert"
)

var (
	convertFlags  reliefFlags
	convertOutput string
)

func init() {
	convertFlags.bind(convertCmd)
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output STL path (default: input name with .stl)")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <image> [-o out.stl]",
	Short: "Converts one grayscale image into an STL relief.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(convertFlags.overrides(cmd))
		if err != nil {
			return err
		}

		opts := convert.Options{
			Input:          args[0],
			Output:         convertOutput,
			Params:         cfg.Relief,
			Format:         cfg.Format(),
			MaxSide:        cfg.Output.MaxSide,
			PreviewOptions: cfg.Preview.Options,
		}
		if opts.Output == "" {
			opts.Output = convert.OutputPath(opts.Input)
		}
		if cfg.Preview.Enabled {
			opts.Preview = convert.PreviewPath(opts.Output)
		}

		res, err := convert.Run(cmd.Context(), opts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s -> %s\n", res.Input, res.Output)
		fmt.Fprintf(out, "  %dx%d px, %d triangles, volume %.3f, %.2fs\n",
			res.Width, res.Height, res.Triangles, res.Volume, res.Duration.Seconds())
		if res.Preview != "" {
			fmt.Fprintf(out, "  preview: %s\n", res.Preview)
		}
		return nil
	},
}
