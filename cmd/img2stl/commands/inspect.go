package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"img2stl/internal/convert"
	"img2stl/internal/mathutil"
	"img2stl/internal/mesh"
	"img2stl/internal/stl"
)

var inspectFlags reliefFlags

func init() {
	inspectFlags.bind(inspectCmd)
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <image|mesh.stl>",
	Short: "Prints size, volume and closure checks for an image's relief or an STL file.",
	Long: "inspect builds the relief of an image in memory, or reads an existing STL,\n" +
		"and reports its dimensions and whether it is watertight. It writes nothing.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(inspectFlags.overrides(cmd))
		if err != nil {
			return err
		}

		path := args[0]
		out := cmd.OutOrStdout()

		if strings.EqualFold(filepath.Ext(path), ".stl") {
			m, err := stl.Read(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "File: %s\n", path)
			return printMesh(out, m)
		}

		m, w, h, err := convert.Build(cmd.Context(), convert.Options{
			Input:   path,
			Params:  cfg.Relief,
			MaxSide: cfg.Output.MaxSide,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Image: %s (%dx%d px)\n", path, w, h)
		fmt.Fprintf(out, "Thickness: %.3f..%.3f on base %.3f\n",
			cfg.Relief.MinThickness, cfg.Relief.MaxThickness, cfg.Relief.BaseHeight)
		return printMesh(out, m)
	},
}

func printMesh(out io.Writer, m *mesh.Mesh) error {
	lo, hi, ok := m.Bounds()
	if !ok {
		return fmt.Errorf("inspect: mesh %q has no triangles", m.Name)
	}
	r := mesh.Check(m)

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Property", "Value"})
	t.AppendRows([]table.Row{
		{"Name", m.Name},
		{"Triangles", m.TriangleCount()},
		{"Size", fmt.Sprintf("%.3f x %.3f x %.3f", hi[0]-lo[0], hi[1]-lo[1], hi[2]-lo[2])},
		{"Elevation", fmt.Sprintf("%.3f..%.3f", lo[2], hi[2])},
		{"Volume", fmt.Sprintf("%.3f", m.SignedVolume())},
		{"Area", fmt.Sprintf("%.3f", m.SurfaceArea())},
		{"Edges", r.Edges},
		{"Boundary edges", r.BoundaryEdges},
		{"Non-manifold edges", r.NonManifoldEdges},
		{"Misoriented edges", r.MisorientedEdges},
		{"Degenerate", m.Degenerate(mathutil.Eps)},
		{"Watertight", r.Watertight()},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}
