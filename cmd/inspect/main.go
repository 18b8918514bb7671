// Command inspect loads puppet files and prints their node tree,
// parameters, and texture summary.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"inp-rig-runtime/internal/puppet"
)

func main() {
	showMesh := flag.Bool("mesh", false, "Print per-drawable mesh statistics")
	showParams := flag.Bool("params", true, "Print parameter definitions")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: inspect [-mesh] [-params=false] file.inp...")
		os.Exit(2)
	}

	failed := 0
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error("read failed", "file", path, "err", err)
			failed++
			continue
		}
		doc, err := puppet.Load(data)
		if err != nil {
			log.Error("load failed", "file", path, "err", err)
			failed++
			continue
		}

		fmt.Printf("=== %s ===\n", path)
		fmt.Printf("Textures: %d\n", len(doc.Textures))
		for i, tex := range doc.Textures {
			b := tex.Bounds()
			fmt.Printf("  [%d] %dx%d\n", i, b.Dx(), b.Dy())
		}

		fmt.Println("Nodes:")
		printTree(doc.Root, 1, *showMesh)

		if *showParams {
			fmt.Printf("Params: %d\n", len(doc.Params))
			for _, p := range doc.Params {
				dof := "1-DOF"
				if p.IsVec2 {
					dof = "2-DOF"
				}
				fmt.Printf("  %s (%s) range=[%g..%g] grid=%dx%d bindings=%d\n",
					p.Name, dof, p.Min[0], p.Max[0],
					len(p.AxisPoints[0]), len(p.AxisPoints[1]), len(p.Bindings))
			}
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func printTree(n *puppet.Node, depth int, showMesh bool) {
	indent := strings.Repeat("  ", depth)
	enabled := ""
	if !n.Enabled {
		enabled = " [disabled]"
	}
	fmt.Printf("%s%s %q uuid=%d zsort=%g world=(%.1f, %.1f)%s\n",
		indent, n.Type, n.Name, n.UUID, n.ZSort,
		n.WorldTransform.Translation[0], n.WorldTransform.Translation[1], enabled)

	if showMesh && n.Mesh != nil {
		grid := ""
		if n.Mesh.IsGrid() {
			grid = fmt.Sprintf(" grid=%dx%d", len(n.Mesh.AxisX), len(n.Mesh.AxisY))
		}
		fmt.Printf("%s  mesh: v=%d tris=%d%s\n", indent, len(n.Mesh.Vertices), len(n.Mesh.Indices)/3, grid)
	}

	for _, c := range n.Children {
		printTree(c, depth+1, showMesh)
	}
}
