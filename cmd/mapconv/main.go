// mapconv converts an ASCII layer file into a compressed world snapshot that
// map_list.yaml can reference with `snapshot:`.
//
// Usage:
//
//	go run ./cmd/mapconv <layers.txt> <output.vxs> [name]
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/voxelpath/pathd/internal/core/vec"
	"github.com/voxelpath/pathd/internal/data"
	"github.com/voxelpath/pathd/internal/voxel"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: mapconv <layers.txt> <output.vxs> [name]")
		os.Exit(1)
	}
	in, out := os.Args[1], os.Args[2]
	name := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	if len(os.Args) > 3 {
		name = os.Args[3]
	}

	rows, err := data.LoadLayerFile(in)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	g, err := voxel.ParseLayers(vec.Zero, rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", in, err)
		os.Exit(1)
	}
	if err := voxel.WriteSnapshot(out, name, g); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Read back so the printed checksum is the one loaders will see.
	hdr, _, err := voxel.ReadSnapshot(out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	lo, hi, _ := g.Bounds()
	fmt.Printf("Wrote %d cells %s..%s to %s\n", hdr.Cells, lo, hi, out)
	fmt.Printf("%s %s\n", hdr.Checksum, name)
}
