package voxel

import (
	"fmt"

	"github.com/voxelpath/pathd/internal/core/vec"
)

// Layer characters. Each string of a level description is one Z row; '|'
// moves to the next Y level within that row.
const (
	charGround = ' '
	charAir    = 'X'
	charWater  = '~'
	charLevel  = '|'
)

// ParseLayers builds a grid from an ASCII description whose first cell sits at
// origin. Row i of rows is z = origin.Z + i; within a row, characters advance x
// and '|' resets x and advances y.
func ParseLayers(origin vec.Vec3, rows []string) (*Grid, error) {
	g := NewGrid()
	if err := g.ApplyLayers(origin, rows); err != nil {
		return nil, err
	}
	return g, nil
}

// ApplyLayers writes an ASCII description into g.
func (g *Grid) ApplyLayers(origin vec.Vec3, rows []string) error {
	for z, row := range rows {
		x, y := 0, 0
		for col, ch := range row {
			if ch == charLevel {
				x = 0
				y++
				continue
			}
			var b Block
			switch ch {
			case charGround:
				b = Ground
			case charAir:
				b = Air
			case charWater:
				b = Water
			default:
				return fmt.Errorf("row %d col %d: unknown block %q", z, col, ch)
			}
			g.Set(origin.Add(vec.New(x, y, z)), b)
			x++
		}
	}
	return nil
}
