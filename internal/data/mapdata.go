package data

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/voxelpath/pathd/internal/core/vec"
	"github.com/voxelpath/pathd/internal/voxel"
)

// MapInfo describes one world map in map_list.yaml. Exactly one of Layers,
// LayerFile or Snapshot provides the blocks.
type MapInfo struct {
	Name      string   `yaml:"name"`
	Origin    [3]int   `yaml:"origin"`
	Layers    []string `yaml:"layers"`
	LayerFile string   `yaml:"layer_file"` // relative to the map list
	Snapshot  string   `yaml:"snapshot"`   // relative to the map list
}

// MapEntry is a loaded map.
type MapEntry struct {
	Info     MapInfo
	Grid     *voxel.Grid
	Checksum string // snapshot checksum, empty for text maps
}

// MapTable holds every loaded map by name.
type MapTable struct {
	maps map[string]*MapEntry
}

type mapListFile struct {
	Maps []MapInfo `yaml:"maps"`
}

// LoadMaps loads map_list.yaml and the block data it references.
func LoadMaps(yamlPath string) (*MapTable, error) {
	raw, err := os.ReadFile(yamlPath)
	if err != nil {
		return nil, fmt.Errorf("read map list %s: %w", yamlPath, err)
	}
	var file mapListFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse map list: %w", err)
	}

	dir := filepath.Dir(yamlPath)
	table := &MapTable{
		maps: make(map[string]*MapEntry, len(file.Maps)),
	}
	for _, info := range file.Maps {
		if info.Name == "" {
			return nil, fmt.Errorf("map list %s: map without name", yamlPath)
		}
		if _, dup := table.maps[info.Name]; dup {
			return nil, fmt.Errorf("map list %s: duplicate map %q", yamlPath, info.Name)
		}
		entry, err := loadMap(dir, info)
		if err != nil {
			return nil, fmt.Errorf("map %s: %w", info.Name, err)
		}
		table.maps[info.Name] = entry
	}

	return table, nil
}

func loadMap(dir string, info MapInfo) (*MapEntry, error) {
	origin := vec.New(info.Origin[0], info.Origin[1], info.Origin[2])
	sources := 0
	for _, set := range []bool{len(info.Layers) > 0, info.LayerFile != "", info.Snapshot != ""} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, fmt.Errorf("want exactly one of layers, layer_file, snapshot; got %d", sources)
	}

	switch {
	case info.Snapshot != "":
		hdr, g, err := voxel.ReadSnapshot(filepath.Join(dir, info.Snapshot))
		if err != nil {
			return nil, err
		}
		return &MapEntry{Info: info, Grid: g, Checksum: hdr.Checksum}, nil
	case info.LayerFile != "":
		rows, err := LoadLayerFile(filepath.Join(dir, info.LayerFile))
		if err != nil {
			return nil, err
		}
		g, err := voxel.ParseLayers(origin, rows)
		if err != nil {
			return nil, err
		}
		return &MapEntry{Info: info, Grid: g}, nil
	default:
		g, err := voxel.ParseLayers(origin, info.Layers)
		if err != nil {
			return nil, err
		}
		return &MapEntry{Info: info, Grid: g}, nil
	}
}

// LoadLayerFile reads one Z row per line. Lines starting with '#' are
// comments; spaces are ground, so lines are not trimmed.
func LoadLayerFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, "#") {
			continue
		}
		rows = append(rows, line)
	}
	return rows, scanner.Err()
}

// Count returns the number of maps loaded.
func (t *MapTable) Count() int {
	return len(t.maps)
}

// Get returns a map by name, or nil if not found.
func (t *MapTable) Get(name string) *MapEntry {
	return t.maps[name]
}

// Names lists the loaded maps in sorted order.
func (t *MapTable) Names() []string {
	names := make([]string, 0, len(t.maps))
	for n := range t.maps {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
