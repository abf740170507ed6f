package voxel

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"

	"github.com/voxelpath/pathd/internal/core/vec"
)

const snapshotVersion = 1

var ErrChecksum = errors.New("voxel: snapshot checksum mismatch")

// SnapshotHeader is the JSON line preceding the block body.
type SnapshotHeader struct {
	Version  int    `json:"version"`
	Name     string `json:"name"`
	Cells    int    `json:"cells"`
	Checksum string `json:"blake2b_256"`
}

type cellV1 struct {
	Pos [3]int
	ID  uint8
}

type bodyV1 struct {
	Cells []cellV1
}

// EncodeSnapshot writes g to w as a zstd stream holding a JSON header line and a
// gob body. The header carries the BLAKE2b-256 of the body.
func EncodeSnapshot(w io.Writer, name string, g *Grid) error {
	var body bodyV1
	var encErr error
	g.Each(func(p vec.Vec3, b Block) {
		id, ok := blockID(b)
		if !ok && encErr == nil {
			encErr = fmt.Errorf("block %q at %s has no snapshot id", b.Name, p)
		}
		body.Cells = append(body.Cells, cellV1{Pos: [3]int{p.X, p.Y, p.Z}, ID: id})
	})
	if encErr != nil {
		return encErr
	}
	slices.SortFunc(body.Cells, func(a, b cellV1) int {
		for i := range a.Pos {
			if a.Pos[i] != b.Pos[i] {
				return a.Pos[i] - b.Pos[i]
			}
		}
		return 0
	})

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(&body); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	sum := blake2b.Sum256(raw.Bytes())
	hdr := SnapshotHeader{
		Version:  snapshotVersion,
		Name:     name,
		Cells:    len(body.Cells),
		Checksum: hex.EncodeToString(sum[:]),
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	hb, _ := json.Marshal(hdr)
	if _, err := enc.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	if _, err := enc.Write(raw.Bytes()); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// DecodeSnapshot reads a stream written by EncodeSnapshot.
func DecodeSnapshot(r io.Reader) (SnapshotHeader, *Grid, error) {
	var hdr SnapshotHeader
	dec, err := zstd.NewReader(r)
	if err != nil {
		return hdr, nil, err
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return hdr, nil, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &hdr); err != nil {
		return hdr, nil, fmt.Errorf("parse header: %w", err)
	}
	if hdr.Version != snapshotVersion {
		return hdr, nil, fmt.Errorf("unsupported snapshot version %d", hdr.Version)
	}

	raw, err := io.ReadAll(br)
	if err != nil {
		return hdr, nil, fmt.Errorf("read body: %w", err)
	}
	sum := blake2b.Sum256(raw)
	if hex.EncodeToString(sum[:]) != hdr.Checksum {
		return hdr, nil, ErrChecksum
	}

	var body bodyV1
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&body); err != nil {
		return hdr, nil, fmt.Errorf("gob decode: %w", err)
	}
	g := NewGrid()
	for _, c := range body.Cells {
		if int(c.ID) >= len(palette) {
			return hdr, nil, fmt.Errorf("unknown block id %d", c.ID)
		}
		g.Set(vec.New(c.Pos[0], c.Pos[1], c.Pos[2]), palette[c.ID])
	}
	return hdr, g, nil
}

func WriteSnapshot(path, name string, g *Grid) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := EncodeSnapshot(f, name, g); err != nil {
		f.Close()
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return f.Close()
}

func ReadSnapshot(path string) (SnapshotHeader, *Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return SnapshotHeader{}, nil, err
	}
	defer f.Close()
	hdr, g, err := DecodeSnapshot(f)
	if err != nil {
		return hdr, nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	return hdr, g, nil
}
