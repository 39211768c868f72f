package nbt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Region file container: an 8 KiB header of two 1024-entry tables (packed
// sector locations, then last-write timestamps) followed by 4096-byte
// sectors holding compressed document roots for a 32x32 grid of chunk
// coordinates. Writes recompute the sector layout with a first-fit scan
// over the gaps between live extents and trim the file to the last
// occupied sector, so a shrinking chunk never leaks tail space.
//
// Instances are not safe for concurrent writers: placement decisions read
// the whole location table first, so two racing writers can corrupt the
// header. Callers serialize writes per file.

const (
	regionSectorSize    = 4096
	regionHeaderSectors = 2
	regionGridSize      = 32
	regionSlots         = regionGridSize * regionGridSize

	formatGzip = 1
	formatZlib = 2
)

// ChunkPos is a chunk coordinate within a region's 32x32 grid.
type ChunkPos struct {
	X int
	Z int
}

// RegionFile is an open region container. Use OpenRegion for read-write
// access or OpenRegionReadOnly for inspection.
type RegionFile struct {
	f        *os.File
	readonly bool
}

// OpenRegion opens a region file for reading and writing, creating it
// with a zeroed header if missing or shorter than the header.
func OpenRegion(path string) (*RegionFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if st.Size() < regionHeaderSectors*regionSectorSize {
		if err := f.Truncate(regionHeaderSectors * regionSectorSize); err != nil {
			f.Close()
			return nil, err
		}
	}
	return &RegionFile{f: f}, nil
}

// OpenRegionReadOnly opens an existing region file for reading.
func OpenRegionReadOnly(path string) (*RegionFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &RegionFile{f: f, readonly: true}, nil
}

// Close releases the underlying file handle.
func (r *RegionFile) Close() error { return r.f.Close() }

func slotIndex(x, z int) (int, error) {
	if x < 0 || x >= regionGridSize || z < 0 || z >= regionGridSize {
		return 0, fmt.Errorf("nbt: chunk coordinate (%d, %d) outside the %dx%d region grid", x, z, regionGridSize, regionGridSize)
	}
	return z*regionGridSize + x, nil
}

// location returns the slot's sector offset and count. A zero offset means
// no chunk is stored there.
func (r *RegionFile) location(x, z int) (offset, count int, err error) {
	i, err := slotIndex(x, z)
	if err != nil {
		return 0, 0, err
	}
	var b [4]byte
	if _, err := r.f.ReadAt(b[:], int64(4*i)); err != nil {
		return 0, 0, err
	}
	e := binary.BigEndian.Uint32(b[:])
	return int(e >> 8), int(e & 0xFF), nil
}

// Timestamp returns the slot's last-write time, or the zero time for a
// slot never written.
func (r *RegionFile) Timestamp(x, z int) (time.Time, error) {
	i, err := slotIndex(x, z)
	if err != nil {
		return time.Time{}, err
	}
	var b [4]byte
	if _, err := r.f.ReadAt(b[:], int64(regionSectorSize+4*i)); err != nil {
		return time.Time{}, err
	}
	v := binary.BigEndian.Uint32(b[:])
	if v == 0 {
		return time.Time{}, nil
	}
	return time.Unix(int64(v), 0), nil
}

// Chunks lists the coordinates of every stored chunk.
func (r *RegionFile) Chunks() ([]ChunkPos, error) {
	table := make([]byte, regionSectorSize)
	if _, err := r.f.ReadAt(table, 0); err != nil {
		return nil, err
	}
	var out []ChunkPos
	for i := 0; i < regionSlots; i++ {
		if binary.BigEndian.Uint32(table[4*i:]) != 0 {
			out = append(out, ChunkPos{X: i % regionGridSize, Z: i / regionGridSize})
		}
	}
	return out, nil
}

// LoadChunk reads and decodes the chunk at (x, z), returning (nil, nil)
// when no chunk is stored there.
func (r *RegionFile) LoadChunk(x, z int) (*Tag, error) {
	blob, err := r.readBlob(x, z)
	if err != nil || blob == nil {
		return nil, err
	}
	payload, err := decompressBlob(blob[4], blob[5:])
	if err != nil {
		return nil, err
	}
	return DecodeRoot(payload)
}

// SaveChunk encodes, compresses (zlib, format tag 2), and stores the
// chunk at (x, z), relocating it if its sector count changed.
func (r *RegionFile) SaveChunk(x, z int, root *Tag) error {
	data, err := EncodeRoot(root)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	blob := make([]byte, 5+buf.Len())
	binary.BigEndian.PutUint32(blob, uint32(buf.Len()))
	blob[4] = formatZlib
	copy(blob[5:], buf.Bytes())
	return r.writeBlob(x, z, blob)
}

// RestoreChunk copies the chunk at (x, z) from src into r verbatim,
// without decompressing or re-encoding it. It reports whether src held a
// chunk at that coordinate.
func (r *RegionFile) RestoreChunk(src *RegionFile, x, z int) (bool, error) {
	blob, err := src.readBlob(x, z)
	if err != nil || blob == nil {
		return false, err
	}
	if err := r.writeBlob(x, z, blob); err != nil {
		return false, err
	}
	return true, nil
}

// readBlob returns the slot's blob (length, format byte, compressed
// payload) with the declared length already reconciled against the bytes
// actually present. Returns nil for an empty slot.
func (r *RegionFile) readBlob(x, z int) ([]byte, error) {
	offset, count, err := r.location(x, z)
	if err != nil {
		return nil, err
	}
	if offset == 0 {
		return nil, nil
	}
	raw := make([]byte, count*regionSectorSize)
	n, err := r.f.ReadAt(raw, int64(offset)*regionSectorSize)
	if err != nil && err != io.EOF {
		return nil, err
	}
	raw = raw[:n]
	if len(raw) < 5 {
		return nil, fmt.Errorf("nbt: chunk (%d, %d): sector range shorter than the blob preamble", x, z)
	}
	declared := int(binary.BigEndian.Uint32(raw[:4]))
	avail := len(raw) - 5
	if declared > avail {
		// Files written by earlier tooling record the length one byte
		// high. Retry once at length-1 before giving up.
		declared--
		if declared > avail {
			return nil, fmt.Errorf("nbt: chunk (%d, %d): declared length %d exceeds the %d stored bytes", x, z, declared+1, avail)
		}
	}
	return raw[:5+declared], nil
}

func decompressBlob(format byte, payload []byte) ([]byte, error) {
	switch format {
	case formatZlib:
		zr, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("nbt: open zlib chunk: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case formatGzip:
		zr, err := gzip.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("nbt: open gzip chunk: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	default:
		return nil, fmt.Errorf("nbt: unknown chunk compression format %d", format)
	}
}

type extent struct {
	offset int
	count  int
}

// writeBlob places blob in the first gap between live extents large
// enough to hold it, updates the slot's location and timestamp entries,
// and trims the file to the last occupied sector.
func (r *RegionFile) writeBlob(x, z int, blob []byte) error {
	if r.readonly {
		return fmt.Errorf("nbt: region file opened read-only")
	}
	idx, err := slotIndex(x, z)
	if err != nil {
		return err
	}
	need := (len(blob) + regionSectorSize - 1) / regionSectorSize
	if need > 0xFF {
		return fmt.Errorf("nbt: chunk (%d, %d): %d bytes exceeds the %d-sector slot limit", x, z, len(blob), 0xFF)
	}

	table := make([]byte, regionSectorSize)
	if _, err := r.f.ReadAt(table, 0); err != nil {
		return err
	}
	extents := []extent{{0, regionHeaderSectors}}
	for i := 0; i < regionSlots; i++ {
		if i == idx {
			continue
		}
		e := binary.BigEndian.Uint32(table[4*i:])
		if e == 0 {
			continue
		}
		extents = append(extents, extent{offset: int(e >> 8), count: int(e & 0xFF)})
	}
	sort.Slice(extents, func(i, j int) bool { return extents[i].offset < extents[j].offset })

	place := 0
	for i, e := range extents {
		start := e.offset + e.count
		if i+1 == len(extents) || extents[i+1].offset-start >= need {
			place = start
			break
		}
	}

	padded := make([]byte, need*regionSectorSize)
	copy(padded, blob)
	if _, err := r.f.WriteAt(padded, int64(place)*regionSectorSize); err != nil {
		return err
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(place)<<8|uint32(need))
	if _, err := r.f.WriteAt(b[:], int64(4*idx)); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(b[:], uint32(time.Now().Unix()))
	if _, err := r.f.WriteAt(b[:], int64(regionSectorSize+4*idx)); err != nil {
		return err
	}

	end := place + need
	for _, e := range extents {
		if e.offset+e.count > end {
			end = e.offset + e.count
		}
	}
	return r.f.Truncate(int64(end) * regionSectorSize)
}
