package fsfile

import (
	"fmt"

	"github.com/rvsv32/rvkernel/internal/kconst"
)

// DataCap is the fixed per-file data capacity (spec.md §3: "data (fixed
// capacity, e.g. 1024 bytes)").
const DataCap = 1024

// NameCap is the fixed width of a file's NUL-terminated name field.
const NameCap = 100

// perFileBlocks is how many 512-byte disk blocks one file occupies: one
// header block plus its data rounded up to a block multiple.
const perFileBlocks = 1 + DataCap/headerSize

// ImageSize is the size of the whole-disk TAR image fs_init reads and
// fs_flush rewrites; sized to hold FilesMax files at DataCap each, the
// "capacity implied by FILES_MAX * typical_block" spec.md §4.4 asks for.
const ImageSize = kconst.FilesMax * perFileBlocks * headerSize

// File is one in-memory file-table entry (spec.md §3).
type File struct {
	Name  [NameCap]byte
	Data  [DataCap]byte
	Size  int
	InUse bool
}

func (f *File) name() string { return cstring(f.Name[:]) }

// Disk is the subset of blkio.Driver the file table needs: synchronous,
// whole-sector reads and writes. blkio.Driver satisfies this directly.
type Disk interface {
	ReadWriteDisk(buf []byte, sector uint32, isWrite bool) error
}

// Table is the fixed-size in-memory file array (C4).
type Table struct {
	files [kconst.FilesMax]File
}

// Load reads the whole TAR image from disk and parses it into a Table,
// exactly matching spec.md §4.4's fs_init. It panics on a bad USTAR magic
// or on a file whose size overflows File.Data's capacity, per spec.md §4.4.
func Load(disk Disk) (*Table, error) {
	image := make([]byte, ImageSize)
	for off := 0; off < len(image); off += kconst.SectorSize {
		sector := uint32(off / kconst.SectorSize)
		if err := disk.ReadWriteDisk(image[off:off+kconst.SectorSize], sector, false); err != nil {
			return nil, fmt.Errorf("fsfile: loading sector %d: %w", sector, err)
		}
	}

	t := &Table{}
	t.parse(image)
	return t, nil
}

func (t *Table) parse(image []byte) {
	off := 0
	slot := 0
	for off+headerSize <= len(image) {
		h := asHeader(image[off:])
		name := h.name()
		if name == "" {
			break
		}
		if h.magic() != ustarMagic {
			panic(fmt.Sprintf("fsfile: bad ustar magic at block %d", off/headerSize))
		}

		size, err := h.size()
		if err != nil {
			panic(err)
		}
		if size > DataCap {
			panic(fmt.Sprintf("fsfile: file %q size %d exceeds slot capacity %d", name, size, DataCap))
		}
		if slot >= len(t.files) {
			panic(fmt.Sprintf("fsfile: more than FilesMax=%d files in image", kconst.FilesMax))
		}

		f := &t.files[slot]
		*f = File{InUse: true, Size: size}
		copy(f.Name[:], name)
		copy(f.Data[:], image[off+headerSize:off+headerSize+size])

		slot++
		off += headerSize + align512(size)
	}
}

// Flush re-emits the whole image (every in-use slot, in table order,
// followed by an empty terminating header implied by the zeroed tail of
// the image buffer) and writes it to disk sector by sector, exactly as
// spec.md §4.4's fs_flush.
func (t *Table) Flush(disk Disk) error {
	image := make([]byte, ImageSize)
	off := 0
	for i := range t.files {
		f := &t.files[i]
		if !f.InUse {
			continue
		}
		h := asHeader(image[off:])
		h.setName(f.name())
		h.setSize(f.Size)
		h.setTypeflag(typeflagRegular)
		h.setMagic()
		h.setChecksum()
		copy(image[off+headerSize:], f.Data[:f.Size])
		off += headerSize + align512(f.Size)
	}

	for o := 0; o < len(image); o += kconst.SectorSize {
		sector := uint32(o / kconst.SectorSize)
		if err := disk.ReadWriteDisk(image[o:o+kconst.SectorSize], sector, true); err != nil {
			return fmt.Errorf("fsfile: flushing sector %d: %w", sector, err)
		}
	}
	return nil
}

// Lookup linear-scans the table for name, matching spec.md §4.4's
// fs_lookup: names compare as NUL-terminated strings.
func (t *Table) Lookup(name string) (*File, bool) {
	for i := range t.files {
		f := &t.files[i]
		if f.InUse && f.name() == name {
			return f, true
		}
	}
	return nil, false
}
