package fsfile

import (
	"bytes"
	"testing"

	"github.com/rvsv32/rvkernel/internal/kconst"
)

// memDisk is a minimal Disk backed by a byte slice, standing in for
// blkio.Driver so fsfile's tests don't depend on the virtio package.
type memDisk struct {
	data []byte
}

func newMemDisk() *memDisk {
	return &memDisk{data: make([]byte, ImageSize)}
}

func (m *memDisk) ReadWriteDisk(buf []byte, sector uint32, isWrite bool) error {
	off := int(sector) * kconst.SectorSize
	if isWrite {
		copy(m.data[off:off+kconst.SectorSize], buf)
	} else {
		copy(buf, m.data[off:off+kconst.SectorSize])
	}
	return nil
}

// seedUstar writes a minimal single-file USTAR image directly to disk,
// standing in for a disk image produced by cmd/mkustar.
func seedUstar(t *testing.T, disk *memDisk, name string, data []byte) {
	t.Helper()
	h := asHeader(disk.data)
	h.setName(name)
	h.setSize(len(data))
	h.setTypeflag(typeflagRegular)
	h.setMagic()
	h.setChecksum()
	copy(disk.data[headerSize:], data)
}

func TestLoadParsesSeededFile(t *testing.T) {
	disk := newMemDisk()
	seedUstar(t, disk, "hello.txt", []byte("world"))

	table, err := Load(disk)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f, ok := table.Lookup("hello.txt")
	if !ok {
		t.Fatalf("expected hello.txt to be found")
	}
	if f.Size != 5 || string(f.Data[:f.Size]) != "world" {
		t.Fatalf("got size=%d data=%q", f.Size, f.Data[:f.Size])
	}
}

func TestLookupMissingReturnsFalse(t *testing.T) {
	disk := newMemDisk()
	seedUstar(t, disk, "hello.txt", []byte("world"))
	table, err := Load(disk)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := table.Lookup("does-not-exist"); ok {
		t.Fatalf("expected lookup of missing file to fail")
	}
}

func TestFlushThenLoadRoundTrips(t *testing.T) {
	disk := newMemDisk()
	seedUstar(t, disk, "hello.txt", []byte("world"))
	table, err := Load(disk)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	f, _ := table.Lookup("hello.txt")
	copy(f.Data[:], "WORLD!!!!!")
	f.Size = len("WORLD!!!!!")

	if err := table.Flush(disk); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	reloaded, err := Load(disk)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	rf, ok := reloaded.Lookup("hello.txt")
	if !ok {
		t.Fatalf("file missing after flush+reload")
	}
	if !bytes.Equal(rf.Data[:rf.Size], f.Data[:f.Size]) {
		t.Fatalf("round trip mismatch: got %q want %q", rf.Data[:rf.Size], f.Data[:f.Size])
	}
}

func TestLoadPanicsOnBadMagic(t *testing.T) {
	disk := newMemDisk()
	seedUstar(t, disk, "hello.txt", []byte("world"))
	// corrupt the magic field
	copy(disk.data[offMagic:], "NOPE!!")

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on bad ustar magic")
		}
	}()
	Load(disk)
}

func TestChecksumTreatsChecksumFieldAsSpaces(t *testing.T) {
	disk := newMemDisk()
	seedUstar(t, disk, "a", []byte("x"))
	h := asHeader(disk.data)

	want := h.checksum()
	// Flip the stored checksum bytes; the *computed* checksum (which
	// treats the field as spaces) must not change.
	for i := offChecksum; i < offChecksum+lenChecksum; i++ {
		disk.data[i] ^= 0xFF
	}
	if got := h.checksum(); got != want {
		t.Fatalf("checksum changed when checksum field bytes changed: got %d want %d", got, want)
	}
}
