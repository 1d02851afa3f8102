package blkio

import (
	"bytes"
	"testing"

	"github.com/rvsv32/rvkernel/internal/kconst"
	"github.com/rvsv32/rvkernel/internal/pmm"
)

func newTestDriver(t *testing.T, sectors int) (*Driver, *SimDevice) {
	t.Helper()
	mem := pmm.New(pmm.Region{Base: 0x8400_0000, Mem: make([]byte, 64*kconst.PageSize)})
	disk := make([]byte, sectors*kconst.SectorSize)
	sim := NewSimDevice(mem, disk)
	d := Init(sim, mem)
	return d, sim
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	d, _ := newTestDriver(t, 8)

	want := bytes.Repeat([]byte{0x42}, kconst.SectorSize)
	if err := d.ReadWriteDisk(want, 3, true); err != nil {
		t.Fatalf("write: %v", err)
	}

	got := make([]byte, kconst.SectorSize)
	if err := d.ReadWriteDisk(got, 3, false); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("read back %x..., want %x...", got[:8], want[:8])
	}
}

func TestOutOfRangeSectorLeavesBufferUntouched(t *testing.T) {
	d, _ := newTestDriver(t, 4)

	buf := bytes.Repeat([]byte{0x99}, kconst.SectorSize)
	sentinel := append([]byte(nil), buf...)

	if err := d.ReadWriteDisk(buf, 4 /* == capacity in sectors */, false); err == nil {
		t.Fatalf("expected an out-of-range error")
	}
	if !bytes.Equal(buf, sentinel) {
		t.Fatalf("out-of-range request mutated caller's buffer")
	}
}

func TestCapacityMatchesBackingDisk(t *testing.T) {
	d, _ := newTestDriver(t, 16)
	if d.Capacity != 16*kconst.SectorSize {
		t.Fatalf("Capacity = %d, want %d", d.Capacity, 16*kconst.SectorSize)
	}
}

func TestInitPanicsOnBadMagic(t *testing.T) {
	mem := pmm.New(pmm.Region{Base: 0x8500_0000, Mem: make([]byte, 16*kconst.PageSize)})
	bad := &stubMMIO{magic: 0xDEADBEEF, version: versionLegacy, deviceID: deviceIDBlk}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on bad magic")
		}
	}()
	Init(bad, mem)
}

// stubMMIO lets tests exercise Init's identity checks without a full
// SimDevice.
type stubMMIO struct {
	magic, version, deviceID uint32
}

func (s *stubMMIO) ReadReg32(offset uint32) uint32 {
	switch offset {
	case RegMagic:
		return s.magic
	case RegVersion:
		return s.version
	case RegDeviceID:
		return s.deviceID
	}
	return 0
}
func (s *stubMMIO) ReadReg64(uint32) uint64 { return 0 }
func (s *stubMMIO) WriteReg32(uint32, uint32) {}
