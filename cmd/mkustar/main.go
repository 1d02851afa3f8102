// Command mkustar builds a USTAR disk image (spec.md §4.4, §6 "Disk
// format") from a skeleton directory on the host, the way a developer
// would prepare the virtio-blk-backed disk before booting the kernel.
//
// Grounded on the teacher's mkfs.go, which also walks a host skeleton
// directory and replicates it into a target filesystem; this command
// walks the same way but emits a flat USTAR stream instead of populating
// a live ufs.Ufs_t, since the kernel's file table has no directory
// hierarchy to speak of.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
	"golang.org/x/text/encoding/charmap"

	"github.com/rvsv32/rvkernel/internal/fsfile"
)

func main() {
	var (
		skeldir = flag.String("skel", "skel", "host directory tree to copy into the image")
		out     = flag.String("out", "disk.img", "path to the output disk image")
	)
	flag.Parse()

	image := make([]byte, fsfile.ImageSize)
	off := 0

	err := filepath.WalkDir(*skeldir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(*skeldir, path)
		if err != nil {
			return err
		}
		name, err := sanitizeName(rel)
		if err != nil {
			return fmt.Errorf("mkustar: %s: %w", rel, err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if len(data) > fsfile.DataCap {
			return fmt.Errorf("mkustar: %s: %d bytes exceeds the %d-byte file-slot capacity", rel, len(data), fsfile.DataCap)
		}

		var wrote int
		off, wrote = writeEntry(image, off, name, data)
		log.Printf("mkustar: added %s (%d bytes) at block %d", name, len(data), wrote)
		return nil
	})
	if err != nil {
		log.Fatalf("mkustar: walking %s: %v", *skeldir, err)
	}

	if err := writeImage(*out, image); err != nil {
		log.Fatalf("mkustar: %v", err)
	}
}

// sanitizeName validates that rel is representable in the USTAR name
// field (ASCII, within NameCap bytes); charmap.ASCII's decoder rejects any
// byte above 0x7F, catching filenames the C original's fixed ASCII name
// array could never round-trip.
func sanitizeName(rel string) (string, error) {
	rel = filepath.ToSlash(rel)
	if len(rel) >= fsfile.NameCap {
		return "", fmt.Errorf("name %q is %d bytes, limit is %d", rel, len(rel), fsfile.NameCap-1)
	}
	if _, err := charmap.ASCII.NewDecoder().String(rel); err != nil {
		return "", fmt.Errorf("name %q is not ASCII: %w", rel, err)
	}
	return rel, nil
}

// writeImage writes buf to path via golang.org/x/sys/unix rather than
// os.WriteFile, so the same open/write/close sequence can later grow an
// O_DIRECT flag for large images without switching I/O layers.
func writeImage(path string, buf []byte) error {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer unix.Close(fd)

	if _, err := unix.Write(fd, buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeEntry is a minimal, local re-implementation of fsfile's header
// encoding so this host tool has no import-cycle dependence on fsfile's
// unexported header type; it must stay byte-for-byte compatible with
// fsfile.Table.Flush, which is exercised directly in fsfile's own tests.
func writeEntry(image []byte, off int, name string, data []byte) (int, int) {
	startBlock := off / 512
	h := image[off : off+512]
	copy(h[0:100], name)
	copy(h[124:135], []byte(fmt.Sprintf("%011o", len(data))))
	h[156] = '0'
	copy(h[257:263], "ustar")

	sum := 0
	for i, b := range h {
		if i >= 148 && i < 156 {
			sum += ' '
			continue
		}
		sum += int(b)
	}
	copy(h[148:154], []byte(fmt.Sprintf("%06o", sum)))
	h[154] = 0
	h[155] = ' '

	off += 512
	copy(image[off:], data)
	off += (len(data) + 511) / 512 * 512
	return off, startBlock
}
