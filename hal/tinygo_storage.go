//go:build tinygo && baremetal

package hal

import (
	"fmt"
	"os"

	"machine"

	"tinygo.org/x/drivers/sdcard"
	"tinygo.org/x/tinyfs"
	"tinygo.org/x/tinyfs/fatfs"
)

// sdStorage appends the flight log to a FAT-formatted SD card on SPI0.
// Each power-up opens a fresh numbered file so flights do not overwrite
// each other. A missing or unreadable card degrades to errors on Append;
// the flight loop keeps running and counts the drops.
type sdStorage struct {
	sd      *sdcard.Device
	fat     *fatfs.FATFS
	f       tinyfs.File
	path    string
	written uint64
}

func newSDStorage() *sdStorage {
	sd := sdcard.New(machine.SPI0, machine.GP18, machine.GP19, machine.GP16, machine.GP17)
	if err := sd.Configure(); err != nil {
		return &sdStorage{}
	}

	fat := fatfs.New(&sd).Configure(&fatfs.Config{SectorSize: fatfs.SectorSize})
	if err := fat.Mount(); err != nil {
		// Do not auto-format removable media.
		return &sdStorage{}
	}

	s := &sdStorage{sd: &sd, fat: fat}
	for i := 0; i < 1000; i++ {
		path := fmt.Sprintf("/log%03d.bbl", i)
		if _, err := fat.Stat(path); err == nil {
			continue
		}
		f, err := fat.OpenFile(path, os.O_WRONLY|os.O_CREATE)
		if err != nil {
			break
		}
		s.f = f
		s.path = path
		break
	}
	return s
}

func (s *sdStorage) Append(p []byte) (int, error) {
	if s.f == nil {
		return 0, ErrNotImplemented
	}
	n, err := s.f.Write(p)
	s.written += uint64(n)
	return n, err
}

func (s *sdStorage) Sync() error {
	if s.f == nil {
		return ErrNotImplemented
	}
	if sync, ok := s.f.(interface{ Sync() error }); ok {
		return sync.Sync()
	}
	return nil
}

func (s *sdStorage) Diag() string {
	if s.f == nil {
		return "sd: no card"
	}
	return fmt.Sprintf("sd: %s %d bytes", s.path, s.written)
}
