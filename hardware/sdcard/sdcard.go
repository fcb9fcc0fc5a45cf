// SD card storage probe. Filesystem I/O itself is out of this layer;
// boot only verifies the mount is writable so apps can rely on it.
package sdcard

import (
	"os"
	"path/filepath"

	"github.com/juju/errors"

	"github.com/mindspring/zhihui/log2"
)

const modName = "sdcard"
const DefaultRoot = "/mnt/sdcard"

type Storage struct {
	Log  *log2.Log
	root string
	ok   bool
}

func NewStorage(root string, log *log2.Log) *Storage {
	if root == "" {
		root = DefaultRoot
	}
	return &Storage{Log: log, root: root}
}

func (s *Storage) Root() string { return s.root }

func (s *Storage) Ok() bool { return s.ok }

func (s *Storage) Init() error {
	fi, err := os.Stat(s.root)
	if err != nil {
		return errors.Annotatef(err, "%s root=%s", modName, s.root)
	}
	if !fi.IsDir() {
		return errors.Errorf("%s root=%s is not a directory", modName, s.root)
	}
	probe := filepath.Join(s.root, ".zhihui-probe")
	if err = os.WriteFile(probe, []byte{}, 0o600); err != nil {
		return errors.Annotatef(err, "%s write probe", modName)
	}
	_ = os.Remove(probe)
	s.ok = true
	s.Log.Debugf("%s root=%s writable", modName, s.root)
	return nil
}
