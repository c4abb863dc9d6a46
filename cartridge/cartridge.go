package cartridge

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
)

// MaxSize is the largest title image accepted.
const MaxSize = 1 << 20

// Extensions lists the file extensions offered by the title picker.
var Extensions = []string{"int", "bin", "rom", "itv"}

// Cartridge represents a loaded title image.
type Cartridge struct {
	Path string
	Name string
	Data []byte
}

// New creates a new Cartridge instance from a title file.
func New(path string) (*Cartridge, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	if info.Size() > MaxSize {
		return nil, fmt.Errorf("%s is too large to be a title image (%d bytes)", path, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &Cartridge{
		Path: path,
		Name: Name(path),
		Data: data,
	}, nil
}

// Name returns the title name for a path: the base name without its
// extension.
func Name(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Checksum is a content hash used to tell titles apart in logs.
func (c *Cartridge) Checksum() uint32 {
	h := fnv.New32a()
	h.Write(c.Data)
	return h.Sum32()
}
