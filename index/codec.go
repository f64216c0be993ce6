package index

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/eolymp/go-latexenv"
)

// Version of the snapshot layout, snapshots of other versions are rejected by Load.
const Version = 1

var ErrVersion = errors.New("unsupported index version")

type snapshot struct {
	Version int                                  `msgpack:"version"`
	Files   map[string][]latexenv.EnvironmentStub `msgpack:"files"`
}

// Save writes the index to w in msgpack format.
func (x *Index) Save(w io.Writer) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)

	if err := enc.Encode(snapshot{Version: Version, Files: x.files}); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	return nil
}

// Load reads an index written by Save.
func Load(r io.Reader) (*Index, error) {
	var snap snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}

	if snap.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, snap.Version)
	}

	x := New()
	for path, stubs := range snap.Files {
		x.files[path] = stubs
	}

	return x, nil
}

// SaveFile writes the index to a file. The file is replaced at once, readers
// never see a partially written index.
func (x *Index) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}

	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := x.Save(w); err != nil {
		tmp.Close()
		return err
	}

	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

func LoadFile(path string) (*Index, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer file.Close()

	x, err := Load(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("load %v: %w", path, err)
	}

	return x, nil
}
