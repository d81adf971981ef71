package catalog

import (
	"bytes"
	"io"
	"io/fs"
	"os"
)

// Source produces an entry's bytes. Open is called only at final-write time.
type Source interface {
	Open() (io.ReadCloser, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (io.ReadCloser, error)

// Open calls f.
func (f SourceFunc) Open() (io.ReadCloser, error) { return f() }

// Bytes returns an eager Source over a private copy of data.
func Bytes(data []byte) Source {
	buf := bytes.Clone(data)
	if buf == nil {
		buf = []byte{}
	}
	return bytesSource(buf)
}

type bytesSource []byte

func (b bytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// FSFile returns a lazy Source reading name from fsys.
func FSFile(fsys fs.FS, name string) Source {
	return SourceFunc(func() (io.ReadCloser, error) {
		return fsys.Open(name)
	})
}

// File returns a lazy Source reading the file at path.
func File(path string) Source {
	return SourceFunc(func() (io.ReadCloser, error) {
		return os.Open(path)
	})
}

// ReadAll opens src and reads it to the end.
func ReadAll(src Source) ([]byte, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
