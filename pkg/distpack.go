package pkg

import (
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/rotisserie/eris"
)

// Dist bundles are flat brotli-compressed archives used to ship prebuilt
// headers and libraries. Layout: a 16 byte header (4 magic chars, format
// version, index offset, entry count as little-endian uint32s), the
// compressed blobs, and the index at the end of the file.

const distMagic = "UCGD"

type distEntry struct {
	name    string
	offset  int64
	size    int64
	decSize int64
}

// DistWriter writes dist bundles.
type DistWriter struct {
	hdl     *os.File
	entries []distEntry
	buffer  []byte
}

// NewDistWriter creates a new bundle and opens it for writing.
func NewDistWriter(filename string) (*DistWriter, error) {
	hdl, err := os.Create(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to create %s", filename)
	}

	// skip the header, it's written on Close()
	_, err = hdl.Seek(16, io.SeekStart)
	if err != nil {
		hdl.Close()
		return nil, err
	}

	return &DistWriter{
		hdl:    hdl,
		buffer: make([]byte, 4096),
	}, nil
}

// validEntryName rejects names that would resolve outside the extraction
// directory. Checked on both ends since bundles come from untrusted places.
func validEntryName(name string) bool {
	return !strings.HasPrefix(name, "/") && !strings.Contains(name, "..")
}

// WriteFile adds the given file to the bundle under the passed name.
// Names use forward slashes regardless of platform.
func (w *DistWriter) WriteFile(name string, reader io.Reader) error {
	name = filepath.ToSlash(name)
	if !validEntryName(name) {
		return eris.Errorf("invalid entry name %s", name)
	}

	offset, err := w.hdl.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	brw := brotli.NewWriterLevel(w.hdl, brotli.BestCompression)
	decSize, err := io.CopyBuffer(brw, reader, w.buffer)
	if err != nil {
		return eris.Wrapf(err, "Failed to compress entry %s", name)
	}

	err = brw.Close()
	if err != nil {
		return err
	}

	newPos, err := w.hdl.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	w.entries = append(w.entries, distEntry{
		name:    name,
		offset:  offset,
		size:    newPos - offset,
		decSize: decSize,
	})
	return nil
}

// Close writes the index and the file header.
func (w *DistWriter) Close() error {
	indexOffset, err := w.hdl.Seek(0, io.SeekCurrent)
	if err != nil {
		w.hdl.Close()
		return err
	}

	// the header stores the index offset as uint32
	if indexOffset > math.MaxUint32 {
		w.hdl.Close()
		return eris.Errorf("the bundle is too large; index offset %d does not fit the format header", indexOffset)
	}

	buffer := make([]byte, 26)
	for _, entry := range w.entries {
		binary.LittleEndian.PutUint64(buffer[:8], uint64(entry.offset))
		binary.LittleEndian.PutUint64(buffer[8:16], uint64(entry.size))
		binary.LittleEndian.PutUint64(buffer[16:24], uint64(entry.decSize))
		binary.LittleEndian.PutUint16(buffer[24:26], uint16(len(entry.name)))

		_, err = w.hdl.Write(buffer)
		if err != nil {
			w.hdl.Close()
			return err
		}

		_, err = w.hdl.WriteString(entry.name)
		if err != nil {
			w.hdl.Close()
			return err
		}
	}

	_, err = w.hdl.Seek(0, io.SeekStart)
	if err != nil {
		w.hdl.Close()
		return err
	}

	copy(buffer[:4], distMagic)
	binary.LittleEndian.PutUint32(buffer[4:8], 1)
	binary.LittleEndian.PutUint32(buffer[8:12], uint32(indexOffset))
	binary.LittleEndian.PutUint32(buffer[12:16], uint32(len(w.entries)))

	_, err = w.hdl.Write(buffer[:16])
	if err != nil {
		w.hdl.Close()
		return err
	}

	return w.hdl.Close()
}

// DistReader reads dist bundles.
type DistReader struct {
	hdl     *os.File
	entries []distEntry
}

// OpenDist opens a bundle and reads its index.
func OpenDist(filename string) (*DistReader, error) {
	hdl, err := os.Open(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to open %s", filename)
	}

	header := make([]byte, 16)
	_, err = io.ReadFull(hdl, header)
	if err != nil {
		hdl.Close()
		return nil, eris.Wrapf(err, "Failed to read the header of %s", filename)
	}

	if string(header[:4]) != distMagic {
		hdl.Close()
		return nil, eris.Errorf("%s is not a dist bundle", filename)
	}

	version := binary.LittleEndian.Uint32(header[4:8])
	if version != 1 {
		hdl.Close()
		return nil, eris.Errorf("%s uses unsupported format version %d", filename, version)
	}

	indexOffset := binary.LittleEndian.Uint32(header[8:12])
	count := binary.LittleEndian.Uint32(header[12:16])

	_, err = hdl.Seek(int64(indexOffset), io.SeekStart)
	if err != nil {
		hdl.Close()
		return nil, err
	}

	reader := &DistReader{hdl: hdl}
	buffer := make([]byte, 26)
	for idx := uint32(0); idx < count; idx++ {
		_, err = io.ReadFull(hdl, buffer)
		if err != nil {
			hdl.Close()
			return nil, eris.Wrapf(err, "Failed to read index entry %d", idx)
		}

		entry := distEntry{
			offset:  int64(binary.LittleEndian.Uint64(buffer[:8])),
			size:    int64(binary.LittleEndian.Uint64(buffer[8:16])),
			decSize: int64(binary.LittleEndian.Uint64(buffer[16:24])),
		}

		nameLen := binary.LittleEndian.Uint16(buffer[24:26])
		name := make([]byte, nameLen)
		_, err = io.ReadFull(hdl, name)
		if err != nil {
			hdl.Close()
			return nil, eris.Wrapf(err, "Failed to read the name of index entry %d", idx)
		}

		entry.name = string(name)
		reader.entries = append(reader.entries, entry)
	}

	return reader, nil
}

// Entries returns the names of the bundled files.
func (r *DistReader) Entries() []string {
	names := make([]string, len(r.entries))
	for idx, entry := range r.entries {
		names[idx] = entry.name
	}
	return names
}

// Open returns a reader for the named entry.
func (r *DistReader) Open(name string) (io.Reader, error) {
	for _, entry := range r.entries {
		if entry.name == name {
			section := io.NewSectionReader(r.hdl, entry.offset, entry.size)
			return brotli.NewReader(section), nil
		}
	}

	return nil, eris.Errorf("entry %s not found", name)
}

// Extract unpacks all entries below the given directory.
func (r *DistReader) Extract(destDir string) error {
	for _, entry := range r.entries {
		if !validEntryName(entry.name) {
			return eris.Errorf("invalid entry name %s", entry.name)
		}

		reader, err := r.Open(entry.name)
		if err != nil {
			return err
		}

		dest := filepath.Join(destDir, filepath.FromSlash(entry.name))
		err = os.MkdirAll(filepath.Dir(dest), 0770)
		if err != nil {
			return eris.Wrapf(err, "Failed to create directory %s", filepath.Dir(dest))
		}

		handle, err := os.Create(dest)
		if err != nil {
			return eris.Wrapf(err, "Failed to create %s", dest)
		}

		written, err := io.Copy(handle, reader)
		if err != nil {
			handle.Close()
			return eris.Wrapf(err, "Failed to extract %s", entry.name)
		}

		err = handle.Close()
		if err != nil {
			return err
		}

		if written != entry.decSize {
			return eris.Errorf("entry %s is %d bytes but the index expected %d", entry.name, written, entry.decSize)
		}
	}

	return nil
}

// Close closes the underlying file.
func (r *DistReader) Close() error {
	return r.hdl.Close()
}
