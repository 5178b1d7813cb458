// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package embedding

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// NPY is the NumPy array file format. Only little-endian float32, C-order,
// two-dimensional arrays are read and written, which is what numpy.save
// produces for an (N, D) float32 embedding matrix.

var npyMagic = []byte("\x93NUMPY")

// ErrInvalidNPY is returned for files that are not a supported NPY matrix.
var ErrInvalidNPY = errors.New("invalid npy file")

var npyShapeRE = regexp.MustCompile(`'shape':\s*\((\d+),\s*(\d+),?\s*\)`)

// Matrix is a row-major float32 matrix.
type Matrix struct {
	Rows int
	Cols int
	Data []float32
}

// Row returns row i as a slice into Data.
func (m *Matrix) Row(i int) []float32 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// ReadNPY reads a float32 (N, D) matrix from path.
func ReadNPY(path string) (*Matrix, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat npy: %w", err)
	}
	return decodeNPY(bufio.NewReader(f), info.Size())
}

// decodeNPY parses an NPY stream of size bytes. The shape in the header is
// checked against size before the data is allocated.
func decodeNPY(r io.Reader, size int64) (*Matrix, error) {
	prefix := make([]byte, 8)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, fmt.Errorf("read npy preamble: %w", err)
	}
	if !bytes.Equal(prefix[:6], npyMagic) {
		return nil, fmt.Errorf("bad magic: %w", ErrInvalidNPY)
	}

	var headerLen int64
	consumed := int64(len(prefix))
	switch prefix[6] {
	case 1:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("read npy header length: %w", err)
		}
		headerLen = int64(n)
		consumed += 2
	case 2, 3:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("read npy header length: %w", err)
		}
		headerLen = int64(n)
		consumed += 4
	default:
		return nil, fmt.Errorf("unsupported version %d.%d: %w", prefix[6], prefix[7], ErrInvalidNPY)
	}

	if headerLen > size-consumed {
		return nil, fmt.Errorf("header length %d exceeds file: %w", headerLen, ErrInvalidNPY)
	}
	consumed += headerLen
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read npy header: %w", err)
	}
	h := string(header)
	if !strings.Contains(h, "'descr': '<f4'") {
		return nil, fmt.Errorf("dtype is not <f4: %w", ErrInvalidNPY)
	}
	if !strings.Contains(h, "'fortran_order': False") {
		return nil, fmt.Errorf("fortran order not supported: %w", ErrInvalidNPY)
	}
	match := npyShapeRE.FindStringSubmatch(h)
	if match == nil {
		return nil, fmt.Errorf("shape is not two-dimensional: %w", ErrInvalidNPY)
	}
	rows, err := strconv.Atoi(match[1])
	if err != nil {
		return nil, fmt.Errorf("rows: %w", ErrInvalidNPY)
	}
	cols, err := strconv.Atoi(match[2])
	if err != nil {
		return nil, fmt.Errorf("cols: %w", ErrInvalidNPY)
	}

	if rows < 0 || cols < 0 || (cols > 0 && rows > math.MaxInt/4/cols) {
		return nil, fmt.Errorf("shape (%d, %d) overflows: %w", rows, cols, ErrInvalidNPY)
	}
	if want := int64(rows) * int64(cols) * 4; want != size-consumed {
		return nil, fmt.Errorf("shape (%d, %d) needs %d data bytes, file has %d: %w",
			rows, cols, want, size-consumed, ErrInvalidNPY)
	}

	m := &Matrix{Rows: rows, Cols: cols, Data: make([]float32, rows*cols)}
	raw := make([]byte, 4*len(m.Data))
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("read npy data (%dx%d): %w", rows, cols, ErrInvalidNPY)
	}
	for i := range m.Data {
		m.Data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return m, nil
}

// WriteNPY writes rows as a float32 (N, D) matrix to path. The file is
// written to a temporary sibling and renamed into place.
func WriteNPY(path string, rows [][]float32) error {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	for i, r := range rows {
		if len(r) != cols {
			return fmt.Errorf("row %d has %d columns, want %d: %w", i, len(r), cols, ErrInconsistentDimension)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	w := bufio.NewWriter(tmp)
	if err := encodeNPY(w, rows, cols); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush npy: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync npy: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close npy: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename npy into place: %w", err)
	}
	return nil
}

func encodeNPY(w io.Writer, rows [][]float32, cols int) error {
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d, %d), }", len(rows), cols)
	// magic(6) + version(2) + header length(2) + header + '\n' is padded to 64 bytes.
	total := 10 + len(header) + 1
	if pad := total % 64; pad != 0 {
		header += strings.Repeat(" ", 64-pad)
	}
	header += "\n"

	if _, err := w.Write(npyMagic); err != nil {
		return fmt.Errorf("write npy magic: %w", err)
	}
	if _, err := w.Write([]byte{1, 0}); err != nil {
		return fmt.Errorf("write npy version: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(header))); err != nil { //nolint:gosec // header is short
		return fmt.Errorf("write npy header length: %w", err)
	}
	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("write npy header: %w", err)
	}

	buf := make([]byte, 4*cols)
	for _, r := range rows {
		for j, f := range r {
			binary.LittleEndian.PutUint32(buf[4*j:], math.Float32bits(f))
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("write npy row: %w", err)
		}
	}
	return nil
}
