package file

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// vectorMagic identifies a vector_index.bin file.
var vectorMagic = [4]byte{'K', 'V', 'E', 'C'}

const vectorVersion uint32 = 1

// vectorHeaderSize is the magic plus three uint32 header fields.
const vectorHeaderSize = 16

var errBadVectors = errors.New("malformed vector file")

// writeVectors encodes the matrix as magic, version, count, dimension and
// little-endian float32 rows.
func writeVectors(w io.Writer, vectors [][]float32, dimension int) error {
	bw := bufio.NewWriter(w)
	header := []uint32{vectorVersion, uint32(len(vectors)), uint32(dimension)}
	if _, err := bw.Write(vectorMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return err
	}
	buf := make([]byte, 4)
	for i, row := range vectors {
		if len(row) != dimension {
			return fmt.Errorf("row %d has dimension %d, want %d", i, len(row), dimension)
		}
		for _, x := range row {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(x))
			if _, err := bw.Write(buf); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// readVectors decodes a matrix written by writeVectors. size is the total
// length of the encoded file; a header that disagrees with it is rejected
// before anything is allocated. Trailing bytes or a short body are errors.
func readVectors(r io.Reader, size int64) ([][]float32, int, error) {
	br := bufio.NewReader(r)

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", errBadVectors, err)
	}
	if magic != vectorMagic {
		return nil, 0, fmt.Errorf("%w: bad magic %q", errBadVectors, magic[:])
	}

	var header [3]uint32
	if err := binary.Read(br, binary.LittleEndian, &header); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", errBadVectors, err)
	}
	if header[0] != vectorVersion {
		return nil, 0, fmt.Errorf("%w: unsupported version %d", errBadVectors, header[0])
	}
	count, dimension := int64(header[1]), int64(header[2])
	if err := checkVectorSize(count, dimension, size); err != nil {
		return nil, 0, err
	}

	vectors := make([][]float32, count)
	buf := make([]byte, 4*dimension)
	for i := range vectors {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, 0, fmt.Errorf("%w: row %d: %w", errBadVectors, i, err)
		}
		row := make([]float32, dimension)
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:]))
		}
		vectors[i] = row
	}

	if _, err := br.ReadByte(); err != io.EOF {
		return nil, 0, fmt.Errorf("%w: trailing data", errBadVectors)
	}
	return vectors, int(dimension), nil
}

// checkVectorSize verifies that a count x dimension matrix fills exactly size bytes.
func checkVectorSize(count, dimension, size int64) error {
	if count > 0 && dimension == 0 {
		return fmt.Errorf("%w: %d rows of dimension 0", errBadVectors, count)
	}
	if dimension > 0 && count > (math.MaxInt64-vectorHeaderSize)/4/dimension {
		return fmt.Errorf("%w: header overflows (%d x %d)", errBadVectors, count, dimension)
	}
	if want := vectorHeaderSize + 4*count*dimension; want != size {
		return fmt.Errorf("%w: header needs %d bytes, file has %d", errBadVectors, want, size)
	}
	return nil
}
