package index

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"caserag/internal/domain"
)

// Cache keys for the two persisted artifacts.
const (
	KeyEmbeddings = "embeddings"
	KeyDocuments  = "documents"
)

// Matrix blob layout, little endian:
//
//	magic "CEMB" | version uint32 | rows uint32 | dim uint32 | rows*dim float64
var matrixMagic = [4]byte{'C', 'E', 'M', 'B'}

const (
	matrixVersion    = 1
	matrixHeaderSize = 16
)

// EncodeMatrix serialises a rectangular embedding matrix.
func EncodeMatrix(m [][]float64) ([]byte, error) {
	dim := 0
	if len(m) > 0 {
		dim = len(m[0])
	}
	for i, row := range m {
		if len(row) != dim {
			return nil, fmt.Errorf("ragged matrix: row %d has %d values, want %d", i, len(row), dim)
		}
	}
	buf := make([]byte, matrixHeaderSize+8*len(m)*dim)
	copy(buf[0:4], matrixMagic[:])
	binary.LittleEndian.PutUint32(buf[4:8], matrixVersion)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(m)))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(dim))
	off := matrixHeaderSize
	for _, row := range m {
		for _, v := range row {
			binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
			off += 8
		}
	}
	return buf, nil
}

// DecodeMatrix parses a blob written by EncodeMatrix.
func DecodeMatrix(data []byte) ([][]float64, error) {
	if len(data) < matrixHeaderSize {
		return nil, fmt.Errorf("%w: embedding blob too short (%d bytes)", domain.ErrCacheConsistency, len(data))
	}
	if !bytes.Equal(data[0:4], matrixMagic[:]) {
		return nil, fmt.Errorf("%w: embedding blob has bad magic", domain.ErrCacheConsistency)
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != matrixVersion {
		return nil, fmt.Errorf("%w: unsupported embedding blob version %d", domain.ErrCacheConsistency, v)
	}
	rows := int(binary.LittleEndian.Uint32(data[8:12]))
	dim := int(binary.LittleEndian.Uint32(data[12:16]))
	want := uint64(matrixHeaderSize) + 8*uint64(rows)*uint64(dim)
	if uint64(len(data)) != want {
		return nil, fmt.Errorf("%w: embedding blob is %d bytes, header implies %d", domain.ErrCacheConsistency, len(data), want)
	}
	m := make([][]float64, rows)
	off := matrixHeaderSize
	for i := range m {
		row := make([]float64, dim)
		for j := range row {
			row[j] = math.Float64frombits(binary.LittleEndian.Uint64(data[off:]))
			off += 8
		}
		m[i] = row
	}
	return m, nil
}

// EncodeDocuments serialises the document sequence as JSON.
func EncodeDocuments(docs []domain.ReferenceDocument) ([]byte, error) {
	if docs == nil {
		docs = []domain.ReferenceDocument{}
	}
	return json.Marshal(docs)
}

// DecodeDocuments parses the JSON document sequence and checks that every
// ID equals its position.
func DecodeDocuments(data []byte) ([]domain.ReferenceDocument, error) {
	var docs []domain.ReferenceDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode documents: %v", domain.ErrCacheConsistency, err)
	}
	for i, d := range docs {
		if d.ID != i {
			return nil, fmt.Errorf("%w: document at position %d has id %d", domain.ErrCacheConsistency, i, d.ID)
		}
	}
	return docs, nil
}
