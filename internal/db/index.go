package db

import (
	"encoding/binary"
	"math"
)

// Storage and metric constants for FT index definitions.
const (
	StorageHash  = "HASH"
	MetricCosine = "COSINE"
	VectorFlat   = "FLAT"
)

// IndexDefinition describes an FT index over hash keys.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// IndexFieldType is the FT schema type of a field.
type IndexFieldType string

// Supported field types.
const (
	IndexFieldTag    IndexFieldType = "TAG"
	IndexFieldVector IndexFieldType = "VECTOR"
)

// IndexField is a single schema field of an FT index.
type IndexField struct {
	Name       string
	Type       IndexFieldType
	VectorDim  int
	VectorAlgo string
	Metric     string
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit from a search, score already converted from
// cosine distance to similarity.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// VectorBytes encodes a float32 vector as the little-endian byte string
// RediSearch expects for VECTOR fields and KNN BLOB params.
func VectorBytes(vec []float32) string {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return string(buf)
}
