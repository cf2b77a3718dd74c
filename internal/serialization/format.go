package serialization

// Format constants.
const (
	// DTypeF64 is the only dtype written and accepted.
	DTypeF64 = "F64"

	// MetadataKey is the reserved header entry holding string metadata.
	MetadataKey = "__metadata__"

	// MetadataChecksum is the metadata key holding the hex SHA-256 of the data section.
	MetadataChecksum = "sha256"

	headerSizeBytes = 8 // uint64 LE header length prefix
	float64Size     = 8
)

// TensorInfo describes a tensor in the JSON header.
type TensorInfo struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"` // [start, end) within the data section
}

// TensorMeta is a named tensor region used during validation.
type TensorMeta struct {
	Name   string
	Offset int64
	Size   int64
}
