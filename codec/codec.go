package codec

// Codec encodes/decodes values V to []byte for storage. A codec failure is
// a serialization error: the cache treats it as a failed set on write or a
// miss on read, never as an application failure.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
