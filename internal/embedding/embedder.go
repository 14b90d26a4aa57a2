package embedding

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// DefaultDimension is the vector size used when none is configured.
const DefaultDimension = 256

// Embedder computes a fixed-dimensionality vector for a piece of text. The
// function must be deterministic: identical text always yields an identical
// vector.
type Embedder interface {
	Embed(text string) []float32
	Dimension() int
}

// HashEmbedder expands the SHA-256 digest of the text into a unit vector of
// the configured dimension. The vectors carry no semantic meaning; cosine
// similarity over them only flags near-verbatim duplicates. It stands in for
// a real embedding model behind the same interface and keeps the duplicate
// suggestion path fully deterministic.
type HashEmbedder struct {
	dim int
}

func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &HashEmbedder{dim: dim}
}

func (e *HashEmbedder) Dimension() int {
	return e.dim
}

func (e *HashEmbedder) Embed(text string) []float32 {
	seed := sha256.Sum256([]byte(text))
	vec := make([]float32, e.dim)

	var counter [4]byte
	i := 0
	for block := uint32(0); i < e.dim; block++ {
		binary.LittleEndian.PutUint32(counter[:], block)
		h := sha256.New()
		h.Write(seed[:])
		h.Write(counter[:])
		digest := h.Sum(nil)

		for j := 0; j+4 <= len(digest) && i < e.dim; j += 4 {
			u := binary.LittleEndian.Uint32(digest[j : j+4])
			vec[i] = float32(u)/float32(math.MaxUint32) - 0.5
			i++
		}
	}

	normalize(vec)
	return vec
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}

// Cosine returns the cosine similarity of two vectors. Mismatched lengths
// score zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// EncodeVector packs a vector as little-endian float32 bytes for storage.
func EncodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// DecodeVector is the inverse of EncodeVector.
func DecodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec
}
