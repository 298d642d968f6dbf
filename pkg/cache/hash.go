package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer derives cache keys. Implementations must be deterministic: equal
// inputs always yield equal keys.
type Keyer interface {
	// LayoutKey identifies the layout built from the trace with hash
	// traceHash under opts.
	LayoutKey(traceHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies one rendered output of the layout with hash
	// layoutHash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts lists every option that changes a computed layout.
type LayoutKeyOpts struct {
	Width, Height  float64
	FillX, FillY   float64
	Gauge          float64
	Thickness      float64
	Ties           []float64
	Color          string
	HitRadius      float64
	TimePerSegment int64 // milliseconds
}

// ArtifactKeyOpts lists every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string
	VizType    string
	At         int64 // cart snapshot time in milliseconds, -1 for none
	Text       bool
	Labels     bool
	Detailed   bool
	Background string
	Scale      float64
}

// DefaultKeyer hashes its inputs into namespaced keys of the form
// "<kind>:<sha256 hex>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(traceHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", traceHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
