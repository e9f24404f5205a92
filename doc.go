// Package scalebloom implements partitioned Bloom filters with a scalable
// (capacity-less) variant built from a geometric chain of fixed shards.
//
// A Bloom filter answers "have I seen this element before?" approximately:
// false positives occur with a bounded, tunable probability; false negatives
// never occur. Use it to skip expensive downstream lookups such as cache
// misses or duplicate work.
//
// # Basic Usage
//
// Building and querying a fixed-capacity filter:
//
//	f, err := scalebloom.New(10_000, 0.01, scalebloom.StringHasher{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	switch f.Insert("alice") {
//	case scalebloom.Accepted, scalebloom.AlreadyPresent:
//	    // admitted
//	case scalebloom.RejectedAtCapacity:
//	    // filter is full; the fpp bound would no longer hold
//	}
//	if f.MightContain("alice") {
//	    // maybe present (definitely present here: no false negatives)
//	}
//
// Passing scalebloom.UnboundedCapacity instead of a positive capacity
// yields a scalable filter that grows by chaining shards and never rejects
// an insert.
//
// Round-tripping a fixed filter through its blob form:
//
//	blob, _ := f.Serialize()
//	g, err := scalebloom.Deserialize(blob, scalebloom.StringHasher{})
//
// Querying a packed filter file in place, without loading it on the heap:
//
//	r, err := scalebloom.Open("words.sbf", scalebloom.StringHasher{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//	hit := r.MightContain("alice")
//
// # Element Types
//
// Filters are generic over the element type and dispatch hashing through a
// Hasher capability: BytesHasher, StringHasher, Int64Hasher, Float64Hasher,
// or RecordHasher for structured records with a caller-supplied encoding.
// Supporting a new type means writing a Hasher, never touching the filter.
//
// # Package Structure
//
//   - Public API: filter.go (Filter, New, options), fixed.go (Fixed),
//     scalable.go (Scalable), hasher.go (Hasher and providers)
//   - Serialization: serialize.go (legacy big-endian hex format),
//     format.go (packed v2 container with xxHash64 checksum)
//   - File-backed querying: reader.go (Open, OpenFile, OpenBytes)
//   - Geometry: params.go (slice count and width derivation)
//   - Bit storage: internal/bitvec
//   - Platform: fadvise_*.go, prefault_*.go (page-cache hints)
package scalebloom
