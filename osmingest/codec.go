package osmingest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/paulmach/osm"

	"github.com/butterfly-osm/butterfly-route-core/coreerr"
	"github.com/butterfly-osm/butterfly-route-core/fileio"
)

// EncodeNodesSA serializes sorted nodes as the nodes.sa body: a flat
// array of (osm_id: i64, lat_fxp: i32, lon_fxp: i32).
// Callers must pass nodes already sorted by SortNodes.
func EncodeNodesSA(sorted []Node) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(len(sorted) * 16)
	for _, n := range sorted {
		_ = binary.Write(buf, binary.LittleEndian, int64(n.ID))
		_ = binary.Write(buf, binary.LittleEndian, LatLonFixedPoint(n.Lat))
		_ = binary.Write(buf, binary.LittleEndian, LatLonFixedPoint(n.Lon))
	}
	return buf.Bytes()
}

// DecodeNodesSA parses a nodes.sa body back into Node records.
func DecodeNodesSA(body []byte) ([]Node, error) {
	const recLen = 16
	if len(body)%recLen != 0 {
		return nil, fmt.Errorf("osmingest: nodes.sa body length %d not a multiple of %d: %w", len(body), recLen, coreerr.ErrMalformedInput)
	}
	n := len(body) / recLen
	out := make([]Node, n)
	r := bytes.NewReader(body)
	for i := 0; i < n; i++ {
		var id int64
		var latFxp, lonFxp int32
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, fmt.Errorf("osmingest: nodes.sa[%d].id: %w", i, coreerr.ErrMalformedInput)
		}
		if err := binary.Read(r, binary.LittleEndian, &latFxp); err != nil {
			return nil, fmt.Errorf("osmingest: nodes.sa[%d].lat: %w", i, coreerr.ErrMalformedInput)
		}
		if err := binary.Read(r, binary.LittleEndian, &lonFxp); err != nil {
			return nil, fmt.Errorf("osmingest: nodes.sa[%d].lon: %w", i, coreerr.ErrMalformedInput)
		}
		out[i] = Node{ID: osm.NodeID(id), Lat: FixedPointToLatLon(latFxp), Lon: FixedPointToLatLon(lonFxp)}
	}
	return out, nil
}

// SparseIndex is the nodes.si two-level sparse index: 65536 buckets,
// sampling every 2048 records.
//
// Level 1 (Buckets) holds one sample range per bucketOf(osm_id), a hash
// of the whole id; Level 2 (Samples) holds one (osm_id, record_index)
// pair every SampleStride records. As BuildSparseIndex fills them,
// every bucket range is empty, so Lookup binary-searches the whole
// sample list (O(log samples)) and leaves a final scan over at most
// SampleStride records in nodes.sa to the caller.
type SparseIndex struct {
	Samples []sample
	Buckets [numBuckets][2]uint32 // [bucket] = [firstSampleIdx, lastSampleIdx+1)
}

const (
	numBuckets   = 65536
	SampleStride = 2048
)

type sample struct {
	OSMID       int64
	RecordIndex uint32
}

// BuildSparseIndex builds a SparseIndex over nodes already sorted by
// SortNodes (ascending OSM id, matching nodes.sa's record order).
func BuildSparseIndex(sorted []Node) *SparseIndex {
	idx := &SparseIndex{}
	for i := 0; i < len(sorted); i += SampleStride {
		idx.Samples = append(idx.Samples, sample{OSMID: int64(sorted[i].ID), RecordIndex: uint32(i)})
	}
	// Bucket assignment: each bucket's start becomes the index of the
	// first later sample whose bucket number is greater. bucketOf hashes
	// the whole id, so bucket numbers do not rise with OSMID, and that
	// sample never belongs to the bucket itself.
	var b int
	for s := 0; s <= len(idx.Samples); s++ {
		var curBucket int
		if s < len(idx.Samples) {
			curBucket = bucketOf(idx.Samples[s].OSMID)
		} else {
			curBucket = numBuckets // sentinel: flush remaining buckets
		}
		for b < curBucket {
			idx.Buckets[b] = [2]uint32{uint32(s), uint32(s)}
			b++
		}
	}
	// Second pass: extend each bucket's end forward from its start while
	// samples still fall in that bucket; since the start sample is in a
	// different bucket, every range ends up empty (start == end).
	for i := 0; i < numBuckets; i++ {
		start := idx.Buckets[i][0]
		end := start
		for j := int(start); j < len(idx.Samples) && bucketOf(idx.Samples[j].OSMID) == i; j++ {
			end = uint32(j + 1)
		}
		idx.Buckets[i][1] = end
	}
	return idx
}

func bucketOf(osmID int64) int {
	u := uint64(osmID)
	return int((u ^ (u >> 32)) % numBuckets)
}

// Lookup returns the record window [windowStart, windowEnd) in nodes.sa
// that starts at the last sample whose id is <= osmID; windowEnd is
// windowStart+SampleStride and is not clamped to the record count. ok
// is false when osmID is below the first sample. Callers still need
// the sorted Node slice (or file body) to confirm an exact match
// within the candidate record window, since samples are sparse.
func (idx *SparseIndex) Lookup(osmID int64) (windowStart, windowEnd uint32, ok bool) {
	b := bucketOf(osmID)
	first, last := idx.Buckets[b][0], idx.Buckets[b][1]
	if first == last {
		// Bucket empty: the id, if present, falls in the window owned by
		// the nearest preceding sample in global sample order.
		i := sort.Search(len(idx.Samples), func(i int) bool { return idx.Samples[i].OSMID > osmID })
		if i == 0 {
			return 0, 0, false
		}
		start := idx.Samples[i-1].RecordIndex
		return start, start + SampleStride, true
	}
	samples := idx.Samples[first:last]
	i := sort.Search(len(samples), func(i int) bool { return samples[i].OSMID > osmID })
	if i == 0 {
		return 0, 0, false
	}
	start := samples[i-1].RecordIndex
	return start, start + SampleStride, true
}

// EncodeSparseIndex serializes the SparseIndex for nodes.si.
func EncodeSparseIndex(idx *SparseIndex) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(idx.Samples)))
	for _, s := range idx.Samples {
		_ = binary.Write(buf, binary.LittleEndian, s.OSMID)
		_ = binary.Write(buf, binary.LittleEndian, s.RecordIndex)
	}
	for _, b := range idx.Buckets {
		_ = binary.Write(buf, binary.LittleEndian, b[0])
		_ = binary.Write(buf, binary.LittleEndian, b[1])
	}
	return buf.Bytes()
}

// DecodeSparseIndex parses a nodes.si body back into a SparseIndex.
func DecodeSparseIndex(body []byte) (*SparseIndex, error) {
	r := bytes.NewReader(body)
	var nSamples uint32
	if err := binary.Read(r, binary.LittleEndian, &nSamples); err != nil {
		return nil, fmt.Errorf("osmingest: nodes.si sample count: %w", coreerr.ErrMalformedInput)
	}
	idx := &SparseIndex{Samples: make([]sample, nSamples)}
	for i := range idx.Samples {
		if err := binary.Read(r, binary.LittleEndian, &idx.Samples[i].OSMID); err != nil {
			return nil, fmt.Errorf("osmingest: nodes.si sample[%d].id: %w", i, coreerr.ErrMalformedInput)
		}
		if err := binary.Read(r, binary.LittleEndian, &idx.Samples[i].RecordIndex); err != nil {
			return nil, fmt.Errorf("osmingest: nodes.si sample[%d].rec: %w", i, coreerr.ErrMalformedInput)
		}
	}
	for i := range idx.Buckets {
		if err := binary.Read(r, binary.LittleEndian, &idx.Buckets[i][0]); err != nil {
			return nil, fmt.Errorf("osmingest: nodes.si bucket[%d].start: %w", i, coreerr.ErrMalformedInput)
		}
		if err := binary.Read(r, binary.LittleEndian, &idx.Buckets[i][1]); err != nil {
			return nil, fmt.Errorf("osmingest: nodes.si bucket[%d].end: %w", i, coreerr.ErrMalformedInput)
		}
	}
	return idx, nil
}

// WriteNodes writes nodes.sa and nodes.si to dir, returning their
// content hashes for the Stage-1 lock.json.
func WriteNodes(dir string, nodes []Node, inputHash fileio.Hash) (saHash, siHash fileio.Hash, err error) {
	sorted := SortNodes(nodes)
	saBody := EncodeNodesSA(sorted)
	saHeader, err := fileio.NewHeader("NODS", 1, inputHash, uint64(len(sorted)))
	if err != nil {
		return fileio.Hash{}, fileio.Hash{}, err
	}
	saHash, err = fileio.Write(dir+"/nodes.sa", saHeader, saBody)
	if err != nil {
		return fileio.Hash{}, fileio.Hash{}, err
	}

	idx := BuildSparseIndex(sorted)
	siBody := EncodeSparseIndex(idx)
	siHeader, err := fileio.NewHeader("NODX", 1, saHash, uint64(len(idx.Samples)))
	if err != nil {
		return fileio.Hash{}, fileio.Hash{}, err
	}
	siHash, err = fileio.Write(dir+"/nodes.si", siHeader, siBody)
	return saHash, siHash, err
}
