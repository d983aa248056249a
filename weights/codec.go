package weights

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/butterfly-osm/butterfly-route-core/coreerr"
	"github.com/butterfly-osm/butterfly-route-core/fileio"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/internal/bitset"
)

// EncodeU32Array serializes a u32[] body shared by w.<mode>.u32 and
// t.<mode>.u32.
func EncodeU32Array(vals []uint32) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(len(vals) * 4)
	for _, v := range vals {
		_ = binary.Write(buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

// DecodeU32Array parses a u32[count] body.
func DecodeU32Array(body []byte, count uint64) ([]uint32, error) {
	if uint64(len(body)) != count*4 {
		return nil, fmt.Errorf("weights: u32 array length mismatch (want %d got %d): %w", count*4, len(body), coreerr.ErrMalformedInput)
	}
	out := make([]uint32, count)
	r := bytes.NewReader(body)
	for i := range out {
		if err := binary.Read(r, binary.LittleEndian, &out[i]); err != nil {
			return nil, fmt.Errorf("weights: u32[%d]: %w", i, coreerr.ErrMalformedInput)
		}
	}
	return out, nil
}

// EncodeMask serializes mask.<mode>.bitset: a bit-count prefix
// followed by the byte-packed bitset body ("bit per node").
func EncodeMask(mask *bitset.Set) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, uint32(mask.Len()))
	buf.Write(mask.Bytes())
	return buf.Bytes()
}

// DecodeMask parses a mask.<mode>.bitset body.
func DecodeMask(body []byte) (*bitset.Set, error) {
	if len(body) < 4 {
		return nil, fmt.Errorf("weights: truncated mask header: %w", coreerr.ErrMalformedInput)
	}
	n := int(binary.LittleEndian.Uint32(body[:4]))
	return bitset.FromBytes(body[4:], n), nil
}

// EncodeFiltered serializes filtered.<mode>.ebg.
func EncodeFiltered(f *Filtered) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(f.Mode))
	_ = binary.Write(buf, binary.LittleEndian, uint32(f.NOriginalNodes))

	_ = binary.Write(buf, binary.LittleEndian, uint32(len(f.Offsets)))
	for _, o := range f.Offsets {
		_ = binary.Write(buf, binary.LittleEndian, o)
	}
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(f.Heads)))
	for _, h := range f.Heads {
		_ = binary.Write(buf, binary.LittleEndian, uint32(h))
	}
	for _, a := range f.OriginalArcIdx {
		_ = binary.Write(buf, binary.LittleEndian, a)
	}
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(f.FilteredToOriginal)))
	for _, o := range f.FilteredToOriginal {
		_ = binary.Write(buf, binary.LittleEndian, uint32(o))
	}
	for _, o := range f.OriginalToFiltered {
		_ = binary.Write(buf, binary.LittleEndian, uint32(o))
	}
	return buf.Bytes()
}

// DecodeFiltered parses a filtered.<mode>.ebg body.
func DecodeFiltered(body []byte) (*Filtered, error) {
	r := bytes.NewReader(body)
	modeByte, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("weights: filtered mode: %w", coreerr.ErrMalformedInput)
	}
	var nOriginal uint32
	if err := binary.Read(r, binary.LittleEndian, &nOriginal); err != nil {
		return nil, fmt.Errorf("weights: filtered n_original: %w", coreerr.ErrMalformedInput)
	}

	var nOffsets uint32
	if err := binary.Read(r, binary.LittleEndian, &nOffsets); err != nil {
		return nil, fmt.Errorf("weights: filtered offsets count: %w", coreerr.ErrMalformedInput)
	}
	offsets := make([]uint32, nOffsets)
	for i := range offsets {
		if err := binary.Read(r, binary.LittleEndian, &offsets[i]); err != nil {
			return nil, fmt.Errorf("weights: filtered offsets[%d]: %w", i, coreerr.ErrMalformedInput)
		}
	}

	var nArcs uint32
	if err := binary.Read(r, binary.LittleEndian, &nArcs); err != nil {
		return nil, fmt.Errorf("weights: filtered arc count: %w", coreerr.ErrMalformedInput)
	}
	heads := make([]ids.FilteredNode, nArcs)
	for i := range heads {
		var h uint32
		if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
			return nil, fmt.Errorf("weights: filtered heads[%d]: %w", i, coreerr.ErrMalformedInput)
		}
		heads[i] = ids.FilteredNode(h)
	}
	originalArcIdx := make([]uint32, nArcs)
	for i := range originalArcIdx {
		if err := binary.Read(r, binary.LittleEndian, &originalArcIdx[i]); err != nil {
			return nil, fmt.Errorf("weights: filtered original_arc_idx[%d]: %w", i, coreerr.ErrMalformedInput)
		}
	}

	var nFiltered uint32
	if err := binary.Read(r, binary.LittleEndian, &nFiltered); err != nil {
		return nil, fmt.Errorf("weights: filtered filtered_to_original count: %w", coreerr.ErrMalformedInput)
	}
	filteredToOriginal := make([]ids.EBGNode, nFiltered)
	for i := range filteredToOriginal {
		var o uint32
		if err := binary.Read(r, binary.LittleEndian, &o); err != nil {
			return nil, fmt.Errorf("weights: filtered_to_original[%d]: %w", i, coreerr.ErrMalformedInput)
		}
		filteredToOriginal[i] = ids.EBGNode(o)
	}
	originalToFiltered := make([]ids.FilteredNode, nOriginal)
	for i := range originalToFiltered {
		var o uint32
		if err := binary.Read(r, binary.LittleEndian, &o); err != nil {
			return nil, fmt.Errorf("weights: original_to_filtered[%d]: %w", i, coreerr.ErrMalformedInput)
		}
		originalToFiltered[i] = ids.FilteredNode(o)
	}

	return &Filtered{
		Mode:               ids.Mode(modeByte),
		NOriginalNodes:     int(nOriginal),
		Offsets:            offsets,
		Heads:              heads,
		OriginalArcIdx:     originalArcIdx,
		FilteredToOriginal: filteredToOriginal,
		OriginalToFiltered: originalToFiltered,
	}, nil
}

// Write writes w.<mode>.u32, t.<mode>.u32, mask.<mode>.bitset and
// filtered.<mode>.ebg to dir, chaining each file's hash as the next
// file's input hash.
func Write(dir string, mode ids.Mode, mw ModeWeights, filtered *Filtered, inputHash fileio.Hash) (wHash, tHash, maskHash, filteredHash fileio.Hash, err error) {
	suffix := mode.String()

	wHeader, err := fileio.NewHeader("WMOD", 1, inputHash, uint64(len(mw.NodeWeightDS)))
	if err != nil {
		return
	}
	wHash, err = fileio.Write(dir+"/w."+suffix+".u32", wHeader, EncodeU32Array(mw.NodeWeightDS))
	if err != nil {
		return
	}

	tHeader, err := fileio.NewHeader("TMOD", 1, wHash, uint64(len(mw.ArcPenaltyDS)))
	if err != nil {
		return
	}
	tHash, err = fileio.Write(dir+"/t."+suffix+".u32", tHeader, EncodeU32Array(mw.ArcPenaltyDS))
	if err != nil {
		return
	}

	maskHeader, err := fileio.NewHeader("MASK", 1, tHash, uint64(mw.Mask.Len()))
	if err != nil {
		return
	}
	maskHash, err = fileio.Write(dir+"/mask."+suffix+".bitset", maskHeader, EncodeMask(mw.Mask))
	if err != nil {
		return
	}

	filteredHeader, err := fileio.NewHeader("FEBG", 1, maskHash, uint64(filtered.NumNodes()), uint64(filtered.NumArcs()))
	if err != nil {
		return
	}
	filteredHash, err = fileio.Write(dir+"/filtered."+suffix+".ebg", filteredHeader, EncodeFiltered(filtered))
	return
}

// Read reads the four Stage-5 files for mode from dir.
func Read(dir string, mode ids.Mode) (ModeWeights, *Filtered, error) {
	suffix := mode.String()

	wh, wBody, err := fileio.Read(dir+"/w."+suffix+".u32", "WMOD")
	if err != nil {
		return ModeWeights{}, nil, err
	}
	nodeWeights, err := DecodeU32Array(wBody, wh.Counts[0])
	if err != nil {
		return ModeWeights{}, nil, err
	}

	th, tBody, err := fileio.Read(dir+"/t."+suffix+".u32", "TMOD")
	if err != nil {
		return ModeWeights{}, nil, err
	}
	arcPenalties, err := DecodeU32Array(tBody, th.Counts[0])
	if err != nil {
		return ModeWeights{}, nil, err
	}

	_, maskBody, err := fileio.Read(dir+"/mask."+suffix+".bitset", "MASK")
	if err != nil {
		return ModeWeights{}, nil, err
	}
	mask, err := DecodeMask(maskBody)
	if err != nil {
		return ModeWeights{}, nil, err
	}

	_, filteredBody, err := fileio.Read(dir+"/filtered."+suffix+".ebg", "FEBG")
	if err != nil {
		return ModeWeights{}, nil, err
	}
	filtered, err := DecodeFiltered(filteredBody)
	if err != nil {
		return ModeWeights{}, nil, err
	}

	return ModeWeights{NodeWeightDS: nodeWeights, Mask: mask, ArcPenaltyDS: arcPenalties}, filtered, nil
}
