package order

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/butterfly-osm/butterfly-route-core/coreerr"
	"github.com/butterfly-osm/butterfly-route-core/fileio"
	"github.com/butterfly-osm/butterfly-route-core/ids"
)

// EncodeFilteredOrdering serializes order.<mode>.ebg: perm[] followed
// by inv_perm[], both u32 arrays over the filtered-EBG id space.
func EncodeFilteredOrdering(o *FilteredOrdering) []byte {
	buf := new(bytes.Buffer)
	buf.Grow((len(o.Perm) + len(o.InvPerm)) * 4)
	for _, r := range o.Perm {
		_ = binary.Write(buf, binary.LittleEndian, uint32(r))
	}
	for _, n := range o.InvPerm {
		_ = binary.Write(buf, binary.LittleEndian, uint32(n))
	}
	return buf.Bytes()
}

// DecodeFilteredOrdering parses an order.<mode>.ebg body of n nodes.
func DecodeFilteredOrdering(body []byte, n uint64) (*FilteredOrdering, error) {
	if uint64(len(body)) != n*4*2 {
		return nil, fmt.Errorf("order: filtered ordering length mismatch (want %d got %d): %w", n*4*2, len(body), coreerr.ErrMalformedInput)
	}
	r := bytes.NewReader(body)
	perm := make([]ids.Rank, n)
	for i := range perm {
		var v uint32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, fmt.Errorf("order: perm[%d]: %w", i, coreerr.ErrMalformedInput)
		}
		perm[i] = ids.Rank(v)
	}
	invPerm := make([]ids.FilteredNode, n)
	for i := range invPerm {
		var v uint32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, fmt.Errorf("order: inv_perm[%d]: %w", i, coreerr.ErrMalformedInput)
		}
		invPerm[i] = ids.FilteredNode(v)
	}
	return &FilteredOrdering{Perm: perm, InvPerm: invPerm}, nil
}

// Write writes order.<mode>.ebg to dir.
func Write(dir string, mode ids.Mode, o *FilteredOrdering, inputHash fileio.Hash) (fileio.Hash, error) {
	suffix := mode.String()
	header, err := fileio.NewHeader("ORDE", 1, inputHash, uint64(len(o.Perm)))
	if err != nil {
		return fileio.Hash{}, err
	}
	return fileio.Write(dir+"/order."+suffix+".ebg", header, EncodeFilteredOrdering(o))
}

// Read reads order.<mode>.ebg from dir.
func Read(dir string, mode ids.Mode) (*FilteredOrdering, error) {
	suffix := mode.String()
	h, body, err := fileio.Read(dir+"/order."+suffix+".ebg", "ORDE")
	if err != nil {
		return nil, err
	}
	return DecodeFilteredOrdering(body, h.Counts[0])
}
