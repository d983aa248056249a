package contract

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/butterfly-osm/butterfly-route-core/coreerr"
	"github.com/butterfly-osm/butterfly-route-core/fileio"
	"github.com/butterfly-osm/butterfly-route-core/ids"
)

func encodeSide(buf *bytes.Buffer, offsets []uint32, heads []ids.FilteredNode, isShortcut []bool, middle []ids.FilteredNode) {
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(offsets)))
	for _, o := range offsets {
		_ = binary.Write(buf, binary.LittleEndian, o)
	}
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(heads)))
	for i, h := range heads {
		_ = binary.Write(buf, binary.LittleEndian, uint32(h))
		var flag byte
		if isShortcut[i] {
			flag = 1
		}
		buf.WriteByte(flag)
		_ = binary.Write(buf, binary.LittleEndian, uint32(middle[i]))
	}
}

func decodeSide(r *bytes.Reader, label string) (offsets []uint32, heads []ids.FilteredNode, isShortcut []bool, middle []ids.FilteredNode, err error) {
	var nOffsets uint32
	if err = binary.Read(r, binary.LittleEndian, &nOffsets); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("contract: %s offsets count: %w", label, coreerr.ErrMalformedInput)
	}
	offsets = make([]uint32, nOffsets)
	for i := range offsets {
		if err = binary.Read(r, binary.LittleEndian, &offsets[i]); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("contract: %s offsets[%d]: %w", label, i, coreerr.ErrMalformedInput)
		}
	}

	var nEdges uint32
	if err = binary.Read(r, binary.LittleEndian, &nEdges); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("contract: %s edge count: %w", label, coreerr.ErrMalformedInput)
	}
	heads = make([]ids.FilteredNode, nEdges)
	isShortcut = make([]bool, nEdges)
	middle = make([]ids.FilteredNode, nEdges)
	for i := range heads {
		var h uint32
		if err = binary.Read(r, binary.LittleEndian, &h); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("contract: %s heads[%d]: %w", label, i, coreerr.ErrMalformedInput)
		}
		heads[i] = ids.FilteredNode(h)
		flag, ferr := r.ReadByte()
		if ferr != nil {
			return nil, nil, nil, nil, fmt.Errorf("contract: %s is_shortcut[%d]: %w", label, i, coreerr.ErrMalformedInput)
		}
		isShortcut[i] = flag != 0
		var m uint32
		if err = binary.Read(r, binary.LittleEndian, &m); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("contract: %s middle[%d]: %w", label, i, coreerr.ErrMalformedInput)
		}
		middle[i] = ids.FilteredNode(m)
	}
	return offsets, heads, isShortcut, middle, nil
}

// EncodeTopo serializes cch.<mode>.topo: n_nodes, then the UP side,
// then the DOWN side, each a CSR with is_shortcut and middle per edge.
func EncodeTopo(t *Topo) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, uint32(t.NNodes))
	encodeSide(buf, t.UpOffsets, t.UpHeads, t.UpIsShortcut, t.UpMiddle)
	encodeSide(buf, t.DownOffsets, t.DownHeads, t.DownIsShortcut, t.DownMiddle)
	return buf.Bytes()
}

// DecodeTopo parses a cch.<mode>.topo body.
func DecodeTopo(body []byte) (*Topo, error) {
	r := bytes.NewReader(body)
	var nNodes uint32
	if err := binary.Read(r, binary.LittleEndian, &nNodes); err != nil {
		return nil, fmt.Errorf("contract: n_nodes: %w", coreerr.ErrMalformedInput)
	}

	upOffsets, upHeads, upIsShortcut, upMiddle, err := decodeSide(r, "up")
	if err != nil {
		return nil, err
	}
	downOffsets, downHeads, downIsShortcut, downMiddle, err := decodeSide(r, "down")
	if err != nil {
		return nil, err
	}

	nShortcuts := 0
	for _, s := range upIsShortcut {
		if s {
			nShortcuts++
		}
	}
	for _, s := range downIsShortcut {
		if s {
			nShortcuts++
		}
	}

	return &Topo{
		NNodes:         int(nNodes),
		UpOffsets:      upOffsets,
		UpHeads:        upHeads,
		UpIsShortcut:   upIsShortcut,
		UpMiddle:       upMiddle,
		DownOffsets:    downOffsets,
		DownHeads:      downHeads,
		DownIsShortcut: downIsShortcut,
		DownMiddle:     downMiddle,
		NShortcuts:     nShortcuts,
	}, nil
}

// Write writes cch.<mode>.topo to dir.
func Write(dir string, mode ids.Mode, t *Topo, inputHash fileio.Hash) (fileio.Hash, error) {
	suffix := mode.String()
	header, err := fileio.NewHeader("CCHT", 1, inputHash, uint64(t.NNodes), uint64(t.NumUpEdges()), uint64(t.NumDownEdges()))
	if err != nil {
		return fileio.Hash{}, err
	}
	return fileio.Write(dir+"/cch."+suffix+".topo", header, EncodeTopo(t))
}

// Read reads cch.<mode>.topo from dir.
func Read(dir string, mode ids.Mode) (*Topo, error) {
	suffix := mode.String()
	_, body, err := fileio.Read(dir+"/cch."+suffix+".topo", "CCHT")
	if err != nil {
		return nil, err
	}
	return DecodeTopo(body)
}
