package ebg

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/paulmach/osm"

	"github.com/butterfly-osm/butterfly-route-core/coreerr"
	"github.com/butterfly-osm/butterfly-route-core/fileio"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/nbg"
)

// EncodeNodes serializes g.Nodes for ebg.nodes ("(tail_nbg,
// head_nbg, geom_idx, length_mm, class_bits, primary_way) records").
func EncodeNodes(nodes []Node) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(len(nodes) * 21)
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(nodes)))
	for _, n := range nodes {
		_ = binary.Write(buf, binary.LittleEndian, uint32(n.TailNBG))
		_ = binary.Write(buf, binary.LittleEndian, uint32(n.HeadNBG))
		_ = binary.Write(buf, binary.LittleEndian, uint32(n.GeomIdx))
		_ = binary.Write(buf, binary.LittleEndian, n.LengthMM)
		buf.WriteByte(byte(n.ClassBits))
		_ = binary.Write(buf, binary.LittleEndian, int64(n.PrimaryWay))
	}
	return buf.Bytes()
}

// DecodeNodes parses an ebg.nodes body.
func DecodeNodes(body []byte) ([]Node, error) {
	r := bytes.NewReader(body)
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("ebg: nodes count: %w", coreerr.ErrMalformedInput)
	}
	out := make([]Node, n)
	for i := range out {
		var tail, head, geomIdx uint32
		if err := binary.Read(r, binary.LittleEndian, &tail); err != nil {
			return nil, fmt.Errorf("ebg: nodes[%d].tail: %w", i, coreerr.ErrMalformedInput)
		}
		if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
			return nil, fmt.Errorf("ebg: nodes[%d].head: %w", i, coreerr.ErrMalformedInput)
		}
		if err := binary.Read(r, binary.LittleEndian, &geomIdx); err != nil {
			return nil, fmt.Errorf("ebg: nodes[%d].geom_idx: %w", i, coreerr.ErrMalformedInput)
		}
		var lengthMM uint32
		if err := binary.Read(r, binary.LittleEndian, &lengthMM); err != nil {
			return nil, fmt.Errorf("ebg: nodes[%d].length: %w", i, coreerr.ErrMalformedInput)
		}
		class, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("ebg: nodes[%d].class: %w", i, coreerr.ErrMalformedInput)
		}
		var wayID int64
		if err := binary.Read(r, binary.LittleEndian, &wayID); err != nil {
			return nil, fmt.Errorf("ebg: nodes[%d].primary_way: %w", i, coreerr.ErrMalformedInput)
		}
		out[i] = Node{
			TailNBG: ids.NBGNode(tail), HeadNBG: ids.NBGNode(head), GeomIdx: ids.NBGEdge(geomIdx),
			LengthMM: lengthMM, ClassBits: nbg.ClassBits(class), PrimaryWay: osm.WayID(wayID),
		}
	}
	return out, nil
}

// EncodeCSR serializes the EBG CSR adjacency for ebg.csr.
func EncodeCSR(g *Graph) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(g.Offsets)))
	for _, o := range g.Offsets {
		_ = binary.Write(buf, binary.LittleEndian, o)
	}
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(g.Heads)))
	for i, h := range g.Heads {
		_ = binary.Write(buf, binary.LittleEndian, uint32(h))
		_ = binary.Write(buf, binary.LittleEndian, uint32(g.TurnIdx[i]))
	}
	return buf.Bytes()
}

// DecodeCSR parses an ebg.csr body.
func DecodeCSR(body []byte) (offsets []uint32, heads []ids.EBGNode, turnIdx []ids.TurnEntryIndex, err error) {
	r := bytes.NewReader(body)
	var nOff uint32
	if e := binary.Read(r, binary.LittleEndian, &nOff); e != nil {
		return nil, nil, nil, fmt.Errorf("ebg: csr offsets count: %w", coreerr.ErrMalformedInput)
	}
	offsets = make([]uint32, nOff)
	for i := range offsets {
		if e := binary.Read(r, binary.LittleEndian, &offsets[i]); e != nil {
			return nil, nil, nil, fmt.Errorf("ebg: csr offsets[%d]: %w", i, coreerr.ErrMalformedInput)
		}
	}
	var nArcs uint32
	if e := binary.Read(r, binary.LittleEndian, &nArcs); e != nil {
		return nil, nil, nil, fmt.Errorf("ebg: csr arc count: %w", coreerr.ErrMalformedInput)
	}
	heads = make([]ids.EBGNode, nArcs)
	turnIdx = make([]ids.TurnEntryIndex, nArcs)
	for i := range heads {
		var h, t uint32
		if e := binary.Read(r, binary.LittleEndian, &h); e != nil {
			return nil, nil, nil, fmt.Errorf("ebg: csr heads[%d]: %w", i, coreerr.ErrMalformedInput)
		}
		if e := binary.Read(r, binary.LittleEndian, &t); e != nil {
			return nil, nil, nil, fmt.Errorf("ebg: csr turn_idx[%d]: %w", i, coreerr.ErrMalformedInput)
		}
		heads[i] = ids.EBGNode(h)
		turnIdx[i] = ids.TurnEntryIndex(t)
	}
	return offsets, heads, turnIdx, nil
}

// EncodeTurnTable serializes g.TurnTable for ebg.turn_table.
func EncodeTurnTable(table []TurnEntry) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(table)))
	for _, e := range table {
		buf.WriteByte(byte(e.ModeMask))
		buf.WriteByte(byte(e.Kind))
		for _, p := range e.PenaltyDS {
			_ = binary.Write(buf, binary.LittleEndian, p)
		}
		if e.TimeDep {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	}
	return buf.Bytes()
}

// DecodeTurnTable parses an ebg.turn_table body.
func DecodeTurnTable(body []byte) ([]TurnEntry, error) {
	r := bytes.NewReader(body)
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("ebg: turn_table count: %w", coreerr.ErrMalformedInput)
	}
	out := make([]TurnEntry, n)
	for i := range out {
		mm, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("ebg: turn_table[%d].mode_mask: %w", i, coreerr.ErrMalformedInput)
		}
		kind, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("ebg: turn_table[%d].kind: %w", i, coreerr.ErrMalformedInput)
		}
		var penalties [ids.NumModes]uint32
		for m := range penalties {
			if err := binary.Read(r, binary.LittleEndian, &penalties[m]); err != nil {
				return nil, fmt.Errorf("ebg: turn_table[%d].penalty[%d]: %w", i, m, coreerr.ErrMalformedInput)
			}
		}
		tdByte, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("ebg: turn_table[%d].time_dep: %w", i, coreerr.ErrMalformedInput)
		}
		out[i] = TurnEntry{ModeMask: ids.ModeMask(mm), Kind: ids.TurnKind(kind), PenaltyDS: penalties, TimeDep: tdByte != 0}
	}
	return out, nil
}

// Write writes ebg.nodes, ebg.csr and ebg.turn_table to dir, returning
// their content hashes for the Stage-4 lock.json.
func Write(dir string, g *Graph, inputHash fileio.Hash) (nodesHash, csrHash, turnTableHash fileio.Hash, err error) {
	nodesBody := EncodeNodes(g.Nodes)
	nodesHeader, err := fileio.NewHeader("EBGN", 1, inputHash, uint64(g.NumNodes()))
	if err != nil {
		return fileio.Hash{}, fileio.Hash{}, fileio.Hash{}, err
	}
	nodesHash, err = fileio.Write(dir+"/ebg.nodes", nodesHeader, nodesBody)
	if err != nil {
		return fileio.Hash{}, fileio.Hash{}, fileio.Hash{}, err
	}

	turnBody := EncodeTurnTable(g.TurnTable)
	turnHeader, err := fileio.NewHeader("EBGT", 1, nodesHash, uint64(len(g.TurnTable)))
	if err != nil {
		return fileio.Hash{}, fileio.Hash{}, fileio.Hash{}, err
	}
	turnTableHash, err = fileio.Write(dir+"/ebg.turn_table", turnHeader, turnBody)
	if err != nil {
		return fileio.Hash{}, fileio.Hash{}, fileio.Hash{}, err
	}

	csrBody := EncodeCSR(g)
	csrHeader, err := fileio.NewHeader("EBGC", 1, turnTableHash, uint64(g.NumNodes()), uint64(g.NumArcs()))
	if err != nil {
		return fileio.Hash{}, fileio.Hash{}, fileio.Hash{}, err
	}
	csrHash, err = fileio.Write(dir+"/ebg.csr", csrHeader, csrBody)
	return nodesHash, csrHash, turnTableHash, err
}

// Read reads ebg.nodes, ebg.csr and ebg.turn_table from dir and
// reassembles a Graph.
func Read(dir string) (*Graph, error) {
	_, nodesBody, err := fileio.Read(dir+"/ebg.nodes", "EBGN")
	if err != nil {
		return nil, err
	}
	nodes, err := DecodeNodes(nodesBody)
	if err != nil {
		return nil, err
	}

	_, turnBody, err := fileio.Read(dir+"/ebg.turn_table", "EBGT")
	if err != nil {
		return nil, err
	}
	turnTable, err := DecodeTurnTable(turnBody)
	if err != nil {
		return nil, err
	}

	_, csrBody, err := fileio.Read(dir+"/ebg.csr", "EBGC")
	if err != nil {
		return nil, err
	}
	offsets, heads, turnIdx, err := DecodeCSR(csrBody)
	if err != nil {
		return nil, err
	}

	return &Graph{Nodes: nodes, Offsets: offsets, Heads: heads, TurnIdx: turnIdx, TurnTable: turnTable}, nil
}
