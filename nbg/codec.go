package nbg

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/paulmach/osm"

	"github.com/butterfly-osm/butterfly-route-core/coreerr"
	"github.com/butterfly-osm/butterfly-route-core/fileio"
	"github.com/butterfly-osm/butterfly-route-core/ids"
)

// EncodeNodeMap serializes the NodeOSMID/NodeLat/NodeLon columns for
// nbg.node_map: the compact-id -> (osm_id, lat, lon) mapping later
// stages and the validator need to resolve NBG nodes back to OSM
// space.
func EncodeNodeMap(g *Graph) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(g.NumNodes() * 16)
	for i := 0; i < g.NumNodes(); i++ {
		_ = binary.Write(buf, binary.LittleEndian, int64(g.NodeOSMID[i]))
		_ = binary.Write(buf, binary.LittleEndian, g.NodeLat[i])
		_ = binary.Write(buf, binary.LittleEndian, g.NodeLon[i])
	}
	return buf.Bytes()
}

// DecodeNodeMap parses an nbg.node_map body into the three parallel
// columns.
func DecodeNodeMap(body []byte) (osmID []osm.NodeID, lat, lon []int32, err error) {
	const recLen = 16
	if len(body)%recLen != 0 {
		return nil, nil, nil, fmt.Errorf("nbg: node_map body length %d not a multiple of %d: %w", len(body), recLen, coreerr.ErrMalformedInput)
	}
	n := len(body) / recLen
	osmID = make([]osm.NodeID, n)
	lat = make([]int32, n)
	lon = make([]int32, n)
	r := bytes.NewReader(body)
	for i := 0; i < n; i++ {
		var id int64
		if e := binary.Read(r, binary.LittleEndian, &id); e != nil {
			return nil, nil, nil, fmt.Errorf("nbg: node_map[%d].id: %w", i, coreerr.ErrMalformedInput)
		}
		if e := binary.Read(r, binary.LittleEndian, &lat[i]); e != nil {
			return nil, nil, nil, fmt.Errorf("nbg: node_map[%d].lat: %w", i, coreerr.ErrMalformedInput)
		}
		if e := binary.Read(r, binary.LittleEndian, &lon[i]); e != nil {
			return nil, nil, nil, fmt.Errorf("nbg: node_map[%d].lon: %w", i, coreerr.ErrMalformedInput)
		}
		osmID[i] = osm.NodeID(id)
	}
	return osmID, lat, lon, nil
}

// EncodeCSR serializes the adjacency (Offsets/Heads/EdgeIdx) for
// nbg.csr ("CSR layout: offsets[n+1], heads[], edge_idx[]").
func EncodeCSR(g *Graph) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(len(g.Offsets)*4 + len(g.Heads)*8)
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(g.Offsets)))
	for _, o := range g.Offsets {
		_ = binary.Write(buf, binary.LittleEndian, o)
	}
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(g.Heads)))
	for i, h := range g.Heads {
		_ = binary.Write(buf, binary.LittleEndian, uint32(h))
		_ = binary.Write(buf, binary.LittleEndian, uint32(g.EdgeIdx[i]))
	}
	return buf.Bytes()
}

// DecodeCSR parses an nbg.csr body into Offsets/Heads/EdgeIdx.
func DecodeCSR(body []byte) (offsets []uint32, heads []ids.NBGNode, edgeIdx []ids.NBGEdge, err error) {
	r := bytes.NewReader(body)
	var nOff uint32
	if e := binary.Read(r, binary.LittleEndian, &nOff); e != nil {
		return nil, nil, nil, fmt.Errorf("nbg: csr offsets count: %w", coreerr.ErrMalformedInput)
	}
	offsets = make([]uint32, nOff)
	for i := range offsets {
		if e := binary.Read(r, binary.LittleEndian, &offsets[i]); e != nil {
			return nil, nil, nil, fmt.Errorf("nbg: csr offsets[%d]: %w", i, coreerr.ErrMalformedInput)
		}
	}
	var nAdj uint32
	if e := binary.Read(r, binary.LittleEndian, &nAdj); e != nil {
		return nil, nil, nil, fmt.Errorf("nbg: csr adjacency count: %w", coreerr.ErrMalformedInput)
	}
	heads = make([]ids.NBGNode, nAdj)
	edgeIdx = make([]ids.NBGEdge, nAdj)
	for i := range heads {
		var h, ei uint32
		if e := binary.Read(r, binary.LittleEndian, &h); e != nil {
			return nil, nil, nil, fmt.Errorf("nbg: csr heads[%d]: %w", i, coreerr.ErrMalformedInput)
		}
		if e := binary.Read(r, binary.LittleEndian, &ei); e != nil {
			return nil, nil, nil, fmt.Errorf("nbg: csr edge_idx[%d]: %w", i, coreerr.ErrMalformedInput)
		}
		heads[i] = ids.NBGNode(h)
		edgeIdx[i] = ids.NBGEdge(ei)
	}
	return offsets, heads, edgeIdx, nil
}

// EncodeGeo serializes g.Edges for nbg.geo: per edge, (a, b, length_mm,
// bearing_decideg, first_way_id, class, polyline_len, polyline...).
func EncodeGeo(g *Graph) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(g.Edges)))
	for _, e := range g.Edges {
		_ = binary.Write(buf, binary.LittleEndian, uint32(e.A))
		_ = binary.Write(buf, binary.LittleEndian, uint32(e.B))
		_ = binary.Write(buf, binary.LittleEndian, e.LengthMM)
		_ = binary.Write(buf, binary.LittleEndian, e.BearingDeciDeg)
		_ = binary.Write(buf, binary.LittleEndian, int64(e.FirstOSMWayID))
		buf.WriteByte(byte(e.Class))
		_ = binary.Write(buf, binary.LittleEndian, uint32(len(e.Polyline)))
		for _, p := range e.Polyline {
			_ = binary.Write(buf, binary.LittleEndian, p.LatFxp)
			_ = binary.Write(buf, binary.LittleEndian, p.LonFxp)
		}
	}
	return buf.Bytes()
}

// DecodeGeo parses an nbg.geo body back into an Edge slice (Offsets,
// Heads, EdgeIdx are not part of this file; callers rebuild CSR from
// nbg.csr separately, or call assembleCSR-equivalent logic via Build).
func DecodeGeo(body []byte) ([]Edge, error) {
	r := bytes.NewReader(body)
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("nbg: geo edge count: %w", coreerr.ErrMalformedInput)
	}
	out := make([]Edge, n)
	for i := range out {
		var a, b uint32
		if err := binary.Read(r, binary.LittleEndian, &a); err != nil {
			return nil, fmt.Errorf("nbg: geo[%d].a: %w", i, coreerr.ErrMalformedInput)
		}
		if err := binary.Read(r, binary.LittleEndian, &b); err != nil {
			return nil, fmt.Errorf("nbg: geo[%d].b: %w", i, coreerr.ErrMalformedInput)
		}
		var lengthMM uint32
		if err := binary.Read(r, binary.LittleEndian, &lengthMM); err != nil {
			return nil, fmt.Errorf("nbg: geo[%d].length: %w", i, coreerr.ErrMalformedInput)
		}
		var bearing uint16
		if err := binary.Read(r, binary.LittleEndian, &bearing); err != nil {
			return nil, fmt.Errorf("nbg: geo[%d].bearing: %w", i, coreerr.ErrMalformedInput)
		}
		var wayID int64
		if err := binary.Read(r, binary.LittleEndian, &wayID); err != nil {
			return nil, fmt.Errorf("nbg: geo[%d].way: %w", i, coreerr.ErrMalformedInput)
		}
		class, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("nbg: geo[%d].class: %w", i, coreerr.ErrMalformedInput)
		}
		var nPts uint32
		if err := binary.Read(r, binary.LittleEndian, &nPts); err != nil {
			return nil, fmt.Errorf("nbg: geo[%d].polyline count: %w", i, coreerr.ErrMalformedInput)
		}
		pts := make([]Point, nPts)
		for j := range pts {
			if err := binary.Read(r, binary.LittleEndian, &pts[j].LatFxp); err != nil {
				return nil, fmt.Errorf("nbg: geo[%d].polyline[%d].lat: %w", i, j, coreerr.ErrMalformedInput)
			}
			if err := binary.Read(r, binary.LittleEndian, &pts[j].LonFxp); err != nil {
				return nil, fmt.Errorf("nbg: geo[%d].polyline[%d].lon: %w", i, j, coreerr.ErrMalformedInput)
			}
		}
		out[i] = Edge{
			A: ids.NBGNode(a), B: ids.NBGNode(b),
			LengthMM: lengthMM, BearingDeciDeg: bearing,
			Polyline: pts, FirstOSMWayID: osm.WayID(wayID), Class: ClassBits(class),
		}
	}
	return out, nil
}

// Write writes nbg.node_map, nbg.geo and nbg.csr to dir, returning
// their content hashes for the Stage-3 lock.json.
func Write(dir string, g *Graph, inputHash fileio.Hash) (nodeMapHash, geoHash, csrHash fileio.Hash, err error) {
	nmBody := EncodeNodeMap(g)
	nmHeader, err := fileio.NewHeader("NBGM", 1, inputHash, uint64(g.NumNodes()))
	if err != nil {
		return fileio.Hash{}, fileio.Hash{}, fileio.Hash{}, err
	}
	nodeMapHash, err = fileio.Write(dir+"/nbg.node_map", nmHeader, nmBody)
	if err != nil {
		return fileio.Hash{}, fileio.Hash{}, fileio.Hash{}, err
	}

	geoBody := EncodeGeo(g)
	geoHeader, err := fileio.NewHeader("NBGG", 1, nodeMapHash, uint64(g.NumEdges()))
	if err != nil {
		return fileio.Hash{}, fileio.Hash{}, fileio.Hash{}, err
	}
	geoHash, err = fileio.Write(dir+"/nbg.geo", geoHeader, geoBody)
	if err != nil {
		return fileio.Hash{}, fileio.Hash{}, fileio.Hash{}, err
	}

	csrBody := EncodeCSR(g)
	csrHeader, err := fileio.NewHeader("NBGC", 1, geoHash, uint64(g.NumNodes()), uint64(g.NumEdges()))
	if err != nil {
		return fileio.Hash{}, fileio.Hash{}, fileio.Hash{}, err
	}
	csrHash, err = fileio.Write(dir+"/nbg.csr", csrHeader, csrBody)
	return nodeMapHash, geoHash, csrHash, err
}

// Read reads nbg.node_map, nbg.geo and nbg.csr from dir and reassembles
// a Graph.
func Read(dir string) (*Graph, error) {
	_, nmBody, err := fileio.Read(dir+"/nbg.node_map", "NBGM")
	if err != nil {
		return nil, err
	}
	osmID, lat, lon, err := DecodeNodeMap(nmBody)
	if err != nil {
		return nil, err
	}

	_, geoBody, err := fileio.Read(dir+"/nbg.geo", "NBGG")
	if err != nil {
		return nil, err
	}
	edges, err := DecodeGeo(geoBody)
	if err != nil {
		return nil, err
	}

	_, csrBody, err := fileio.Read(dir+"/nbg.csr", "NBGC")
	if err != nil {
		return nil, err
	}
	offsets, heads, edgeIdx, err := DecodeCSR(csrBody)
	if err != nil {
		return nil, err
	}

	return &Graph{
		NodeOSMID: osmID, NodeLat: lat, NodeLon: lon,
		Edges: edges, Offsets: offsets, Heads: heads, EdgeIdx: edgeIdx,
	}, nil
}
