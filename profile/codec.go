package profile

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/paulmach/osm"

	"github.com/butterfly-osm/butterfly-route-core/coreerr"
	"github.com/butterfly-osm/butterfly-route-core/fileio"
	"github.com/butterfly-osm/butterfly-route-core/ids"
)

// EncodeWayAttrs serializes sorted WayAttrs rows for way_attrs.<mode>.bin.
func EncodeWayAttrs(sorted []WayAttrs) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(sorted)))
	for _, w := range sorted {
		_ = binary.Write(buf, binary.LittleEndian, int64(w.WayID))
		buf.WriteByte(w.Flags)
		_ = binary.Write(buf, binary.LittleEndian, w.BaseSpeedMMPS)
		buf.WriteByte(w.HighwayClass)
		buf.WriteByte(w.SurfaceClass)
		_ = binary.Write(buf, binary.LittleEndian, w.PerKmPenaltyDS)
		_ = binary.Write(buf, binary.LittleEndian, w.ConstPenaltyDS)
	}
	return buf.Bytes()
}

// DecodeWayAttrs parses a way_attrs.<mode>.bin body.
func DecodeWayAttrs(body []byte) ([]WayAttrs, error) {
	r := bytes.NewReader(body)
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("profile: way_attrs count: %w", coreerr.ErrMalformedInput)
	}
	out := make([]WayAttrs, n)
	for i := range out {
		var id int64
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, fmt.Errorf("profile: way_attrs[%d].id: %w", i, coreerr.ErrMalformedInput)
		}
		flags, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("profile: way_attrs[%d].flags: %w", i, coreerr.ErrMalformedInput)
		}
		var speed uint32
		if err := binary.Read(r, binary.LittleEndian, &speed); err != nil {
			return nil, fmt.Errorf("profile: way_attrs[%d].speed: %w", i, coreerr.ErrMalformedInput)
		}
		hwClass, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("profile: way_attrs[%d].hwclass: %w", i, coreerr.ErrMalformedInput)
		}
		surfClass, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("profile: way_attrs[%d].surfclass: %w", i, coreerr.ErrMalformedInput)
		}
		var perKm, constP uint32
		if err := binary.Read(r, binary.LittleEndian, &perKm); err != nil {
			return nil, fmt.Errorf("profile: way_attrs[%d].perkm: %w", i, coreerr.ErrMalformedInput)
		}
		if err := binary.Read(r, binary.LittleEndian, &constP); err != nil {
			return nil, fmt.Errorf("profile: way_attrs[%d].const: %w", i, coreerr.ErrMalformedInput)
		}
		out[i] = WayAttrs{
			WayID: osm.WayID(id), Flags: flags, BaseSpeedMMPS: speed,
			HighwayClass: hwClass, SurfaceClass: surfClass,
			PerKmPenaltyDS: perKm, ConstPenaltyDS: constP,
		}
	}
	return out, nil
}

// EncodeTurnRules serializes sorted TurnRule rows for
// turn_rules.<mode>.bin.
func EncodeTurnRules(sorted []TurnRule) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(sorted)))
	for _, tr := range sorted {
		_ = binary.Write(buf, binary.LittleEndian, int64(tr.Via))
		_ = binary.Write(buf, binary.LittleEndian, int64(tr.From))
		_ = binary.Write(buf, binary.LittleEndian, int64(tr.To))
		buf.WriteByte(byte(tr.Kind))
		_ = binary.Write(buf, binary.LittleEndian, tr.PenaltyDS)
		if tr.TimeDep {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	}
	return buf.Bytes()
}

// DecodeTurnRules parses a turn_rules.<mode>.bin body.
func DecodeTurnRules(body []byte) ([]TurnRule, error) {
	r := bytes.NewReader(body)
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("profile: turn_rules count: %w", coreerr.ErrMalformedInput)
	}
	out := make([]TurnRule, n)
	for i := range out {
		var via, from, to int64
		if err := binary.Read(r, binary.LittleEndian, &via); err != nil {
			return nil, fmt.Errorf("profile: turn_rules[%d].via: %w", i, coreerr.ErrMalformedInput)
		}
		if err := binary.Read(r, binary.LittleEndian, &from); err != nil {
			return nil, fmt.Errorf("profile: turn_rules[%d].from: %w", i, coreerr.ErrMalformedInput)
		}
		if err := binary.Read(r, binary.LittleEndian, &to); err != nil {
			return nil, fmt.Errorf("profile: turn_rules[%d].to: %w", i, coreerr.ErrMalformedInput)
		}
		kind, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("profile: turn_rules[%d].kind: %w", i, coreerr.ErrMalformedInput)
		}
		var pds uint32
		if err := binary.Read(r, binary.LittleEndian, &pds); err != nil {
			return nil, fmt.Errorf("profile: turn_rules[%d].penalty: %w", i, coreerr.ErrMalformedInput)
		}
		tdByte, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("profile: turn_rules[%d].timedep: %w", i, coreerr.ErrMalformedInput)
		}
		out[i] = TurnRule{
			Via: osm.NodeID(via), From: osm.WayID(from), To: osm.WayID(to),
			Kind: ids.TurnKind(kind), PenaltyDS: pds, TimeDep: tdByte != 0,
		}
	}
	return out, nil
}

// WriteWayAttrs writes way_attrs.<mode>.bin to dir.
func WriteWayAttrs(dir string, mode ids.Mode, attrs []WayAttrs, inputHash fileio.Hash) (fileio.Hash, error) {
	h, err := fileio.NewHeader("WAYA", 1, inputHash, uint64(len(attrs)))
	if err != nil {
		return fileio.Hash{}, err
	}
	return fileio.Write(dir+"/way_attrs."+mode.String()+".bin", h, EncodeWayAttrs(attrs))
}

// WriteTurnRules writes turn_rules.<mode>.bin to dir.
func WriteTurnRules(dir string, mode ids.Mode, rules []TurnRule, inputHash fileio.Hash) (fileio.Hash, error) {
	h, err := fileio.NewHeader("TURN", 1, inputHash, uint64(len(rules)))
	if err != nil {
		return fileio.Hash{}, err
	}
	return fileio.Write(dir+"/turn_rules."+mode.String()+".bin", h, EncodeTurnRules(rules))
}
