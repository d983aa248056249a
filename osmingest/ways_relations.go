package osmingest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/paulmach/osm"

	"github.com/butterfly-osm/butterfly-route-core/coreerr"
	"github.com/butterfly-osm/butterfly-route-core/fileio"
	"github.com/butterfly-osm/butterfly-route-core/ids"
)

// tagDictionary assigns a stable integer to every distinct tag
// key/value string across a batch of ways, so ways.raw can store
// dictionary indices instead of repeating strings.
type tagDictionary struct {
	strings []string
	index   map[string]uint32
}

func newTagDictionary() *tagDictionary {
	return &tagDictionary{index: map[string]uint32{}}
}

func (d *tagDictionary) intern(s string) uint32 {
	if i, ok := d.index[s]; ok {
		return i
	}
	i := uint32(len(d.strings))
	d.strings = append(d.strings, s)
	d.index[s] = i
	return i
}

func buildTagDictionary(ways []Way) *tagDictionary {
	d := newTagDictionary()
	// Deterministic string assignment: sort keys within each way's tag
	// map before interning, and process ways in (already-sorted) id
	// order, so dictionary indices are a pure function of way content.
	for _, w := range ways {
		keys := make([]string, 0, len(w.Tags))
		for k := range w.Tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			d.intern(k)
			d.intern(w.Tags[k])
		}
	}
	return d
}

func writeDict(buf *bytes.Buffer, d *tagDictionary) {
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(d.strings)))
	for _, s := range d.strings {
		_ = binary.Write(buf, binary.LittleEndian, uint32(len(s)))
		buf.WriteString(s)
	}
}

func readDict(r *bytes.Reader) ([]string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("osmingest: dict count: %w", coreerr.ErrMalformedInput)
	}
	out := make([]string, n)
	for i := range out {
		var l uint32
		if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
			return nil, fmt.Errorf("osmingest: dict[%d] length: %w", i, coreerr.ErrMalformedInput)
		}
		b := make([]byte, l)
		if _, err := r.Read(b); err != nil && l > 0 {
			return nil, fmt.Errorf("osmingest: dict[%d] bytes: %w", i, coreerr.ErrMalformedInput)
		}
		out[i] = string(b)
	}
	return out, nil
}

// EncodeWaysRaw serializes sorted ways as the ways.raw body: a shared
// tag dictionary followed by per-way records of
// (way_id, n_tags, [(key_idx,val_idx)...], n_nodes, [node_id...]).
func EncodeWaysRaw(sorted []Way) []byte {
	dict := buildTagDictionary(sorted)
	buf := new(bytes.Buffer)
	writeDict(buf, dict)
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(sorted)))
	for _, w := range sorted {
		_ = binary.Write(buf, binary.LittleEndian, int64(w.ID))

		keys := make([]string, 0, len(w.Tags))
		for k := range w.Tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		_ = binary.Write(buf, binary.LittleEndian, uint32(len(keys)))
		for _, k := range keys {
			_ = binary.Write(buf, binary.LittleEndian, dict.index[k])
			_ = binary.Write(buf, binary.LittleEndian, dict.index[w.Tags[k]])
		}

		_ = binary.Write(buf, binary.LittleEndian, uint32(len(w.NodeRefs)))
		for _, nr := range w.NodeRefs {
			_ = binary.Write(buf, binary.LittleEndian, int64(nr))
		}
	}
	return buf.Bytes()
}

// DecodeWaysRaw parses a ways.raw body back into Way records.
func DecodeWaysRaw(body []byte) ([]Way, error) {
	r := bytes.NewReader(body)
	strs, err := readDict(r)
	if err != nil {
		return nil, err
	}
	var nWays uint32
	if err := binary.Read(r, binary.LittleEndian, &nWays); err != nil {
		return nil, fmt.Errorf("osmingest: ways.raw way count: %w", coreerr.ErrMalformedInput)
	}
	out := make([]Way, nWays)
	for i := range out {
		var id int64
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, fmt.Errorf("osmingest: ways.raw[%d].id: %w", i, coreerr.ErrMalformedInput)
		}
		var nTags uint32
		if err := binary.Read(r, binary.LittleEndian, &nTags); err != nil {
			return nil, fmt.Errorf("osmingest: ways.raw[%d].ntags: %w", i, coreerr.ErrMalformedInput)
		}
		tags := make(map[string]string, nTags)
		for t := uint32(0); t < nTags; t++ {
			var ki, vi uint32
			if err := binary.Read(r, binary.LittleEndian, &ki); err != nil {
				return nil, fmt.Errorf("osmingest: ways.raw[%d].tag[%d].key: %w", i, t, coreerr.ErrMalformedInput)
			}
			if err := binary.Read(r, binary.LittleEndian, &vi); err != nil {
				return nil, fmt.Errorf("osmingest: ways.raw[%d].tag[%d].val: %w", i, t, coreerr.ErrMalformedInput)
			}
			if int(ki) >= len(strs) || int(vi) >= len(strs) {
				return nil, fmt.Errorf("osmingest: ways.raw[%d].tag[%d]: dictionary index out of range: %w", i, t, coreerr.ErrMalformedInput)
			}
			tags[strs[ki]] = strs[vi]
		}
		var nNodes uint32
		if err := binary.Read(r, binary.LittleEndian, &nNodes); err != nil {
			return nil, fmt.Errorf("osmingest: ways.raw[%d].nnodes: %w", i, coreerr.ErrMalformedInput)
		}
		refs := make([]osm.NodeID, nNodes)
		for n := range refs {
			var nid int64
			if err := binary.Read(r, binary.LittleEndian, &nid); err != nil {
				return nil, fmt.Errorf("osmingest: ways.raw[%d].node[%d]: %w", i, n, coreerr.ErrMalformedInput)
			}
			refs[n] = osm.NodeID(nid)
		}
		out[i] = Way{ID: osm.WayID(id), Tags: tags, NodeRefs: refs}
	}
	return out, nil
}

// EncodeRelationsRaw serializes sorted relations as the
// relations.raw body ("dictionary-encoded relation
// records (restriction type/from/via/to)"). Relations carry no free
// text, only way/node ids and small enums, so no dictionary is
// required beyond what ids.TurnKind already provides as a one-byte tag.
func EncodeRelationsRaw(sorted []Relation) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(sorted)))
	for _, rel := range sorted {
		_ = binary.Write(buf, binary.LittleEndian, int64(rel.ID))
		_ = binary.Write(buf, binary.LittleEndian, int64(rel.Via))
		_ = binary.Write(buf, binary.LittleEndian, int64(rel.From))
		_ = binary.Write(buf, binary.LittleEndian, int64(rel.To))
		buf.WriteByte(byte(rel.Kind))
		buf.WriteByte(byte(rel.ModeMask))
	}
	return buf.Bytes()
}

// DecodeRelationsRaw parses a relations.raw body back into Relation records.
func DecodeRelationsRaw(body []byte) ([]Relation, error) {
	r := bytes.NewReader(body)
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("osmingest: relations.raw count: %w", coreerr.ErrMalformedInput)
	}
	out := make([]Relation, n)
	for i := range out {
		var relID, via, from, to int64
		if err := binary.Read(r, binary.LittleEndian, &relID); err != nil {
			return nil, fmt.Errorf("osmingest: relations.raw[%d].id: %w", i, coreerr.ErrMalformedInput)
		}
		if err := binary.Read(r, binary.LittleEndian, &via); err != nil {
			return nil, fmt.Errorf("osmingest: relations.raw[%d].via: %w", i, coreerr.ErrMalformedInput)
		}
		if err := binary.Read(r, binary.LittleEndian, &from); err != nil {
			return nil, fmt.Errorf("osmingest: relations.raw[%d].from: %w", i, coreerr.ErrMalformedInput)
		}
		if err := binary.Read(r, binary.LittleEndian, &to); err != nil {
			return nil, fmt.Errorf("osmingest: relations.raw[%d].to: %w", i, coreerr.ErrMalformedInput)
		}
		kindByte, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("osmingest: relations.raw[%d].kind: %w", i, coreerr.ErrMalformedInput)
		}
		maskByte, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("osmingest: relations.raw[%d].mask: %w", i, coreerr.ErrMalformedInput)
		}
		out[i] = Relation{
			ID:       osm.RelationID(relID),
			Via:      osm.NodeID(via),
			From:     osm.WayID(from),
			To:       osm.WayID(to),
			Kind:     ids.TurnKind(kindByte),
			ModeMask: ids.ModeMask(maskByte),
		}
	}
	return out, nil
}

// WriteWays writes ways.raw to dir.
func WriteWays(dir string, ways []Way, inputHash fileio.Hash) (fileio.Hash, error) {
	sorted := SortWays(ways)
	body := EncodeWaysRaw(sorted)
	h, err := fileio.NewHeader("WAYS", 1, inputHash, uint64(len(sorted)))
	if err != nil {
		return fileio.Hash{}, err
	}
	return fileio.Write(dir+"/ways.raw", h, body)
}

// WriteRelations writes relations.raw to dir.
func WriteRelations(dir string, rels []Relation, inputHash fileio.Hash) (fileio.Hash, error) {
	sorted := SortRelations(rels)
	body := EncodeRelationsRaw(sorted)
	h, err := fileio.NewHeader("RELS", 1, inputHash, uint64(len(sorted)))
	if err != nil {
		return fileio.Hash{}, err
	}
	return fileio.Write(dir+"/relations.raw", h, body)
}
