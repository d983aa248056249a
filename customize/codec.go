package customize

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/butterfly-osm/butterfly-route-core/coreerr"
	"github.com/butterfly-osm/butterfly-route-core/fileio"
	"github.com/butterfly-osm/butterfly-route-core/ids"
)

// EncodeWeights serializes cch.w.<mode>.u32: up_w[] followed by
// down_w[].
func EncodeWeights(w *Weights) []byte {
	buf := new(bytes.Buffer)
	buf.Grow((len(w.UpW) + len(w.DownW)) * 4)
	for _, v := range w.UpW {
		_ = binary.Write(buf, binary.LittleEndian, v)
	}
	for _, v := range w.DownW {
		_ = binary.Write(buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

// DecodeWeights parses a cch.w.<mode>.u32 body of nUp+nDown entries.
func DecodeWeights(body []byte, nUp, nDown uint64) (*Weights, error) {
	if uint64(len(body)) != (nUp+nDown)*4 {
		return nil, fmt.Errorf("customize: weights length mismatch (want %d got %d): %w", (nUp+nDown)*4, len(body), coreerr.ErrMalformedInput)
	}
	r := bytes.NewReader(body)
	upW := make([]uint32, nUp)
	for i := range upW {
		if err := binary.Read(r, binary.LittleEndian, &upW[i]); err != nil {
			return nil, fmt.Errorf("customize: up_w[%d]: %w", i, coreerr.ErrMalformedInput)
		}
	}
	downW := make([]uint32, nDown)
	for i := range downW {
		if err := binary.Read(r, binary.LittleEndian, &downW[i]); err != nil {
			return nil, fmt.Errorf("customize: down_w[%d]: %w", i, coreerr.ErrMalformedInput)
		}
	}
	return &Weights{UpW: upW, DownW: downW}, nil
}

// Write writes cch.w.<mode>.u32 to dir.
func Write(dir string, mode ids.Mode, w *Weights, inputHash fileio.Hash) (fileio.Hash, error) {
	suffix := mode.String()
	header, err := fileio.NewHeader("CCHW", 1, inputHash, uint64(len(w.UpW)), uint64(len(w.DownW)))
	if err != nil {
		return fileio.Hash{}, err
	}
	return fileio.Write(dir+"/cch.w."+suffix+".u32", header, EncodeWeights(w))
}

// Read reads cch.w.<mode>.u32 from dir.
func Read(dir string, mode ids.Mode) (*Weights, error) {
	suffix := mode.String()
	h, body, err := fileio.Read(dir+"/cch.w."+suffix+".u32", "CCHW")
	if err != nil {
		return nil, err
	}
	return DecodeWeights(body, h.Counts[0], h.Counts[1])
}
