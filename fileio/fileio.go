// Package fileio implements the on-disk framed-file format shared by
// every stage output: a header carrying a magic number, version,
// entity counts and input content hash, a body, and a 16-byte footer
// of CRC-64 checksums. Every write is atomic (temp file + rename) so a
// crashed stage never leaves a partially-written file that a later
// stage could mistake for valid input.
//
// No example in the retrieval pack implements a custom framed binary
// file format with CRC footers and content-addressed headers, so this
// package is standard-library only (encoding/binary, hash/crc64,
// crypto/sha256, os); see DESIGN.md for the explicit justification.
package fileio

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash/crc64"
	"os"
	"path/filepath"

	"github.com/butterfly-osm/butterfly-route-core/coreerr"
)

// crcTable is the fixed CRC-64 polynomial (ISO) every file uses.
var crcTable = crc64.MakeTable(crc64.ISO)

// Hash is a content-address: the SHA-256 of some stage artifact.
type Hash [32]byte

// HashBytes computes the content address of b.
func HashBytes(b []byte) Hash {
	return sha256.Sum256(b)
}

// String renders the hash as lowercase hex, as used in lock.json.
func (h Hash) String() string {
	return fmt.Sprintf("%x", h[:])
}

// Header is the fixed-shape prefix of every file ("header
// (>=32B, magic+version+counts+hashes)"). Counts is stage-specific
// (e.g. {n_nodes} for nodes.sa, {n_nodes, n_arcs} for ebg.csr) and is
// serialized as a length-prefixed uint64 array immediately after the
// fixed 42-byte prefix, so the total header is variable-length but
// never below its 32-byte floor.
type Header struct {
	Magic     [4]byte
	Version   uint16
	InputHash Hash
	Counts    []uint64
}

const fixedHeaderLen = 4 + 2 + 32 + 4 // magic + version + input hash + count-of-counts

// NewHeader builds a Header for magic (must be exactly 4 ASCII bytes),
// a format version, the content hash of this file's inputs, and the
// stage-specific entity counts to embed.
func NewHeader(magic string, version uint16, inputHash Hash, counts ...uint64) (Header, error) {
	var h Header
	if len(magic) != 4 {
		return h, fmt.Errorf("fileio: magic %q must be exactly 4 bytes: %w", magic, coreerr.ErrConfigurationError)
	}
	copy(h.Magic[:], magic)
	h.Version = version
	h.InputHash = inputHash
	h.Counts = counts
	return h, nil
}

func (h Header) encode() []byte {
	buf := new(bytes.Buffer)
	buf.Write(h.Magic[:])
	_ = binary.Write(buf, binary.LittleEndian, h.Version)
	buf.Write(h.InputHash[:])
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(h.Counts)))
	for _, c := range h.Counts {
		_ = binary.Write(buf, binary.LittleEndian, c)
	}
	return buf.Bytes()
}

func decodeHeader(r *bytes.Reader) (Header, error) {
	var h Header
	if r.Len() < fixedHeaderLen {
		return h, fmt.Errorf("fileio: truncated header (%d bytes available): %w", r.Len(), coreerr.ErrMalformedInput)
	}
	_, _ = r.Read(h.Magic[:])
	if err := binary.Read(r, binary.LittleEndian, &h.Version); err != nil {
		return h, fmt.Errorf("fileio: reading version: %w", coreerr.ErrMalformedInput)
	}
	_, _ = r.Read(h.InputHash[:])
	var nCounts uint32
	if err := binary.Read(r, binary.LittleEndian, &nCounts); err != nil {
		return h, fmt.Errorf("fileio: reading count-of-counts: %w", coreerr.ErrMalformedInput)
	}
	h.Counts = make([]uint64, nCounts)
	for i := range h.Counts {
		if err := binary.Read(r, binary.LittleEndian, &h.Counts[i]); err != nil {
			return h, fmt.Errorf("fileio: reading counts[%d]: %w", i, coreerr.ErrMalformedInput)
		}
	}
	return h, nil
}

// footerLen is the fixed 16-byte footer: body_crc64, file_crc64.
const footerLen = 8 + 8

// Write atomically writes header+body+footer to path: it writes to a
// sibling temporary file and renames it into place, so readers never
// observe a partial file.
func Write(path string, h Header, body []byte) (Hash, error) {
	headerBytes := h.encode()

	bodyCRC := crc64.Checksum(body, crcTable)

	buf := new(bytes.Buffer)
	buf.Write(headerBytes)
	buf.Write(body)
	_ = binary.Write(buf, binary.LittleEndian, bodyCRC)

	// file_crc64 covers everything written so far (header + body + bodyCRC).
	fileCRC := crc64.Checksum(buf.Bytes(), crcTable)
	_ = binary.Write(buf, binary.LittleEndian, fileCRC)

	full := buf.Bytes()
	contentHash := HashBytes(full)

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return Hash{}, fmt.Errorf("fileio: creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(full); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return Hash{}, fmt.Errorf("fileio: writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return Hash{}, fmt.Errorf("fileio: closing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return Hash{}, fmt.Errorf("fileio: renaming into place %s: %w", path, err)
	}
	return contentHash, nil
}

// Read validates and parses a file written by Write, checking the
// magic number, both CRC-64 checksums, and returning the header plus
// the raw body slice (footer stripped).
func Read(path string, expectMagic string) (Header, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("fileio: reading %s: %w", path, err)
	}
	return Parse(raw, expectMagic)
}

// Parse validates and decodes an in-memory buffer as produced by
// Write; split out from Read so tests and round-trip checks can avoid
// touching the filesystem.
func Parse(raw []byte, expectMagic string) (Header, []byte, error) {
	if len(raw) < fixedHeaderLen+footerLen {
		return Header{}, nil, fmt.Errorf("fileio: file too short (%d bytes): %w", len(raw), coreerr.ErrMalformedInput)
	}

	footerStart := len(raw) - footerLen
	payload := raw[:footerStart]
	footer := raw[footerStart:]

	wantBodyCRC := binary.LittleEndian.Uint64(footer[0:8])
	wantFileCRC := binary.LittleEndian.Uint64(footer[8:16])

	gotFileCRC := crc64.Checksum(raw[:footerStart+8], crcTable)
	if gotFileCRC != wantFileCRC {
		return Header{}, nil, fmt.Errorf("fileio: file_crc64 mismatch (got %x want %x): %w", gotFileCRC, wantFileCRC, coreerr.ErrMalformedInput)
	}

	r := bytes.NewReader(payload)
	h, err := decodeHeader(r)
	if err != nil {
		return Header{}, nil, err
	}
	if string(h.Magic[:]) != expectMagic {
		return Header{}, nil, fmt.Errorf("fileio: magic mismatch (got %q want %q): %w", h.Magic, expectMagic, coreerr.ErrMalformedInput)
	}

	body := make([]byte, r.Len())
	if _, err := r.Read(body); err != nil && r.Len() > 0 {
		return Header{}, nil, fmt.Errorf("fileio: reading body: %w", coreerr.ErrMalformedInput)
	}

	gotBodyCRC := crc64.Checksum(body, crcTable)
	if gotBodyCRC != wantBodyCRC {
		return Header{}, nil, fmt.Errorf("fileio: body_crc64 mismatch (got %x want %x): %w", gotBodyCRC, wantBodyCRC, coreerr.ErrMalformedInput)
	}

	return h, body, nil
}
