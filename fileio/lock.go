package fileio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Lock is the JSON document a stage emits as its "commit":
// input/output content hashes, entity counts, and stage-specific
// invariant statistics. Presence and validity of stepN.lock.json is
// the pipeline's record that stage N succeeded.
type Lock struct {
	// RunID is a per-invocation correlation id (not part of the content
	// hash), grounded on the pack's use of google/uuid for request/run
	// correlation: it lets two runs with byte-identical outputs (and
	// therefore identical Inputs/Outputs hashes) still be told apart in
	// logs.
	RunID string `json:"run_id"`

	Stage   string            `json:"stage"`
	Inputs  map[string]string `json:"inputs"`  // name -> sha256 hex
	Outputs map[string]string `json:"outputs"` // name -> sha256 hex

	Counts map[string]uint64 `json:"counts"`
	Stats  map[string]any    `json:"stats,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewLock starts a Lock for the named stage with a fresh run id.
func NewLock(stage string) *Lock {
	return &Lock{
		RunID:     uuid.NewString(),
		Stage:     stage,
		Inputs:    map[string]string{},
		Outputs:   map[string]string{},
		Counts:    map[string]uint64{},
		Stats:     map[string]any{},
		CreatedAt: time.Time{},
	}
}

// AddInput records a named input's content hash.
func (l *Lock) AddInput(name string, h Hash) { l.Inputs[name] = h.String() }

// AddOutput records a named output's content hash.
func (l *Lock) AddOutput(name string, h Hash) { l.Outputs[name] = h.String() }

// SetCount records an entity count statistic (e.g. "n_nodes").
func (l *Lock) SetCount(name string, n uint64) { l.Counts[name] = n }

// SetStat records a stage-specific invariant statistic (e.g.
// "shortcut_ratio", "ordering_depth").
func (l *Lock) SetStat(name string, v any) { l.Stats[name] = v }

// WriteJSON marshals the lock as canonical, deterministic JSON
// (sorted map keys, as Go's encoding/json already guarantees for
// map[string]*) and atomically writes it to path.
func (l *Lock) WriteJSON(path string) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = timeNow()
	}
	b, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("fileio: marshaling lock for stage %s: %w", l.Stage, err)
	}
	return atomicWriteRaw(path, b)
}

// WriteYAMLDebug writes a human-readable YAML mirror of the lock next
// to the canonical JSON (path + ".debug.yaml"), grounded on the pack's
// yaml.v3 usage for inspectable config/debug dumps. It is never read
// back by the pipeline; it exists purely for operators.
func (l *Lock) WriteYAMLDebug(path string) error {
	b, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("fileio: marshaling debug yaml for stage %s: %w", l.Stage, err)
	}
	return atomicWriteRaw(path+".debug.yaml", b)
}

// ReadLock loads and validates a previously written lock.json.
func ReadLock(path string) (*Lock, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fileio: reading lock %s: %w", path, err)
	}
	var l Lock
	if err := json.Unmarshal(b, &l); err != nil {
		return nil, fmt.Errorf("fileio: parsing lock %s: %w", path, err)
	}
	return &l, nil
}

func atomicWriteRaw(path string, b []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// timeNow is split out so tests can be deterministic if ever needed;
// the pipeline itself never branches on wall-clock time.
func timeNow() time.Time { return time.Now().UTC() }
