package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// ErrLoad wraps every failure to read or decode a snapshot.
var ErrLoad = errors.New("load snapshot")

var requiredKeys = []string{"stale_branches", "open_prs", "repo_info"}

// Source produces a snapshot on demand.
type Source interface {
	Load() (*Snapshot, error)
}

// FileSource reads the snapshot from a JSON file on every Load.
type FileSource struct {
	Path string
}

func (f FileSource) Load() (*Snapshot, error) {
	return Load(f.Path)
}

func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrLoad, path, err)
	}
	snap, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return snap, nil
}

// Decode parses snapshot JSON. Comments and trailing commas are tolerated.
func Decode(data []byte) (*Snapshot, error) {
	data = jsonc.ToJSON(data)

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("%w: parse: %w", ErrLoad, err)
	}
	for _, k := range requiredKeys {
		if _, ok := keys[k]; !ok {
			return nil, fmt.Errorf("%w: missing key %q", ErrLoad, k)
		}
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrLoad, err)
	}
	if err := snap.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return &snap, nil
}

func (s *Snapshot) validate() error {
	if len(s.RepoInfo) > 1 {
		return fmt.Errorf("repo_info: expected one element, got %d", len(s.RepoInfo))
	}

	names := make(map[string]struct{}, len(s.StaleBranches))
	for i, b := range s.StaleBranches {
		if b.Name == "" {
			return fmt.Errorf("stale_branches[%d]: branch name required", i)
		}
		if _, dup := names[b.Name]; dup {
			return fmt.Errorf("stale_branches[%d]: duplicate branch %q", i, b.Name)
		}
		names[b.Name] = struct{}{}
	}

	numbers := make(map[int]struct{}, len(s.OpenPRs))
	for i, p := range s.OpenPRs {
		if p.Number <= 0 {
			return fmt.Errorf("open_prs[%d]: invalid number %d", i, p.Number)
		}
		if _, dup := numbers[p.Number]; dup {
			return fmt.Errorf("open_prs[%d]: duplicate number #%d", i, p.Number)
		}
		numbers[p.Number] = struct{}{}
		switch p.State {
		case StateOpen, StateClosed, StateMerged:
		default:
			return fmt.Errorf("open_prs[%d]: invalid state %q (open|closed|merged)", i, p.State)
		}
	}
	return nil
}
