// Package drift detects divergence between local migration files and the
// checksums recorded in the migration ledger. Checksums are folded into a
// merkle tree so two sets can be compared by a single root hash before
// drilling down to individual migrations.
package drift

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/cbergoon/merkletree"

	"github.com/veldtdb/veldt/internal/merr"
)

// SetHash is the merkle root over a set of migration checksums, plus the
// per-migration entries for drill-down.
type SetHash struct {
	Root    string            // Root hash of the whole set
	Entries map[string]string // "app.name" -> checksum
}

// migrationContent implements merkletree.Content for one migration.
type migrationContent struct {
	key      string
	checksum string
}

func (c migrationContent) CalculateHash() ([]byte, error) {
	h := sha256.Sum256([]byte(c.key + ":" + c.checksum))
	return h[:], nil
}

func (c migrationContent) Equals(other merkletree.Content) (bool, error) {
	o, ok := other.(migrationContent)
	if !ok {
		return false, nil
	}
	return c.key == o.key && c.checksum == o.checksum, nil
}

// ComputeSetHash builds the merkle root for a set of migration checksums.
// Entries are sorted by key so the root is deterministic regardless of
// insertion order.
func ComputeSetHash(entries map[string]string) (*SetHash, error) {
	result := &SetHash{Entries: make(map[string]string, len(entries))}
	for k, v := range entries {
		result.Entries[k] = v
	}

	if len(entries) == 0 {
		result.Root = emptyHash()
		return result, nil
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	contents := make([]merkletree.Content, 0, len(keys))
	for _, k := range keys {
		contents = append(contents, migrationContent{key: k, checksum: entries[k]})
	}

	tree, err := merkletree.NewTree(contents)
	if err != nil {
		return nil, merr.Wrap(merr.ErrInternal, err, "failed to build merkle tree")
	}

	result.Root = hex.EncodeToString(tree.MerkleRoot())
	return result, nil
}

func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// emptyHash returns a consistent root for empty sets.
func emptyHash() string {
	return hashString("empty_migration_set")
}

// Comparison is the result of comparing local migration files against the
// ledger. Pending migrations are informational, not drift.
type Comparison struct {
	Match        bool     // True if every applied migration matches its local file
	Applied      int      // Number of migrations recorded in the ledger
	ExpectedRoot string   // Root over local checksums of applied migrations
	ActualRoot   string   // Root over ledger-recorded checksums
	Missing      []string // Applied in the ledger but no local file
	Modified     []string // Applied with a checksum different from the local file
	Pending      []string // Local files not yet applied
}

// Compare checks ledger-recorded checksums against local file checksums.
// Both maps are keyed by "app.name". A recorded checksum that is empty
// (older ledger rows) is treated as unverifiable and never flagged.
func Compare(local, recorded map[string]string) (*Comparison, error) {
	comp := &Comparison{Applied: len(recorded)}

	// Only applied migrations participate in the merkle roots: a local file
	// with no ledger row is pending, not drift.
	expectedEntries := make(map[string]string)
	for key, sum := range recorded {
		localSum, ok := local[key]
		switch {
		case !ok:
			comp.Missing = append(comp.Missing, key)
		case sum != "" && localSum != sum:
			comp.Modified = append(comp.Modified, key)
			expectedEntries[key] = localSum
		default:
			expectedEntries[key] = localSum
		}
	}

	for key := range local {
		if _, ok := recorded[key]; !ok {
			comp.Pending = append(comp.Pending, key)
		}
	}

	sort.Strings(comp.Missing)
	sort.Strings(comp.Modified)
	sort.Strings(comp.Pending)

	expected, err := ComputeSetHash(expectedEntries)
	if err != nil {
		return nil, err
	}
	actual, err := ComputeSetHash(recorded)
	if err != nil {
		return nil, err
	}

	comp.ExpectedRoot = expected.Root
	comp.ActualRoot = actual.Root
	comp.Match = len(comp.Missing) == 0 && len(comp.Modified) == 0

	return comp, nil
}
