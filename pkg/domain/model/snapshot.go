package model

// SnapshotVersion is the current schema version of the persisted document.
// A document without a version field is treated as version 0.
const SnapshotVersion = 1

// Snapshot is the versioned document written to the storage backend. It
// holds only source-of-truth state; filtered views and stats are derived
// again on restore and deliberately absent here.
type Snapshot struct {
	Version    int      `json:"version"`
	Risks      []*Risk  `json:"risks"`
	Categories []string `json:"categories"`
	Filters    Filters  `json:"filters"`
}

// Migrate upgrades a snapshot from an older schema version to the current
// one. Version 0 documents predate status normalization and filter
// wildcards; both are repaired here. Migration is idempotent.
func (x *Snapshot) Migrate() {
	if x.Version >= SnapshotVersion {
		return
	}

	for _, r := range x.Risks {
		r.Status = r.Status.Normalize()
	}
	x.Filters = x.Filters.Normalize()
	x.Version = SnapshotVersion
}
