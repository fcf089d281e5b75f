package chain

// snapshotEntry binds a snapshot identifier to an independent capture of the world state at creation time.
type snapshotEntry struct {
	// id is the identifier handed back to the caller of the snapshot cheat code.
	id uint64

	// state is a deep copy of the world state as of snapshot creation. It must never alias live state.
	state *WorldState
}

// snapshotStack maintains the stack of world state checkpoints created by the snapshot cheat code. Identifiers are
// monotonically increasing and are never reused, even after entries are invalidated.
type snapshotStack struct {
	// entries holds the currently valid snapshots, ordered by ascending id.
	entries []snapshotEntry

	// nextID is the identifier the next snapshot will be assigned.
	nextID uint64
}

// newSnapshotStack creates an empty snapshot stack.
func newSnapshotStack() *snapshotStack {
	return &snapshotStack{}
}

// Snapshot captures the provided world state and pushes it onto the stack.
// Returns the identifier assigned to the new snapshot.
func (s *snapshotStack) Snapshot(state *WorldState) uint64 {
	id := s.nextID
	s.nextID++
	s.entries = append(s.entries, snapshotEntry{id: id, state: state.Copy()})
	return id
}

// RevertTo restores the world state captured by the snapshot with the given id. Snapshots with a strictly greater
// id are invalidated and can no longer be reverted to. The target snapshot itself remains valid, so reverting to
// the same id repeatedly is legal until a revert to an earlier id invalidates it.
// Returns a fresh copy of the captured state and true, or nil and false if the id is unknown or was invalidated.
func (s *snapshotStack) RevertTo(id uint64) (*WorldState, bool) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].id == id {
			// Drop everything above the target, keep the target itself.
			s.entries = s.entries[:i+1]

			// Hand back a copy so the retained capture stays isolated from future live-state mutation.
			return s.entries[i].state.Copy(), true
		}
	}
	return nil, false
}
