package chain

// CheatCodeCallEvent describes an event where a call to a cheat code contract concluded, successfully or not.
type CheatCodeCallEvent struct {
	// Chain represents the TestChain which dispatched the cheat code call.
	Chain *TestChain

	// Contract represents the cheat code contract which was called.
	Contract *CheatCodeContract

	// Outcome describes how the dispatch concluded.
	Outcome CallOutcome
}

// SnapshotRevertedEvent describes an event where the world state was restored to a previously captured snapshot.
type SnapshotRevertedEvent struct {
	// Chain represents the TestChain whose state was restored.
	Chain *TestChain

	// SnapshotID is the identifier of the snapshot which was restored.
	SnapshotID uint64
}
