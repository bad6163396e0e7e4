// Package core contains the fundamental data structures for the tinychain
// node — Transaction and Block — along with the canonical projection used
// to hash a block and to feed the proof-of-work predicate. Both types are
// treated as immutable once constructed: copies circulate over the wire and
// through the engine, never shared mutable pointers.
package core

// MiningSender is the sentinel sender value on a block's reward
// transaction. It never carries a signature and never passes through
// signature verification.
const MiningSender = "MINING"

// MiningReward is the fixed amount credited to whoever mines a block.
const MiningReward = 10.0
