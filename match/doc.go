// Package match holds the profile registry, the connection graph and the
// compatibility scoring engine.
//
// Scoring is a pure function of two profiles. Each scored field is bound to
// one strategy in a static table (overlap, equality, text similarity or
// threshold) with a fixed weight; ScoreWithPreferences evaluates the same
// table restricted to the caller's preference set. Ranking runs the chosen
// scoring function over a snapshot of the registry.
//
// Registry and Graph are safe for concurrent use. Both shard their locks by
// profile id.
package match
