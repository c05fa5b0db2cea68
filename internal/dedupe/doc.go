// Package dedupe repairs duplicate identifier values in one feature class.
//
// A run is three forward passes over the same feature class:
//
//  1. ScanMaxID folds every numeric identifier into the current maximum.
//  2. FindDuplicates records the row-id of every occurrence of a trimmed
//     identifier after its first, in row-id order.
//  3. Rewrite opens an edit session and gives each recorded row the next
//     value above the maximum, committing only if every update succeeds.
//
// The read passes never write. The rewrite either commits in full or leaves
// the feature class as it was.
package dedupe
