// Package match compares the two definitions of a bridged type and ranks
// known type names against an unknown one.
//
// ScoreKindCompatibility decides how a field value crosses between two
// definitions; RankNames orders registered names by NameSimilarity as
// suggestions for an unresolved one.
package match
