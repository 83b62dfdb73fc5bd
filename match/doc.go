// Package match turns free-text target descriptions into structured
// requirements and scores candidate profiles against them.
//
// Four independent signals feed each score: skill overlap, experience ratio,
// education satisfaction and semantic similarity between the candidate text
// and the description embedding. Weights over the signals are validated at
// construction. The Ranker scores batches concurrently and orders candidates
// by final score with a stable tie-break on input position.
package match
