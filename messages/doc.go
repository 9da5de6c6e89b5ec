// Package messages holds the user-facing texts returned in Result.Message
// and Result.Error. Vietnamese is the default; English exists for operator
// tooling. A partial Catalog can be completed with Merge.
package messages
