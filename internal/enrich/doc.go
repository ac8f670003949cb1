// Package enrich drives one enrichment request end to end:
//
//	ReadLocal → MapOut → Fetch → ParseResponse → Normalize → MapIn →
//	SelectCandidate → Merge → Secondary → Emit
//
// The Orchestrator owns no shared mutable state. Its alias table is sealed
// before the first request, so a single Orchestrator may serve concurrent
// requests. Runner drives batches, one request at a time by default.
//
// Any abort is returned as a *StageError naming the failing stage, the last
// completed stage and the error kind. A failing secondary lookup is not an
// abort: it is recorded in Result.Secondary and the request completes.
package enrich
