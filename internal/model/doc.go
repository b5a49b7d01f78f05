// Package model defines the play-through data model shared by the mission
// engine, the command interpreter, the scenario resolver and persistence.
//
// # Ownership
//
// A Mission in this package is a mutable instance, cloned from an immutable
// catalog template when a mission starts. Instances are owned by exactly one
// engine for the duration of a play-through and are replaced wholesale on
// restart or reset.
//
// # Invariants
//
//   - Metrics scores (technical, ethics, detection risk) never leave [0,100].
//     All score changes go through Metrics.Apply.
//   - Objectives are completed one way: Mission.CompleteObjective never
//     un-completes.
//   - A completed scenario keeps its selected choice forever.
//
// # Persistence shape
//
// Snapshot is the JSON document written on every engine mutation. Field names
// are camelCase and nullable ids encode as JSON null; a snapshot written by
// one engine must rehydrate losslessly in another.
package model
