// Package engine owns the state of one Ethical Hacker's Journey play-through.
//
// An Engine is an explicit context object: it is constructed per session,
// reset explicitly and never shared implicitly between sessions. Every
// mission start clones a fresh roster from the read-only catalog, so no
// state leaks between play-throughs or back into the catalog.
//
// MUTATIONS:
//
// All mutations are synchronous and totally ordered under one mutex. Each
// mutation runs the same tail:
//  1. apply the change to the in-memory PlayState
//  2. run the auto-completion check (in_progress → completed, at most once)
//  3. persist the full snapshot through the Persister
//  4. notify Observers of new terminal entries and status changes
//  5. offer a completed run to the Recorder, once per play-through
//
// Steps 4 and 5 run outside the lock so observers may call back into the
// engine.
//
// INVALID INPUT:
//
// Unknown mission, scenario, choice or objective ids are silent no-ops.
// Unrecognized commands produce the canned "not recognized" output. The
// errors returned by mutations come only from the Persister and Recorder;
// the in-memory state stays authoritative when they fail.
//
// HINTS:
//
// StartMission schedules one hint entry per initial command at
// index × hint delay. A generation counter guards every callback, and all
// pending timers are stopped on restart, reset and Close, so a stale hint
// never lands in a newer play-through.
package engine
