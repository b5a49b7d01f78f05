// Package harness runs scripted play-throughs against the real engine.
//
// A scenario file is YAML: a player name and role, a list of scripted
// alert rolls, steps that drive the engine, and assertions over the final
// state:
//
//	name: red-1-failure
//	description: Downloading the backup files ends the mission
//	role: red
//	steps:
//	  - do: start
//	    mission: red-1
//	  - do: complete
//	    objective: r1-obj1
//	  - do: choose
//	    scenario: r1-s3
//	    choice: r1-s3-c1
//	assertions:
//	  - type: status
//	    value: failed
//
// Each run gets a fresh in-memory store, a manual clock starting at
// testutil.Epoch, a manual scheduler for hints and a fixed run id, so the
// captured Transcript is byte-for-byte reproducible. Hints only fire on a
// fire_hints or advance step.
//
// Golden files hold the JSON transcript and live in a golden/ directory
// next to the scenario files.
package harness
