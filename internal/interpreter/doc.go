// Package interpreter maps free-text terminal commands to effects.
//
// Interpretation is a pure function of the command text, the active mission
// and the current metrics, except for the stochastic alerts of scan and
// exploit, which draw from an injected Random source. The interpreter never
// mutates the mission it is given; the engine applies the returned Effect.
//
// Matching priority:
//
//  1. scenario / scenarios
//  2. keywords: help, objectives, status, clear
//  3. role verbs with at most one argument: scan, exploit (red);
//     monitor, analyze, patch (blue); report (either)
//  4. anything else is not recognized
package interpreter
