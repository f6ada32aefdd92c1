// Package verify implements the audio verification engine.
//
// Verification is a pure classification over technical metrics extracted from
// a downloaded file. The engine evaluates a fixed, data-driven rule set and
// derives a tri-state verdict from the accumulated errors and warnings:
//   - ok: no issues
//   - warning: usable, but flagged
//   - failed: unusable
//
// Every outcome, including a failed probe, is expressed as a Result value.
// The engine never reports verification failure through an error return.
package verify
