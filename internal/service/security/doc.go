// Package security is the alarm decision core.
//
// Service reads the current state from a state.Repository, applies the
// transition table from the alarm domain package to sensor changes, camera
// results and arming changes, writes the result back and notifies the
// registered StatusListeners. Guard serializes concurrent callers.
package security
