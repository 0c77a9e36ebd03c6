// Package state provides an in-memory per-user session store for
// multi-step dialogs. Sessions hold the current dialog state plus a
// scratch map of temporary values collected along the way. Sessions are
// ephemeral: a process restart drops all of them.
package state
