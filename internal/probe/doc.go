// Package probe determines liveness for a single URL.
//
// A probe never fails at the program level: every outcome, including
// transport errors, is captured as data in an Outcome value and left to
// the classification policy. Only three things can happen to a URL:
// nothing objects to it (Absent), the probe itself failed (Errored), or
// a network response came back (Response).
//
// URL handling mirrors the bookmark file contents deliberately: scheme
// sniffing happens on a trimmed, lower-cased copy, but the original
// string is what gets probed and reported. Two URLs differing only in
// scheme case are therefore distinct probe targets.
package probe
