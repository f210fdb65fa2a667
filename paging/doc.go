// Package paging turns "near the end of the list" signals into page numbers.
//
// Counter issues page 1 for a new phrase and one more page per accepted
// signal, behind an autoload gate. EdgeDetector converts scroll geometry
// into those signals.
package paging
