// Package sem implements the symbol model of the front end: scoped symbol
// tables, the process-wide cache of built-in declaration tables, and
// function-overload resolution with implicit conversion.
//
// Per-unit state (a Table and everything reached from it) belongs to one
// compiling goroutine. The only shared state is the built-in table cache,
// whose entries are frozen before publication and read without locking
// afterwards.
package sem
