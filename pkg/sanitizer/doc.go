// Package sanitizer normalizes user input before validation and storage.
//
// All functions are idempotent: applying them twice gives the same result as
// applying them once. Invalid input is never an error here; it is left for
// the validators to reject.
package sanitizer
