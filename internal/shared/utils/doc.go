// Package utils holds input validation for values that arrive from the
// command line or tool scripts.
package utils
