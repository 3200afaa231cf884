// Package conv converts between int and the fixed-width integers of the
// checkpoint header, failing with ErrOverflow instead of truncating.
package conv
