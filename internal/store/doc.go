// Package store provides file-based persistence under the user's home
// directory.
//
// Secret material (the identity and the game snapshot) is sealed in an
// encrypted envelope keyed from the local passphrase via scrypt; that key is
// independent of any transport session key, so losing one never compromises
// the other. All writes go through a temp file, fsync and rename, so a crash
// mid-write never corrupts the previous valid snapshot. Public records
// (trusted peers, settings) are plain JSON written the same atomic way.
package store
