// Package password implements password hashing, verification, strength
// scoring, and secure password generation.
//
// # Hashing
//
// Hashes are salted bcrypt with a configurable cost factor. Because bcrypt
// embeds its cost in the hash, [Policy.NeedsRehash] can report when a stored
// hash was produced with a different cost than currently configured, so the
// caller can re-hash on the next successful login.
//
// # Strength policy
//
// [ScoreStrength] enforces three hard requirements (length of at least 6,
// one uppercase letter, and one symbol from a fixed punctuation set) and
// awards non-blocking bonus points for extra length, lowercase letters, and
// digits. The exact character classes are part of the contract; see the
// symbolSet constant.
//
// This package never stores or logs plaintext passwords, and it imports no
// other courseauth package.
package password
