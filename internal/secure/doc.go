// Package secure keeps Akeyless credentials encrypted in memory between the
// moment they are loaded and the moment a request body is built.
//
// Secrets are sealed into memguard enclaves (XSalsa20Poly1305, mlock'd key
// material). Callers open them only for the duration of a single call and
// should run memguard.Purge() on exit.
//
// This does not protect against an attacker with access to the running
// process.
package secure
