// Package store provides file-based persistence for the service identity.
//
// IdentityFileStore keeps the RSA identity key and the DH group in a single
// JSON blob sealed with ChaCha20-Poly1305 under a scrypt-derived key, so a
// restarted service presents the same identity to its peers. Writes go
// through a temp file and an atomic rename. Without a configured store the
// service simply generates a fresh identity on every start.
package store
