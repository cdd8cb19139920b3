// Package identity provisions the service identity at startup.
//
// It generates the RSA identity key and the DH group, or loads them from a
// domain.IdentityStore when one is configured together with a passphrase.
// New persisted identities must satisfy the passphrase policy.
package identity
