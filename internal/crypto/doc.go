// Package crypto exposes the primitives used by the secret channel.
//
// Contents
//
//   - Finite-field Diffie-Hellman over generator-2 safe-prime groups
//     (GenerateDHParams, GenerateDH, DH) with PKCS#3 parameter and
//     SubjectPublicKeyInfo PEM codecs compatible with OpenSSL
//   - RSA identity keys and RSASSA-PSS/SHA-256 signatures (GenerateRSA,
//     SignPSS, VerifyPSS) with PEM codecs
//   - HKDF-SHA256 key derivation with a fixed salt (DeriveKey)
//   - AES-256-CBC with PKCS#7 padding and a random IV (EncryptCBC, DecryptCBC)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Parameters for 1024, 1536, 2048, 3072 and 4096 bits come from RFC 2409 and
// RFC 3526 unless fresh generation is requested. Every other size triggers a
// safe-prime search, which can take minutes above 2048 bits.
package crypto
