// Package channel exposes the handshake responder as a domain.HandshakeService.
//
// It translates between the JSON wire types and the byte-level protocol
// package: PEM strings in and out, base64 signatures, IVs and ciphertexts.
// Every operation is logged with its outcome and counted in the metrics.
package channel
