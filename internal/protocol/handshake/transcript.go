package handshake

// peerTranscript is what the peer signs: params ‖ peer ephemeral.
func peerTranscript(paramsPEM, peerEphemeralPEM []byte) []byte {
	out := make([]byte, 0, len(paramsPEM)+len(peerEphemeralPEM))
	out = append(out, paramsPEM...)
	return append(out, peerEphemeralPEM...)
}

// serviceTranscript is what the service signs:
// params ‖ service ephemeral ‖ peer ephemeral.
func serviceTranscript(paramsPEM, serviceEphemeralPEM, peerEphemeralPEM []byte) []byte {
	out := make([]byte, 0, len(paramsPEM)+len(serviceEphemeralPEM)+len(peerEphemeralPEM))
	out = append(out, paramsPEM...)
	out = append(out, serviceEphemeralPEM...)
	return append(out, peerEphemeralPEM...)
}
