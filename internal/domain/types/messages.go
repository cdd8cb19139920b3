package types

// IdentityRequest carries the peer's identity public key (PEM).
type IdentityRequest struct {
	Key string `json:"key"`
}

// IdentityResponse returns the service identity public key and the DH
// parameters, both PEM encoded.
type IdentityResponse struct {
	Key      string `json:"key"`
	DHParams string `json:"dh_params"`
}

// SignedKey is an ephemeral DH public key (PEM) with a base64 RSA-PSS
// signature. It is used in both directions of the key exchange.
type SignedKey struct {
	Key       string `json:"key"`
	Signature string `json:"signature"`
}

// Challenge is the AES-256-CBC encrypted payload, base64 encoded.
type Challenge struct {
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Health reports liveness and the current handshake phase.
type Health struct {
	Status string `json:"status"`
	Phase  string `json:"phase"`
}
