// Package server exposes the handshake service over HTTP/JSON.
//
// HTTP API
//
//	POST /exchange/identity-dh-params   (alias POST /exchange/rsa-dh-params)
//	    Body {"key": <PEM>} with the peer RSA identity key. Returns
//	    {"key": <PEM>, "dh_params": <PEM>}.
//
//	POST /exchange/dh
//	    Body {"key": <PEM>, "signature": <base64>} with the peer's ephemeral
//	    DH key. Returns the service ephemeral key and signature in the same
//	    shape.
//
//	GET /challenge
//	    Returns {"iv": <base64>, "ciphertext": <base64>}.
//
//	GET /healthz
//	    Returns {"status": "ok", "phase": <phase>}.
//
//	GET /metrics
//	    Prometheus exposition, when enabled.
//
// Behaviour
//
//   - Every failure is a JSON body {"detail": <message>}. Handshake errors
//     and undecodable bodies are 400; unknown routes 404; wrong methods 405.
//   - An access log records method, path, remote, status, bytes, duration
//     and a request id, which is echoed in the X-Request-Id header.
package server
