// Package client provides an HTTP implementation of domain.ChannelClient for
// talking to a running secret channel service.
//
// Each handshake round maps onto one JSON request:
//   - ExchangeIdentity posts the peer identity key to
//     /exchange/identity-dh-params.
//   - ExchangeSignedKey posts the signed ephemeral key to /exchange/dh.
//   - FetchChallenge fetches /challenge.
//
// All requests accept a context for cancellation and deadlines. Non-2xx
// responses come back as *StatusError carrying the service's "detail" message.
package client
