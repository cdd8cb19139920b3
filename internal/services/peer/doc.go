// Package peer drives the initiator side of the handshake against a remote
// service through a domain.ChannelClient. It backs the "handshake" command.
package peer
