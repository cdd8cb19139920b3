// Package commands defines the secretchannel CLI.
//
// Commands
//
//   - serve        Run the handshake service
//   - handshake    Run the peer side against a service and print the challenge
//   - fingerprint  Print the fingerprint of the persisted identity
//   - config       Print the effective configuration
//
// # Implementation
//
// The root command reads the configuration (file, then environment) and
// builds the logger before any subcommand runs. Validation is left to the
// subcommands, since only serve needs a complete configuration.
package commands
