// Package app wires application dependencies for the CLI.
//
// It loads Config (YAML file plus environment overrides), builds the logrus
// logger, provisions the service identity and assembles the handshake
// service, metrics and HTTP server into a Wire. App.Run serves it until the
// context is cancelled.
package app
