// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (wire/state), the handshake error taxonomy and
// contracts (interfaces) only.
package domain
