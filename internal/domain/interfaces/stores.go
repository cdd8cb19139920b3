package interfaces

import domaintypes "secretchannel/internal/domain/types"

// IdentityStore persists the service identity encrypted under a passphrase.
type IdentityStore interface {
	SaveIdentity(passphrase string, id domaintypes.Identity) error
	// LoadIdentity returns ok=false when nothing has been saved yet.
	LoadIdentity(passphrase string) (id domaintypes.Identity, ok bool, err error)
}
