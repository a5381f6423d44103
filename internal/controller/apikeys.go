package controller

import (
	"sync"

	"github.com/polidex/cli/internal/api"
)

// KeyReveal holds the plaintext API key returned by creation for the
// duration of the confirmation dialog. The backend never returns the
// full key again; dismissing the dialog discards it irrecoverably.
type KeyReveal struct {
	mu      sync.Mutex
	created *api.CreatedAPIKey
}

// Show retains the freshly created key for display.
func (r *KeyReveal) Show(created *api.CreatedAPIKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = created
}

// Current returns the key being revealed, if the dialog is open.
func (r *KeyReveal) Current() (*api.CreatedAPIKey, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.created == nil {
		return nil, false
	}
	return r.created, true
}

// Dismiss closes the dialog and drops the plaintext key. Only the
// prefix remains visible, via the key listing.
func (r *KeyReveal) Dismiss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.created != nil {
		r.created.Key = ""
		r.created = nil
	}
}
