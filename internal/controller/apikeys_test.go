package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polidex/cli/internal/api"
)

func TestKeyRevealOneTime(t *testing.T) {
	reveal := &KeyReveal{}

	_, open := reveal.Current()
	assert.False(t, open)

	created := &api.CreatedAPIKey{ID: 4, Name: "bot1", SpaceID: 1, Key: "k_secret"}
	reveal.Show(created)

	current, open := reveal.Current()
	require.True(t, open)
	assert.Equal(t, "k_secret", current.Key)

	reveal.Dismiss()

	_, open = reveal.Current()
	assert.False(t, open, "dismissing closes the dialog")
	assert.Empty(t, created.Key, "plaintext key is zeroed, not just dereferenced")
}

func TestKeyRevealDismissIdempotent(t *testing.T) {
	reveal := &KeyReveal{}
	reveal.Dismiss()
	reveal.Show(&api.CreatedAPIKey{Key: "k"})
	reveal.Dismiss()
	reveal.Dismiss()

	_, open := reveal.Current()
	assert.False(t, open)
}
