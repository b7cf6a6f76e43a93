package credential_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/systmms/kpasscli/pkg/credential"
)

func TestSelectKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		location string
		want     credential.Kind
	}{
		{"keychain", credential.KindKeychain},
		{"KeyChain", credential.KindKeychain},
		{"bitwarden", credential.KindBitwarden},
		{"BITWARDEN", credential.KindBitwarden},
		{"/home/alice/vault.kdbx", credential.KindKeePass},
		{"keychain.kdbx", credential.KindKeePass},
		{" keychain", credential.KindKeePass},
		{"", credential.KindKeePass},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.location, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, credential.SelectKind(tt.location))
		})
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "keepass", credential.KindKeePass.String())
	assert.Equal(t, "keychain", credential.KindKeychain.String())
	assert.Equal(t, "bitwarden", credential.KindBitwarden.String())
	assert.Equal(t, "kind(42)", credential.Kind(42).String())
	assert.Len(t, credential.Kinds, 3)
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	cause := errors.New("invalid credentials")
	openErr := credential.StoreOpenError{Backend: "keepass", Location: "vault.kdbx", Err: cause}
	assert.ErrorIs(t, openErr, cause)
	assert.Contains(t, openErr.Error(), `"vault.kdbx"`)

	ambiguous := credential.AmbiguousMatchError{Query: "github", Paths: []string{"/Work/github", "/Personal/github"}}
	assert.Contains(t, ambiguous.Error(), "/Work/github")
	assert.Contains(t, ambiguous.Error(), "/Personal/github")

	noItems := credential.NoItemsFoundError{Query: "/A/B", Err: cause}
	assert.ErrorIs(t, noItems, cause)
	assert.Equal(t, `no items found for "x"`, credential.NoItemsFoundError{Query: "x"}.Error())
}
