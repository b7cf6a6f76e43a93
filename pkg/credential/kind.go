package credential

import (
	"fmt"
	"strings"
)

// Kind enumerates the supported store variants. The set is closed.
type Kind int

const (
	// KindKeePass is a KeePass (KDBX) database file.
	KindKeePass Kind = iota
	// KindKeychain is the operating system keychain.
	KindKeychain
	// KindBitwarden is a Bitwarden vault accessed through the bw CLI.
	KindBitwarden
)

// Reserved store locations selecting a non-file backend.
const (
	LocationKeychain  = "keychain"
	LocationBitwarden = "bitwarden"
)

// Kinds lists every Kind in declaration order.
var Kinds = []Kind{KindKeePass, KindKeychain, KindBitwarden}

// SelectKind maps a store location to a Kind.
//
// The reserved keywords "keychain" and "bitwarden" are matched exactly,
// ignoring case. Any other string is treated as a path to a KeePass
// database; whether it opens is decided later, when the backend is built.
func SelectKind(location string) Kind {
	switch strings.ToLower(location) {
	case LocationKeychain:
		return KindKeychain
	case LocationBitwarden:
		return KindBitwarden
	default:
		return KindKeePass
	}
}

func (k Kind) String() string {
	switch k {
	case KindKeePass:
		return "keepass"
	case KindKeychain:
		return "keychain"
	case KindBitwarden:
		return "bitwarden"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}
