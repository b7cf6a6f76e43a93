// Package credential defines the backend-agnostic credential model used by
// kpasscli.
//
// Every supported store (a KeePass database, the OS keychain, a Bitwarden
// vault) is projected into the same Entry shape, searched with the same
// MatchPolicy semantics, and read through the same Backend interface. The
// package is read-only by construction: nothing here writes a secret back to
// its store.
//
// # Entries
//
// An Entry is a snapshot of one credential record. It carries the five
// reserved attributes (title, username, password, url, notes), an open map of
// custom fields, and the path at which the record was found:
//
//	entry := credential.NewEntry("GitHub", "/Work/GitHub")
//	entry.Username = credential.String("octocat")
//	entry.CustomFields["otp"] = "otpauth://totp/GitHub?secret=JBSWY3DPEHPK3PXP"
//
//	value, ok := entry.Field("USERNAME") // "octocat", true
//
// Reserved names are matched case-insensitively and shadow custom fields of
// the same name. Any other name is looked up in CustomFields verbatim.
//
// # Matching
//
// Matches combines the two MatchPolicy flags into the four comparison rules
// shared by every backend:
//
//	policy := credential.MatchPolicy{CaseSensitive: false, Exact: false}
//	credential.Matches("My GitHub Token", "github", policy) // true
//
// # Backends
//
// SelectKind maps a store location string to one of the three Kind values.
// The concrete Backend for a Kind is built by internal/backends; callers then
// use Search and Field:
//
//	entries, err := backend.Search(ctx, "github", policy)
//	if err != nil {
//	    return err
//	}
//	value, err := backend.Field(entries[0], "password")
//
// # Error Handling
//
// Backends and callers use the error types defined in this package:
//   - StoreOpenError when a store cannot be opened or authenticated
//   - NoItemsFoundError when a query matched nothing
//   - AmbiguousMatchError when a query matched more than one entry
//   - FieldNotFoundError when the requested field has no value
package credential
