// Package fakes provides manual fake implementations for testing.
//
// Fakes are test doubles that have working implementations but take shortcuts
// compared to production code. The ones here stand in for a credential store or the OS
// keychain so that backends and the lookup flow can be tested without a
// real vault.
//
// Usage:
//
//	fake := &fakes.FakeKeychainClient{
//	    Secrets: map[string]map[string][]byte{
//	        "myapp": {"alice": []byte("secret123")},
//	    },
//	    Available: true,
//	    Listable:  true,
//	}
//	backend, err := backends.NewKeychainBackendWithClient(backends.KeychainConfig{}, fake, nil)
package fakes
