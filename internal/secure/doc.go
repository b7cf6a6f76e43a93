// Package secure keeps the database master password out of ordinary Go
// memory between the moment it is read and the moment the database is
// decrypted.
//
// It wraps memguard so that the secret is:
//
//   - Encrypted at rest in memory (XSalsa20Poly1305)
//   - Protected from swapping via mlock
//   - Wiped when the plaintext buffer is destroyed
//
// Typical use:
//
//	buf := secure.NewSecureBufferFromString(password)
//	defer buf.Destroy()
//
//	err := buf.Use(func(plaintext []byte) error {
//	    return openDatabase(string(plaintext))
//	})
//
// If mlock is unavailable memguard falls back to standard allocation; the
// enclave is still encrypted.
//
// It does NOT protect against attackers with access to the running process,
// nor against copies made by libraries the plaintext is handed to.
package secure
