// Package otp turns otpauth:// TOTP URIs stored in credential entries into
// one-time codes.
package otp

import (
	"encoding/base32"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// FieldName is the entry field holding the otpauth URI.
const FieldName = "otp"

// ErrInvalidTotpConfiguration is returned for values that are not a usable
// otpauth://totp URI, including secrets that are not base32.
var ErrInvalidTotpConfiguration = errors.New("invalid TOTP configuration")

// Key is a parsed TOTP configuration.
type Key struct {
	Issuer    string
	Account   string
	Secret    string
	Period    uint
	Digits    otp.Digits
	Algorithm otp.Algorithm
}

// Parse validates an otpauth://totp URI. Spaces and "=" padding are
// stripped from the secret, which must then decode as base32 in either case.
func Parse(uri string) (*Key, error) {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTotpConfiguration, err)
	}
	if u.Scheme != "otpauth" {
		return nil, fmt.Errorf("%w: scheme must be otpauth, got %q", ErrInvalidTotpConfiguration, u.Scheme)
	}
	if u.Host != "totp" {
		return nil, fmt.Errorf("%w: only totp is supported, got %q", ErrInvalidTotpConfiguration, u.Host)
	}

	key, err := otp.NewKeyFromURL(u.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTotpConfiguration, err)
	}

	secret := strings.NewReplacer(" ", "", "=", "").Replace(key.Secret())
	if secret == "" {
		return nil, fmt.Errorf("%w: missing secret", ErrInvalidTotpConfiguration)
	}
	secret = strings.ToUpper(secret)
	if _, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret); err != nil {
		return nil, fmt.Errorf("%w: secret is not base32: %v", ErrInvalidTotpConfiguration, err)
	}

	query := u.Query()
	if d := query.Get("digits"); d != "" && d != "6" && d != "8" {
		return nil, fmt.Errorf("%w: digits must be 6 or 8, got %q", ErrInvalidTotpConfiguration, d)
	}
	if a := query.Get("algorithm"); a != "" {
		switch strings.ToUpper(a) {
		case "SHA1", "SHA256", "SHA512":
		default:
			return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidTotpConfiguration, a)
		}
	}
	if p := query.Get("period"); p != "" {
		if n, err := strconv.ParseUint(p, 10, 32); err != nil || n == 0 {
			return nil, fmt.Errorf("%w: invalid period %q", ErrInvalidTotpConfiguration, p)
		}
	}

	return &Key{
		Issuer:    key.Issuer(),
		Account:   key.AccountName(),
		Secret:    secret,
		Period:    uint(key.Period()),
		Digits:    key.Digits(),
		Algorithm: key.Algorithm(),
	}, nil
}

// Code returns the code valid at t.
func (k *Key) Code(t time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(k.Secret, t, totp.ValidateOpts{
		Period:    k.Period,
		Digits:    k.Digits,
		Algorithm: k.Algorithm,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate TOTP code: %w", err)
	}
	return code, nil
}

// Generate parses uri and returns the code valid now.
func Generate(uri string) (string, error) {
	key, err := Parse(uri)
	if err != nil {
		return "", err
	}
	return key.Code(time.Now())
}
