package otp_test

import (
	"testing"
	"time"

	potp "github.com/pquerna/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/kpasscli/internal/otp"
)

// base32 of the RFC 6238 SHA1 seed "12345678901234567890".
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestParse(t *testing.T) {
	t.Parallel()

	key, err := otp.Parse("otpauth://totp/Example:alice@example.com?secret=JBSW%20Y3DP%20EHPK%203PXP%3D%3D&issuer=Example&digits=8&period=60&algorithm=SHA256")
	require.NoError(t, err)

	assert.Equal(t, "Example", key.Issuer)
	assert.Equal(t, "alice@example.com", key.Account)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", key.Secret)
	assert.Equal(t, uint(60), key.Period)
	assert.Equal(t, potp.DigitsEight, key.Digits)
	assert.Equal(t, potp.AlgorithmSHA256, key.Algorithm)
}

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	key, err := otp.Parse("otpauth://totp/github?secret=JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	assert.Equal(t, uint(30), key.Period)
	assert.Equal(t, potp.DigitsSix, key.Digits)
	assert.Equal(t, potp.AlgorithmSHA1, key.Algorithm)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		uri  string
	}{
		{"http scheme", "http://totp/github?secret=JBSWY3DPEHPK3PXP"},
		{"hotp", "otpauth://hotp/github?secret=JBSWY3DPEHPK3PXP&counter=1"},
		{"missing secret", "otpauth://totp/github?issuer=GitHub"},
		{"only padding", "otpauth://totp/github?secret=%3D%3D"},
		{"bare secret", "JBSWY3DPEHPK3PXP"},
		{"empty", ""},
		{"bad digits", "otpauth://totp/github?secret=JBSWY3DPEHPK3PXP&digits=7"},
		{"bad algorithm", "otpauth://totp/github?secret=JBSWY3DPEHPK3PXP&algorithm=MD5"},
		{"zero period", "otpauth://totp/github?secret=JBSWY3DPEHPK3PXP&period=0"},
		{"bad period", "otpauth://totp/github?secret=JBSWY3DPEHPK3PXP&period=soon"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := otp.Parse(tt.uri)
			assert.ErrorIs(t, err, otp.ErrInvalidTotpConfiguration)
		})
	}
}

func TestKeyCode_RFC6238Vectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		unix int64
		want string
	}{
		{59, "94287082"},
		{1111111109, "07081804"},
		{1234567890, "89005924"},
		{2000000000, "69279037"},
	}

	key, err := otp.Parse("otpauth://totp/rfc?secret=" + rfcSecret + "&digits=8")
	require.NoError(t, err)

	for _, tt := range tests {
		code, err := key.Code(time.Unix(tt.unix, 0).UTC())
		require.NoError(t, err)
		assert.Equal(t, tt.want, code, "t=%d", tt.unix)
	}
}

func TestKeyCode_SixDigitsIsSuffix(t *testing.T) {
	t.Parallel()

	key, err := otp.Parse("otpauth://totp/rfc?secret=" + rfcSecret)
	require.NoError(t, err)

	code, err := key.Code(time.Unix(59, 0))
	require.NoError(t, err)
	assert.Equal(t, "287082", code)
}

func TestParse_SecretMustBeBase32(t *testing.T) {
	t.Parallel()

	for _, uri := range []string{
		"otpauth://totp/x?secret=not-base32!",
		"otpauth://totp/x?secret=1111",
	} {
		_, err := otp.Parse(uri)
		assert.ErrorIs(t, err, otp.ErrInvalidTotpConfiguration, uri)

		_, err = otp.Generate(uri)
		assert.ErrorIs(t, err, otp.ErrInvalidTotpConfiguration, uri)
	}

	key, err := otp.Parse("otpauth://totp/x?secret=jbsw%20y3dp%3D")
	require.NoError(t, err, "lower case, spaces and padding are accepted")
	assert.Equal(t, "JBSWY3DP", key.Secret)
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	code, err := otp.Generate("otpauth://totp/github?secret=JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Regexp(t, `^\d{6}$`, code)

	_, err = otp.Generate("http://example.com")
	assert.ErrorIs(t, err, otp.ErrInvalidTotpConfiguration)
}
