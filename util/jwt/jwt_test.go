package jwt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tok, err := Issue("secret", Claims{UserID: 7, Email: "a@b.c", Role: "librarian"}, 1)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	got, err := ParseAuth("Bearer "+tok, "secret")
	require.NoError(t, err)
	require.Equal(t, int64(7), got.UserID)
	require.Equal(t, "a@b.c", got.Email)
	require.Equal(t, "librarian", got.Role)
}

func TestParse_BareToken(t *testing.T) {
	tok, err := Issue("secret", Claims{UserID: 1}, 1)
	require.NoError(t, err)

	got, err := ParseAuth(tok, "secret")
	require.NoError(t, err)
	require.Equal(t, int64(1), got.UserID)
}

func TestParse_WrongSecret(t *testing.T) {
	tok, err := Issue("secret", Claims{UserID: 7}, 1)
	require.NoError(t, err)

	_, err = ParseAuth("Bearer "+tok, "other")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestParse_Expired(t *testing.T) {
	tok, err := Issue("secret", Claims{UserID: 7}, -1)
	require.NoError(t, err)

	_, err = ParseAuth("Bearer "+tok, "secret")
	require.ErrorIs(t, err, ErrExpired)
}

func TestParse_Empty(t *testing.T) {
	_, err := ParseAuth("", "secret")
	require.ErrorIs(t, err, ErrInvalid)

	_, err = ParseAuth("Bearer   ", "secret")
	require.ErrorIs(t, err, ErrInvalid)
}
