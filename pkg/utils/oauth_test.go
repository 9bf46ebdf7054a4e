package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestMissingScopes(t *testing.T) {
	assert.Empty(t, missingScopes(ScopeGmailSend+" "+ScopeSheets+" "+ScopeStorageReadWrite+" openid"))
	assert.Equal(t, []string{ScopeStorageReadWrite}, missingScopes(ScopeSheets+" "+ScopeGmailSend))
	assert.Len(t, missingScopes(""), 3)
}

func TestTokenFileRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	loaded, err := LoadTokenFromFile("test")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	token := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", Expiry: time.Now().Add(time.Hour).Truncate(time.Second)}
	require.NoError(t, SaveTokenToFile("test", token))

	loaded, err = LoadTokenFromFile("test")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "refresh", loaded.RefreshToken)

	require.NoError(t, DeleteTokenFile("test"))
	require.NoError(t, DeleteTokenFile("test"))

	loaded, err = LoadTokenFromFile("test")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
