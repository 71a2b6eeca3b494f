package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "micportal", "state.yaml")

	f, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, f.Token())
	assert.Empty(t, f.ChatSessionID())

	require.NoError(t, f.SetToken("tok"))
	require.NoError(t, f.SetChatSessionID("chat-1"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "authToken: tok\nchatSessionId: chat-1\n", string(raw))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "tok", reopened.Token())
	assert.Equal(t, "chat-1", reopened.ChatSessionID())

	require.NoError(t, reopened.Clear())
	again, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, again.Token())
	assert.Equal(t, "chat-1", again.ChatSessionID())
	raw, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "chatSessionId: chat-1\n", string(raw))
}

func TestOpen_Corrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("authToken: [unterminated"), 0o600))

	_, err := Open(path)
	assert.Error(t, err)
}
