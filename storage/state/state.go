// Package state persists the client side state of the console between runs:
// the bearer token of the logged in user and the chat session id.
package state

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// data is the document stored in the state file.
type data struct {
	AuthToken     string `yaml:"authToken,omitempty"`
	ChatSessionID string `yaml:"chatSessionId,omitempty"`
}

type File struct {
	mu   sync.Mutex
	path string
	data data
}

// Open reads the state file at path. A missing file is an empty state.
func Open(path string) (*File, error) {
	f := &File{path: path}
	b, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return f, nil
	case err != nil:
		return nil, errors.Wrapf(err, "reading state %s", path)
	}
	if err = yaml.Unmarshal(b, &f.data); err != nil {
		return nil, errors.Wrapf(err, "reading state %s", path)
	}
	return f, nil
}

func (f *File) Path() string { return f.path }

func (f *File) get(field *string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *field
}

func (f *File) set(field *string, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	*field = value
	return f.save()
}

func (f *File) save() error {
	b, err := yaml.Marshal(f.data)
	if err != nil {
		return errors.Wrap(err, "encoding state")
	}
	if err = os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.Wrap(err, "creating state dir")
	}
	if err = os.WriteFile(f.path, b, 0o600); err != nil {
		return errors.Wrapf(err, "writing state %s", f.path)
	}
	return errors.Wrap(os.Chmod(f.path, 0o600), "securing state file")
}

func (f *File) Token() string { return f.get(&f.data.AuthToken) }

func (f *File) SetToken(token string) error { return f.set(&f.data.AuthToken, token) }

func (f *File) ChatSessionID() string { return f.get(&f.data.ChatSessionID) }

func (f *File) SetChatSessionID(id string) error { return f.set(&f.data.ChatSessionID, id) }

// Clear forgets the auth token (logout). The chat session survives, as it is not tied to the user.
func (f *File) Clear() error { return f.set(&f.data.AuthToken, "") }
