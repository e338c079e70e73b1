package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Session is everything the client keeps on disk between runs.
type Session struct {
	Token           string `json:"token,omitempty"`
	CurrentDeviceID string `json:"currentDeviceId,omitempty"`
	Theme           string `json:"theme,omitempty"`
}

// LoadSession reads the session file at path. A missing file yields an empty
// session.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

// Save writes the session to path, readable by the owner only.
func (s *Session) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// SignIn records a successful login.
func (s *Session) SignIn(res *LoginResult) {
	s.Token = res.Token
	s.CurrentDeviceID = res.CurrentDeviceID
}

// SignOut forgets the token and device but keeps the theme.
func (s *Session) SignOut() {
	s.Token = ""
	s.CurrentDeviceID = ""
}
