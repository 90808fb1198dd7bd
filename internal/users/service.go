// Package users keeps the credential file that gates access to ledgers.
// Passwords are stored as entered.
package users

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/daybook-dev/daybook/internal/atomicfile"
)

// FileName is the credential file inside the daybook home.
const FileName = "users.txt"

var (
	// ErrUserExists is returned when registering a taken name.
	ErrUserExists = errors.New("user already exists")
	// ErrUnknownUser is returned for names that are not registered.
	ErrUnknownUser = errors.New("unknown user")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Service provides in-memory lookup over the credential file.
type Service struct {
	creds  []Credential
	byName map[string]int
}

// NewService creates a Service from a slice of credentials. Later entries
// for the same name replace earlier ones.
func NewService(creds []Credential) *Service {
	s := &Service{byName: make(map[string]int, len(creds))}
	for _, c := range creds {
		if i, ok := s.byName[c.Username]; ok {
			s.creds[i] = c
			continue
		}
		s.byName[c.Username] = len(s.creds)
		s.creds = append(s.creds, c)
	}
	return s
}

// Load reads the credential file from a daybook home. A missing file yields
// an empty Service.
func Load(home string) (*Service, error) {
	f, err := os.Open(Path(home))
	if errors.Is(err, fs.ErrNotExist) {
		return NewService(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening credentials: %w", err)
	}
	defer f.Close()

	creds, err := ReadCredentials(f)
	if err != nil {
		return nil, err
	}
	return NewService(creds), nil
}

// Path returns the credential file location in home.
func Path(home string) string {
	return filepath.Join(home, FileName)
}

// Save rewrites the credential file.
func (s *Service) Save(home string) error {
	err := atomicfile.Write(Path(home), 0o600, func(w io.Writer) error {
		return WriteCredentials(w, s.creds)
	})
	if err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	return nil
}

// Names returns registered user names in registration order.
func (s *Service) Names() []string {
	out := make([]string, len(s.creds))
	for i, c := range s.creds {
		out[i] = c.Username
	}
	return out
}

// Exists reports whether name is registered.
func (s *Service) Exists(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Register adds a user.
func (s *Service) Register(name, password string) error {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}
	if s.Exists(name) {
		return fmt.Errorf("%w: %s", ErrUserExists, name)
	}
	s.byName[name] = len(s.creds)
	s.creds = append(s.creds, Credential{Username: name, Password: password})
	return nil
}

// Authenticate checks a name/password pair.
func (s *Service) Authenticate(name, password string) error {
	i, ok := s.byName[strings.TrimSpace(name)]
	if !ok {
		return ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(s.creds[i].Password), []byte(password)) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

// ChangePassword replaces the password of a registered user.
func (s *Service) ChangePassword(name, password string) error {
	i, ok := s.byName[strings.TrimSpace(name)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUser, name)
	}
	if err := validatePassword(password); err != nil {
		return err
	}
	s.creds[i].Password = password
	return nil
}

// ValidateName rejects names that cannot be stored in the credential file or
// used as a ledger directory.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errors.New("user name is required")
	case name == "." || name == "..":
		return fmt.Errorf("invalid user name %q", name)
	case strings.ContainsAny(name, ";/\\\"\n\r"):
		return fmt.Errorf("user name %q contains a forbidden character", name)
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return errors.New("password is required")
	}
	if strings.ContainsAny(password, ";\n\r") {
		return errors.New("password must not contain ';' or line breaks")
	}
	return nil
}
