package users

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

const (
	separator   = ';'
	numFields   = 2
	colUsername = 0
	colPassword = 1
)

// Credential is one entry of the credential file.
type Credential struct {
	Username string
	Password string
}

// ReadCredentials reads username;password lines. Blank lines are ignored.
func ReadCredentials(r io.Reader) ([]Credential, error) {
	cr := csv.NewReader(r)
	cr.Comma = separator
	cr.FieldsPerRecord = numFields
	cr.LazyQuotes = true

	var creds []Credential
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading credentials: %w", err)
		}
		creds = append(creds, UnmarshalCredential(rec))
	}
	return creds, nil
}

// WriteCredentials writes one username;password line per credential.
func WriteCredentials(w io.Writer, creds []Credential) error {
	cw := csv.NewWriter(w)
	cw.Comma = separator

	for i, c := range creds {
		if err := cw.Write(MarshalCredential(c)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalCredential converts a Credential to a row.
func MarshalCredential(c Credential) []string {
	row := make([]string, numFields)
	row[colUsername] = c.Username
	row[colPassword] = c.Password
	return row
}

// UnmarshalCredential converts a row to a Credential.
func UnmarshalCredential(record []string) Credential {
	return Credential{Username: record[colUsername], Password: record[colPassword]}
}
