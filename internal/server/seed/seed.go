// Package seed resolves the credentials for the single admin account and
// writes them to the database, optionally with the default categories. The
// web surface never creates admins.
package seed

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/soncatalog/internal/server/models"
	"github.com/dmitrijs2005/soncatalog/internal/shared"
	"golang.org/x/term"
)

const (
	EnvEmail    = "ADMIN_SEED_EMAIL"
	EnvPassword = "ADMIN_SEED_PASSWORD"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// ErrPasswordMismatch is returned when the confirmation prompt differs.
var ErrPasswordMismatch = errors.New("passwords do not match")

// Credentials of the admin to create or reset. Wipe the password when done.
type Credentials struct {
	Email    string
	Password []byte
}

func (c *Credentials) Wipe() {
	shared.WipeByteArray(c.Password)
}

// Resolve takes the email from flagEmail, then ADMIN_SEED_EMAIL, then a
// prompt; the password from ADMIN_SEED_PASSWORD or two no-echo prompts.
func Resolve(flagEmail string, getenv func(string) string, in *bufio.Reader, w io.Writer) (*Credentials, error) {
	email := strings.TrimSpace(flagEmail)
	if email == "" {
		email = strings.TrimSpace(getenv(EnvEmail))
	}
	if email == "" {
		var err error
		if email, err = readLine(in, w, "Admin email"); err != nil {
			return nil, err
		}
	}

	if pw := getenv(EnvPassword); pw != "" {
		return &Credentials{Email: email, Password: []byte(pw)}, nil
	}

	pw, err := promptPassword(w, "Enter password: ")
	if err != nil {
		return nil, err
	}
	confirm, err := promptPassword(w, "Repeat password: ")
	if err != nil {
		shared.WipeByteArray(pw)
		return nil, err
	}
	defer shared.WipeByteArray(confirm)

	if !bytes.Equal(pw, confirm) {
		shared.WipeByteArray(pw)
		return nil, ErrPasswordMismatch
	}
	return &Credentials{Email: email, Password: pw}, nil
}

func readLine(in *bufio.Reader, w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// Seeder is the part of services.AuthService used here.
type Seeder interface {
	SeedAdmin(ctx context.Context, email string, password []byte) (*models.Admin, error)
}

// Run stores the credentials and wipes the password.
func Run(ctx context.Context, s Seeder, c *Credentials) (*models.Admin, error) {
	defer c.Wipe()
	return s.SeedAdmin(ctx, c.Email, c.Password)
}
