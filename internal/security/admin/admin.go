// Package admin implements securityctl, the operator tool that creates
// accounts directly against the security database.
package admin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/aitooling/internal/security/models"
	"github.com/go-playground/validator/v10"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var ErrPasswordMismatch = errors.New("passwords do not match")

type Registrar interface {
	Register(ctx context.Context, username, password, role string) (*models.User, error)
}

// Prompter reads operator input: plain lines from in, passwords from the
// terminal without echo.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Line prints prompt and returns one trimmed line. EOF after partial input
// returns that input.
func (p *Prompter) Line(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.out, prompt+": "); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompter) Password(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.out, prompt+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// account carries the same rules as the register request of the HTTP API.
type account struct {
	Username string `validate:"required,max=100"`
	Password string `validate:"required,min=6,max=100"`
	Role     string `validate:"max=50"`
}

var accountMessages = map[string]string{
	"Username.required": "username is required",
	"Username.max":      "username must be between 1 and 100 characters",
	"Password.required": "password is required",
	"Password.min":      "password must be at least 6 characters",
	"Password.max":      "password must be at least 6 characters",
	"Role.max":          "role cannot exceed 50 characters",
}

var validate = validator.New()

func validateAccount(username, password, role string) error {
	err := validate.Struct(account{Username: username, Password: password, Role: role})
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := verrs[0]
	if msg, ok := accountMessages[fe.StructField()+"."+fe.Tag()]; ok {
		return errors.New(msg)
	}
	return fmt.Errorf("%s is invalid", fe.Field())
}

// CreateUser registers username with role, asking for the username when it
// is empty and for the password twice.
func CreateUser(ctx context.Context, r Registrar, p *Prompter, username, role string) (*models.User, error) {
	var err error
	if username == "" {
		if username, err = p.Line("Username"); err != nil {
			return nil, err
		}
	}
	if username == "" {
		return nil, errors.New("username is required")
	}

	password, err := p.Password("Password")
	if err != nil {
		return nil, err
	}
	confirm, err := p.Password("Repeat password")
	if err != nil {
		return nil, err
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	if err := validateAccount(username, password, role); err != nil {
		return nil, err
	}

	u, err := r.Register(ctx, username, password, role)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(p.out, "Created user %s (id %d, role %s)\n", u.Username, u.ID, u.Role)
	return u, nil
}
