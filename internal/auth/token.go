package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fivetwenty-io/ghclient/pkg/gh"
	"golang.org/x/term"
)

// Static errors for err113 compliance.
var (
	ErrNotATerminal = errors.New("stdin is not a terminal")
)

// Source yields an access token. An empty token with a nil error means the
// source has nothing to offer and the next one is tried.
type Source interface {
	Name() string
	Token(ctx context.Context) (string, error)
}

// TokenPersister saves a token entered interactively.
type TokenPersister interface {
	SaveToken(token string) error
}

// Resolved is the credential picked by Resolve and where it came from.
type Resolved struct {
	Credential gh.Credential
	Source     string
}

// Resolve returns the first non-empty token offered by sources, in order.
func Resolve(ctx context.Context, sources ...Source) (*Resolved, error) {
	for _, source := range sources {
		token, err := source.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading token from %s: %w", source.Name(), err)
		}

		token = strings.TrimSpace(token)
		if token != "" {
			return &Resolved{Credential: gh.Credential(token), Source: source.Name()}, nil
		}
	}

	return nil, gh.ErrTokenRequired
}

// StaticSource offers a fixed value, such as a flag or a config file entry.
type StaticSource struct {
	Label string
	Value string
}

func (s StaticSource) Name() string {
	return s.Label
}

func (s StaticSource) Token(ctx context.Context) (string, error) {
	return s.Value, nil
}

// EnvSource offers the first set variable out of Vars.
type EnvSource struct {
	Vars   []string
	Lookup func(key string) (string, bool)
}

// NewEnvSource reads from the process environment.
func NewEnvSource(vars ...string) EnvSource {
	return EnvSource{Vars: vars, Lookup: os.LookupEnv}
}

func (s EnvSource) Name() string {
	return "environment (" + strings.Join(s.Vars, ", ") + ")"
}

func (s EnvSource) Token(ctx context.Context) (string, error) {
	lookup := s.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	for _, key := range s.Vars {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			return value, nil
		}
	}

	return "", nil
}

// PromptSource asks for a token on the terminal without echoing it. It
// offers nothing when stdin is not a terminal.
type PromptSource struct {
	FD           int
	Out          io.Writer
	Persister    TokenPersister
	IsTerminal   func(fd int) bool
	ReadPassword func(fd int) ([]byte, error)
}

// NewPromptSource prompts on stdin and writes the prompt to stderr.
func NewPromptSource(persister TokenPersister) *PromptSource {
	return &PromptSource{
		FD:           int(os.Stdin.Fd()), // #nosec G115 -- file descriptors fit in int
		Out:          os.Stderr,
		Persister:    persister,
		IsTerminal:   term.IsTerminal,
		ReadPassword: term.ReadPassword,
	}
}

func (p *PromptSource) Name() string {
	return "prompt"
}

func (p *PromptSource) Token(ctx context.Context) (string, error) {
	if p.IsTerminal == nil || !p.IsTerminal(p.FD) {
		return "", nil
	}

	_, _ = fmt.Fprint(p.Out, "GitHub token: ")

	raw, err := p.ReadPassword(p.FD)

	_, _ = fmt.Fprintln(p.Out)

	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}

	token := strings.TrimSpace(string(raw))

	if token != "" && p.Persister != nil {
		persistErr := p.Persister.SaveToken(token)
		if persistErr != nil {
			// Log error but don't fail the request
			_, _ = fmt.Fprintf(p.Out, "Warning: failed to persist token: %v\n", persistErr)
		}
	}

	return token, nil
}
