// Package secret supplies the model-service credential.
//
// The credential is resolved once, when the Provider is built, from the
// process environment and then from an optional dotenv file. Values already
// present in the environment win over the file. Absence is a normal outcome
// reported as errors.ErrCredentialMissing; callers reject the request and
// carry on.
package secret

import (
	"fmt"
	"os"
	"strings"

	"github.com/subosito/gotenv"

	"github.com/Rhishavhere/codeblink/internal/errors"
)

// Credential is an opaque API token. It is never persisted and never logged.
type Credential string

// String hides the token so it cannot leak through %v formatting.
func (c Credential) String() string {
	if c == "" {
		return ""
	}
	return "[redacted]"
}

// Reveal returns the raw token for the outbound request.
func (c Credential) Reveal() string {
	return string(c)
}

// Source describes where the credential was found.
type Source string

const (
	SourceNone    Source = ""
	SourceEnv     Source = "environment"
	SourceEnvFile Source = "env_file"
)

// Provider holds the credential read at startup.
type Provider struct {
	key    string
	cred   Credential
	source Source
}

// Options configures NewProvider.
type Options struct {
	// Key is the variable name, e.g. GEMINI_API_KEY.
	Key string
	// EnvFile is an optional dotenv file. A missing file is ignored.
	EnvFile string
	// LookupEnv replaces os.LookupEnv (tests).
	LookupEnv func(string) (string, bool)
}

// NewProvider resolves the credential once. It fails only when EnvFile exists
// but cannot be parsed; an absent credential is not an error here.
func NewProvider(opts Options) (*Provider, error) {
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	p := &Provider{key: opts.Key}

	if v, ok := lookup(opts.Key); ok && strings.TrimSpace(v) != "" {
		p.cred = Credential(strings.TrimSpace(v))
		p.source = SourceEnv
		return p, nil
	}

	if opts.EnvFile == "" {
		return p, nil
	}
	env, err := readEnvFile(opts.EnvFile)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(env[opts.Key]); v != "" {
		p.cred = Credential(v)
		p.source = SourceEnvFile
	}
	return p, nil
}

// Static returns a Provider holding cred. An empty cred behaves as missing.
func Static(cred string) *Provider {
	p := &Provider{cred: Credential(cred)}
	if cred != "" {
		p.source = SourceEnv
	}
	return p
}

func readEnvFile(path string) (gotenv.Env, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return gotenv.Env{}, nil
		}
		return nil, fmt.Errorf("failed to open env file %s: %w", path, err)
	}
	defer f.Close()

	env, err := gotenv.StrictParse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse env file %s: %w", path, err)
	}
	return env, nil
}

// Credential returns the configured token or errors.ErrCredentialMissing.
func (p *Provider) Credential() (Credential, error) {
	if p == nil || p.cred == "" {
		return "", errors.ErrCredentialMissing
	}
	return p.cred, nil
}

// Source reports where the credential came from; SourceNone when absent.
func (p *Provider) Source() Source {
	if p == nil {
		return SourceNone
	}
	return p.source
}

// Key returns the variable name the provider looked up.
func (p *Provider) Key() string {
	if p == nil {
		return ""
	}
	return p.key
}
