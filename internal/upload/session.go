package upload

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// DriveScope grants access to files created by the integration only.
const DriveScope = "https://www.googleapis.com/auth/drive.file"

// DefaultSessionPath is where the session is stored when no path is given.
const DefaultSessionPath = "google-session.json"

var (
	// ErrInvalidSecret is returned when the client secret file cannot be used.
	ErrInvalidSecret = errors.New("invalid client secret")
	// ErrNoCode is returned when no authorization code was entered.
	ErrNoCode = errors.New("no authorization code entered")
)

// Session is the persisted authorization of the upload integration.
type Session struct {
	ClientID     string        `json:"client_id"`
	ClientSecret string        `json:"client_secret"`
	TokenURL     string        `json:"token_uri,omitempty"`
	Token        *oauth2.Token `json:"token"`
}

// clientSecret mirrors the client secret file downloaded from the Google
// API console.
type clientSecret struct {
	Installed *secretFields `json:"installed"`
	Web       *secretFields `json:"web"`
}

type secretFields struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	AuthURI      string   `json:"auth_uri"`
	TokenURI     string   `json:"token_uri"`
	RedirectURIs []string `json:"redirect_uris"`
}

// Setup drives the interactive authorization flow.
type Setup struct {
	// In supplies the authorization code. Defaults to os.Stdin.
	In io.Reader
	// Out receives the consent instructions. Defaults to os.Stdout.
	Out io.Writer
	// HTTPClient is used for the token exchange when set.
	HTTPClient *http.Client
}

// Prepare returns the session stored at sessionPath, or authorizes a new one
// from the client secret at secretPath and stores it.
func (s *Setup) Prepare(ctx context.Context, secretPath, sessionPath string) (*Session, error) {
	if sessionPath == "" {
		sessionPath = DefaultSessionPath
	}

	if session, err := ReadSession(sessionPath); err == nil {
		return session, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	conf, err := loadClientSecret(secretPath)
	if err != nil {
		return nil, err
	}

	session, err := s.authorize(ctx, conf)
	if err != nil {
		return nil, err
	}

	if err := WriteSession(sessionPath, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Setup) authorize(ctx context.Context, conf *oauth2.Config) (*Session, error) {
	in, out := s.In, s.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	url := conf.AuthCodeURL(uuid.NewString(), oauth2.AccessTypeOffline)
	_, _ = fmt.Fprintf(out, "Go to the following link in your browser:\n\n%s\n\nEnter verification code: ", url)

	code, err := bufio.NewReader(in).ReadString('\n')
	code = strings.TrimSpace(code)
	if code == "" {
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read authorization code: %w", err)
		}
		return nil, ErrNoCode
	}

	if s.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.HTTPClient)
	}
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	return &Session{
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		TokenURL:     conf.Endpoint.TokenURL,
		Token:        token,
	}, nil
}

func loadClientSecret(path string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read client secret: %w", err)
	}

	var secret clientSecret
	if err := json.Unmarshal(data, &secret); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}

	fields := secret.Installed
	if fields == nil {
		fields = secret.Web
	}
	if fields == nil || fields.ClientID == "" || fields.AuthURI == "" || fields.TokenURI == "" {
		return nil, fmt.Errorf("%w: %s lacks client_id, auth_uri or token_uri", ErrInvalidSecret, path)
	}

	conf := &oauth2.Config{
		ClientID:     fields.ClientID,
		ClientSecret: fields.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   fields.AuthURI,
			TokenURL:  fields.TokenURI,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{DriveScope},
	}
	if len(fields.RedirectURIs) > 0 {
		conf.RedirectURL = fields.RedirectURIs[0]
	}
	return conf, nil
}

// ReadSession loads a stored session. A missing file yields an error
// matching os.ErrNotExist.
func ReadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", path, err)
	}
	if session.Token == nil || (session.Token.AccessToken == "" && session.Token.RefreshToken == "") {
		return nil, fmt.Errorf("session %s holds no token", path)
	}
	return &session, nil
}

// WriteSession stores a session readable by the owner only.
func WriteSession(path string, session *Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session %s: %w", path, err)
	}
	return nil
}
