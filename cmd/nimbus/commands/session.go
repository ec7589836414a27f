package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kaigouthro/nimbus/internal/constants"
	"github.com/kaigouthro/nimbus/pkg/openstack"
	"github.com/kaigouthro/nimbus/pkg/osclient"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// EnvKeyReplacer maps flag names to NIMBUS_* variables, e.g. nats-url to
// NIMBUS_NATS_URL.
var EnvKeyReplacer = strings.NewReplacer("-", "_")

type keystoneRef struct {
	ID   string `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// sessionFile is the session export written by the dashboard. JSON exports
// are read through the YAML decoder.
type sessionFile struct {
	AuthURL        string                   `json:"authUrl"        yaml:"authUrl"`
	AuthToken      string                   `json:"authToken"      yaml:"authToken"`
	ServiceCatalog openstack.ServiceCatalog `json:"serviceCatalog" yaml:"serviceCatalog"`
	Project        *keystoneRef             `json:"project"        yaml:"project"`
	User           *keystoneRef             `json:"user"           yaml:"user"`
}

func readSessionFile(path string) (*sessionFile, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml", ".json":
	default:
		return nil, fmt.Errorf("%w: %s", constants.ErrUnsupportedFile, path)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	var file sessionFile

	err = yaml.Unmarshal(data, &file)
	if err != nil {
		return nil, fmt.Errorf("parsing session file %s: %w", path, err)
	}

	return &file, nil
}

// loadSession builds the per-call session from the session file, with
// --token taking precedence over the stored token.
func loadSession() (*openstack.Session, error) {
	path := viper.GetString("session")
	if path == "" {
		return nil, constants.ErrNoSession
	}

	file, err := readSessionFile(path)
	if err != nil {
		return nil, err
	}

	if len(file.ServiceCatalog) == 0 {
		return nil, constants.ErrEmptyCatalog
	}

	token := viper.GetString("token")
	if token == "" {
		token = file.AuthToken
	}

	if token == "" {
		token, err = promptToken()
		if err != nil {
			return nil, err
		}
	}

	session := &openstack.Session{
		Token:   token,
		Catalog: file.ServiceCatalog,
	}

	if file.Project != nil {
		session.ProjectID = file.Project.ID
	}

	return session, nil
}

func promptToken() (string, error) {
	if !isTerminal(os.Stdin) {
		return "", constants.ErrNoToken
	}

	_, _ = fmt.Fprint(os.Stderr, "Auth token: ")

	tokenBytes, err := term.ReadPassword(int(os.Stdin.Fd()))

	_, _ = fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}

	token := strings.TrimSpace(string(tokenBytes))
	if token == "" {
		return "", constants.ErrNoToken
	}

	return token, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// gateway bundles what every command needs.
type gateway struct {
	client  openstack.Client
	session *openstack.Session
	logger  openstack.Logger
}

func newGateway() (*gateway, error) {
	session, err := loadSession()
	if err != nil {
		return nil, err
	}

	logger := newLogger(os.Stderr, viper.GetBool("verbose"))

	client, err := osclient.New(&openstack.Config{
		Interface:        viper.GetString("interface"),
		Region:           viper.GetString("region"),
		HTTPTimeout:      viper.GetDuration("timeout"),
		Debug:            viper.GetBool("verbose"),
		Logger:           logger,
		EnrichmentPolicy: openstack.EnrichmentPolicy(viper.GetString("enrichment-policy")),
	})
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	return &gateway{client: client, session: session, logger: logger}, nil
}
