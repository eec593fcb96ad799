package config

import (
	"errors"
	"os"
	"strings"
)

// ErrMissingCredentials is returned by LoadDeployConfig when the access token
// or organization id is not set.
var ErrMissingCredentials = errors.New("DEPLOY_ACCESS_TOKEN and DEPLOY_ORG_ID must be set")

// DeployConfig holds the settings of the deploy CLI.
type DeployConfig struct {
	AccessToken string // bearer token for the hosting API
	OrgID       string // organization owning the project
	ProjectName string // optional: reuse an existing project with this name
	APIURL      string // hosting API base URL, without trailing slash
	EntryPoint  string // file the hosting runtime starts
	DistDir     string // directory holding the built front end
	Domain      string // suffix of the generated live URL
	AMQPURL     string // broker for the deployment.created event; empty disables it
}

// LoadDeployConfig reads the deploy CLI configuration.  It returns
// ErrMissingCredentials together with the partially filled config when the
// credentials are absent so the caller can print usage guidance.
func LoadDeployConfig() (DeployConfig, error) {
	cfg := DeployConfig{
		AccessToken: os.Getenv("DEPLOY_ACCESS_TOKEN"),
		OrgID:       os.Getenv("DEPLOY_ORG_ID"),
		ProjectName: os.Getenv("PROJECT_NAME"),
		APIURL:      strings.TrimRight(envStr("DEPLOY_API_URL", "https://api.deno.com/v1"), "/"),
		EntryPoint:  envStr("DEPLOY_ENTRYPOINT", "server.ts"),
		DistDir:     envStr("DEPLOY_DIST_DIR", "dist"),
		Domain:      envStr("DEPLOY_DOMAIN", "deno.dev"),
	}
	if os.Getenv("RABBITMQ_URL") != "" || os.Getenv("AMQP_URL") != "" {
		cfg.AMQPURL = AMQPURL()
	}
	if cfg.AccessToken == "" || cfg.OrgID == "" {
		return cfg, ErrMissingCredentials
	}
	return cfg, nil
}
