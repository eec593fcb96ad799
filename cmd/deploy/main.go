// Command deploy uploads the built front end and the server entry point to
// the hosting provider and prints the live URL.
//
//	deploy              run a deployment
//	deploy token        print an operator token for GET /api/deployments
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yahyabedirhan/tutorial-vite-deno/internal/config"
	"github.com/yahyabedirhan/tutorial-vite-deno/internal/deploy"
	"github.com/yahyabedirhan/tutorial-vite-deno/internal/utils"
)

const usage = `Error: DEPLOY_ACCESS_TOKEN and DEPLOY_ORG_ID must be set

Option 1: Create a .env file in this directory:
  DEPLOY_ACCESS_TOKEN=your-token
  DEPLOY_ORG_ID=your-org-id

Option 2: Export them in your terminal:
  export DEPLOY_ACCESS_TOKEN='your-token'
  export DEPLOY_ORG_ID='your-org-id'

For CI, set these as repository secrets.
`

func main() {
	config.LoadDotEnv()

	if len(os.Args) > 1 && os.Args[1] == "token" {
		os.Exit(runToken(os.Args[2:]))
	}
	os.Exit(runDeploy())
}

func runDeploy() int {
	cfg, err := config.LoadDeployConfig()

	if _, statErr := os.Stat(cfg.EntryPoint); statErr != nil {
		fmt.Fprintf(os.Stderr, "Error: must run this command from the directory containing %s\n", cfg.EntryPoint)
		return 1
	}
	if errors.Is(err, config.ErrMissingCredentials) {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Starting deployment...")
	res, err := deploy.NewDeployer(cfg, os.Stdout).Run(ctx)
	if err != nil {
		switch {
		case errors.Is(err, deploy.ErrBuildMissing):
			fmt.Fprintf(os.Stderr, "Error: %v\nRun the front-end build first.\n", err)
		default:
			if apiErr, ok := deploy.AsAPIError(err); ok {
				fmt.Fprintf(os.Stderr, "Failed to %s (HTTP %d):\n%s\n", apiErr.Op, apiErr.Status, apiErr.PrettyBody())
			} else {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
		return 1
	}

	fmt.Println("\nDeployment successful!")
	fmt.Printf("Your app is live at:\n   %s\n", res.URL)
	fmt.Printf("API endpoint:\n   %s/api/hello\n", res.URL)
	return 0
}

func runToken(args []string) int {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := fs.String("subject", "operator", "token subject")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	tok, err := utils.NewOperatorToken(os.Getenv("ADMIN_JWT_SECRET"), *subject, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot issue token (is ADMIN_JWT_SECRET set?): %v\n", err)
		return 1
	}
	fmt.Println(tok.Token)
	fmt.Fprintf(os.Stderr, "expires %s\n", tok.Exp.Format(time.RFC3339))
	return 0
}
