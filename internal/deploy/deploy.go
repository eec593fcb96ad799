package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/yahyabedirhan/tutorial-vite-deno/internal/config"
	"github.com/yahyabedirhan/tutorial-vite-deno/internal/queue"
)

// Result describes a finished deployment.
type Result struct {
	Project    Project
	Deployment Deployment
	URL        string
	AssetCount int
}

// Deployer runs one deployment.  Out receives progress messages.  Publish,
// when set, announces the deployment; its failure is reported but never
// fails the run.
type Deployer struct {
	Client  *Client
	Cfg     config.DeployConfig
	Out     io.Writer
	Publish func(ctx context.Context, ev queue.DeploymentCreatedEvent) error

	now func() time.Time
}

func NewDeployer(cfg config.DeployConfig, out io.Writer) *Deployer {
	d := &Deployer{
		Client: NewClient(cfg.APIURL, cfg.AccessToken),
		Cfg:    cfg,
		Out:    out,
		now:    time.Now,
	}
	if cfg.AMQPURL != "" {
		d.Publish = func(ctx context.Context, ev queue.DeploymentCreatedEvent) error {
			return queue.PublishDeploymentCreated(ctx, cfg.AMQPURL, ev)
		}
	}
	return d
}

// LiveURL is the address the provider serves a deployment at.
func LiveURL(projectName, deploymentID, domain string) string {
	return fmt.Sprintf("https://%s-%s.%s", projectName, deploymentID, domain)
}

// Run collects the assets, finds or creates the project and uploads the
// deployment.  Every failure ends the run; nothing is retried.
func (d *Deployer) Run(ctx context.Context) (Result, error) {
	d.printf("Reading server entry point and built assets...\n")
	assets, err := CollectAssets(d.Cfg.EntryPoint, d.Cfg.DistDir, func(format string, args ...any) {
		d.printf("  warning: "+format+"\n", args...)
	})
	if err != nil {
		return Result{}, err
	}
	for _, name := range slices.Sorted(maps.Keys(assets)) {
		d.printf("  added %s\n", name)
	}

	project, err := d.project(ctx)
	if err != nil {
		return Result{}, err
	}

	d.printf("\nDeploying application...\n")
	dep, err := d.Client.CreateDeployment(ctx, project.ID, DeploymentRequest{
		EntryPointURL: d.Cfg.EntryPoint,
		Assets:        assets,
	})
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Project:    project,
		Deployment: dep,
		URL:        LiveURL(project.Name, dep.ID, d.Cfg.Domain),
		AssetCount: len(assets),
	}
	d.announce(ctx, res)
	return res, nil
}

// project returns the configured project when it exists and creates a new
// one otherwise.  A failing lookup falls through to creation.
func (d *Deployer) project(ctx context.Context) (Project, error) {
	if name := d.Cfg.ProjectName; name != "" {
		d.printf("\nLooking for existing project: %s...\n", name)
		p, found, err := d.Client.FindProject(ctx, d.Cfg.OrgID, name)
		switch {
		case err != nil:
			d.printf("  could not list projects: %v\n", err)
		case found:
			d.printf("  found existing project: %s (%s)\n", p.Name, p.ID)
			return p, nil
		default:
			d.printf("  project %q not found, creating new one...\n", name)
		}
	}

	d.printf("\nCreating new project...\n")
	p, err := d.Client.CreateProject(ctx, d.Cfg.OrgID, d.Cfg.ProjectName)
	if err != nil {
		return Project{}, err
	}
	d.printf("  project created: %s (%s)\n", p.Name, p.ID)
	return p, nil
}

func (d *Deployer) announce(ctx context.Context, res Result) {
	if d.Publish == nil {
		return
	}
	ev := queue.DeploymentCreatedEvent{
		DeploymentID: res.Deployment.ID,
		ProjectID:    res.Project.ID,
		ProjectName:  res.Project.Name,
		URL:          res.URL,
		AssetCount:   res.AssetCount,
		DeployedAt:   d.now().UTC().Format(time.RFC3339),
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := d.Publish(ctx, ev); err != nil {
		d.printf("  warning: could not publish deployment event: %v\n", err)
	}
}

func (d *Deployer) printf(format string, args ...any) {
	if d.Out != nil {
		fmt.Fprintf(d.Out, format, args...)
	}
}

// AsAPIError returns the provider response carried by err, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
