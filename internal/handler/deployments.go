package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yahyabedirhan/tutorial-vite-deno/internal/model"
)

const (
	defaultDeploymentLimit = 20
	maxDeploymentLimit     = 100
)

// DeploymentLister is the read side of the deployment history store.
type DeploymentLister interface {
	ListRecent(ctx context.Context, limit int) ([]model.Deployment, error)
}

// DeploymentHandler exposes recorded deployments to operators.
type DeploymentHandler struct {
	Repo DeploymentLister
}

func NewDeploymentHandler(repo DeploymentLister) *DeploymentHandler {
	if repo == nil {
		panic("nil repository passed to NewDeploymentHandler")
	}
	return &DeploymentHandler{Repo: repo}
}

// List returns the most recent deployments, newest first.  ?limit=N caps the
// result (1..100, default 20).
func (h *DeploymentHandler) List(c echo.Context) error {
	limit := defaultDeploymentLimit
	if q := c.QueryParam("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = min(n, maxDeploymentLimit)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Repo.ListRecent(ctx, limit)
	if err != nil {
		log.Printf("deployments: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list deployments failed"})
	}
	if items == nil {
		items = []model.Deployment{}
	}
	return c.JSON(http.StatusOK, echo.Map{"deployments": items})
}
