package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/labstack/echo/v4"

	"github.com/yahyabedirhan/tutorial-vite-deno/internal/config"
	"github.com/yahyabedirhan/tutorial-vite-deno/internal/database"
	"github.com/yahyabedirhan/tutorial-vite-deno/internal/handler"
	"github.com/yahyabedirhan/tutorial-vite-deno/internal/middleware"
	"github.com/yahyabedirhan/tutorial-vite-deno/internal/queue"
	"github.com/yahyabedirhan/tutorial-vite-deno/internal/repository"
	"github.com/yahyabedirhan/tutorial-vite-deno/internal/router"
	"github.com/yahyabedirhan/tutorial-vite-deno/internal/service"
	"github.com/yahyabedirhan/tutorial-vite-deno/internal/utils"
	"github.com/yahyabedirhan/tutorial-vite-deno/migrations"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := router.Deps{
		API:    handler.NewAPIHandler(&service.RequestCounter{}),
		Static: handler.NewStaticHandler(cfg.StaticDir),
	}

	if rdb := config.NewRedisClient(config.LoadRedisConfig()); rdb != nil {
		defer rdb.Close()
		deps.APIMiddleware = []echo.MiddlewareFunc{middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)}
		deps.StaticMiddleware = []echo.MiddlewareFunc{middleware.NewRedisCache(config.LoadCacheConfig(), rdb)}
	} else {
		log.Printf("redis unavailable; rate limiting and static caching disabled")
	}

	recorders := []queue.Recorder{queue.LogFile{Path: filepath.Join("logs", "deploy.log")}}
	if cfg.DB.Enabled() {
		db, err := database.Open(cfg.DB)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		if err := migrations.Up(ctx, db); err != nil {
			log.Fatalf("database: %v", err)
		}
		repo := repository.NewDeploymentRepo(db)
		recorders = append(recorders, repo)
		if cfg.AdminJWTSecret != "" {
			deps.Deployments = handler.NewDeploymentHandler(repo)
			deps.AdminMiddleware = []echo.MiddlewareFunc{
				middleware.JWTAuth(cfg.AdminJWTSecret),
				middleware.RequireRole(utils.OperatorRole),
			}
		}
	}

	if cfg.QueueEnabled {
		go func() {
			if err := queue.StartDeploymentConsumer(ctx, cfg.AMQPURL, recorders...); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("deployment-consumer: stopped: %v", err)
			}
		}()
	}

	table := router.Build(deps)
	e := router.NewEcho(table, true)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, static=%s, routes=%d)", addr, cfg.Env, cfg.StaticDir, table.Len())

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
