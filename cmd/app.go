package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gitlab.com/TitanInd/hashfarm/internal/farm"
	"gitlab.com/TitanInd/hashfarm/internal/interfaces"
	"gitlab.com/TitanInd/hashfarm/internal/pool/simulate"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type Loggers struct {
	App   interfaces.ILogger
	Farm  interfaces.ILogger
	Miner interfaces.ILogger
	Pool  interfaces.ILogger
	API   interfaces.ILogger
}

type FatalHandler func(err error)

type App struct {
	farm    *farm.Farm
	sim     *simulate.Client
	handler *gin.Engine
	address string
	log     interfaces.ILogger
}

func NewApp(f *farm.Farm, sim *simulate.Client, handler *gin.Engine, address WebAddress, loggers Loggers) *App {
	a := &App{
		farm:    f,
		sim:     sim,
		handler: handler,
		address: string(address),
		log:     loggers.App,
	}
	f.OnMinerRestart(func() {
		a.log.Warn("restarting devices")
		f.Stop()
		f.Start()
	})
	return a
}

func (a *App) Run(ctx context.Context) error {
	if !a.farm.Start() {
		return errors.New("no device could be started")
	}

	g, ctx := errgroup.WithContext(ctx)

	runnables := []interfaces.Runnable{a.farm}
	if a.sim != nil {
		runnables = append(runnables, a.sim)
	} else {
		a.log.Warn("no pool configured, devices stay idle until work arrives")
	}
	for _, r := range runnables {
		r := r
		g.Go(func() error {
			return r.Run(ctx)
		})
	}

	if a.address != "" {
		g.Go(func() error {
			return a.serveHTTP(ctx)
		})
	}

	return g.Wait()
}

func (a *App) serveHTTP(ctx context.Context) error {
	srv := &http.Server{
		Addr:    a.address,
		Handler: a.handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.log.Infof("http server is listening: %s", a.address)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return ctx.Err()
	}
	return err
}
