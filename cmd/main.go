package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	humanize "github.com/dustin/go-humanize"
	"gitlab.com/TitanInd/hashfarm/internal/config"
	"gitlab.com/TitanInd/hashfarm/internal/lib"
	"gitlab.com/TitanInd/hashfarm/internal/miner"
	"go.uber.org/atomic"
)

const fatalExitTimeout = 15 * time.Second

func main() {
	var cfg config.Config
	err := config.LoadConfig(&cfg, &os.Args)
	if err != nil {
		panic(err)
	}

	loggers, err := newLoggers(&cfg)
	if err != nil {
		panic(err)
	}
	log := loggers.App

	defer func() {
		_ = log.Sync()
	}()

	if cfg.Devices.List {
		devices, err := provideDevices(&cfg)
		if err != nil {
			panic(err)
		}
		printDevices(devices)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	fatalErr := atomic.NewError(nil)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-shutdownChan
		log.Warnf("Received signal: %s", s)
		cancel()

		s = <-shutdownChan
		log.Warnf("Received signal: %s. Forcing exit...", s)
		os.Exit(1)
	}()

	onFatal := FatalHandler(func(err error) {
		log.Errorf("fatal error: %s", err)
		fatalErr.Store(err)
		cancel()

		// a hung device may never return from its search
		time.AfterFunc(fatalExitTimeout, func() {
			log.Errorf("shutdown did not complete in %s, forcing exit", fatalExitTimeout)
			_ = log.Sync()
			os.Exit(1)
		})
	})

	app, err := InitializeApp(&cfg, loggers, onFatal)
	if err != nil {
		panic(err)
	}

	log.Infof("hashfarm %s, config: %+v", config.BuildVersion, cfg.GetSanitized())

	err = app.Run(ctx)
	log.Infof("App exited due to %s", err)

	if fatalErr.Load() != nil {
		_ = log.Sync()
		os.Exit(1)
	}
}

func newLoggers(cfg *config.Config) (Loggers, error) {
	newLogger := func(level string) (*lib.Logger, error) {
		return lib.NewLogger(level, cfg.Log.Color, cfg.Log.IsProd, cfg.Log.JSON, cfg.Log.FilePath)
	}

	app, err := newLogger(cfg.Log.LevelApp)
	if err != nil {
		return Loggers{}, err
	}
	farmLog, err := newLogger(cfg.Log.LevelFarm)
	if err != nil {
		return Loggers{}, err
	}
	minerLog, err := newLogger(cfg.Log.LevelMiner)
	if err != nil {
		return Loggers{}, err
	}
	poolLog, err := newLogger(cfg.Log.LevelPool)
	if err != nil {
		return Loggers{}, err
	}
	apiLog, err := newLogger(cfg.Log.LevelAPI)
	if err != nil {
		return Loggers{}, err
	}

	return Loggers{
		App:   app,
		Farm:  farmLog.Named("FARM"),
		Miner: minerLog.Named("MINER"),
		Pool:  poolLog.Named("SIM"),
		API:   apiLog.Named("HTTP"),
	}, nil
}

func printDevices(devices map[string]miner.DeviceDescriptor) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tType\tSubscription\tMemory\tName")
	for _, id := range sortedIDs(devices) {
		d := devices[id]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.UniqueID, d.Type, d.Subscription, humanize.IBytes(d.TotalMemory), d.BoardName)
	}
	_ = w.Flush()
}
