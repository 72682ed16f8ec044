//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"gitlab.com/TitanInd/hashfarm/internal/config"
)

func InitializeApp(cfg *config.Config, loggers Loggers, onFatal FatalHandler) (*App, error) {
	wire.Build(
		provideMode,
		provideDevices,
		provideVerifier,
		provideMonitors,
		provideBackendFactory,
		provideSettings,
		provideFarm,
		provideSimulation,
		provideRegistry,
		provideHTTPHandler,
		provideWebAddress,
		NewApp,
	)
	return nil, nil
}
