// Package monolith provides the application container and module interface.
package monolith

import (
	"context"

	"github.com/fd1az/solquote/internal/asset"
	"github.com/fd1az/solquote/internal/config"
	"github.com/fd1az/solquote/internal/di"
	"github.com/fd1az/solquote/internal/logger"
)

// Monolith gives modules access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	AssetRegistry() *asset.Registry
	Services() di.ServiceRegistry
}

// Module is a bounded context that registers services and starts up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// Closer is implemented by modules holding resources released on shutdown.
type Closer interface {
	Close() error
}

type app struct {
	config        *config.Config
	logger        logger.LoggerInterface
	assetRegistry *asset.Registry
	container     di.Container
	modules       []Module
}

// New creates the container and registers the global services every module
// may resolve by name: "config", "logger" and "assetRegistry".
func New(cfg *config.Config, log logger.LoggerInterface) *app {
	assetRegistry := asset.DefaultRegistry()

	container := di.NewContainer()
	container.Register("config", cfg)
	container.Register("logger", log)
	container.Register("assetRegistry", assetRegistry)

	return &app{
		config:        cfg,
		logger:        log,
		assetRegistry: assetRegistry,
		container:     container,
	}
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) AssetRegistry() *asset.Registry {
	return a.assetRegistry
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers every module's services, in order.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
		a.modules = append(a.modules, m)
	}
	return nil
}

// StartModules runs Startup on every registered module, in order.
func (a *app) StartModules(ctx context.Context) error {
	for _, m := range a.modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close releases module resources in reverse registration order.
func (a *app) Close() error {
	var first error
	for i := len(a.modules) - 1; i >= 0; i-- {
		if c, ok := a.modules[i].(Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
