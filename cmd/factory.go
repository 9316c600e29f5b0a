package cmd

import (
	"net/http"

	"github.com/futurehomeno/cliffhanger/adapter"
	"github.com/futurehomeno/cliffhanger/bootstrap"
	cliffCfg "github.com/futurehomeno/cliffhanger/config"
	"github.com/futurehomeno/cliffhanger/database"
	"github.com/futurehomeno/cliffhanger/event"
	"github.com/futurehomeno/cliffhanger/lifecycle"
	"github.com/futurehomeno/cliffhanger/manifest"
	cliffRouter "github.com/futurehomeno/cliffhanger/router"
	"github.com/futurehomeno/cliffhanger/task"
	"github.com/futurehomeno/fimpgo"
	log "github.com/sirupsen/logrus"

	"github.com/futurehomeno/edge-indra-adapter/internal/api"
	"github.com/futurehomeno/edge-indra-adapter/internal/app"
	"github.com/futurehomeno/edge-indra-adapter/internal/config"
	"github.com/futurehomeno/edge-indra-adapter/internal/db"
	"github.com/futurehomeno/edge-indra-adapter/internal/indra"
	"github.com/futurehomeno/edge-indra-adapter/internal/routing"
	"github.com/futurehomeno/edge-indra-adapter/internal/tasks"
)

// services is a container for services that are common dependencies.
var services = &serviceContainer{}

// serviceContainer is a type representing a dependency injection container to be used during bootstrap of the application.
type serviceContainer struct {
	configService *config.Service
	lifecycle     *lifecycle.Lifecycle
	mqtt          *fimpgo.MqttTransport

	application     app.Application
	manifestLoader  manifest.Loader
	eventManager    event.Manager
	adapter         adapter.Adapter
	thingFactory    adapter.ThingFactory
	adapterState    adapter.State
	httpClient      *http.Client
	indraHTTPClient api.HTTPClient
	indraAPIClient  api.Client
	authenticator   api.Authenticator
	stateStorage    db.StateStorage
	coordinator     indra.Coordinator
}

func resetContainer() {
	services = &serviceContainer{}
}

// getConfigService initiates a configuration service and loads the config.
func getConfigService() *config.Service {
	if services.configService == nil {
		workDir := bootstrap.GetConfigurationDirectory()
		cfg := config.New(workDir)
		services.configService = config.NewService(cliffCfg.NewStorage(cfg, workDir))

		err := services.configService.Load()
		if err != nil {
			log.WithError(err).Fatal("failed to load configuration")
		}
	}

	return services.configService
}

// getLifecycle creates or returns existing lifecycle service.
func getLifecycle() *lifecycle.Lifecycle {
	if services.lifecycle == nil {
		services.lifecycle = lifecycle.New()
	}

	return services.lifecycle
}

// getStateStorage creates or returns existing session state storage.
func getStateStorage(cfg *config.Config) db.StateStorage {
	if services.stateStorage == nil {
		dataBase, err := database.NewDatabase(cfg.WorkDir)
		if err != nil {
			log.WithError(err).Fatal("failed to create database")
		}

		services.stateStorage = db.NewStateStorage(dataBase)
	}

	return services.stateStorage
}

// getCoordinator creates or returns existing polling coordinator.
func getCoordinator(cfg *config.Config) indra.Coordinator {
	if services.coordinator == nil {
		services.coordinator = indra.NewCoordinator(
			getIndraAPIClient(cfg),
			getAuthenticator(cfg),
			getConfigService(),
			getStateStorage(cfg),
		)
	}

	return services.coordinator
}

// getMQTT creates or returns existing MQTT broker service.
func getMQTT(cfg *config.Config) *fimpgo.MqttTransport {
	if services.mqtt == nil {
		services.mqtt = fimpgo.NewMqttTransport(
			cfg.MQTTServerURI,
			cfg.MQTTClientIDPrefix,
			cfg.MQTTUsername,
			cfg.MQTTPassword,
			true,
			1,
			1,
		)
	}

	services.mqtt.SetDefaultSource(indra.ServiceName)

	return services.mqtt
}

// getApplication creates or returns existing application.
func getApplication(cfg *config.Config) app.Application {
	if services.application == nil {
		services.application = app.New(
			getAdapter(cfg),
			getConfigService(),
			getLifecycle(),
			getManifestLoader(),
			getIndraAPIClient(cfg),
			getAuthenticator(cfg),
		)
	}

	return services.application
}

// getManifestLoader creates or returns existing application manifestLoader.
func getManifestLoader() manifest.Loader {
	if services.manifestLoader == nil {
		services.manifestLoader = manifest.NewLoader(getConfigService().GetWorkDir())
	}

	return services.manifestLoader
}

// getAdapter creates or returns existing adapter service.
func getAdapter(cfg *config.Config) adapter.Adapter {
	if services.adapter == nil {
		services.adapter = adapter.NewAdapter(
			getMQTT(cfg),
			getEventManager(cfg),
			getThingFactory(cfg),
			getAdapterState(),
			indra.ServiceName,
			"1",
		)
	}

	return services.adapter
}

// getEventManager creates or returns existing event manager service.
func getEventManager(_ *config.Config) event.Manager {
	if services.eventManager == nil {
		services.eventManager = event.NewManager()
	}

	return services.eventManager
}

// getAdapterState creates or returns existing adapter state service.
func getAdapterState() adapter.State {
	if services.adapterState == nil {
		var err error

		services.adapterState, err = adapter.NewState(getConfigService().GetWorkDir())
		if err != nil {
			log.WithError(err).Fatal("failed to initialize adapter state")
		}
	}

	return services.adapterState
}

// getThingFactory creates or returns existing thing factory service.
func getThingFactory(cfg *config.Config) adapter.ThingFactory {
	if services.thingFactory == nil {
		services.thingFactory = indra.NewThingFactory(
			getIndraAPIClient(cfg),
			getConfigService(),
			getCoordinator(cfg),
		)
	}

	return services.thingFactory
}

// getIndraHTTPClient creates or returns existing Indra HTTP client.
func getIndraHTTPClient() api.HTTPClient {
	if services.indraHTTPClient == nil {
		services.indraHTTPClient = api.NewHTTPClient(
			getHTTPClient(),
			getConfigService().GetIndraBaseURL(),
		)
	}

	return services.indraHTTPClient
}

// getIndraAPIClient creates or returns existing Indra API client.
func getIndraAPIClient(cfg *config.Config) api.Client {
	if services.indraAPIClient == nil {
		services.indraAPIClient = api.NewAPIClient(
			getIndraHTTPClient(),
			getAuthenticator(cfg),
		)
	}

	return services.indraAPIClient
}

// getHTTPClient creates or returns existing HTTP client with predefined timeout.
func getHTTPClient() *http.Client {
	if services.httpClient == nil {
		services.httpClient = &http.Client{
			Timeout: getConfigService().GetHTTPTimeout(),
		}
	}

	return services.httpClient
}

func getAuthenticator(_ *config.Config) api.Authenticator {
	if services.authenticator == nil {
		services.authenticator = api.NewAuthenticator(
			getIndraHTTPClient(),
			getConfigService(),
		)
	}

	return services.authenticator
}

// newRouting creates new set of routing.
func newRouting(cfg *config.Config) []*cliffRouter.Routing {
	return routing.New(
		getConfigService(),
		getLifecycle(),
		getApplication(cfg),
		getAdapter(cfg),
	)
}

// newTasks creates new set of tasks.
func newTasks(cfg *config.Config) []*task.Task {
	return tasks.New(
		getConfigService(),
		getLifecycle(),
		getApplication(cfg),
		getAdapter(cfg),
	)
}
