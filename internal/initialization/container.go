package initialization

import (
	"fmt"

	"github.com/qiniu-ai/flowbaker-qiniu/internal/auth"
	"github.com/qiniu-ai/flowbaker-qiniu/internal/config"
	"github.com/qiniu-ai/flowbaker-qiniu/internal/controllers"
	"github.com/qiniu-ai/flowbaker-qiniu/internal/managers"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/clients/qiniu"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain/executor"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/expressions"

	"github.com/rs/zerolog/log"
)

type ExecutorDependencies struct {
	IntegrationSelector domain.IntegrationSelector
	NodeExecutorService executor.NodeExecutorService
	ExecutorController  *controllers.ExecutorController
	SignatureVerifier   *auth.APISignatureVerifier
}

// ExecutorDependencyConfig carries what the container needs beyond the loaded config.
// ClientOptions are appended after the options derived from the config.
type ExecutorDependencyConfig struct {
	ClientOptions []qiniu.ClientOption
}

type ExecutorContainer struct {
	config *config.Config
}

func NewExecutorContainer(cfg *config.Config) *ExecutorContainer {
	return &ExecutorContainer{
		config: cfg,
	}
}

func (c *ExecutorContainer) GetConfig() *config.Config {
	return c.config
}

func (c *ExecutorContainer) BuildExecutorDependencies(depsConfig ExecutorDependencyConfig) (*ExecutorDependencies, error) {
	log.Debug().Msg("Building executor dependencies")

	credentialManager, err := managers.NewCredentialManager(managers.CredentialManagerOpts{
		Credentials:       c.config.Credentials,
		DefaultCredential: c.config.DefaultCredential(),
		X25519PrivateKey:  c.config.X25519PrivateKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create credential manager: %w", err)
	}

	binder := expressions.NewBinder(expressions.DefaultBinderOptions())

	integrationSelector := domain.NewIntegrationSelector()

	integrationDeps := domain.IntegrationDeps{
		ParameterBinder: binder,
		Credentials:     credentialManager,
	}

	clientOptions := c.clientOptions()
	clientOptions = append(clientOptions, depsConfig.ClientOptions...)

	registerIntegrations(integrationSelector, integrationDeps, clientOptions)

	nodeExecutorService := executor.NewNodeExecutorService(executor.NodeExecutorServiceDependencies{
		IntegrationSelector: integrationSelector,
	})

	executorController := controllers.NewExecutorController(controllers.ExecutorControllerDependencies{
		NodeExecutorService: nodeExecutorService,
	})

	var verifier *auth.APISignatureVerifier
	if c.config.APISigningPublicKey != "" {
		verifier, err = auth.NewAPISignatureVerifier(c.config.APISigningPublicKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create signature verifier: %w", err)
		}
	}

	log.Debug().
		Int("integrations", len(integrationSelector.IntegrationTypes())).
		Int("credentials", len(c.config.Credentials)).
		Bool("signed_requests", verifier != nil).
		Msg("Executor dependencies built successfully")

	return &ExecutorDependencies{
		IntegrationSelector: integrationSelector,
		NodeExecutorService: nodeExecutorService,
		ExecutorController:  executorController,
		SignatureVerifier:   verifier,
	}, nil
}

func (c *ExecutorContainer) clientOptions() []qiniu.ClientOption {
	var options []qiniu.ClientOption

	if c.config.PollDeadline > 0 {
		options = append(options, qiniu.WithPollPolicy(qiniu.DefaultPollPolicy(c.config.PollDeadline)))
	}

	return options
}
