package initialization

import (
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/clients/qiniu"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/integrations/qiniu_ai"
)

type integrationRegisterParams struct {
	IntegrationType domain.IntegrationType
	NewCreator      func(deps domain.IntegrationDeps, clientOptions ...qiniu.ClientOption) domain.IntegrationCreator
}

var integrationRegisterParamsList = []integrationRegisterParams{
	{
		IntegrationType: domain.IntegrationType_QiniuAI,
		NewCreator: func(deps domain.IntegrationDeps, clientOptions ...qiniu.ClientOption) domain.IntegrationCreator {
			return qiniu_ai.NewQiniuAIIntegrationCreator(deps, clientOptions...)
		},
	},
}

func registerIntegrations(integrationSelector domain.IntegrationSelector, commonDeps domain.IntegrationDeps, clientOptions []qiniu.ClientOption) {
	for _, params := range integrationRegisterParamsList {
		if params.NewCreator == nil {
			continue
		}

		integrationSelector.RegisterCreator(params.IntegrationType, params.NewCreator(commonDeps, clientOptions...))
	}
}
