package domain

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type CreateIntegrationParams struct {
	CredentialID string
}

type IntegrationCreator interface {
	CreateIntegration(ctx context.Context, p CreateIntegrationParams) (IntegrationExecutor, error)
}

type IntegrationExecutor interface {
	Execute(ctx context.Context, params IntegrationInput) (IntegrationOutput, error)
}

type IntegrationConnectionTester interface {
	TestConnection(ctx context.Context, params TestConnectionParams) (bool, error)
}

type TestConnectionParams struct {
	CredentialID string
}

// IntegrationSchemaProvider exposes the declarative schema of an integration.
type IntegrationSchemaProvider interface {
	Schema() Integration
}

type SelectIntegrationParams struct {
	IntegrationType IntegrationType
}

type IntegrationSelector interface {
	RegisterCreator(integrationType IntegrationType, creator IntegrationCreator)
	SelectCreator(ctx context.Context, params SelectIntegrationParams) (IntegrationCreator, error)
	SelectConnectionTester(ctx context.Context, params SelectIntegrationParams) (IntegrationConnectionTester, error)
	SelectSchema(ctx context.Context, params SelectIntegrationParams) (Integration, error)
	IntegrationTypes() []IntegrationType
}

type integrationSelector struct {
	mtx            sync.RWMutex
	creatorsByType map[IntegrationType]IntegrationCreator
}

func NewIntegrationSelector() IntegrationSelector {
	return &integrationSelector{
		creatorsByType: make(map[IntegrationType]IntegrationCreator),
	}
}

func (s *integrationSelector) RegisterCreator(integrationType IntegrationType, creator IntegrationCreator) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.creatorsByType[integrationType] = creator
}

func (s *integrationSelector) SelectCreator(ctx context.Context, params SelectIntegrationParams) (IntegrationCreator, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	creator, ok := s.creatorsByType[params.IntegrationType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIntegrationNotFound, params.IntegrationType)
	}

	return creator, nil
}

func (s *integrationSelector) SelectConnectionTester(ctx context.Context, params SelectIntegrationParams) (IntegrationConnectionTester, error) {
	creator, err := s.SelectCreator(ctx, params)
	if err != nil {
		return nil, err
	}

	tester, ok := creator.(IntegrationConnectionTester)
	if !ok {
		return nil, fmt.Errorf("integration %s cannot test connections", params.IntegrationType)
	}

	return tester, nil
}

func (s *integrationSelector) SelectSchema(ctx context.Context, params SelectIntegrationParams) (Integration, error) {
	creator, err := s.SelectCreator(ctx, params)
	if err != nil {
		return Integration{}, err
	}

	provider, ok := creator.(IntegrationSchemaProvider)
	if !ok {
		return Integration{}, fmt.Errorf("integration %s has no schema", params.IntegrationType)
	}

	return provider.Schema(), nil
}

func (s *integrationSelector) IntegrationTypes() []IntegrationType {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	types := make([]IntegrationType, 0, len(s.creatorsByType))

	for integrationType := range s.creatorsByType {
		types = append(types, integrationType)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}
