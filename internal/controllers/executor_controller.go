package controllers

import (
	"errors"

	executortypes "github.com/qiniu-ai/flowbaker-qiniu/pkg/clients/node-executor"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain/executor"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

// ExecutorController serves node calls sent by the host platform.
type ExecutorController struct {
	executorService executor.NodeExecutorService
}

type ExecutorControllerDependencies struct {
	NodeExecutorService executor.NodeExecutorService
}

func NewExecutorController(deps ExecutorControllerDependencies) *ExecutorController {
	return &ExecutorController{
		executorService: deps.NodeExecutorService,
	}
}

func (c *ExecutorController) StartExecution(ctx fiber.Ctx) error {
	var req executortypes.ExecuteRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.IntegrationType == "" {
		req.IntegrationType = domain.IntegrationType_QiniuAI
	}

	log.Info().
		Str("integration_type", string(req.IntegrationType)).
		Str("action_type", string(req.ActionType)).
		Int("items", len(req.Items)).
		Msg("Starting execution")

	result, err := c.executorService.Execute(ctx.RequestCtx(), executor.ExecuteParams{
		IntegrationType: req.IntegrationType,
		CredentialID:    req.CredentialID,
		ActionType:      req.ActionType,
		NodeID:          req.NodeID,
		Items:           req.Items,
		Settings:        req.Settings,
		ContinueOnFail:  req.ContinueOnFail,
	})

	response := executortypes.ExecuteResponse{
		ExecutionID: result.ExecutionID,
		Results:     result.Results,
		DurationMs:  result.Duration.Milliseconds(),
	}

	if err != nil {
		status, executionErr := ExecutionErrorFrom(err)
		response.Error = executionErr

		return ctx.Status(status).JSON(response)
	}

	return ctx.JSON(response)
}

// ExecutionErrorFrom maps an execution failure to its HTTP status: 400 for bad parameters,
// 502 for upstream API failures, 404 for unknown integrations and 500 otherwise.
func ExecutionErrorFrom(err error) (int, *executortypes.ExecutionError) {
	var configErr *domain.ConfigurationError
	if errors.As(err, &configErr) {
		itemIndex := configErr.ItemIndex

		return fiber.StatusBadRequest, &executortypes.ExecutionError{
			Kind:      executortypes.ExecutionErrorKind_Configuration,
			Message:   configErr.Message,
			ItemIndex: &itemIndex,
		}
	}

	var opErr *domain.OperationError
	if errors.As(err, &opErr) {
		itemIndex := opErr.ItemIndex

		return fiber.StatusBadGateway, &executortypes.ExecutionError{
			Kind:        executortypes.ExecutionErrorKind_Operation,
			Message:     opErr.Message,
			Description: opErr.Description,
			ItemIndex:   &itemIndex,
			Status:      opErr.Status,
			Code:        opErr.Code,
		}
	}

	if errors.Is(err, domain.ErrIntegrationNotFound) {
		return fiber.StatusNotFound, &executortypes.ExecutionError{
			Kind:    executortypes.ExecutionErrorKind_Configuration,
			Message: err.Error(),
		}
	}

	if errors.Is(err, domain.ErrCredentialNotFound) || errors.Is(err, domain.ErrUnsupportedConfiguration) {
		return fiber.StatusBadRequest, &executortypes.ExecutionError{
			Kind:    executortypes.ExecutionErrorKind_Configuration,
			Message: err.Error(),
		}
	}

	executionErr := &executortypes.ExecutionError{
		Kind:    executortypes.ExecutionErrorKind_Internal,
		Message: err.Error(),
	}

	if itemIndex, ok := domain.ItemIndexOf(err); ok {
		executionErr.ItemIndex = &itemIndex
	}

	return fiber.StatusInternalServerError, executionErr
}

func (c *ExecutorController) TestConnection(ctx fiber.Ctx) error {
	var req executortypes.ConnectionTestRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.IntegrationType == "" {
		req.IntegrationType = domain.IntegrationType_QiniuAI
	}

	log.Info().
		Str("integration_type", string(req.IntegrationType)).
		Str("credential_id", req.CredentialID).
		Msg("Testing connection")

	success, err := c.executorService.TestConnection(ctx.RequestCtx(), executor.TestConnectionParams{
		IntegrationType: req.IntegrationType,
		CredentialID:    req.CredentialID,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to test connection")

		return ctx.JSON(executortypes.ConnectionTestResponse{
			Success: false,
			Error:   err.Error(),
		})
	}

	return ctx.JSON(executortypes.ConnectionTestResponse{
		Success: success,
	})
}

func (c *ExecutorController) GetSchema(ctx fiber.Ctx) error {
	response := executortypes.SchemaResponse{
		Integrations: []domain.Integration{},
	}

	for _, integrationType := range c.executorService.IntegrationTypes() {
		schema, err := c.executorService.Schema(ctx.RequestCtx(), integrationType)
		if err != nil {
			log.Error().Err(err).Str("integration_type", string(integrationType)).Msg("Failed to load schema")
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load schema")
		}

		response.Integrations = append(response.Integrations, schema)
	}

	return ctx.JSON(response)
}
