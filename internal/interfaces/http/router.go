package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/obarros/fiscal-nfe-api/internal/application/dto"
	"github.com/obarros/fiscal-nfe-api/internal/application/estimator"
	"github.com/obarros/fiscal-nfe-api/internal/application/notas"
	"github.com/obarros/fiscal-nfe-api/internal/domain"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	NotasUC      *notas.UseCase
	EstimativaUC *estimator.UseCase
	PDFUC        *notas.PDFUseCase
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	notasGroup := api.Group("/notas")
	notaHandler := NewNotaHandler(deps.NotasUC)
	notasGroup.Post("/", notaHandler.Importar)
	notasGroup.Get("/", notaHandler.Listar)
	notasGroup.Get("/:chave", notaHandler.Buscar)
	notasGroup.Delete("/:chave", notaHandler.Excluir)

	estimativaHandler := NewEstimativaHandler(deps.EstimativaUC, deps.PDFUC)
	notasGroup.Post("/:chave/estimativa", estimativaHandler.Calcular)
	notasGroup.Get("/:chave/estimativa", estimativaHandler.Buscar)
	notasGroup.Get("/:chave/estimativa/pdf", estimativaHandler.PDF)

	aliquotaHandler := NewAliquotaHandler()
	api.Get("/aliquotas", aliquotaHandler.Tabela)
}

// respostaErro mapeia erros de domínio para status HTTP e corpo padronizado.
func respostaErro(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrChaveInvalida):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "CHAVE_INVALIDA", Message: err.Error()})
	case errors.Is(err, domain.ErrEntradaInvalida):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrXMLInvalido):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "XML_INVALIDO", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicado):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "nota já importada"})
	case errors.Is(err, domain.ErrNaoEncontrado):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "nota não encontrada"})
	case errors.Is(err, domain.ErrSemEstimativa):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "SEM_ESTIMATIVA", Message: "nota sem estimativa calculada"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
