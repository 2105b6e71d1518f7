package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/obarros/fiscal-nfe-api/internal/application/estimator"
	"github.com/obarros/fiscal-nfe-api/internal/application/notas"
)

// EstimativaHandler trata as requisições de estimativa de imposto.
type EstimativaHandler struct {
	uc  *estimator.UseCase
	pdf *notas.PDFUseCase
}

// NewEstimativaHandler constrói o handler.
func NewEstimativaHandler(uc *estimator.UseCase, pdf *notas.PDFUseCase) *EstimativaHandler {
	return &EstimativaHandler{uc: uc, pdf: pdf}
}

// Calcular godoc
// @Summary      Calcular (ou recalcular) a estimativa da nota
// @Tags         estimativas
// @Produce      json
// @Param        chave  path  string  true  "chave de acesso (44 dígitos)"
// @Success      200  {object}  dto.EstimativaResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notas/{chave}/estimativa [post]
func (h *EstimativaHandler) Calcular(c *fiber.Ctx) error {
	out, err := h.uc.Estimar(c.UserContext(), c.Params("chave"))
	if err != nil {
		return respostaErro(c, err)
	}
	return c.JSON(out)
}

// Buscar godoc
// @Summary      Obter a estimativa corrente da nota
// @Tags         estimativas
// @Produce      json
// @Param        chave  path  string  true  "chave de acesso (44 dígitos)"
// @Success      200  {object}  dto.EstimativaResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notas/{chave}/estimativa [get]
func (h *EstimativaHandler) Buscar(c *fiber.Ctx) error {
	out, err := h.uc.Buscar(c.UserContext(), c.Params("chave"))
	if err != nil {
		return respostaErro(c, err)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      Baixar o relatório da estimativa em PDF
// @Tags         estimativas
// @Produce      application/pdf
// @Param        chave  path  string  true  "chave de acesso (44 dígitos)"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notas/{chave}/estimativa/pdf [get]
func (h *EstimativaHandler) PDF(c *fiber.Ctx) error {
	chave := c.Params("chave")
	pdf, err := h.pdf.Gerar(c.UserContext(), chave)
	if err != nil {
		return respostaErro(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="estimativa-`+chave+`.pdf"`)
	return c.Send(pdf)
}
