package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/obarros/fiscal-nfe-api/internal/application/dto"
	"github.com/obarros/fiscal-nfe-api/internal/application/notas"
)

// NotaHandler trata as requisições HTTP de notas fiscais.
type NotaHandler struct {
	uc *notas.UseCase
}

// NewNotaHandler constrói o handler.
func NewNotaHandler(uc *notas.UseCase) *NotaHandler {
	return &NotaHandler{uc: uc}
}

// Importar godoc
// @Summary      Importar XML de NF-e
// @Tags         notas
// @Accept       application/xml
// @Produce      json
// @Param        body  body  string  true  "XML da NF-e (nfeProc ou NFe)"
// @Success      201   {object}  dto.NotaResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/notas [post]
func (h *NotaHandler) Importar(c *fiber.Ctx) error {
	out, err := h.uc.Importar(c.UserContext(), c.Body())
	if err != nil {
		return respostaErro(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Listar godoc
// @Summary      Listar notas importadas
// @Tags         notas
// @Produce      json
// @Param        data_inicio  query  string  false  "YYYY-MM-DD"
// @Param        data_fim     query  string  false  "YYYY-MM-DD"
// @Param        emitente     query  string  false  "busca por nome, sem acentos/caixa"
// @Param        valor_min    query  string  false  "valor total mínimo"
// @Param        valor_max    query  string  false  "valor total máximo"
// @Param        limit        query  int     false  "máx. 100 (padrão 20)"
// @Param        offset       query  int     false  "padrão 0"
// @Success      200  {object}  dto.ListaNotasResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/notas [get]
func (h *NotaHandler) Listar(c *fiber.Ctx) error {
	var in dto.FiltroNotasRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "querystring inválida"})
	}
	out, err := h.uc.Listar(c.UserContext(), in)
	if err != nil {
		return respostaErro(c, err)
	}
	return c.JSON(out)
}

// Buscar godoc
// @Summary      Obter nota por chave de acesso
// @Tags         notas
// @Produce      json
// @Param        chave  path  string  true  "chave de acesso (44 dígitos)"
// @Success      200  {object}  dto.NotaResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notas/{chave} [get]
func (h *NotaHandler) Buscar(c *fiber.Ctx) error {
	out, err := h.uc.Buscar(c.UserContext(), c.Params("chave"))
	if err != nil {
		return respostaErro(c, err)
	}
	return c.JSON(out)
}

// Excluir godoc
// @Summary      Excluir nota (itens e estimativa em cascata)
// @Tags         notas
// @Produce      json
// @Param        chave  path  string  true  "chave de acesso (44 dígitos)"
// @Success      204  "sem conteúdo"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notas/{chave} [delete]
func (h *NotaHandler) Excluir(c *fiber.Ctx) error {
	if err := h.uc.Excluir(c.UserContext(), c.Params("chave")); err != nil {
		return respostaErro(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
