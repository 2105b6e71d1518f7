package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/obarros/fiscal-nfe-api/internal/application/dto"
	"github.com/obarros/fiscal-nfe-api/internal/domain/fiscal"
)

// AliquotaHandler expõe a tabela de referência usada nos cálculos.
type AliquotaHandler struct{}

// NewAliquotaHandler constrói o handler.
func NewAliquotaHandler() *AliquotaHandler {
	return &AliquotaHandler{}
}

// Tabela godoc
// @Summary      Tabela de alíquotas de referência (ICMS por UF, MVA, PIS/COFINS)
// @Tags         aliquotas
// @Produce      json
// @Success      200  {object}  dto.TabelaAliquotasResponse
// @Router       /api/aliquotas [get]
func (h *AliquotaHandler) Tabela(c *fiber.Ctx) error {
	resp := dto.TabelaAliquotasResponse{
		Estados:                  make([]dto.EstadoICMSResponse, 0, len(fiscal.EstadosICMS)),
		AliquotaInterIncentivada: fiscal.AliquotaInterIncentivada,
		AliquotaInterGeral:       fiscal.AliquotaInterGeral,
		IPIPorNCM:                fiscal.TabelaIPIFallback(),
		MVAPadrao:                fiscal.MVAPadraoAutopecas,
		AliquotaPIS:              fiscal.AliquotaPIS,
		AliquotaCOFINS:           fiscal.AliquotaCOFINS,
	}
	for _, e := range fiscal.EstadosICMS {
		resp.Estados = append(resp.Estados, dto.EstadoICMSResponse{
			UF:       e.UF,
			Aliquota: e.Aliquota,
			FCP:      e.FCP,
		})
	}
	return c.JSON(resp)
}
