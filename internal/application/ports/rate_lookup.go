package ports

import (
	"context"

	"github.com/obarros/fiscal-nfe-api/internal/application/dto"
)

// ConsultaAliquotaNCM consulta alíquotas específicas de um NCM em um
// provedor externo. Implementações devem respeitar o context e retornar
// erro em qualquer resposta que não contenha ambos os campos.
type ConsultaAliquotaNCM interface {
	ConsultarAliquotas(ctx context.Context, ncm, ufOrigem, ufDestino string, naoContribuinte bool) (*dto.AliquotaNCMDTO, error)
}
