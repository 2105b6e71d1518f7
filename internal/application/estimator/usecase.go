package estimator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/obarros/fiscal-nfe-api/internal/application/dto"
	"github.com/obarros/fiscal-nfe-api/internal/application/ports"
	"github.com/obarros/fiscal-nfe-api/internal/domain"
	"github.com/obarros/fiscal-nfe-api/internal/domain/entity"
	"github.com/obarros/fiscal-nfe-api/internal/domain/fiscal"
	"github.com/obarros/fiscal-nfe-api/internal/domain/repository"
	"github.com/obarros/fiscal-nfe-api/pkg/logger"
	"github.com/obarros/fiscal-nfe-api/pkg/nfe"
)

// UseCase orquestra a estimativa de carga tributária de uma nota: resolve as
// alíquotas por NCM, calcula item a item, agrega e monta a trilha de
// premissas. Recalcular substitui a estimativa anterior da nota.
type UseCase struct {
	notas       repository.NotaRepository
	estimativas repository.EstimativaRepository
	consulta    ports.ConsultaAliquotaNCM // pode ser nil: só fallback estático
	log         *logger.Logger
	agora       func() time.Time
}

// NewUseCase constrói o caso de uso.
func NewUseCase(notas repository.NotaRepository, estimativas repository.EstimativaRepository, consulta ports.ConsultaAliquotaNCM, log *logger.Logger) *UseCase {
	return &UseCase{
		notas:       notas,
		estimativas: estimativas,
		consulta:    consulta,
		log:         log,
		agora:       time.Now,
	}
}

// Estimar calcula (ou recalcula) a estimativa da nota e a persiste.
// Determinística para a mesma nota e as mesmas respostas de consulta,
// exceto pelo ID e pela data de cálculo.
func (uc *UseCase) Estimar(ctx context.Context, chave string) (*dto.EstimativaResponse, error) {
	if err := nfe.ValidarChave(chave); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrChaveInvalida, err)
	}
	nota, err := uc.notas.BuscarPorChave(chave)
	if err != nil {
		return nil, err
	}
	itens, err := uc.notas.BuscarItens(chave)
	if err != nil {
		return nil, err
	}

	regime := fiscal.RegimePorCRT(nota.RegimeTributarioEmitente)
	origem := fiscal.EstadoPorUF(nota.UFEmitente)
	destino := origem
	if nota.Interestadual() {
		destino = fiscal.EstadoPorUF(nota.UFDestinatario)
	}
	naoContribuinte := nota.DestinatarioNaoContribuinte()

	metodo := fiscal.MetodoInterno
	switch {
	case !nota.Interestadual():
	case naoContribuinte:
		metodo = fiscal.MetodoDIFAL
	default:
		metodo = fiscal.MetodoST
	}

	// No Simples Nacional todos os componentes zeram; não há o que resolver.
	porNCM := map[string]fiscal.AliquotaNCM{}
	if regime != fiscal.RegimeSimples && len(itens) > 0 {
		porNCM = resolverNCMs(ctx, uc.consulta, itens, consultaNCM{
			ufOrigem:        nota.UFEmitente,
			ufDestino:       destino.UF,
			naoContribuinte: naoContribuinte,
		})
	}

	fatos := fiscal.FatosEstimativa{
		Regime:  regime,
		Metodo:  metodo,
		Origem:  origem,
		Destino: destino,
	}
	ncmsCitados := map[string]struct{}{}
	cstsCitados := map[string]struct{}{}

	var totalICMS, totalIPI, totalPISCOF decimal.Decimal
	possuiDesconhecido := false
	itensEstimativa := make([]*entity.EstimativaItem, 0, len(itens))

	for _, item := range itens {
		ncm := fiscal.LimparNCM(item.CodigoNCM)
		aliquotas, resolvido := porNCM[ncm]
		if !resolvido {
			aliquotas = fiscal.AliquotaNCM{NCM: ncm, MVA: fiscal.MVAPadraoAutopecas}
		}

		if regime != fiscal.RegimeSimples {
			switch aliquotas.Fonte {
			case fiscal.FonteIA, fiscal.FonteFallback:
				if _, ok := ncmsCitados[ncm]; !ok {
					ncmsCitados[ncm] = struct{}{}
					fatos.FontesNCM = append(fatos.FontesNCM, aliquotas)
				}
			default:
				possuiDesconhecido = true
				fatos.AvisosNCM = append(fatos.AvisosNCM, fiscal.AvisoNCM{
					CodigoItem: item.Codigo,
					NCM:        item.CodigoNCM,
				})
			}
			if fiscal.CSTIsento(item.CSTICMS) {
				if _, ok := cstsCitados[item.CSTICMS]; !ok {
					cstsCitados[item.CSTICMS] = struct{}{}
					fatos.CSTsIsentos = append(fatos.CSTsIsentos, item.CSTICMS)
				}
			}
		}

		imposto := fiscal.CalcularItem(fiscal.ItemCalculo{
			Base:            item.ValorBase(),
			CSTICMS:         item.CSTICMS,
			Regime:          regime,
			Origem:          origem,
			Destino:         destino,
			Interestadual:   nota.Interestadual(),
			NaoContribuinte: naoContribuinte,
			AliquotaIPI:     aliquotas.IPI,
			MVA:             aliquotas.MVA,
		})

		totalICMS = totalICMS.Add(imposto.ICMS)
		totalIPI = totalIPI.Add(imposto.IPI)
		totalPISCOF = totalPISCOF.Add(imposto.PIS).Add(imposto.COFINS)
		itensEstimativa = append(itensEstimativa, &entity.EstimativaItem{
			ID:     uuid.NewString(),
			ItemID: item.ID,
			ICMS:   imposto.ICMS,
			IPI:    imposto.IPI,
			PIS:    imposto.PIS,
			COFINS: imposto.COFINS,
		})
	}

	total := totalICMS.Add(totalIPI).Add(totalPISCOF)
	estimativa := &entity.Estimativa{
		ID:                    uuid.NewString(),
		ChaveAcesso:           chave,
		ImpostoEstimadoTotal:  total,
		ImpostoEstimadoICMS:   totalICMS,
		ImpostoEstimadoIPI:    totalIPI,
		ImpostoEstimadoPISCOF: totalPISCOF,
		DiferencaImposto:      total.Sub(nota.ImpostoTotal),
		PossuiNCMDesconhecido: possuiDesconhecido,
		Premissas:             fiscal.MontarPremissas(fatos),
		DataCalculo:           uc.agora().UTC(),
	}
	for _, it := range itensEstimativa {
		it.EstimativaID = estimativa.ID
	}

	if err := uc.estimativas.Salvar(estimativa, itensEstimativa); err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("chave", chave).
		Str("estimado", total.StringFixed(2)).
		Str("declarado", nota.ImpostoTotal.StringFixed(2)).
		Bool("ncm_desconhecido", possuiDesconhecido).
		Msg("estimativa calculada")

	return toEstimativaResponse(estimativa, itensEstimativa), nil
}

// Buscar devolve a estimativa corrente da nota, com a decomposição por item.
func (uc *UseCase) Buscar(ctx context.Context, chave string) (*dto.EstimativaResponse, error) {
	if err := nfe.ValidarChave(chave); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrChaveInvalida, err)
	}
	if _, err := uc.notas.BuscarPorChave(chave); err != nil {
		return nil, err
	}
	estimativa, err := uc.estimativas.BuscarPorChave(chave)
	if err != nil {
		return nil, err
	}
	itens, err := uc.estimativas.BuscarItens(estimativa.ID)
	if err != nil {
		return nil, err
	}
	return toEstimativaResponse(estimativa, itens), nil
}

func toEstimativaResponse(e *entity.Estimativa, itens []*entity.EstimativaItem) *dto.EstimativaResponse {
	resp := &dto.EstimativaResponse{
		ID:                    e.ID,
		ChaveAcesso:           e.ChaveAcesso,
		ImpostoEstimadoTotal:  e.ImpostoEstimadoTotal,
		ImpostoEstimadoICMS:   e.ImpostoEstimadoICMS,
		ImpostoEstimadoIPI:    e.ImpostoEstimadoIPI,
		ImpostoEstimadoPISCOF: e.ImpostoEstimadoPISCOF,
		DiferencaImposto:      e.DiferencaImposto,
		PossuiNCMDesconhecido: e.PossuiNCMDesconhecido,
		Premissas:             e.Premissas,
		DataCalculo:           e.DataCalculo.Format(time.RFC3339),
	}
	for _, it := range itens {
		resp.Itens = append(resp.Itens, dto.EstimativaItemResponse{
			ItemID: it.ItemID,
			ICMS:   it.ICMS,
			IPI:    it.IPI,
			PIS:    it.PIS,
			COFINS: it.COFINS,
		})
	}
	return resp
}
