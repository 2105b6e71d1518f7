package notas

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/obarros/fiscal-nfe-api/internal/application/dto"
	"github.com/obarros/fiscal-nfe-api/internal/domain"
	"github.com/obarros/fiscal-nfe-api/internal/domain/entity"
	"github.com/obarros/fiscal-nfe-api/internal/domain/repository"
	infranfe "github.com/obarros/fiscal-nfe-api/internal/infrastructure/nfe"
	"github.com/obarros/fiscal-nfe-api/pkg/logger"
	"github.com/obarros/fiscal-nfe-api/pkg/nfe"
	"github.com/obarros/fiscal-nfe-api/pkg/texto"
)

// UseCase importação e consulta de notas fiscais.
type UseCase struct {
	repo        repository.NotaRepository
	estimativas repository.EstimativaRepository
	parser      *infranfe.Parser
	log         *logger.Logger
}

// NewUseCase constrói o caso de uso.
func NewUseCase(repo repository.NotaRepository, estimativas repository.EstimativaRepository, parser *infranfe.Parser, log *logger.Logger) *UseCase {
	return &UseCase{repo: repo, estimativas: estimativas, parser: parser, log: log}
}

// Importar faz o parse do XML, valida a chave de acesso, rejeita duplicados
// (mesma chave ou mesmo fingerprint do documento) e persiste nota e itens.
func (uc *UseCase) Importar(ctx context.Context, xml []byte) (*dto.NotaResponse, error) {
	if len(xml) == 0 {
		return nil, fmt.Errorf("%w: corpo vazio", domain.ErrEntradaInvalida)
	}

	parseada, err := uc.parser.Parse(xml)
	if err != nil {
		return nil, err
	}
	nota, itens := parseada.Nota, parseada.Itens
	if err := nfe.ValidarChave(nota.ChaveAcesso); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrChaveInvalida, err)
	}

	fingerprint, err := infranfe.Fingerprint(xml)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrXMLInvalido, err)
	}
	duplicado, err := uc.repo.ExisteFingerprint(fingerprint)
	if err != nil {
		return nil, err
	}
	if duplicado {
		return nil, fmt.Errorf("%w: documento já importado", domain.ErrDuplicado)
	}

	nota.XMLFingerprint = fingerprint
	for _, item := range itens {
		item.ID = uuid.NewString()
		item.ChaveAcesso = nota.ChaveAcesso
	}
	if err := uc.repo.Criar(nota, itens); err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("chave", nota.ChaveAcesso).
		Str("emitente", nota.NomeEmitente).
		Int("itens", len(itens)).
		Msg("nota importada")

	return toNotaResponse(nota, itens, nil), nil
}

// Listar devolve uma página de notas conforme os filtros. O filtro de
// emitente é insensível a caixa e acentos.
func (uc *UseCase) Listar(ctx context.Context, in dto.FiltroNotasRequest) (*dto.ListaNotasResponse, error) {
	filtro, err := montarFiltro(in)
	if err != nil {
		return nil, err
	}

	lista, total, err := uc.repo.Listar(filtro)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListaNotasResponse{
		Notas: make([]dto.NotaResponse, 0, len(lista)),
		Page:  dto.PageResponse{Limit: filtro.Limit, Offset: filtro.Offset, Total: total},
	}
	for _, nota := range lista {
		resp.Notas = append(resp.Notas, *toNotaResponse(nota, nil, nil))
	}
	return resp, nil
}

// Buscar devolve a nota com itens e, se houver, a estimativa corrente.
func (uc *UseCase) Buscar(ctx context.Context, chave string) (*dto.NotaResponse, error) {
	if err := nfe.ValidarChave(chave); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrChaveInvalida, err)
	}
	nota, err := uc.repo.BuscarPorChave(chave)
	if err != nil {
		return nil, err
	}
	itens, err := uc.repo.BuscarItens(chave)
	if err != nil {
		return nil, err
	}

	var estimativa *dto.EstimativaResponse
	e, err := uc.estimativas.BuscarPorChave(chave)
	switch {
	case err == nil:
		estItens, err := uc.estimativas.BuscarItens(e.ID)
		if err != nil {
			return nil, err
		}
		estimativa = toEstimativaResumo(e, estItens)
	case !errors.Is(err, domain.ErrSemEstimativa):
		return nil, err
	}

	return toNotaResponse(nota, itens, estimativa), nil
}

// Excluir remove a nota; itens e estimativa caem em cascata.
func (uc *UseCase) Excluir(ctx context.Context, chave string) error {
	if err := nfe.ValidarChave(chave); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrChaveInvalida, err)
	}
	if err := uc.repo.Excluir(chave); err != nil {
		return err
	}
	uc.log.Info().Str("chave", chave).Msg("nota excluída")
	return nil
}

func montarFiltro(in dto.FiltroNotasRequest) (repository.FiltroNotas, error) {
	in.DefaultPage()
	filtro := repository.FiltroNotas{
		Emitente: texto.Normalizar(in.Emitente),
		Limit:    in.Limit,
		Offset:   in.Offset,
	}

	if in.DataInicio != "" {
		t, err := time.Parse("2006-01-02", in.DataInicio)
		if err != nil {
			return filtro, fmt.Errorf("%w: data_inicio inválida", domain.ErrEntradaInvalida)
		}
		filtro.DataInicio = &t
	}
	if in.DataFim != "" {
		t, err := time.Parse("2006-01-02", in.DataFim)
		if err != nil {
			return filtro, fmt.Errorf("%w: data_fim inválida", domain.ErrEntradaInvalida)
		}
		// inclusivo: fim do dia
		fim := t.Add(24*time.Hour - time.Nanosecond)
		filtro.DataFim = &fim
	}
	if in.ValorMin != "" {
		v, err := decimal.NewFromString(in.ValorMin)
		if err != nil {
			return filtro, fmt.Errorf("%w: valor_min inválido", domain.ErrEntradaInvalida)
		}
		filtro.ValorMin = &v
	}
	if in.ValorMax != "" {
		v, err := decimal.NewFromString(in.ValorMax)
		if err != nil {
			return filtro, fmt.Errorf("%w: valor_max inválido", domain.ErrEntradaInvalida)
		}
		filtro.ValorMax = &v
	}
	return filtro, nil
}

func toNotaResponse(nota *entity.NotaFiscal, itens []*entity.ItemNotaFiscal, estimativa *dto.EstimativaResponse) *dto.NotaResponse {
	resp := &dto.NotaResponse{
		ChaveAcesso:              nota.ChaveAcesso,
		Numero:                   nota.Numero,
		ValorTotal:               nota.ValorTotal,
		ImpostoTotal:             nota.ImpostoTotal,
		NomeEmitente:             nota.NomeEmitente,
		NomeDestinatario:         nota.NomeDestinatario,
		DocDestinatario:          nota.DocDestinatario,
		UFEmitente:               nota.UFEmitente,
		UFDestinatario:           nota.UFDestinatario,
		IndicadorIEDestinatario:  nota.IndicadorIEDestinatario,
		RegimeTributarioEmitente: nota.RegimeTributarioEmitente,
		Itens:                    make([]dto.ItemNotaResponse, 0, len(itens)),
		Estimativa:               estimativa,
	}
	if !nota.DataEmissao.IsZero() {
		resp.DataEmissao = nota.DataEmissao.Format(time.RFC3339)
	}
	for _, item := range itens {
		resp.Itens = append(resp.Itens, dto.ItemNotaResponse{
			ID:            item.ID,
			Codigo:        item.Codigo,
			CodigoNCM:     item.CodigoNCM,
			Descricao:     item.Descricao,
			Quantidade:    item.Quantidade,
			Unidade:       item.Unidade,
			ValorUnitario: item.ValorUnitario,
			ValorTotal:    item.ValorTotal,
			CSTICMS:       item.CSTICMS,
		})
	}
	return resp
}

func toEstimativaResumo(e *entity.Estimativa, itens []*entity.EstimativaItem) *dto.EstimativaResponse {
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
