package estimator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obarros/fiscal-nfe-api/internal/application/dto"
	"github.com/obarros/fiscal-nfe-api/internal/domain"
	"github.com/obarros/fiscal-nfe-api/internal/domain/entity"
	"github.com/obarros/fiscal-nfe-api/internal/domain/repository"
	"github.com/obarros/fiscal-nfe-api/pkg/logger"
)

// Chaves com dígito verificador válido (emitentes de SP e PR).
const (
	chaveSP = "35230114200166000187550010000000461550000047"
	chavePR = "41230955000100000100550010000012345100001237"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

type notaRepoStub struct {
	nota  *entity.NotaFiscal
	itens []*entity.ItemNotaFiscal
}

func (s *notaRepoStub) Criar(*entity.NotaFiscal, []*entity.ItemNotaFiscal) error { return nil }

func (s *notaRepoStub) BuscarPorChave(chave string) (*entity.NotaFiscal, error) {
	if s.nota == nil || s.nota.ChaveAcesso != chave {
		return nil, domain.ErrNaoEncontrado
	}
	return s.nota, nil
}

func (s *notaRepoStub) BuscarItens(string) ([]*entity.ItemNotaFiscal, error) { return s.itens, nil }

func (s *notaRepoStub) Listar(repository.FiltroNotas) ([]*entity.NotaFiscal, int, error) {
	return nil, 0, nil
}

func (s *notaRepoStub) Excluir(string) error                  { return nil }
func (s *notaRepoStub) ExisteFingerprint(string) (bool, error) { return false, nil }

type estimativaRepoStub struct {
	salva *entity.Estimativa
	itens []*entity.EstimativaItem
}

func (s *estimativaRepoStub) Salvar(e *entity.Estimativa, itens []*entity.EstimativaItem) error {
	s.salva = e
	s.itens = itens
	return nil
}

func (s *estimativaRepoStub) BuscarPorChave(chave string) (*entity.Estimativa, error) {
	if s.salva == nil || s.salva.ChaveAcesso != chave {
		return nil, domain.ErrSemEstimativa
	}
	return s.salva, nil
}

func (s *estimativaRepoStub) BuscarItens(string) ([]*entity.EstimativaItem, error) {
	return s.itens, nil
}

// consultaStub devolve respostas fixas por NCM e conta as chamadas.
type consultaStub struct {
	mu       sync.Mutex
	chamadas map[string]int
	resp     map[string]*dto.AliquotaNCMDTO
	err      error
}

func (s *consultaStub) ConsultarAliquotas(_ context.Context, ncm, _, _ string, _ bool) (*dto.AliquotaNCMDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chamadas == nil {
		s.chamadas = map[string]int{}
	}
	s.chamadas[ncm]++
	if s.err != nil {
		return nil, s.err
	}
	return s.resp[ncm], nil
}

func (s *consultaStub) totalChamadas() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.chamadas {
		n += c
	}
	return n
}

func notaSP(crt string) *entity.NotaFiscal {
	return &entity.NotaFiscal{
		ChaveAcesso:              chaveSP,
		Numero:                   "46",
		DataEmissao:              time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		ValorTotal:               dec(1000),
		ImpostoTotal:             dec(100),
		NomeEmitente:             "Auto Peças Ipiranga LTDA",
		UFEmitente:               "SP",
		IndicadorIEDestinatario:  entity.IndIEContribuinte,
		RegimeTributarioEmitente: crt,
	}
}

func itemSP(id, codigo, ncm, cst string, base float64) *entity.ItemNotaFiscal {
	return &entity.ItemNotaFiscal{
		ID:          id,
		ChaveAcesso: chaveSP,
		Codigo:      codigo,
		CodigoNCM:   ncm,
		CSTICMS:     cst,
		ValorTotal:  dec(base),
	}
}

func novoUseCase(notas repository.NotaRepository, est repository.EstimativaRepository, consulta *consultaStub) *UseCase {
	uc := NewUseCase(notas, est, nil, logger.New(logger.Config{Level: "error"}))
	if consulta != nil {
		uc.consulta = consulta
	}
	uc.agora = func() time.Time { return time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC) }
	return uc
}

func TestEstimar_OperacaoInternaRegimeNormal(t *testing.T) {
	notas := &notaRepoStub{
		nota:  notaSP(entity.CRTRegimeNormal),
		itens: []*entity.ItemNotaFiscal{itemSP("i1", "P001", "8708.29.99", "00", 1000)},
	}
	est := &estimativaRepoStub{}
	consulta := &consultaStub{resp: map[string]*dto.AliquotaNCMDTO{
		"87082999": {AliquotaIPI: dec(4.88), MVAStAjustada: dec(71.78)},
	}}

	resp, err := novoUseCase(notas, est, consulta).Estimar(context.Background(), chaveSP)
	require.NoError(t, err)

	assert.True(t, resp.ImpostoEstimadoIPI.Equal(dec(48.80)), "IPI = %s", resp.ImpostoEstimadoIPI)
	assert.True(t, resp.ImpostoEstimadoICMS.Equal(dec(188.784)), "ICMS = %s", resp.ImpostoEstimadoICMS)
	assert.True(t, resp.ImpostoEstimadoPISCOF.Equal(dec(36.50)), "PIS/COFINS = %s", resp.ImpostoEstimadoPISCOF)
	assert.True(t, resp.ImpostoEstimadoTotal.Equal(dec(274.084)), "total = %s", resp.ImpostoEstimadoTotal)
	assert.True(t, resp.DiferencaImposto.Equal(dec(174.084)), "diferença = %s", resp.DiferencaImposto)
	assert.False(t, resp.PossuiNCMDesconhecido)

	require.NotEmpty(t, resp.Premissas)
	assert.Equal(t, "- PIS/COFINS (0.65%/3.00%) calculado com base no Regime Normal (presumindo Lucro Presumido).", resp.Premissas[0])
	assert.Contains(t, resp.Premissas, "- ICMS calculado como Operação Interna em SP (Alíquota 18.00%).")
	assert.Contains(t, resp.Premissas, "- IPI (4.88%) e MVA (71.78%) aplicados. (Consulta IA NCM 87082999)")
	assert.Equal(t, "- Cálculo não considera regimes especiais ou benefícios fiscais.", resp.Premissas[len(resp.Premissas)-1])

	// persistido: a resposta reflete o que foi salvo
	require.NotNil(t, est.salva)
	assert.Equal(t, resp.ID, est.salva.ID)
	require.Len(t, est.itens, 1)
	assert.Equal(t, "i1", est.itens[0].ItemID)
}

func TestEstimar_MemoizaConsultaPorNCMDistinto(t *testing.T) {
	notas := &notaRepoStub{
		nota: notaSP(entity.CRTRegimeNormal),
		itens: []*entity.ItemNotaFiscal{
			itemSP("i1", "P001", "87082999", "00", 100),
			itemSP("i2", "P002", "8708.29.99", "00", 200),
			itemSP("i3", "P003", "84099112", "00", 300),
		},
	}
	consulta := &consultaStub{resp: map[string]*dto.AliquotaNCMDTO{
		"87082999": {AliquotaIPI: dec(4.88), MVAStAjustada: dec(71.78)},
		"84099112": {AliquotaIPI: dec(3.25), MVAStAjustada: dec(71.78)},
	}}

	resp, err := novoUseCase(notas, &estimativaRepoStub{}, consulta).Estimar(context.Background(), chaveSP)
	require.NoError(t, err)

	assert.Equal(t, 2, consulta.totalChamadas(), "uma consulta por NCM distinto")
	assert.Equal(t, 1, consulta.chamadas["87082999"])
	assert.Equal(t, 1, consulta.chamadas["84099112"])

	// uma premissa de fonte por NCM distinto, na ordem do primeiro uso
	var fontes []string
	for _, p := range resp.Premissas {
		if len(p) > 7 && p[:6] == "- IPI " {
			fontes = append(fontes, p)
		}
	}
	require.Len(t, fontes, 2)
	assert.Contains(t, fontes[0], "NCM 87082999")
	assert.Contains(t, fontes[1], "NCM 84099112")
}

func TestEstimar_FalhaNaConsultaCaiNoFallback(t *testing.T) {
	notas := &notaRepoStub{
		nota:  notaSP(entity.CRTRegimeNormal),
		itens: []*entity.ItemNotaFiscal{itemSP("i1", "P001", "87082999", "00", 1000)},
	}
	consulta := &consultaStub{err: errors.New("timeout no provedor")}

	resp, err := novoUseCase(notas, &estimativaRepoStub{}, consulta).Estimar(context.Background(), chaveSP)
	require.NoError(t, err, "falha de consulta não derruba a estimativa")

	assert.True(t, resp.ImpostoEstimadoIPI.Equal(dec(48.80)), "IPI da tabela estática")
	assert.False(t, resp.PossuiNCMDesconhecido)
	assert.Contains(t, resp.Premissas, "- IPI/MVA aplicados com base em alíquotas padrão. (Fallback NCM 87082999)")
}

func TestEstimar_SemConsultaConfiguradaUsaFallback(t *testing.T) {
	notas := &notaRepoStub{
		nota:  notaSP(entity.CRTRegimeNormal),
		itens: []*entity.ItemNotaFiscal{itemSP("i1", "P001", "84212300", "00", 100)},
	}

	resp, err := novoUseCase(notas, &estimativaRepoStub{}, nil).Estimar(context.Background(), chaveSP)
	require.NoError(t, err)
	assert.True(t, resp.ImpostoEstimadoIPI.Equal(dec(3.25)))
}

func TestEstimar_NCMDesconhecidoSinalizaESegueComIPIZero(t *testing.T) {
	notas := &notaRepoStub{
		nota: notaSP(entity.CRTRegimeNormal),
		itens: []*entity.ItemNotaFiscal{
			itemSP("i1", "P001", "99999999", "00", 1000),
			itemSP("i2", "P002", "", "00", 500),
		},
	}
	consulta := &consultaStub{err: errors.New("indisponível")}

	resp, err := novoUseCase(notas, &estimativaRepoStub{}, consulta).Estimar(context.Background(), chaveSP)
	require.NoError(t, err)

	assert.True(t, resp.PossuiNCMDesconhecido)
	assert.True(t, resp.ImpostoEstimadoIPI.IsZero())
	// ICMS segue calculado normalmente: (1000+500) × 18%
	assert.True(t, resp.ImpostoEstimadoICMS.Equal(dec(270)), "ICMS = %s", resp.ImpostoEstimadoICMS)
	assert.Contains(t, resp.Premissas, "- Item (Cód: P001): NCM '99999999' desconhecido na base, IPI não calculado.")
	assert.Contains(t, resp.Premissas, "- Item (Cód: P002): NCM não informado, IPI não calculado.")
}

func TestEstimar_SimplesNacionalZeraTudoSemConsultar(t *testing.T) {
	notas := &notaRepoStub{
		nota:  notaSP(entity.CRTSimplesNacional),
		itens: []*entity.ItemNotaFiscal{itemSP("i1", "P001", "87082999", "00", 1000)},
	}
	consulta := &consultaStub{resp: map[string]*dto.AliquotaNCMDTO{}}

	resp, err := novoUseCase(notas, &estimativaRepoStub{}, consulta).Estimar(context.Background(), chaveSP)
	require.NoError(t, err)

	assert.True(t, resp.ImpostoEstimadoTotal.IsZero())
	assert.True(t, resp.DiferencaImposto.Equal(dec(-100)), "diferença = %s", resp.DiferencaImposto)
	assert.Equal(t, 0, consulta.totalChamadas(), "Simples não dispara consulta externa")
	assert.Equal(t, "- PIS/COFINS estimado em 0% (Recolhimento unificado via DAS).", resp.Premissas[0])
	assert.Equal(t, "- ICMS: Estimado em R$ 0,00 (Recolhimento unificado via DAS).", resp.Premissas[1])
}

func TestEstimar_InterestadualContribuinteUsaST(t *testing.T) {
	nota := &entity.NotaFiscal{
		ChaveAcesso:              chavePR,
		ValorTotal:               dec(1000),
		ImpostoTotal:             dec(50),
		UFEmitente:               "PR",
		UFDestinatario:           "BA",
		IndicadorIEDestinatario:  entity.IndIEContribuinte,
		RegimeTributarioEmitente: entity.CRTRegimeNormal,
	}
	item := &entity.ItemNotaFiscal{
		ID: "i1", ChaveAcesso: chavePR, Codigo: "P001",
		CodigoNCM: "40169990", CSTICMS: "10", ValorTotal: dec(1000),
	}
	consulta := &consultaStub{resp: map[string]*dto.AliquotaNCMDTO{
		"40169990": {AliquotaIPI: decimal.Zero, MVAStAjustada: dec(71.78)},
	}}

	resp, err := novoUseCase(&notaRepoStub{nota: nota, itens: []*entity.ItemNotaFiscal{item}}, &estimativaRepoStub{}, consulta).
		Estimar(context.Background(), chavePR)
	require.NoError(t, err)

	// ICMS próprio 7% + ST: 1000×1.7178×22.5% − 70
	assert.True(t, resp.ImpostoEstimadoICMS.Equal(dec(386.505)), "ICMS = %s", resp.ImpostoEstimadoICMS)
	assert.Contains(t, resp.Premissas, "- ICMS-ST calculado de PR para BA (venda a contribuinte).")
}

func TestEstimar_DuasExecucoesProduzemOMesmoRelatorio(t *testing.T) {
	notas := &notaRepoStub{
		nota: notaSP(entity.CRTRegimeNormal),
		itens: []*entity.ItemNotaFiscal{
			itemSP("i1", "P001", "8708.29.99", "00", 1000),
			itemSP("i2", "P002", "99999999", "40", 500),
		},
	}
	consulta := &consultaStub{resp: map[string]*dto.AliquotaNCMDTO{
		"87082999": {AliquotaIPI: dec(4.88), MVAStAjustada: dec(71.78)},
	}}
	uc := novoUseCase(notas, &estimativaRepoStub{}, consulta)

	primeira, err := uc.Estimar(context.Background(), chaveSP)
	require.NoError(t, err)
	segunda, err := uc.Estimar(context.Background(), chaveSP)
	require.NoError(t, err)

	assert.True(t, segunda.ImpostoEstimadoTotal.Equal(primeira.ImpostoEstimadoTotal))
	assert.True(t, segunda.DiferencaImposto.Equal(primeira.DiferencaImposto))
	assert.Equal(t, primeira.PossuiNCMDesconhecido, segunda.PossuiNCMDesconhecido)
	assert.Equal(t, primeira.Premissas, segunda.Premissas)
	assert.Equal(t, primeira.Itens, segunda.Itens)

	// fora o ID (e o timestamp, aqui fixado pelo relógio de teste), os
	// relatórios são idênticos campo a campo
	primeira.ID, segunda.ID = "", ""
	primeira.DataCalculo, segunda.DataCalculo = "", ""
	assert.Equal(t, primeira, segunda)
}

func TestEstimar_DestinatarioIsentoSegueComoContribuinte(t *testing.T) {
	nota := &entity.NotaFiscal{
		ChaveAcesso:              chavePR,
		ValorTotal:               dec(1000),
		ImpostoTotal:             dec(50),
		UFEmitente:               "PR",
		UFDestinatario:           "BA",
		IndicadorIEDestinatario:  entity.IndIEIsento,
		RegimeTributarioEmitente: entity.CRTRegimeNormal,
	}
	item := &entity.ItemNotaFiscal{
		ID: "i1", ChaveAcesso: chavePR, Codigo: "P001",
		CodigoNCM: "40169990", CSTICMS: "10", ValorTotal: dec(1000),
	}
	consulta := &consultaStub{resp: map[string]*dto.AliquotaNCMDTO{
		"40169990": {AliquotaIPI: decimal.Zero, MVAStAjustada: dec(71.78)},
	}}

	resp, err := novoUseCase(&notaRepoStub{nota: nota, itens: []*entity.ItemNotaFiscal{item}}, &estimativaRepoStub{}, consulta).
		Estimar(context.Background(), chavePR)
	require.NoError(t, err)

	// isento de inscrição não é consumidor final: vale ST, não DIFAL
	assert.True(t, resp.ImpostoEstimadoICMS.Equal(dec(386.505)), "ICMS = %s", resp.ImpostoEstimadoICMS)
	assert.Contains(t, resp.Premissas, "- ICMS-ST calculado de PR para BA (venda a contribuinte).")
}

func TestEstimar_NotaSemItens(t *testing.T) {
	notas := &notaRepoStub{nota: notaSP(entity.CRTRegimeNormal)}

	resp, err := novoUseCase(notas, &estimativaRepoStub{}, nil).Estimar(context.Background(), chaveSP)
	require.NoError(t, err)

	assert.True(t, resp.ImpostoEstimadoTotal.IsZero())
	assert.True(t, resp.DiferencaImposto.Equal(dec(-100)))
	assert.Empty(t, resp.Itens)
	assert.NotEmpty(t, resp.Premissas, "a ressalva de fechamento está sempre presente")
}

func TestEstimar_ChaveInvalida(t *testing.T) {
	uc := novoUseCase(&notaRepoStub{}, &estimativaRepoStub{}, nil)

	_, err := uc.Estimar(context.Background(), "123")
	assert.ErrorIs(t, err, domain.ErrChaveInvalida)

	chaveDVErrado := chaveSP[:43] + "8"
	_, err = uc.Estimar(context.Background(), chaveDVErrado)
	assert.ErrorIs(t, err, domain.ErrChaveInvalida)
}

func TestEstimar_NotaInexistente(t *testing.T) {
	_, err := novoUseCase(&notaRepoStub{}, &estimativaRepoStub{}, nil).Estimar(context.Background(), chaveSP)
	assert.ErrorIs(t, err, domain.ErrNaoEncontrado)
}

func TestBuscar_SemEstimativa(t *testing.T) {
	notas := &notaRepoStub{nota: notaSP(entity.CRTRegimeNormal)}

	_, err := novoUseCase(notas, &estimativaRepoStub{}, nil).Buscar(context.Background(), chaveSP)
	assert.ErrorIs(t, err, domain.ErrSemEstimativa)
}

func TestBuscar_DevolveEstimativaSalva(t *testing.T) {
	notas := &notaRepoStub{
		nota:  notaSP(entity.CRTRegimeNormal),
		itens: []*entity.ItemNotaFiscal{itemSP("i1", "P001", "87082999", "00", 1000)},
	}
	est := &estimativaRepoStub{}
	uc := novoUseCase(notas, est, nil)

	calculada, err := uc.Estimar(context.Background(), chaveSP)
	require.NoError(t, err)

	buscada, err := uc.Buscar(context.Background(), chaveSP)
	require.NoError(t, err)
	assert.Equal(t, calculada, buscada)
}
