package notas

import "github.com/obarros/fiscal-nfe-api/internal/domain/entity"

// GeradorPDFEstimativa renderiza o relatório em PDF de uma nota com a sua
// estimativa corrente.
type GeradorPDFEstimativa interface {
	Gerar(nota *entity.NotaFiscal, itens []*entity.ItemNotaFiscal, estimativa *entity.Estimativa, estItens []*entity.EstimativaItem) ([]byte, error)
}
