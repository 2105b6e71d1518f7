package repository

import "github.com/obarros/fiscal-nfe-api/internal/domain/entity"

// EstimativaRepository persistência das estimativas de imposto.
// Cada nota tem no máximo uma estimativa corrente: salvar de novo substitui.
type EstimativaRepository interface {
	Salvar(estimativa *entity.Estimativa, itens []*entity.EstimativaItem) error
	BuscarPorChave(chave string) (*entity.Estimativa, error)
	BuscarItens(estimativaID string) ([]*entity.EstimativaItem, error)
}
