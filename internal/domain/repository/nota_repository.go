package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/obarros/fiscal-nfe-api/internal/domain/entity"
)

// FiltroNotas filtros de listagem (mesmos da tela de consulta).
// Campos zero são ignorados. Emitente já deve vir normalizado (sem acentos,
// minúsculas) pelo caso de uso.
type FiltroNotas struct {
	DataInicio *time.Time
	DataFim    *time.Time
	Emitente   string
	ValorMin   *decimal.Decimal
	ValorMax   *decimal.Decimal
	Limit      int
	Offset     int
}

// NotaRepository persistência de notas fiscais e seus itens.
type NotaRepository interface {
	// Criar grava o cabeçalho e todos os itens. Chave ou fingerprint
	// repetidos retornam domain.ErrDuplicado.
	Criar(nota *entity.NotaFiscal, itens []*entity.ItemNotaFiscal) error
	BuscarPorChave(chave string) (*entity.NotaFiscal, error)
	BuscarItens(chave string) ([]*entity.ItemNotaFiscal, error)
	Listar(filtro FiltroNotas) ([]*entity.NotaFiscal, int, error)
	Excluir(chave string) error
	ExisteFingerprint(fingerprint string) (bool, error)
}
