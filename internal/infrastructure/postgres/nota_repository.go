package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obarros/fiscal-nfe-api/internal/domain"
	"github.com/obarros/fiscal-nfe-api/internal/domain/entity"
	"github.com/obarros/fiscal-nfe-api/internal/domain/repository"
	"github.com/obarros/fiscal-nfe-api/pkg/texto"
)

var _ repository.NotaRepository = (*NotaRepo)(nil)

const colunasNota = `chave_acesso, numero, data_emissao, valor_total, imposto_total,
	nome_emitente, nome_destinatario, doc_destinatario, uf_emitente, uf_destinatario,
	ind_ie_destinatario, crt_emitente, xml_fingerprint, created_at`

// NotaRepo implementação PostgreSQL de NotaRepository.
type NotaRepo struct {
	pool *pgxpool.Pool
}

// NewNotaRepository constrói o adaptador.
func NewNotaRepository(pool *pgxpool.Pool) *NotaRepo {
	return &NotaRepo{pool: pool}
}

// Criar grava cabeçalho e itens na mesma transação. A coluna ordem preserva
// a sequência dos det do documento.
func (r *NotaRepo) Criar(nota *entity.NotaFiscal, itens []*entity.ItemNotaFiscal) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO notas_fiscais (chave_acesso, numero, data_emissao, valor_total, imposto_total,
			nome_emitente, nome_emitente_norm, nome_destinatario, doc_destinatario,
			uf_emitente, uf_destinatario, ind_ie_destinatario, crt_emitente, xml_fingerprint)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		nota.ChaveAcesso, nota.Numero, nullIfZeroTime(nota), nota.ValorTotal, nota.ImpostoTotal,
		nota.NomeEmitente, texto.Normalizar(nota.NomeEmitente), nota.NomeDestinatario, nota.DocDestinatario,
		nota.UFEmitente, nota.UFDestinatario, nota.IndicadorIEDestinatario,
		nota.RegimeTributarioEmitente, nota.XMLFingerprint,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicado
		}
		return fmt.Errorf("insert nota: %w", err)
	}

	for ordem, item := range itens {
		_, err = tx.Exec(ctx, `
			INSERT INTO itens_nota (id, chave_acesso, ordem, codigo, codigo_ncm, descricao,
				quantidade, unidade, valor_unitario, valor_total, cst_icms)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			item.ID, nota.ChaveAcesso, ordem, item.Codigo, item.CodigoNCM, item.Descricao,
			item.Quantidade, item.Unidade, item.ValorUnitario, item.ValorTotal, item.CSTICMS,
		)
		if err != nil {
			return fmt.Errorf("insert item %d: %w", ordem, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// BuscarPorChave obtém a nota pelo identificador natural (chave de acesso).
func (r *NotaRepo) BuscarPorChave(chave string) (*entity.NotaFiscal, error) {
	query := `SELECT ` + colunasNota + ` FROM notas_fiscais WHERE chave_acesso = $1`
	nota, err := scanNota(r.pool.QueryRow(context.Background(), query, chave))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNaoEncontrado
		}
		return nil, fmt.Errorf("get nota: %w", err)
	}
	return nota, nil
}

// BuscarItens devolve os itens na ordem do documento.
func (r *NotaRepo) BuscarItens(chave string) ([]*entity.ItemNotaFiscal, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT id, chave_acesso, codigo, codigo_ncm, descricao, quantidade, unidade,
			valor_unitario, valor_total, cst_icms
		FROM itens_nota WHERE chave_acesso = $1 ORDER BY ordem`, chave)
	if err != nil {
		return nil, fmt.Errorf("list itens: %w", err)
	}
	defer rows.Close()

	var itens []*entity.ItemNotaFiscal
	for rows.Next() {
		var i entity.ItemNotaFiscal
		if err := rows.Scan(&i.ID, &i.ChaveAcesso, &i.Codigo, &i.CodigoNCM, &i.Descricao,
			&i.Quantidade, &i.Unidade, &i.ValorUnitario, &i.ValorTotal, &i.CSTICMS); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		itens = append(itens, &i)
	}
	return itens, rows.Err()
}

// Listar aplica os filtros e devolve a página mais o total de notas que
// casam com o filtro (para a paginação do cliente).
func (r *NotaRepo) Listar(filtro repository.FiltroNotas) ([]*entity.NotaFiscal, int, error) {
	where, args := montarWhere(filtro)
	ctx := context.Background()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM notas_fiscais`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notas: %w", err)
	}

	args = append(args, filtro.Limit, filtro.Offset)
	query := fmt.Sprintf(`SELECT %s FROM notas_fiscais%s ORDER BY data_emissao DESC NULLS LAST, chave_acesso LIMIT $%d OFFSET $%d`,
		colunasNota, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list notas: %w", err)
	}
	defer rows.Close()

	var notas []*entity.NotaFiscal
	for rows.Next() {
		nota, err := scanNota(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan nota: %w", err)
		}
		notas = append(notas, nota)
	}
	return notas, total, rows.Err()
}

// Excluir remove a nota; itens e estimativa caem por ON DELETE CASCADE.
func (r *NotaRepo) Excluir(chave string) error {
	tag, err := r.pool.Exec(context.Background(), `DELETE FROM notas_fiscais WHERE chave_acesso = $1`, chave)
	if err != nil {
		return fmt.Errorf("delete nota: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNaoEncontrado
	}
	return nil
}

// ExisteFingerprint indica se um documento com esse fingerprint já foi importado.
func (r *NotaRepo) ExisteFingerprint(fingerprint string) (bool, error) {
	var existe bool
	err := r.pool.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM notas_fiscais WHERE xml_fingerprint = $1)`, fingerprint).Scan(&existe)
	if err != nil {
		return false, fmt.Errorf("check fingerprint: %w", err)
	}
	return existe, nil
}

func montarWhere(filtro repository.FiltroNotas) (string, []any) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filtro.DataInicio != nil {
		conds = append(conds, "data_emissao >= "+arg(*filtro.DataInicio))
	}
	if filtro.DataFim != nil {
		conds = append(conds, "data_emissao <= "+arg(*filtro.DataFim))
	}
	if filtro.Emitente != "" {
		conds = append(conds, "nome_emitente_norm LIKE "+arg("%"+filtro.Emitente+"%"))
	}
	if filtro.ValorMin != nil {
		conds = append(conds, "valor_total >= "+arg(*filtro.ValorMin))
	}
	if filtro.ValorMax != nil {
		conds = append(conds, "valor_total <= "+arg(*filtro.ValorMax))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanNota(row pgx.Row) (*entity.NotaFiscal, error) {
	var n entity.NotaFiscal
	var dataEmissao *time.Time
	err := row.Scan(&n.ChaveAcesso, &n.Numero, &dataEmissao, &n.ValorTotal, &n.ImpostoTotal,
		&n.NomeEmitente, &n.NomeDestinatario, &n.DocDestinatario, &n.UFEmitente, &n.UFDestinatario,
		&n.IndicadorIEDestinatario, &n.RegimeTributarioEmitente, &n.XMLFingerprint, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	if dataEmissao != nil {
		n.DataEmissao = *dataEmissao
	}
	return &n, nil
}

// nullIfZeroTime: notas sem data de emissão gravam NULL em vez de 0001-01-01.
func nullIfZeroTime(nota *entity.NotaFiscal) any {
	if nota.DataEmissao.IsZero() {
		return nil
	}
	return nota.DataEmissao
}
