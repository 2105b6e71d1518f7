package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obarros/fiscal-nfe-api/internal/domain"
	"github.com/obarros/fiscal-nfe-api/internal/domain/entity"
	"github.com/obarros/fiscal-nfe-api/internal/domain/repository"
)

var _ repository.EstimativaRepository = (*EstimativaRepo)(nil)

// EstimativaRepo implementação PostgreSQL de EstimativaRepository.
type EstimativaRepo struct {
	pool *pgxpool.Pool
}

// NewEstimativaRepository constrói o adaptador.
func NewEstimativaRepository(pool *pgxpool.Pool) *EstimativaRepo {
	return &EstimativaRepo{pool: pool}
}

// Salvar grava a estimativa e seus itens, substituindo a anterior da mesma
// nota na mesma transação.
func (r *EstimativaRepo) Salvar(e *entity.Estimativa, itens []*entity.EstimativaItem) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM estimativas WHERE chave_acesso = $1`, e.ChaveAcesso); err != nil {
		return fmt.Errorf("delete estimativa anterior: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO estimativas (id, chave_acesso, imposto_estimado_total, imposto_estimado_icms,
			imposto_estimado_ipi, imposto_estimado_pis_cofins, diferenca_imposto,
			possui_ncm_desconhecido, premissas, data_calculo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.ChaveAcesso, e.ImpostoEstimadoTotal, e.ImpostoEstimadoICMS,
		e.ImpostoEstimadoIPI, e.ImpostoEstimadoPISCOF, e.DiferencaImposto,
		e.PossuiNCMDesconhecido, e.Premissas, e.DataCalculo,
	)
	if err != nil {
		return fmt.Errorf("insert estimativa: %w", err)
	}

	for _, item := range itens {
		_, err = tx.Exec(ctx, `
			INSERT INTO estimativa_itens (id, estimativa_id, item_id, icms, ipi, pis, cofins)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.EstimativaID, item.ItemID, item.ICMS, item.IPI, item.PIS, item.COFINS,
		)
		if err != nil {
			return fmt.Errorf("insert estimativa item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// BuscarPorChave devolve a estimativa corrente da nota.
func (r *EstimativaRepo) BuscarPorChave(chave string) (*entity.Estimativa, error) {
	var e entity.Estimativa
	err := r.pool.QueryRow(context.Background(), `
		SELECT id, chave_acesso, imposto_estimado_total, imposto_estimado_icms,
			imposto_estimado_ipi, imposto_estimado_pis_cofins, diferenca_imposto,
			possui_ncm_desconhecido, premissas, data_calculo
		FROM estimativas WHERE chave_acesso = $1`, chave).Scan(
		&e.ID, &e.ChaveAcesso, &e.ImpostoEstimadoTotal, &e.ImpostoEstimadoICMS,
		&e.ImpostoEstimadoIPI, &e.ImpostoEstimadoPISCOF, &e.DiferencaImposto,
		&e.PossuiNCMDesconhecido, &e.Premissas, &e.DataCalculo,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSemEstimativa
		}
		return nil, fmt.Errorf("get estimativa: %w", err)
	}
	return &e, nil
}

// BuscarItens devolve a decomposição por item da estimativa.
func (r *EstimativaRepo) BuscarItens(estimativaID string) ([]*entity.EstimativaItem, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT ei.id, ei.estimativa_id, ei.item_id, ei.icms, ei.ipi, ei.pis, ei.cofins
		FROM estimativa_itens ei
		JOIN itens_nota i ON i.id = ei.item_id
		WHERE ei.estimativa_id = $1
		ORDER BY i.ordem`, estimativaID)
	if err != nil {
		return nil, fmt.Errorf("list estimativa itens: %w", err)
	}
	defer rows.Close()

	var itens []*entity.EstimativaItem
	for rows.Next() {
		var i entity.EstimativaItem
		if err := rows.Scan(&i.ID, &i.EstimativaID, &i.ItemID, &i.ICMS, &i.IPI, &i.PIS, &i.COFINS); err != nil {
			return nil, fmt.Errorf("scan estimativa item: %w", err)
		}
		itens = append(itens, &i)
	}
	return itens, rows.Err()
}
