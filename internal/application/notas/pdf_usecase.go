package notas

import (
	"context"
	"fmt"

	"github.com/obarros/fiscal-nfe-api/internal/domain"
	"github.com/obarros/fiscal-nfe-api/internal/domain/repository"
	"github.com/obarros/fiscal-nfe-api/pkg/logger"
	"github.com/obarros/fiscal-nfe-api/pkg/nfe"
)

// PDFUseCase gera o relatório em PDF da estimativa de uma nota.
type PDFUseCase struct {
	notas       repository.NotaRepository
	estimativas repository.EstimativaRepository
	gerador     GeradorPDFEstimativa
	log         *logger.Logger
}

// NewPDFUseCase constrói o caso de uso.
func NewPDFUseCase(notas repository.NotaRepository, estimativas repository.EstimativaRepository, gerador GeradorPDFEstimativa, log *logger.Logger) *PDFUseCase {
	return &PDFUseCase{notas: notas, estimativas: estimativas, gerador: gerador, log: log}
}

// Gerar devolve os bytes do PDF. Exige estimativa já calculada: sem ela,
// domain.ErrSemEstimativa.
func (uc *PDFUseCase) Gerar(ctx context.Context, chave string) ([]byte, error) {
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
	estimativa, err := uc.estimativas.BuscarPorChave(chave)
	if err != nil {
		return nil, err
	}
	estItens, err := uc.estimativas.BuscarItens(estimativa.ID)
	if err != nil {
		return nil, err
	}

	pdf, err := uc.gerador.Gerar(nota, itens, estimativa, estItens)
	if err != nil {
		return nil, fmt.Errorf("gerar PDF da estimativa: %w", err)
	}
	uc.log.Debug().Str("chave", chave).Int("bytes", len(pdf)).Msg("PDF de estimativa gerado")
	return pdf, nil
}
