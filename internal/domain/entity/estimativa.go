package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estimativa é o resultado agregado de uma execução do motor de estimativa
// para uma nota. Imutável após a construção; recalcular gera uma nova.
type Estimativa struct {
	ID                    string
	ChaveAcesso           string
	ImpostoEstimadoTotal  decimal.Decimal
	ImpostoEstimadoICMS   decimal.Decimal
	ImpostoEstimadoIPI    decimal.Decimal
	ImpostoEstimadoPISCOF decimal.Decimal
	DiferencaImposto      decimal.Decimal // estimado − declarado (sinal significativo)
	PossuiNCMDesconhecido bool
	Premissas             []string // trilha de auditoria, ordem fixa
	DataCalculo           time.Time
}

// EstimativaItem guarda a decomposição de impostos estimada para um item.
type EstimativaItem struct {
	ID           string
	EstimativaID string
	ItemID       string
	ICMS         decimal.Decimal
	IPI          decimal.Decimal
	PIS          decimal.Decimal
	COFINS       decimal.Decimal
}

// Total devolve a soma dos quatro componentes do item.
func (e *EstimativaItem) Total() decimal.Decimal {
	return e.ICMS.Add(e.IPI).Add(e.PIS).Add(e.COFINS)
}
