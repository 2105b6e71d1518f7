package entity

import "github.com/shopspring/decimal"

// ItemNotaFiscal representa uma linha de produto da NF-e (tag det).
type ItemNotaFiscal struct {
	ID            string
	ChaveAcesso   string
	Codigo        string // cProd
	CodigoNCM     string // NCM (pontos sem significado)
	Descricao     string // xProd
	Quantidade    decimal.Decimal
	Unidade       string
	ValorUnitario decimal.Decimal
	ValorTotal    decimal.Decimal // vProd
	CSTICMS       string // CST ou CSOSN do grupo ICMS do item
}

// ValorBase devolve a base de cálculo do item: quantidade × valor unitário
// quando ambos estão presentes, senão o valor total pré-calculado da nota.
func (i *ItemNotaFiscal) ValorBase() decimal.Decimal {
	if i.Quantidade.IsPositive() && i.ValorUnitario.IsPositive() {
		return i.Quantidade.Mul(i.ValorUnitario)
	}
	return i.ValorTotal
}
