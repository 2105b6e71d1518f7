package dto

import "github.com/shopspring/decimal"

// EstadoICMSResponse alíquota interna e FCP de uma UF.
type EstadoICMSResponse struct {
	UF       string          `json:"uf"`
	Aliquota decimal.Decimal `json:"aliquota"`
	FCP      decimal.Decimal `json:"fcp"`
}

// TabelaAliquotasResponse dados de referência usados nos cálculos.
type TabelaAliquotasResponse struct {
	Estados                  []EstadoICMSResponse       `json:"estados"`
	AliquotaInterIncentivada decimal.Decimal            `json:"aliquota_inter_incentivada"`
	AliquotaInterGeral       decimal.Decimal            `json:"aliquota_inter_geral"`
	IPIPorNCM                map[string]decimal.Decimal `json:"ipi_por_ncm"`
	MVAPadrao                decimal.Decimal            `json:"mva_padrao"`
	AliquotaPIS              decimal.Decimal            `json:"aliquota_pis"`
	AliquotaCOFINS           decimal.Decimal            `json:"aliquota_cofins"`
}
