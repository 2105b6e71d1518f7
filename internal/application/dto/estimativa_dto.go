package dto

import "github.com/shopspring/decimal"

// AliquotaNCMDTO resposta do colaborador de consulta de alíquotas por NCM
// (serviço de IA). Forma estrita: ambos os campos presentes ou resultado nulo.
type AliquotaNCMDTO struct {
	AliquotaIPI   decimal.Decimal `json:"ipi_aliquota"`
	MVAStAjustada decimal.Decimal `json:"mva_st_ajustada"`
}

// EstimativaItemResponse decomposição estimada de um item.
type EstimativaItemResponse struct {
	ItemID string          `json:"item_id"`
	ICMS   decimal.Decimal `json:"icms"`
	IPI    decimal.Decimal `json:"ipi"`
	PIS    decimal.Decimal `json:"pis"`
	COFINS decimal.Decimal `json:"cofins"`
}

// EstimativaResponse relatório de estimativa de uma nota.
// Diferenca = estimado − declarado; positivo significa estimativa acima do
// imposto declarado na nota.
type EstimativaResponse struct {
	ID                    string                   `json:"id"`
	ChaveAcesso           string                   `json:"chave_acesso"`
	ImpostoEstimadoTotal  decimal.Decimal          `json:"imposto_estimado_total"`
	ImpostoEstimadoICMS   decimal.Decimal          `json:"imposto_estimado_icms"`
	ImpostoEstimadoIPI    decimal.Decimal          `json:"imposto_estimado_ipi"`
	ImpostoEstimadoPISCOF decimal.Decimal          `json:"imposto_estimado_pis_cofins"`
	DiferencaImposto      decimal.Decimal          `json:"diferenca_imposto"`
	PossuiNCMDesconhecido bool                     `json:"possui_ncm_desconhecido"`
	Premissas             []string                 `json:"calculo_premissas"`
	DataCalculo           string                   `json:"data_calculo"` // RFC 3339
	Itens                 []EstimativaItemResponse `json:"itens,omitempty"`
}
