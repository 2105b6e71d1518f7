package dto

import "github.com/shopspring/decimal"

// FiltroNotasRequest querystring de GET /api/notas (mesmos filtros da tela
// de consulta: período, emitente e faixa de valor).
type FiltroNotasRequest struct {
	DataInicio string `query:"data_inicio"` // YYYY-MM-DD
	DataFim    string `query:"data_fim"`    // YYYY-MM-DD
	Emitente   string `query:"emitente"`    // busca sem acentos/caixa
	ValorMin   string `query:"valor_min"`
	ValorMax   string `query:"valor_max"`
	PageRequest
}

// ItemNotaResponse linha de produto da nota.
type ItemNotaResponse struct {
	ID            string          `json:"id"`
	Codigo        string          `json:"codigo"`
	CodigoNCM     string          `json:"codigo_ncm"`
	Descricao     string          `json:"descricao"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	Unidade       string          `json:"unidade,omitempty"`
	ValorUnitario decimal.Decimal `json:"valor_unitario"`
	ValorTotal    decimal.Decimal `json:"valor_total"`
	CSTICMS       string          `json:"cst_icms,omitempty"`
}

// NotaResponse nota fiscal com itens.
type NotaResponse struct {
	ChaveAcesso              string               `json:"chave_acesso"`
	Numero                   string               `json:"numero"`
	DataEmissao              string               `json:"data_emissao"`
	ValorTotal               decimal.Decimal      `json:"valor_total"`
	ImpostoTotal             decimal.Decimal      `json:"imposto_total"`
	NomeEmitente             string               `json:"nome_emitente"`
	NomeDestinatario         string               `json:"nome_destinatario"`
	DocDestinatario          string               `json:"doc_destinatario,omitempty"`
	UFEmitente               string               `json:"uf_emitente"`
	UFDestinatario           string               `json:"uf_destinatario,omitempty"`
	IndicadorIEDestinatario  string               `json:"indicador_ie_destinatario,omitempty"`
	RegimeTributarioEmitente string               `json:"regime_tributario_emitente,omitempty"`
	Itens                    []ItemNotaResponse   `json:"itens"`
	Estimativa               *EstimativaResponse  `json:"estimativa,omitempty"`
}

// ListaNotasResponse página de notas (sem itens, listagem leve).
type ListaNotasResponse struct {
	Notas []NotaResponse `json:"notas"`
	Page  PageResponse   `json:"page"`
}
