package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Indicador de IE do destinatário na NF-e (tag indIEDest).
const (
	IndIEContribuinte    = "1" // Contribuinte de ICMS
	IndIEIsento          = "2" // Contribuinte isento de inscrição
	IndIENaoContribuinte = "9" // Não contribuinte (consumidor final)
)

// Códigos de Regime Tributário do emitente (tag CRT).
const (
	CRTSimplesNacional   = "1"
	CRTSimplesSublimite  = "2"
	CRTRegimeNormal      = "3"
)

// NotaFiscal representa o cabeçalho de uma NF-e importada.
// ImpostoTotal é o imposto declarado na nota (soma dos campos de ICMSTot),
// usado como base de comparação da estimativa.
type NotaFiscal struct {
	ChaveAcesso              string
	Numero                   string
	DataEmissao              time.Time
	ValorTotal               decimal.Decimal
	ImpostoTotal             decimal.Decimal
	NomeEmitente             string
	NomeDestinatario         string
	DocDestinatario          string
	UFEmitente               string
	UFDestinatario           string // vazio = operação interna (mesma UF do emitente)
	IndicadorIEDestinatario  string
	RegimeTributarioEmitente string // CRT: "1" Simples, "3" Normal
	XMLFingerprint           string // SHA-256 do XML canonicalizado (detecção de duplicados)
	CreatedAt                time.Time
}

// Interestadual indica se a nota é uma operação interestadual.
func (n *NotaFiscal) Interestadual() bool {
	return n.UFDestinatario != "" && n.UFDestinatario != n.UFEmitente
}

// DestinatarioNaoContribuinte indica venda a consumidor final não contribuinte de ICMS.
func (n *NotaFiscal) DestinatarioNaoContribuinte() bool {
	return n.IndicadorIEDestinatario == IndIENaoContribuinte
}
