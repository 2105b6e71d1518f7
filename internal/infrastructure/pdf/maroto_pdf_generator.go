// Package pdf gera o relatório de estimativa de carga tributária de uma nota.
//
// Layout da página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emitente + CRT  │  N° Nota + Data de emissão       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  OPERAÇÃO: UF origem → UF destino / destinatário            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABELA: Item | NCM | Base | ICMS | IPI | PIS | COFINS      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAIS: Estimado / Declarado na nota / Diferença           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PREMISSAS DO CÁLCULO + QR da chave de acesso               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/obarros/fiscal-nfe-api/internal/application/notas"
	"github.com/obarros/fiscal-nfe-api/internal/domain/entity"
)

var _ notas.GeradorPDFEstimativa = (*MarotoPDFGenerator)(nil)

// ── Paleta de cores ───────────────────────────────────────────────────────────

var (
	corPrimaria = &props.Color{Red: 0, Green: 90, Blue: 60}
	corCinza    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa notas.GeradorPDFEstimativa usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator constrói o gerador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// Gerar monta o relatório e devolve os bytes do PDF.
func (g *MarotoPDFGenerator) Gerar(
	nota *entity.NotaFiscal,
	itens []*entity.ItemNotaFiscal,
	estimativa *entity.Estimativa,
	estItens []*entity.EstimativaItem,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Estimativa de Carga Tributária", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(nota))
	m.AddRows(line.NewRow(1, props.Line{Color: corPrimaria, Thickness: 0.5}))
	m.AddRows(operacaoRow(nota))
	m.AddRows(line.NewRow(1, props.Line{Color: corPrimaria, Thickness: 0.3}))

	m.AddRows(tabelaHeaderRow())
	porItem := indexarPorItem(estItens)
	for _, r := range tabelaItemRows(itens, porItem) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: corPrimaria, Thickness: 0.3}))
	m.AddRows(totaisRow(nota, estimativa))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: corCinza, Thickness: 0.3}))
	for _, r := range premissasRows(nota, estimativa) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: gerar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Seções ────────────────────────────────────────────────────────────────────

// headerRow: emitente (esq) e número + data da nota (dir).
func headerRow(nota *entity.NotaFiscal) core.Row {
	data := "—"
	if !nota.DataEmissao.IsZero() {
		data = nota.DataEmissao.Format("02/01/2006")
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(nota.NomeEmitente, "Emitente não informado"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: corPrimaria, Top: 1,
			}),
			text.New("Regime: "+descreveCRT(nota.RegimeTributarioEmitente), props.Text{
				Size: 9, Top: 9, Color: corCinza,
			}),
		),
		col.New(5).Add(
			text.New("ESTIMATIVA DE CARGA TRIBUTÁRIA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: corPrimaria, Top: 1,
			}),
			text.New("NF-e Nº "+nonEmpty(nota.Numero, "—"), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Emissão: "+data, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: corCinza,
			}),
		),
	)
}

// operacaoRow: jurisdições e destinatário.
func operacaoRow(nota *entity.NotaFiscal) core.Row {
	destino := nota.UFDestinatario
	if destino == "" {
		destino = nota.UFEmitente
	}
	tipoDest := "contribuinte de ICMS"
	if nota.DestinatarioNaoContribuinte() {
		tipoDest = "consumidor final não contribuinte"
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("OPERAÇÃO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: corPrimaria, Top: 1,
			}),
			text.New(fmt.Sprintf("%s → %s   |   Destinatário: %s (%s)",
				nota.UFEmitente, destino,
				nonEmpty(nota.NomeDestinatario, "—"), tipoDest,
			), props.Text{Size: 8, Top: 7, Color: corCinza}),
		),
	)
}

// tabelaHeaderRow: cabeçalho da tabela de itens.
func tabelaHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: corPrimaria, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Item", 3, align.Left),
		h("NCM", 1, align.Center),
		h("Base", 2, align.Right),
		h("ICMS", 2, align.Right),
		h("IPI", 1, align.Right),
		h("PIS", 1, align.Right),
		h("COFINS", 2, align.Right),
	)
}

// tabelaItemRows: uma linha por item com a decomposição estimada.
func tabelaItemRows(itens []*entity.ItemNotaFiscal, porItem map[string]*entity.EstimativaItem) []core.Row {
	celula := func(valor string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(valor, props.Text{
			Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	result := make([]core.Row, 0, len(itens))
	for _, item := range itens {
		est := porItem[item.ID]
		if est == nil {
			est = &entity.EstimativaItem{}
		}
		result = append(result, row.New(7).Add(
			celula(nonEmpty(item.Descricao, item.Codigo), 3, align.Left),
			celula(nonEmpty(item.CodigoNCM, "—"), 1, align.Center),
			celula(moedaBR(item.ValorBase()), 2, align.Right),
			celula(moedaBR(est.ICMS), 2, align.Right),
			celula(moedaBR(est.IPI), 1, align.Right),
			celula(moedaBR(est.PIS), 1, align.Right),
			celula(moedaBR(est.COFINS), 2, align.Right),
		))
	}
	return result
}

// totaisRow: estimado, declarado na nota e diferença.
func totaisRow(nota *entity.NotaFiscal, estimativa *entity.Estimativa) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: corPrimaria, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: corPrimaria, Right: 1,
		})
	}

	return row.New(30).Add(
		col.New(2),
		col.New(4).Add(
			label("ICMS estimado:"),
			label("IPI estimado:"),
			label("PIS/COFINS estimado:"),
			label("Imposto declarado na nota:"),
			grandLabel("TOTAL ESTIMADO:"),
			grandLabel("DIFERENÇA:"),
		),
		col.New(4).Add(
			value("R$ "+moedaBR(estimativa.ImpostoEstimadoICMS)),
			value("R$ "+moedaBR(estimativa.ImpostoEstimadoIPI)),
			value("R$ "+moedaBR(estimativa.ImpostoEstimadoPISCOF)),
			value("R$ "+moedaBR(nota.ImpostoTotal)),
			grandValue("R$ "+moedaBR(estimativa.ImpostoEstimadoTotal)),
			grandValue("R$ "+moedaBR(estimativa.DiferencaImposto)),
		),
		col.New(2),
	)
}

// premissasRows: trilha de premissas + QR da chave de acesso.
func premissasRows(nota *entity.NotaFiscal, estimativa *entity.Estimativa) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("PREMISSAS DO CÁLCULO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: corPrimaria, Top: 1,
			}),
		)),
	}
	for _, premissa := range estimativa.Premissas {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New(strings.TrimPrefix(premissa, "- "), props.Text{
				Size: 7, Color: corCinza, Top: 0.5, Left: 2,
			}),
		)))
	}

	rows = append(rows, row.New(3))
	rows = append(rows, row.New(35).Add(
		col.New(4).Add(code.NewQr(nota.ChaveAcesso, props.Rect{
			Percent: 90,
			Center:  true,
		})),
		col.New(8).Add(
			text.New("Chave de acesso:", props.Text{
				Style: fontstyle.Bold, Size: 7, Top: 4, Left: 3,
			}),
			text.New(nota.ChaveAcesso, props.Text{
				Size: 7, Top: 9, Left: 3, Color: corCinza,
			}),
			text.New("Valores estimados para fins informativos.\nNão substitui a apuração fiscal do contribuinte.", props.Text{
				Size: 8, Top: 18, Left: 3, Color: corCinza,
			}),
		),
	))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func indexarPorItem(estItens []*entity.EstimativaItem) map[string]*entity.EstimativaItem {
	porItem := make(map[string]*entity.EstimativaItem, len(estItens))
	for _, it := range estItens {
		porItem[it.ItemID] = it
	}
	return porItem
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func descreveCRT(crt string) string {
	switch crt {
	case entity.CRTSimplesNacional:
		return "Simples Nacional"
	case entity.CRTSimplesSublimite:
		return "Simples Nacional (sublimite)"
	case entity.CRTRegimeNormal:
		return "Regime Normal"
	}
	return "não informado"
}

// moedaBR formata com separador de milhar brasileiro: 1234567.8 → "1.234.567,80".
func moedaBR(d decimal.Decimal) string {
	s := d.StringFixed(2)
	negativo := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	inteiro, centavos, _ := strings.Cut(s, ".")

	n := len(inteiro)
	buf := make([]byte, 0, n+n/3)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, inteiro[i])
	}
	out := string(buf) + "," + centavos
	if negativo {
		return "-" + out
	}
	return out
}
