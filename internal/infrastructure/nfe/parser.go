// Parser do XML de NF-e (layout 4.00). Tolerante a namespace e ao elemento
// raiz: aceita tanto o nfeProc (nota processada, com protocolo) quanto o NFe
// puro. Aceita documentos em UTF-8 e ISO-8859-1.
package nfe

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/obarros/fiscal-nfe-api/internal/domain"
	"github.com/obarros/fiscal-nfe-api/internal/domain/entity"
)

// NotaParseada resultado do parse: cabeçalho + itens na ordem do documento.
// IDs e fingerprint são atribuídos pelo caso de uso de importação.
type NotaParseada struct {
	Nota  *entity.NotaFiscal
	Itens []*entity.ItemNotaFiscal
}

// Parser extrai de um XML de NF-e os campos usados pela aplicação.
type Parser struct{}

// NewParser cria o parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse lê o documento e extrai cabeçalho e itens. Erros de sintaxe ou a
// ausência do infNFe retornam domain.ErrXMLInvalido.
func (p *Parser) Parse(data []byte) (*NotaParseada, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrXMLInvalido, err)
	}

	inf := doc.FindElement("//infNFe")
	if inf == nil {
		return nil, fmt.Errorf("%w: elemento infNFe não encontrado", domain.ErrXMLInvalido)
	}

	nota := &entity.NotaFiscal{
		ChaveAcesso:              chaveDoID(inf.SelectAttrValue("Id", "")),
		Numero:                   texto(inf, "ide/nNF"),
		DataEmissao:              dataEmissao(inf),
		NomeEmitente:             texto(inf, "emit/xNome"),
		UFEmitente:               texto(inf, "emit/enderEmit/UF"),
		RegimeTributarioEmitente: texto(inf, "emit/CRT"),
		NomeDestinatario:         texto(inf, "dest/xNome"),
		DocDestinatario:          docDestinatario(inf),
		UFDestinatario:           texto(inf, "dest/enderDest/UF"),
		IndicadorIEDestinatario:  texto(inf, "dest/indIEDest"),
	}

	if tot := inf.FindElement("total/ICMSTot"); tot != nil {
		nota.ValorTotal = valor(tot, "vNF")
		nota.ImpostoTotal = impostoDeclarado(tot)
	}

	var itens []*entity.ItemNotaFiscal
	for _, det := range inf.FindElements("det") {
		prod := det.FindElement("prod")
		if prod == nil {
			continue
		}
		itens = append(itens, &entity.ItemNotaFiscal{
			Codigo:        texto(prod, "cProd"),
			CodigoNCM:     texto(prod, "NCM"),
			Descricao:     texto(prod, "xProd"),
			Quantidade:    valor(prod, "qCom"),
			Unidade:       texto(prod, "uCom"),
			ValorUnitario: valor(prod, "vUnCom"),
			ValorTotal:    valor(prod, "vProd"),
			CSTICMS:       cstICMS(det),
		})
	}

	return &NotaParseada{Nota: nota, Itens: itens}, nil
}

// impostoDeclarado soma os componentes de imposto do ICMSTot. É o valor
// contra o qual a estimativa é comparada.
func impostoDeclarado(tot *etree.Element) decimal.Decimal {
	total := decimal.Zero
	for _, campo := range []string{"vICMS", "vST", "vFCPST", "vII", "vIPI", "vPIS", "vCOFINS", "vOutro"} {
		total = total.Add(valor(tot, campo))
	}
	return total
}

// cstICMS devolve o CST ou CSOSN do primeiro grupo filho de imposto/ICMS
// (ICMS00, ICMS10, ICMSSN102 etc.).
func cstICMS(det *etree.Element) string {
	icms := det.FindElement("imposto/ICMS")
	if icms == nil {
		return ""
	}
	for _, grupo := range icms.ChildElements() {
		if cst := texto(grupo, "CST"); cst != "" {
			return cst
		}
		if csosn := texto(grupo, "CSOSN"); csosn != "" {
			return csosn
		}
	}
	return ""
}

// chaveDoID extrai os 44 dígitos do atributo Id ("NFe3523..." → "3523...").
func chaveDoID(id string) string {
	var b strings.Builder
	for _, r := range id {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// dataEmissao lê dhEmi (4.00, RFC 3339 com offset) com fallback para o
// dEmi legado (data pura).
func dataEmissao(inf *etree.Element) time.Time {
	if s := texto(inf, "ide/dhEmi"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
	}
	if s := texto(inf, "ide/dEmi"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func docDestinatario(inf *etree.Element) string {
	if cnpj := texto(inf, "dest/CNPJ"); cnpj != "" {
		return cnpj
	}
	return texto(inf, "dest/CPF")
}

func texto(e *etree.Element, caminho string) string {
	if el := e.FindElement(caminho); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}

func valor(e *etree.Element, caminho string) decimal.Decimal {
	s := texto(e, caminho)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// charsetReader: SEFAZ ainda emite XML em ISO-8859-1 com alguma frequência.
func charsetReader(charset string, r io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8":
		return r, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(r), nil
	case "windows-1252":
		return charmap.Windows1252.NewDecoder().Reader(r), nil
	}
	return nil, fmt.Errorf("nfe: charset não suportado: %s", charset)
}
