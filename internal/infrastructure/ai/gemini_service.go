package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/obarros/fiscal-nfe-api/internal/application/dto"
	"github.com/obarros/fiscal-nfe-api/internal/application/ports"
)

// Verificação em tempo de compilação de que GeminiService implementa o porto.
var _ ports.ConsultaAliquotaNCM = (*GeminiService)(nil)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"

	// systemPrompt define o papel do modelo e o formato de saída.
	// response_mime_type=application/json obriga o Gemini a devolver JSON
	// puro, sem blocos de markdown para limpar.
	systemPrompt = `Você é um especialista tributário brasileiro em autopeças (setor automotivo).
Dado um código NCM e a UF de origem e destino da operação, devolva SOMENTE um objeto JSON (sem texto adicional) com esta estrutura exata:
{
  "ipi_aliquota": <número: alíquota de IPI em % conforme a TIPI vigente>,
  "mva_st_ajustada": <número: MVA ajustada em % para substituição tributária de autopeças entre as UFs informadas>
}

Regras:
- ipi_aliquota: alíquota da TIPI para o NCM exato; se o NCM não existir na TIPI, use a posição mais próxima.
- mva_st_ajustada: MVA ajustada do protocolo de autopeças aplicável ao par de UFs; sem protocolo aplicável, use a MVA original do segmento.
- Não inclua texto fora do JSON. Somente o objeto JSON.`
)

// GeminiService adaptador que consulta alíquotas por NCM na API REST do
// Google Gemini. Usa somente net/http; não requer SDK.
type GeminiService struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGeminiService constrói o adaptador. model costuma ser "gemini-1.5-flash".
func NewGeminiService(apiKey, model string) *GeminiService {
	return &GeminiService{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 20 * time.Second, // timeout de rede; o caller também impõe WithTimeout
		},
	}
}

// ── Estruturas internas da API do Gemini ──────────────────────────────────────

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  genConfig       `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type genConfig struct {
	ResponseMIMEType string  `json:"responseMimeType"` // "application/json" → JSON puro garantido
	Temperature      float32 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// aliquotaPayload é o JSON que esperamos receber do modelo. Ponteiros para
// distinguir campo ausente de zero: resposta incompleta é erro, não zero.
type aliquotaPayload struct {
	IPIAliquota   *float64 `json:"ipi_aliquota"`
	MVAStAjustada *float64 `json:"mva_st_ajustada"`
}

func (p aliquotaPayload) paraDTO() (*dto.AliquotaNCMDTO, error) {
	if p.IPIAliquota == nil || p.MVAStAjustada == nil {
		return nil, fmt.Errorf("AI: resposta incompleta do modelo")
	}
	if *p.IPIAliquota < 0 || *p.MVAStAjustada < 0 {
		return nil, fmt.Errorf("AI: alíquota negativa na resposta do modelo")
	}
	return &dto.AliquotaNCMDTO{
		AliquotaIPI:   decimal.NewFromFloat(*p.IPIAliquota),
		MVAStAjustada: decimal.NewFromFloat(*p.MVAStAjustada),
	}, nil
}

func promptOperacao(ncm, ufOrigem, ufDestino string, naoContribuinte bool) string {
	destinatario := "contribuinte de ICMS (revenda)"
	if naoContribuinte {
		destinatario = "consumidor final não contribuinte"
	}
	return fmt.Sprintf("NCM: %s\nUF de origem: %s\nUF de destino: %s\nDestinatário: %s", ncm, ufOrigem, ufDestino, destinatario)
}

// ── Implementação do porto ────────────────────────────────────────────────────

// ConsultarAliquotas consulta o Gemini pelas alíquotas de IPI e MVA do NCM.
func (s *GeminiService) ConsultarAliquotas(ctx context.Context, ncm, ufOrigem, ufDestino string, naoContribuinte bool) (*dto.AliquotaNCMDTO, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("AI: GEMINI_API_KEY não configurado")
	}

	payload := geminiRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: systemPrompt}},
		},
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: promptOperacao(ncm, ufOrigem, ufDestino, naoContribuinte)}},
			},
		},
		GenerationConfig: genConfig{
			ResponseMIMEType: "application/json",
			Temperature:      0.1, // respostas determinísticas para dados tabelados
			MaxOutputTokens:  256,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("AI: serializar request: %w", err)
	}

	url := fmt.Sprintf(geminiBaseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("AI: criar HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("AI: timeout ou cancelamento: %w", ctx.Err())
		}
		return nil, fmt.Errorf("AI: chamada HTTP falhou: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("AI: ler resposta: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp geminiResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
			return nil, fmt.Errorf("AI: Gemini error %d: %s", errResp.Error.Code, errResp.Error.Message)
		}
		return nil, fmt.Errorf("AI: Gemini HTTP %d", resp.StatusCode)
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(rawBody, &gemResp); err != nil {
		return nil, fmt.Errorf("AI: deserializar resposta Gemini: %w", err)
	}

	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("AI: Gemini devolveu resposta vazia")
	}

	rawJSON := strings.TrimSpace(gemResp.Candidates[0].Content.Parts[0].Text)

	var aliquotas aliquotaPayload
	if err := json.Unmarshal([]byte(rawJSON), &aliquotas); err != nil {
		return nil, fmt.Errorf("AI: resposta do modelo não é JSON válido: %w (resposta: %s)", err, rawJSON)
	}
	return aliquotas.paraDTO()
}
