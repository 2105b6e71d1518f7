package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/obarros/fiscal-nfe-api/internal/application/dto"
	"github.com/obarros/fiscal-nfe-api/internal/application/ports"
)

// Verificação em tempo de compilação de que AnthropicService implementa o porto.
var _ ports.ConsultaAliquotaNCM = (*AnthropicService)(nil)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"

	anthropicSystemPrompt = `Você é um especialista tributário brasileiro em autopeças (setor automotivo).
Devolva SOMENTE um objeto JSON válido (sem markdown, sem blocos de código` + " ```json" + `) com esta estrutura exata:
{
  "ipi_aliquota": <número: alíquota de IPI em % conforme a TIPI vigente>,
  "mva_st_ajustada": <número: MVA ajustada em % para substituição tributária de autopeças entre as UFs informadas>
}

Regras:
- ipi_aliquota: alíquota da TIPI para o NCM exato; se o NCM não existir na TIPI, use a posição mais próxima.
- mva_st_ajustada: MVA ajustada do protocolo de autopeças aplicável ao par de UFs; sem protocolo aplicável, use a MVA original do segmento.
- Não inclua texto fora do JSON. Somente o objeto JSON.`
)

// AnthropicService adaptador que consulta alíquotas por NCM na API REST da
// Anthropic (Claude). Usa net/http; não requer o SDK oficial.
type AnthropicService struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewAnthropicService constrói o adaptador.
// model costuma ser "claude-3-5-haiku-20241022".
func NewAnthropicService(apiKey, model string) *AnthropicService {
	return &AnthropicService{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			// Timeout de rede de 25 s; o resolvedor impõe ainda o timeout do context.
			Timeout: 25 * time.Second,
		},
	}
}

// ── Estruturas internas do protocolo Anthropic Messages API ───────────────────

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float32            `json:"temperature"`
	System      string             `json:"system"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// jsonBlockRe extrai o primeiro objeto JSON do texto mesmo que o modelo o
// envolva em markdown. Captura do primeiro '{' até o último '}'.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// ── Implementação do porto ────────────────────────────────────────────────────

// ConsultarAliquotas envia o NCM e o par de UFs ao Claude e devolve as
// alíquotas de IPI e MVA.
func (s *AnthropicService) ConsultarAliquotas(ctx context.Context, ncm, ufOrigem, ufDestino string, naoContribuinte bool) (*dto.AliquotaNCMDTO, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("AI: ANTHROPIC_API_KEY não configurado")
	}

	payload := anthropicRequest{
		Model:       s.model,
		MaxTokens:   256,
		Temperature: 0.1,
		System:      anthropicSystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: promptOperacao(ncm, ufOrigem, ufDestino, naoContribuinte)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("AI: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicMessagesURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("AI: criar HTTP request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

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
		var errResp anthropicResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
			return nil, fmt.Errorf("AI: Anthropic error (%s): %s", errResp.Error.Type, errResp.Error.Message)
		}
		return nil, fmt.Errorf("AI: Anthropic HTTP %d: %s", resp.StatusCode, string(rawBody))
	}

	var anthResp anthropicResponse
	if err := json.Unmarshal(rawBody, &anthResp); err != nil {
		return nil, fmt.Errorf("AI: deserializar resposta Anthropic: %w", err)
	}

	if len(anthResp.Content) == 0 {
		return nil, fmt.Errorf("AI: Claude devolveu resposta vazia")
	}

	rawText := anthResp.Content[0].Text

	// Extrair só o bloco JSON mesmo com texto em volta.
	cleanJSON := extractJSON(rawText)
	if cleanJSON == "" {
		return nil, fmt.Errorf("AI: nenhum JSON válido na resposta do modelo (resposta: %s)", rawText)
	}

	var aliquotas aliquotaPayload
	if err := json.Unmarshal([]byte(cleanJSON), &aliquotas); err != nil {
		return nil, fmt.Errorf("AI: parsear JSON de alíquotas: %w (JSON extraído: %s)", err, cleanJSON)
	}
	return aliquotas.paraDTO()
}

// extractJSON extrai o primeiro objeto JSON bem formado de um texto livre.
// Dois passos: remover blocos de código markdown e, se necessário, capturar
// o primeiro { … } por regex.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		// remover a linha de abertura (```json ou ```)
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		// remover o fechamento ```
		if close := strings.LastIndex(after, "```"); close != -1 {
			after = after[:close]
		}
		text = strings.TrimSpace(after)
	}

	if strings.HasPrefix(text, "{") {
		return text
	}

	match := jsonBlockRe.FindString(text)
	return strings.TrimSpace(match)
}
