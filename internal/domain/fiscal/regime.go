package fiscal

// Regime tributário do emitente, colapsado para efeito da estimativa.
// CRT 2 (Simples acima do sublimite) cai em RegimeDesconhecido: ICMS e IPI
// são estimados normalmente, mas PIS/COFINS fica em zero.
type Regime int

const (
	RegimeDesconhecido Regime = iota
	RegimeSimples             // CRT 1: recolhimento unificado via DAS
	RegimeNormal              // CRT 3: Lucro Presumido/Real
)

// RegimePorCRT mapeia o Código de Regime Tributário da NF-e.
func RegimePorCRT(crt string) Regime {
	switch crt {
	case "1":
		return RegimeSimples
	case "3":
		return RegimeNormal
	default:
		return RegimeDesconhecido
	}
}
