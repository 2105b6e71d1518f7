// Package nfe: utilidades da chave de acesso da NF-e (44 dígitos).
// O último dígito é verificador, calculado por módulo 11 com pesos 2..9
// aplicados da direita para a esquerda sobre os 43 primeiros.
package nfe

import "fmt"

// TamanhoChave é o comprimento da chave de acesso.
const TamanhoChave = 44

// CalcularDV calcula o dígito verificador para os 43 primeiros dígitos.
func CalcularDV(chave43 string) (int, error) {
	if len(chave43) != TamanhoChave-1 {
		return 0, fmt.Errorf("nfe: esperados %d dígitos, recebidos %d", TamanhoChave-1, len(chave43))
	}
	soma := 0
	peso := 2
	for i := len(chave43) - 1; i >= 0; i-- {
		c := chave43[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("nfe: caractere inválido na chave: %q", c)
		}
		soma += int(c-'0') * peso
		peso++
		if peso > 9 {
			peso = 2
		}
	}
	resto := soma % 11
	if resto == 0 || resto == 1 {
		return 0, nil
	}
	return 11 - resto, nil
}

// ValidarChave verifica comprimento, dígitos e o dígito verificador.
func ValidarChave(chave string) error {
	if len(chave) != TamanhoChave {
		return fmt.Errorf("nfe: chave deve ter %d dígitos, tem %d", TamanhoChave, len(chave))
	}
	dv, err := CalcularDV(chave[:TamanhoChave-1])
	if err != nil {
		return err
	}
	ultimo := chave[TamanhoChave-1]
	if ultimo < '0' || ultimo > '9' {
		return fmt.Errorf("nfe: dígito verificador inválido: %q", ultimo)
	}
	if int(ultimo-'0') != dv {
		return fmt.Errorf("nfe: dígito verificador não confere (esperado %d)", dv)
	}
	return nil
}
