package domain

import "errors"

// Erros de domínio (sem dependências externas).
var (
	ErrNaoEncontrado   = errors.New("recurso não encontrado")
	ErrEntradaInvalida = errors.New("entrada inválida")
	ErrDuplicado       = errors.New("recurso duplicado")
	ErrXMLInvalido     = errors.New("XML de NF-e inválido")
	ErrChaveInvalida   = errors.New("chave de acesso inválida")
	ErrSemEstimativa   = errors.New("nota sem estimativa calculada")
)
