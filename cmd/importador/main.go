// importador carrega em lote os XMLs de NF-e de um diretório para o banco,
// opcionalmente já calculando a estimativa de impostos de cada nota.
//
// Uso: go run ./cmd/importador -dir ./xmls [-estimar]
// Por padrão lê os arquivos *.xml do diretório atual.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/obarros/fiscal-nfe-api/internal/application/estimator"
	"github.com/obarros/fiscal-nfe-api/internal/application/notas"
	"github.com/obarros/fiscal-nfe-api/internal/application/ports"
	"github.com/obarros/fiscal-nfe-api/internal/domain"
	infraai "github.com/obarros/fiscal-nfe-api/internal/infrastructure/ai"
	infranfe "github.com/obarros/fiscal-nfe-api/internal/infrastructure/nfe"
	"github.com/obarros/fiscal-nfe-api/internal/infrastructure/postgres"
	"github.com/obarros/fiscal-nfe-api/pkg/config"
	"github.com/obarros/fiscal-nfe-api/pkg/logger"
)

func main() {
	dir := flag.String("dir", ".", "diretório com os XMLs de NF-e")
	estimar := flag.Bool("estimar", false, "calcular a estimativa de impostos após importar")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Carregar configuração: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "warn"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexão com PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	notaRepo := postgres.NewNotaRepository(pool)
	estimativaRepo := postgres.NewEstimativaRepository(pool)

	var consulta ports.ConsultaAliquotaNCM
	switch {
	case cfg.IA.Provider == "gemini" && cfg.IA.GeminiKey != "":
		consulta = infraai.NewGeminiService(cfg.IA.GeminiKey, cfg.IA.GeminiModel)
	case cfg.IA.Provider == "anthropic" && cfg.IA.AnthropicKey != "":
		consulta = infraai.NewAnthropicService(cfg.IA.AnthropicKey, cfg.IA.AnthropicModel)
	}

	notasUC := notas.NewUseCase(notaRepo, estimativaRepo, infranfe.NewParser(), log)
	estimativaUC := estimator.NewUseCase(notaRepo, estimativaRepo, consulta, log)

	entradas, err := os.ReadDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ler diretório: %v\n", err)
		os.Exit(1)
	}

	var importadas, duplicadas, falhas int
	for _, e := range entradas {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			continue
		}
		caminho := filepath.Join(*dir, e.Name())
		data, err := os.ReadFile(caminho)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", e.Name(), err)
			falhas++
			continue
		}

		nota, err := notasUC.Importar(ctx, data)
		switch {
		case errors.Is(err, domain.ErrDuplicado):
			fmt.Printf("%s: já importada\n", e.Name())
			duplicadas++
			continue
		case err != nil:
			fmt.Fprintf(os.Stderr, "%s: %v\n", e.Name(), err)
			falhas++
			continue
		}
		importadas++

		if *estimar {
			est, err := estimativaUC.Estimar(ctx, nota.ChaveAcesso)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: estimativa: %v\n", e.Name(), err)
				continue
			}
			fmt.Printf("%s: chave %s, imposto estimado %s\n",
				e.Name(), nota.ChaveAcesso, est.ImpostoEstimadoTotal.StringFixed(2))
			continue
		}
		fmt.Printf("%s: chave %s\n", e.Name(), nota.ChaveAcesso)
	}

	fmt.Printf("Importadas %d, duplicadas %d, falhas %d\n", importadas, duplicadas, falhas)
	if falhas > 0 {
		os.Exit(1)
	}
}
