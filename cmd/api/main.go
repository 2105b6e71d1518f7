package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/obarros/fiscal-nfe-api/internal/application/estimator"
	"github.com/obarros/fiscal-nfe-api/internal/application/notas"
	"github.com/obarros/fiscal-nfe-api/internal/application/ports"
	infraai "github.com/obarros/fiscal-nfe-api/internal/infrastructure/ai"
	infranfe "github.com/obarros/fiscal-nfe-api/internal/infrastructure/nfe"
	infrapdf "github.com/obarros/fiscal-nfe-api/internal/infrastructure/pdf"
	"github.com/obarros/fiscal-nfe-api/internal/infrastructure/postgres"
	httpRouter "github.com/obarros/fiscal-nfe-api/internal/interfaces/http"
	"github.com/obarros/fiscal-nfe-api/pkg/config"
	"github.com/obarros/fiscal-nfe-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicação")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão com PostgreSQL")
	}
	defer pool.Close()

	notaRepo := postgres.NewNotaRepository(pool)
	estimativaRepo := postgres.NewEstimativaRepository(pool)

	// Consulta de alíquotas por IA. Sem provedor configurado a estimativa
	// usa só a tabela estática de fallback.
	var consulta ports.ConsultaAliquotaNCM
	switch {
	case cfg.IA.Provider == "gemini" && cfg.IA.GeminiKey != "":
		consulta = infraai.NewGeminiService(cfg.IA.GeminiKey, cfg.IA.GeminiModel)
	case cfg.IA.Provider == "anthropic" && cfg.IA.AnthropicKey != "":
		consulta = infraai.NewAnthropicService(cfg.IA.AnthropicKey, cfg.IA.AnthropicModel)
	default:
		log.Warn().Msg("consulta de alíquotas por IA não configurada, usando só a tabela estática")
	}

	notasUC := notas.NewUseCase(notaRepo, estimativaRepo, infranfe.NewParser(), log)
	estimativaUC := estimator.NewUseCase(notaRepo, estimativaRepo, consulta, log)
	pdfUC := notas.NewPDFUseCase(notaRepo, estimativaRepo, infrapdf.NewMarotoPDFGenerator(), log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Fiscal NF-e API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		NotasUC:      notasUC,
		EstimativaUC: estimativaUC,
		PDFUC:        pdfUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, fechando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desligamento do servidor")
	}

	log.Info().Msg("aplicação encerrada")
}
