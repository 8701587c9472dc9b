package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"GoRAGWorkshop/app/chat"
	"GoRAGWorkshop/app/configs"
	"GoRAGWorkshop/app/faults"
	"GoRAGWorkshop/app/ingest"
	"GoRAGWorkshop/app/logs"
	"GoRAGWorkshop/app/models"
	"GoRAGWorkshop/app/rag"
	"GoRAGWorkshop/app/server"
	"GoRAGWorkshop/app/storage"
	"GoRAGWorkshop/app/tools"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := configs.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logs.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return faults.Configuration("build logger", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	restClient, err := cfg.Model.BuildModelClient(ctx)
	if err != nil {
		return err
	}
	logger.Info("model endpoint", zap.String("base_url", restClient.BaseURL()),
		zap.String("chat_model", cfg.Model.ChatModel), zap.String("embedding_model", cfg.Model.EmbeddingModel))
	llm := models.NewLLMClient(restClient, models.Config{
		ChatModel:      cfg.Model.ChatModel,
		EmbeddingModel: cfg.Model.EmbeddingModel,
		Temperature:    cfg.Model.Temperature,
	}, logger)

	store, err := newVectorStore(cfg.Vectors, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	existed, err := store.EnsureCollection(ctx, cfg.Model.EmbeddingDimension)
	if err != nil {
		return fmt.Errorf("bootstrap collection: %w", err)
	}
	logger.Info("vector collection ready", zap.String("collection", store.Collection()),
		zap.Bool("existed", existed), zap.Int("dimension", cfg.Model.EmbeddingDimension))

	ledger, err := storage.NewSQLiteStorage(cfg.Ingestion.DBPath)
	if err != nil {
		return fmt.Errorf("open ingestion ledger: %w", err)
	}
	defer ledger.Close()

	toolkit, err := tools.NewRegistry(tools.InstrumentTool())
	if err != nil {
		return err
	}

	initSplitter, err := rag.NewSplitter(cfg.Ingestion.Init.Size, cfg.Ingestion.Init.Overlap)
	if err != nil {
		return err
	}
	uploadSplitter, err := rag.NewSplitter(cfg.Ingestion.Upload.Size, cfg.Ingestion.Upload.Overlap)
	if err != nil {
		return err
	}

	mode, ok := chat.ParseMode(cfg.Retrieval.PromptMode)
	if !ok {
		return faults.Configuration("prompt mode", fmt.Errorf("unknown mode %q", cfg.Retrieval.PromptMode))
	}
	handler := chat.NewHandler(llm, store, llm, toolkit, chat.Options{
		Mode:       mode,
		TopK:       cfg.Retrieval.TopK,
		MinScore:   float32(cfg.Retrieval.MinScore),
		MemorySize: cfg.Retrieval.MemorySize,
	}, logger)
	pipeline := ingest.NewPipeline(llm, store, ledger, logger)

	srv := server.New(handler, pipeline, store, ledger, server.Options{
		DocsDir:        cfg.Ingestion.DocsDir,
		InitSplitter:   initSplitter,
		UploadSplitter: uploadSplitter,
	}, logger)

	if err = srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("stopped")
	return nil
}

func newVectorStore(cfg configs.VectorsConfig, logger *zap.Logger) (rag.VectorStore, error) {
	switch cfg.Backend {
	case configs.StoreMemory:
		logger.Warn("using in-memory vector store, records are lost on restart")
		return rag.NewMemoryStore(cfg.Collection), nil
	default:
		return rag.NewQdrantStore(rag.QdrantConfig{
			URL:        cfg.URL,
			APIKey:     cfg.APIKey,
			Collection: cfg.Collection,
		}, logger)
	}
}
