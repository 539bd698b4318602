package main

import (
	"context"
	"log"

	config "machine-diagnosis-api/configs"
	"machine-diagnosis-api/pkg/router"
	"machine-diagnosis-api/pkg/services"

	"github.com/joho/godotenv"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// 設定の読み込み
	cfg := config.LoadConfig()

	// ナレッジベースの読み込み（失敗したら起動しない）
	knowledgeBase := services.NewKnowledgeBaseService(cfg.KnowledgeBasePath, cfg.DiagnosisDataPath, cfg.MatchPolicy())
	if _, err := knowledgeBase.Load(context.Background()); err != nil {
		log.Fatalf("FATAL: Failed to load knowledge base: %v", err)
	}

	r := router.New(cfg, router.Dependencies{
		KnowledgeBase: knowledgeBase,
		Monitoring:    services.NewMonitoringService(),
	})

	log.Printf("Starting Machine Diagnosis API server on :%s (environment: %s)", cfg.Port, cfg.Environment)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
