package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	config "machine-diagnosis-api/configs"
	"machine-diagnosis-api/pkg/router"
	"machine-diagnosis-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// テスト環境の設定
	gin.SetMode(gin.TestMode)

	// .envファイルを読み込み（テスト環境では無視される可能性がある）
	godotenv.Load("../../.env")

	os.Exit(m.Run())
}

func TestApplicationSetup(t *testing.T) {
	// 設定の読み込みテスト
	cfg := config.LoadConfig()
	assert.NotNil(t, cfg, "Config should not be nil")

	cfg.KnowledgeBasePath = filepath.Join("..", "..", "data", "knowledge_base.json")
	cfg.DiagnosisDataPath = filepath.Join("..", "..", "data", "diagnosis_data.json")
	cfg.StaticDir = filepath.Join("..", "..", "static")

	// サービスの初期化テスト
	knowledgeBase := services.NewKnowledgeBaseService(cfg.KnowledgeBasePath, cfg.DiagnosisDataPath, cfg.MatchPolicy())
	engine, err := knowledgeBase.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, engine, "Engine should not be nil")

	r := router.New(cfg, router.Dependencies{
		KnowledgeBase: knowledgeBase,
		Monitoring:    services.NewMonitoringService(),
	})

	// ヘルスチェックのテスト
	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// フロントエンドのテスト
	req, _ = http.NewRequest("GET", "/", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFrontendWithAPIKey(t *testing.T) {
	cfg := &config.Config{
		APIKey:            "s3cret",
		KnowledgeBasePath: filepath.Join("..", "..", "data", "knowledge_base.json"),
		DiagnosisDataPath: filepath.Join("..", "..", "data", "diagnosis_data.json"),
		StaticDir:         filepath.Join("..", "..", "static"),
		PartialMatch:      true,
	}
	knowledgeBase := services.NewKnowledgeBaseService(cfg.KnowledgeBasePath, cfg.DiagnosisDataPath, cfg.MatchPolicy())
	_, err := knowledgeBase.Load(context.Background())
	require.NoError(t, err)

	r := router.New(cfg, router.Dependencies{
		KnowledgeBase: knowledgeBase,
		Monitoring:    services.NewMonitoringService(),
	})

	// 静的ファイルはキーなしで配信される
	req, _ := http.NewRequest("GET", "/app.js", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	// フロントエンドは保存したキーを X-API-KEY で送る
	assert.Contains(t, w.Body.String(), "'X-API-KEY'")

	req, _ = http.NewRequest("GET", "/api/v1/symptoms", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req, _ = http.NewRequest("GET", "/api/v1/symptoms", nil)
	req.Header.Set("X-API-KEY", "s3cret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEnvironmentVariables(t *testing.T) {
	// テスト用の環境変数を設定
	testEnvVars := map[string]string{
		"KNOWLEDGE_BASE_PATH": "custom/kb.yaml",
		"DIAGNOSIS_DATA_PATH": "custom/diagnoses.yaml",
	}

	for key, value := range testEnvVars {
		os.Setenv(key, value)
	}
	defer func() {
		for key := range testEnvVars {
			os.Unsetenv(key)
		}
	}()

	cfg := config.LoadConfig()
	assert.Equal(t, "custom/kb.yaml", cfg.KnowledgeBasePath)
	assert.Equal(t, "custom/diagnoses.yaml", cfg.DiagnosisDataPath)
}
