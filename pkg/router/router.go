package router

import (
	"net/http"
	"os"
	"path/filepath"

	config "machine-diagnosis-api/configs"
	"machine-diagnosis-api/pkg/handlers"
	"machine-diagnosis-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies はルーターが必要とするサービス群です。
type Dependencies struct {
	KnowledgeBase *services.KnowledgeBaseService
	Monitoring    *services.MonitoringService
}

// New はGinルーターを初期化し、全エンドポイントを登録します。
func New(cfg *config.Config, deps Dependencies) *gin.Engine {
	r := gin.Default()

	diagnosisService := services.NewDiagnosisService(deps.KnowledgeBase)
	diagnosisHandler := handlers.NewDiagnosisHandler(diagnosisService)
	adminHandler := handlers.NewAdminHandler(cfg, deps.KnowledgeBase)
	monitoringHandler := handlers.NewMonitoringHandler(deps.Monitoring)

	// ミドルウェアの登録
	r.Use(deps.Monitoring.LoggingMiddleware())
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AddAllowHeaders("X-API-KEY", services.RequestIDHeader)
	corsConfig.AddExposeHeaders(services.RequestIDHeader)
	r.Use(cors.New(corsConfig))

	// ヘルスチェック・メトリクス
	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiKey := APIKeyAuth(cfg.APIKey)

	// 旧フロントエンド互換のルート（v1 と同じ認証）
	legacy := r.Group("/api", apiKey)
	registerDiagnosisRoutes(legacy, diagnosisHandler)

	// APIバージョン1のルートグループ
	v1 := r.Group("/api/v1", apiKey)
	{
		registerDiagnosisRoutes(v1, diagnosisHandler)

		// 管理者向けAPI
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
			admin.POST("/knowledge-base/reload", adminHandler.ReloadKnowledgeBase)
		}

		// モニタリングAPI
		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}
	}

	// 静的ファイル（フロントエンド）
	r.NoRoute(staticFallback(cfg.StaticDir))

	return r
}

func registerDiagnosisRoutes(g *gin.RouterGroup, h *handlers.DiagnosisHandler) {
	g.GET("/symptoms", h.GetSymptoms)
	g.POST("/diagnose", h.Diagnose)
	g.GET("/rules", h.GetRules)
}

// APIKeyAuth は X-API-KEY ヘッダーを検証するミドルウェアです。キー未設定の場合は素通しします。
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" || apiKey == "default_secret_key" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-KEY") != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// staticFallback はAPIに該当しないGETリクエストを静的ディレクトリのファイルで応答します。
// "/" は index.html です。
func staticFallback(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if dir == "" || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Not found"})
			return
		}

		name := filepath.Clean("/" + c.Request.URL.Path)
		if name == "/" {
			name = "/index.html"
		}
		path := filepath.Join(dir, filepath.FromSlash(name))

		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Not found"})
			return
		}
		c.File(path)
	}
}
