package handler

import (
	"context"
	"log"
	"net/http"
	"sync"

	config "machine-diagnosis-api/configs"
	"machine-diagnosis-api/pkg/router"
	"machine-diagnosis-api/pkg/services"

	"github.com/gin-gonic/gin"
)

var (
	app  *gin.Engine
	once sync.Once
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
func setupApp() *gin.Engine {
	once.Do(func() {
		log.Printf("🟢 [setupApp] Initializing Gin application")

		// .envファイルはVercelの環境変数設定から読み込まれるため、ここではgodotenvを呼び出しません。
		cfg := config.LoadConfig()

		knowledgeBase := services.NewKnowledgeBaseService(cfg.KnowledgeBasePath, cfg.DiagnosisDataPath, cfg.MatchPolicy())
		if _, err := knowledgeBase.Load(context.Background()); err != nil {
			// エンジン未読み込みの間、診断APIは503を返す
			log.Printf("❌ [setupApp] Failed to load knowledge base: %v", err)
		}

		app = router.New(cfg, router.Dependencies{
			KnowledgeBase: knowledgeBase,
			Monitoring:    services.NewMonitoringService(),
		})
	})
	return app
}

// Handler はVercelからのすべてのリクエストを処理するエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	setupApp().ServeHTTP(w, r)
}
