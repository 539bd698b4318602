package handlers

import (
	"log"
	"net/http"
	"sync/atomic"

	config "machine-diagnosis-api/configs"
	"machine-diagnosis-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// isMaintenanceMode はサーバーがメンテナンスモードかどうかを示します。
// atomic.Boolを使用して、スレッドセーフな読み書きを保証します。
var isMaintenanceMode atomic.Bool

// AdminHandler は管理者向け操作のハンドラです。
type AdminHandler struct {
	AdminUsername string
	AdminPassword string
	knowledgeBase *services.KnowledgeBaseService
}

// NewAdminHandler は新しいAdminHandlerを生成します。
func NewAdminHandler(cfg *config.Config, knowledgeBase *services.KnowledgeBaseService) *AdminHandler {
	return &AdminHandler{
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
		knowledgeBase: knowledgeBase,
	}
}

// AdminCredentials は管理者認証のためのリクエストボディです。
type AdminCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// authorize は認証情報を検証し、失敗した場合はレスポンスを書き込んで false を返します。
func (h *AdminHandler) authorize(c *gin.Context) bool {
	var input AdminCredentials
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return false
	}

	if h.AdminPassword == "" || input.Username != h.AdminUsername || input.Password != h.AdminPassword {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return false
	}
	return true
}

// StartMaintenance はメンテナンスモードを開始します。
func (h *AdminHandler) StartMaintenance(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	isMaintenanceMode.Store(true)
	c.JSON(http.StatusOK, gin.H{"message": "Maintenance mode started"})
}

// StopMaintenance はメンテナンスモードを停止します。
func (h *AdminHandler) StopMaintenance(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	isMaintenanceMode.Store(false)
	c.JSON(http.StatusOK, gin.H{"message": "Maintenance mode stopped"})
}

// ReloadKnowledgeBase は設定されたパスからナレッジベースを読み直し、推論エンジンを差し替えます。
// 読み込みに失敗した場合は既存のエンジンを使い続けます。
func (h *AdminHandler) ReloadKnowledgeBase(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	engine, err := h.knowledgeBase.Load(c.Request.Context())
	if err != nil {
		log.Printf("❌ [管理] ナレッジベースの再読み込みに失敗: %v", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})
		return
	}

	log.Printf("🔄 [管理] ナレッジベースを再読み込みしました")
	c.JSON(http.StatusOK, gin.H{"success": true, "data": engine.Stats()})
}

// GetHealthStatus は現在のサーバーの状態を返します。
func (h *AdminHandler) GetHealthStatus(c *gin.Context) {
	status := gin.H{"isMaintenanceMode": isMaintenanceMode.Load()}
	if engine := h.knowledgeBase.Engine(); engine != nil {
		status["knowledgeBase"] = engine.Stats()
	}
	c.JSON(http.StatusOK, status)
}

// HealthCheck は外部のヘルスチェッカー（例: ロードバランサー）からのリクエストに応答します。
func HealthCheck(c *gin.Context) {
	if isMaintenanceMode.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": "Server is in maintenance mode"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
