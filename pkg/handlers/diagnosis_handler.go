package handlers

import (
	"errors"
	"log"
	"net/http"

	"machine-diagnosis-api/pkg/inference"
	"machine-diagnosis-api/pkg/models"
	"machine-diagnosis-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// DiagnosisHandler は症状一覧・診断・ルール一覧のハンドラです。
type DiagnosisHandler struct {
	service *services.DiagnosisService
}

// NewDiagnosisHandler は新しいDiagnosisHandlerを生成します。
func NewDiagnosisHandler(service *services.DiagnosisService) *DiagnosisHandler {
	return &DiagnosisHandler{service: service}
}

// GetSymptoms は選択可能な全症状を返します。
func (h *DiagnosisHandler) GetSymptoms(c *gin.Context) {
	symptoms, err := h.service.ListSymptoms()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    symptoms,
	})
}

// Diagnose は選択された症状から診断を行います。
func (h *DiagnosisHandler) Diagnose(c *gin.Context) {
	var req models.DiagnoseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	diagnoses, reasoning, err := h.service.Diagnose(req.Symptoms)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": models.DiagnoseResponse{
			RequestID:      c.GetString(services.RequestIDKey),
			Diagnoses:      diagnoses,
			Reasoning:      reasoning,
			TotalDiagnoses: len(diagnoses),
		},
	})
}

// GetRules は説明機能向けに全ルールを症状名付きで返します。
func (h *DiagnosisHandler) GetRules(c *gin.Context) {
	rules, err := h.service.ListRules()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    rules,
	})
}

// respondError はエラーの種類に応じたステータスコードで応答します。
func respondError(c *gin.Context, err error) {
	var missing *inference.MissingDiagnosisRecordError
	switch {
	case errors.Is(err, inference.ErrEmptyInput):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No symptoms selected"})
	case errors.Is(err, services.ErrEngineNotLoaded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": err.Error()})
	case errors.As(err, &missing):
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
	default:
		log.Printf("❌ [API] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
	}
}
