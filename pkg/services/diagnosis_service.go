package services

import (
	"errors"
	"log"
	"time"

	"machine-diagnosis-api/pkg/inference"
	"machine-diagnosis-api/pkg/models"
)

// ErrEngineNotLoaded はナレッジベースがまだ読み込まれていないことを示します。
var ErrEngineNotLoaded = errors.New("knowledge base is not loaded")

// DiagnosisService は現在の推論エンジンで診断を行い、メトリクスとログを記録します。
type DiagnosisService struct {
	kb *KnowledgeBaseService
}

// NewDiagnosisService は新しいDiagnosisServiceを生成します。
func NewDiagnosisService(kb *KnowledgeBaseService) *DiagnosisService {
	return &DiagnosisService{kb: kb}
}

// Diagnose は症状IDの列から診断結果と推論トレースを返します。
func (s *DiagnosisService) Diagnose(symptoms []string) ([]models.DiagnosisResult, []models.ReasoningStep, error) {
	engine := s.kb.Engine()
	if engine == nil {
		diagnoseTotal.WithLabelValues(outcomeUnavailable).Inc()
		return nil, nil, ErrEngineNotLoaded
	}

	start := time.Now()
	diagnoses, reasoning, err := engine.Diagnose(symptoms)
	diagnoseDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		var missing *inference.MissingDiagnosisRecordError
		switch {
		case errors.Is(err, inference.ErrEmptyInput):
			diagnoseTotal.WithLabelValues(outcomeEmptyInput).Inc()
		case errors.As(err, &missing):
			diagnoseTotal.WithLabelValues(outcomeMissingEntry).Inc()
			log.Printf("❌ [診断] 診断カタログに %s がありません。ナレッジベースを確認してください", missing.DiagnosisID)
		}
		return nil, nil, err
	}

	firedRules.Observe(float64(len(reasoning)))
	if len(diagnoses) == 0 {
		diagnoseTotal.WithLabelValues(outcomeNoMatch).Inc()
	} else {
		diagnoseTotal.WithLabelValues(outcomeOK).Inc()
		topDiagnosisTotal.WithLabelValues(diagnoses[0].Type).Inc()
	}

	log.Printf("🔍 [診断] 症状: %v → 診断%d件 / 推論ステップ%d件", symptoms, len(diagnoses), len(reasoning))
	return diagnoses, reasoning, nil
}

// ListSymptoms は症状一覧をID昇順で返します。
func (s *DiagnosisService) ListSymptoms() ([]models.Symptom, error) {
	engine := s.kb.Engine()
	if engine == nil {
		return nil, ErrEngineNotLoaded
	}
	return engine.ListSymptoms(), nil
}

// ListRules は説明機能向けのルール一覧を返します。
func (s *DiagnosisService) ListRules() ([]models.RuleView, error) {
	engine := s.kb.Engine()
	if engine == nil {
		return nil, ErrEngineNotLoaded
	}
	return engine.ListRules(), nil
}

// Stats は現在のナレッジベースの件数を返します。
func (s *DiagnosisService) Stats() (inference.EngineStats, error) {
	engine := s.kb.Engine()
	if engine == nil {
		return inference.EngineStats{}, ErrEngineNotLoaded
	}
	return engine.Stats(), nil
}
