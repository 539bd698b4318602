package models

// Symptom は観測可能な症状を表します。
// CF は測定・観測そのものの確からしさ (-1〜1) です。
type Symptom struct {
	ID   string  `json:"id" yaml:"id" validate:"required"`
	Name string  `json:"name" yaml:"name" validate:"required"`
	CF   float64 `json:"cf" yaml:"cf" validate:"gte=-1,lte=1"`
}

// Rule は IF 症状群 THEN 診断 のルールです。
type Rule struct {
	ID          string   `json:"id" yaml:"id" validate:"required"`
	Description string   `json:"description" yaml:"description"`
	If          []string `json:"if" yaml:"if" validate:"required,min=1,dive,required"`
	Then        string   `json:"then" yaml:"then" validate:"required"`
	CF          float64  `json:"cf" yaml:"cf" validate:"gte=-1,lte=1"`
}

// Diagnosis は診断カタログの1レコードです。推論後にキーで参照されるだけです。
type Diagnosis struct {
	Name            string   `json:"name" yaml:"name" validate:"required"`
	Description     string   `json:"description" yaml:"description"`
	Causes          []string `json:"causes" yaml:"causes"`
	Solutions       []string `json:"solutions" yaml:"solutions"`
	Severity        string   `json:"severity" yaml:"severity"`
	MaintenanceTime string   `json:"maintenance_time" yaml:"maintenance_time"`
	RiskLevel       string   `json:"risk_level" yaml:"risk_level"`
	ToolsRequired   []string `json:"tools_required" yaml:"tools_required"`
}

// KnowledgeBase はルールと症状カタログをまとめたものです。
type KnowledgeBase struct {
	Rules    []Rule             `json:"rules" yaml:"rules"`
	Symptoms map[string]Symptom `json:"symptoms" yaml:"symptoms"`
}

// DiagnosisCatalog は診断ID → 診断レコードの対応表です。
type DiagnosisCatalog map[string]Diagnosis

// ReasoningStep は発火したルール1件分の推論トレースです。
type ReasoningStep struct {
	RuleID          string   `json:"rule_id"`
	RuleDescription string   `json:"rule_description"`
	Evidence        []string `json:"evidence"`
	Conclusion      string   `json:"conclusion"`
	CF              float64  `json:"cf"`
}

// DiagnosisResult はランキング済みの診断結果です。
type DiagnosisResult struct {
	Type            string   `json:"type"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Confidence      float64  `json:"confidence"` // CF × 100（小数第2位で丸め）
	CFValue         float64  `json:"cf_value"`   // 小数第4位で丸め
	Causes          []string `json:"causes"`
	Solutions       []string `json:"solutions"`
	Severity        string   `json:"severity"`
	MaintenanceTime string   `json:"maintenance_time"`
	RiskLevel       string   `json:"risk_level"`
	ToolsRequired   []string `json:"tools_required"`
}

// RuleView は説明機能向けに症状名を解決したルールです。
type RuleView struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Conditions  []string `json:"conditions"`
	Conclusion  string   `json:"conclusion"`
	CF          float64  `json:"cf"`
}

// DiagnoseRequest は診断APIのリクエストボディです。
type DiagnoseRequest struct {
	Symptoms []string `json:"symptoms"`
}

// DiagnoseResponse は診断APIのレスポンスデータです。
type DiagnoseResponse struct {
	RequestID      string            `json:"request_id,omitempty"`
	Diagnoses      []DiagnosisResult `json:"diagnoses"`
	Reasoning      []ReasoningStep   `json:"reasoning"`
	TotalDiagnoses int               `json:"total_diagnoses"`
}
