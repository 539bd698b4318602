// Package inference は回転機械の故障診断を行う前向き推論（forward chaining）エンジンです。
// 確信度の計算には MYCIN の確信度係数（Certainty Factor）を用います。
//
// Engine は一度構築したら変更されない値で、複数の goroutine から同時に
// Diagnose を呼び出してもロックは不要です。
package inference

import (
	"sort"

	"machine-diagnosis-api/pkg/models"
)

// Engine はルール・症状カタログ・診断カタログを保持する不変の推論エンジンです。
type Engine struct {
	rules     []compiledRule
	symptoms  map[string]models.Symptom
	diagnoses models.DiagnosisCatalog
	policy    MatchPolicy
}

// EngineStats はエンジンが保持するナレッジベースの概要です。
type EngineStats struct {
	Rules          int `json:"rules"`
	Symptoms       int `json:"symptoms"`
	Diagnoses      int `json:"diagnoses"`
	NonFiringRules int `json:"non_firing_rules"`
}

// NewEngine はナレッジベースと診断カタログからエンジンを構築します。
// 未知の症状を参照するルールはここで一度だけ検出され、以後は発火しないルールとして扱われます。
// 入力のマップやスライスはコピーされるため、呼び出し後に変更しても影響しません。
func NewEngine(kb models.KnowledgeBase, catalog models.DiagnosisCatalog, policy MatchPolicy) *Engine {
	symptoms := make(map[string]models.Symptom, len(kb.Symptoms))
	for id, s := range kb.Symptoms {
		s.ID = id
		symptoms[id] = s
	}

	diagnoses := make(models.DiagnosisCatalog, len(catalog))
	for id, d := range catalog {
		diagnoses[id] = d
	}

	rules := make([]compiledRule, 0, len(kb.Rules))
	for _, r := range kb.Rules {
		r.If = append([]string(nil), r.If...)
		rules = append(rules, compileRule(r, symptoms))
	}

	return &Engine{
		rules:     rules,
		symptoms:  symptoms,
		diagnoses: diagnoses,
		policy:    policy,
	}
}

// Policy はエンジンの部分一致方針を返します。
func (e *Engine) Policy() MatchPolicy {
	return e.policy
}

// Diagnose は観測された症状IDの列から診断結果（CF 降順）と推論トレース（ルール評価順）を返します。
// 症状が空の場合は ErrEmptyInput を返します。
func (e *Engine) Diagnose(observed []string) ([]models.DiagnosisResult, []models.ReasoningStep, error) {
	if len(observed) == 0 {
		return nil, nil, ErrEmptyInput
	}

	// ワーキングメモリ
	evidence := NewEvidenceSet(observed...)

	results := make(map[string]float64)
	order := make([]string, 0)
	reasoning := make([]models.ReasoningStep, 0)

	for _, cr := range e.rules {
		cf := cr.cf(evidence, e.policy)
		if cf <= 0 {
			continue
		}

		conclusion := cr.rule.Then
		reasoning = append(reasoning, models.ReasoningStep{
			RuleID:          cr.rule.ID,
			RuleDescription: cr.rule.Description,
			Evidence:        cr.presentNames(evidence),
			Conclusion:      conclusion,
			CF:              cf,
		})

		// 同じ結論を持つ複数のルールは CF を合成する
		if acc, ok := results[conclusion]; ok {
			results[conclusion] = CombineCF(acc, cf)
		} else {
			results[conclusion] = cf
			order = append(order, conclusion)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return results[order[i]] > results[order[j]]
	})

	diagnoses := make([]models.DiagnosisResult, 0, len(order))
	for _, key := range order {
		info, ok := e.diagnoses[key]
		if !ok {
			return nil, nil, &MissingDiagnosisRecordError{DiagnosisID: key}
		}
		cf := results[key]
		diagnoses = append(diagnoses, models.DiagnosisResult{
			Type:            key,
			Name:            info.Name,
			Description:     info.Description,
			Confidence:      round(cf*100, 2),
			CFValue:         round(cf, 4),
			Causes:          info.Causes,
			Solutions:       info.Solutions,
			Severity:        info.Severity,
			MaintenanceTime: info.MaintenanceTime,
			RiskLevel:       info.RiskLevel,
			ToolsRequired:   info.ToolsRequired,
		})
	}

	return diagnoses, reasoning, nil
}

// presentNames はルールの条件のうち観測された症状の表示名を、ルール記述順で返します。
func (cr compiledRule) presentNames(evidence EvidenceSet) []string {
	names := make([]string, 0, len(cr.antecedents))
	for _, s := range cr.antecedents {
		if evidence.Has(s.ID) {
			names = append(names, s.Name)
		}
	}
	return names
}

// ListSymptoms は全症状をID昇順で返します。
func (e *Engine) ListSymptoms() []models.Symptom {
	list := make([]models.Symptom, 0, len(e.symptoms))
	for _, s := range e.symptoms {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}

// ListRules は説明機能向けに、全ルールを定義順で症状名を解決して返します。
// カタログにない症状は条件一覧から省かれます。
func (e *Engine) ListRules() []models.RuleView {
	views := make([]models.RuleView, 0, len(e.rules))
	for _, cr := range e.rules {
		conditions := make([]string, 0, len(cr.rule.If))
		for _, id := range cr.rule.If {
			if s, ok := e.symptoms[id]; ok {
				conditions = append(conditions, s.Name)
			}
		}
		views = append(views, models.RuleView{
			ID:          cr.rule.ID,
			Description: cr.rule.Description,
			Conditions:  conditions,
			Conclusion:  cr.rule.Then,
			CF:          cr.rule.CF,
		})
	}
	return views
}

// Stats はナレッジベースの件数を返します。
func (e *Engine) Stats() EngineStats {
	stats := EngineStats{
		Rules:     len(e.rules),
		Symptoms:  len(e.symptoms),
		Diagnoses: len(e.diagnoses),
	}
	for _, cr := range e.rules {
		if !cr.resolvable {
			stats.NonFiringRules++
		}
	}
	return stats
}
