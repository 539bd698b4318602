package inference

import (
	"math"

	"machine-diagnosis-api/pkg/models"
)

// MatchPolicy は部分一致（partial match）の方針です。
type MatchPolicy struct {
	// PartialMatch が false の場合、完全一致したルールだけが発火します。
	PartialMatch bool
	// MaxPartialAntecedents 以下の条件数のルールだけが部分一致の対象になります。
	MaxPartialAntecedents int
	// MinOverlapRatio は部分一致に必要な（一致した条件数 / 全条件数）の下限です。
	MinOverlapRatio float64
}

// DefaultMatchPolicy は条件2つ以下・一致率50%以上で部分一致を許可します。
func DefaultMatchPolicy() MatchPolicy {
	return MatchPolicy{
		PartialMatch:          true,
		MaxPartialAntecedents: 2,
		MinOverlapRatio:       0.5,
	}
}

// EvidenceSet はワーキングメモリ（観測された症状IDの集合）です。
type EvidenceSet map[string]struct{}

// NewEvidenceSet は症状IDの列から集合を作ります。重複は無視されます。
func NewEvidenceSet(ids ...string) EvidenceSet {
	set := make(EvidenceSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has は症状IDが観測済みかどうかを返します。
func (s EvidenceSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// compiledRule は症状カタログに対して事前解決済みのルールです。
// resolvable が false のルールは未知の症状を参照しており、決して発火しません。
type compiledRule struct {
	rule        models.Rule
	antecedents []models.Symptom // 重複を除いた条件（ルール記述順）
	resolvable  bool
}

func compileRule(rule models.Rule, symptoms map[string]models.Symptom) compiledRule {
	cr := compiledRule{rule: rule, resolvable: true}
	seen := make(map[string]bool, len(rule.If))
	for _, id := range rule.If {
		if seen[id] {
			continue
		}
		seen[id] = true
		s, ok := symptoms[id]
		if !ok {
			cr.resolvable = false
			cr.antecedents = nil
			return cr
		}
		if s.ID == "" {
			s.ID = id
		}
		cr.antecedents = append(cr.antecedents, s)
	}
	if len(cr.antecedents) == 0 {
		cr.resolvable = false
	}
	return cr
}

// RuleCF は観測された症状に対して1つのルールが寄与する CF を計算します。
//
//   - 条件に症状カタログにない症状が含まれる場合は 0
//   - 全条件が観測済み（完全一致）なら min(条件の CF) × ルール CF
//   - 部分一致が有効で、条件数が MaxPartialAntecedents 以下かつ一致率が
//     MinOverlapRatio 以上なら min(一致した条件の CF) × ルール CF × 一致率
//   - それ以外は 0
func RuleCF(rule models.Rule, evidence EvidenceSet, symptoms map[string]models.Symptom, policy MatchPolicy) float64 {
	return compileRule(rule, symptoms).cf(evidence, policy)
}

func (cr compiledRule) cf(evidence EvidenceSet, policy MatchPolicy) float64 {
	if !cr.resolvable {
		return 0
	}

	minAll := math.Inf(1)
	minPresent := math.Inf(1)
	present := 0
	for _, s := range cr.antecedents {
		minAll = math.Min(minAll, s.CF)
		if evidence.Has(s.ID) {
			present++
			minPresent = math.Min(minPresent, s.CF)
		}
	}

	total := len(cr.antecedents)
	if present == total {
		return minAll * cr.rule.CF
	}

	if !policy.PartialMatch || present == 0 || total > policy.MaxPartialAntecedents {
		return 0
	}
	ratio := float64(present) / float64(total)
	if ratio < policy.MinOverlapRatio {
		return 0
	}
	return minPresent * cr.rule.CF * ratio
}
