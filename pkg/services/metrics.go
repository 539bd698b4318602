package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// diagnoseTotal は診断リクエスト数を結果別に数えます
	diagnoseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "machine_diagnosis_requests_total",
		Help: "Total diagnose calls by outcome",
	}, []string{"outcome"})

	// diagnoseDuration は推論にかかった時間です
	diagnoseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "machine_diagnosis_duration_seconds",
		Help:    "Forward chaining duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8), // 10µs〜160ms
	})

	// firedRules は1回の診断で発火したルール数です
	firedRules = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "machine_diagnosis_fired_rules",
		Help:    "Number of rules fired per diagnose call",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})

	// topDiagnosisTotal は1位になった診断の件数です
	topDiagnosisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "machine_diagnosis_top_result_total",
		Help: "Total diagnose calls by top-ranked diagnosis",
	}, []string{"diagnosis"})
)

// 診断結果のラベル値
const (
	outcomeOK           = "ok"
	outcomeNoMatch      = "no_match"
	outcomeEmptyInput   = "empty_input"
	outcomeMissingEntry = "missing_record"
	outcomeUnavailable  = "unavailable"
)
