package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	config "machine-diagnosis-api/configs"
	"machine-diagnosis-api/pkg/inference"
	"machine-diagnosis-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	policy := inference.DefaultMatchPolicy()
	return &config.Config{
		KnowledgeBasePath:           filepath.Join("..", "..", "data", "knowledge_base.json"),
		DiagnosisDataPath:           filepath.Join("..", "..", "data", "diagnosis_data.json"),
		PartialMatch:                policy.PartialMatch,
		PartialMatchMaxAntecedents:  policy.MaxPartialAntecedents,
		PartialMatchMinOverlapRatio: policy.MinOverlapRatio,
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(testConfig())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSymptomsCommand(t *testing.T) {
	out, err := execute(t, "symptoms")
	require.NoError(t, err)
	assert.Contains(t, out, "Q13")
	assert.Contains(t, out, "High axial vibration")
}

func TestRulesCommand(t *testing.T) {
	out, err := execute(t, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "R1  IF High radial vibration at 1x RPM AND Vibration amplitude rises with speed")
	assert.Contains(t, out, "THEN Unbalance (CF 0.80)")
}

func TestRunCommand(t *testing.T) {
	out, err := execute(t, "run", "Q2", "Q8")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Rotor Unbalance (Unbalance): 48.00% confidence")
	assert.Contains(t, out, "- R1:")
}

func TestRunCommandJSON(t *testing.T) {
	out, err := execute(t, "run", "--json", "Q1", "Q3")
	require.NoError(t, err)

	var resp models.DiagnoseResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, 1, resp.TotalDiagnoses)
	assert.Equal(t, "Bent_Shaft", resp.Diagnoses[0].Type)
}

func TestRunCommandWithoutPartialMatch(t *testing.T) {
	// 部分一致なしでは R4 / R6 が発火しない
	out, err := execute(t, "run", "--partial=false", "--json", "Q2", "Q8")
	require.NoError(t, err)

	var resp models.DiagnoseResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.TotalDiagnoses)
	assert.Len(t, resp.Reasoning, 1)
}

func TestRunCommandRequiresSymptoms(t *testing.T) {
	_, err := execute(t, "run")
	assert.Error(t, err)
}

func TestCheckCommand(t *testing.T) {
	out, err := execute(t, "check")
	require.NoError(t, err)
	assert.NotContains(t, out, "FAIL")
	assert.Contains(t, out, "PASS  Bearing Defect")
}

func TestMissingKnowledgeBase(t *testing.T) {
	_, err := execute(t, "--kb", "does-not-exist.json", "symptoms")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load knowledge base")
}
