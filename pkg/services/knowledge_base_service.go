package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"machine-diagnosis-api/pkg/inference"
	"machine-diagnosis-api/pkg/models"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// ワークブック（.xlsx）形式のシート名
const (
	SheetSymptoms  = "symptoms"
	SheetRules     = "rules"
	SheetDiagnoses = "diagnoses"
)

// listSeparator はワークブックのセル内でリストを区切る文字です。
const listSeparator = ";"

var kbValidate = validator.New()

// KnowledgeBaseService はナレッジベースを読み込み、現在の推論エンジンを保持します。
// エンジン自体は不変で、再読み込み時はポインタごと差し替えます。
type KnowledgeBaseService struct {
	knowledgeBasePath string
	diagnosisDataPath string
	policy            inference.MatchPolicy
	engine            atomic.Pointer[inference.Engine]
}

// NewKnowledgeBaseService は新しいKnowledgeBaseServiceを生成します。Load を呼ぶまでエンジンは nil です。
func NewKnowledgeBaseService(knowledgeBasePath, diagnosisDataPath string, policy inference.MatchPolicy) *KnowledgeBaseService {
	return &KnowledgeBaseService{
		knowledgeBasePath: knowledgeBasePath,
		diagnosisDataPath: diagnosisDataPath,
		policy:            policy,
	}
}

// Engine は現在の推論エンジンを返します。
func (s *KnowledgeBaseService) Engine() *inference.Engine {
	return s.engine.Load()
}

// Load はナレッジベースと診断カタログを並行して読み込み、新しいエンジンに差し替えます。
// 失敗した場合は既存のエンジンをそのまま残します。
func (s *KnowledgeBaseService) Load(ctx context.Context) (*inference.Engine, error) {
	var (
		kb      models.KnowledgeBase
		catalog models.DiagnosisCatalog
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		kb, err = LoadKnowledgeBase(ctx, s.knowledgeBasePath)
		return err
	})
	g.Go(func() error {
		var err error
		catalog, err = LoadDiagnosisCatalog(ctx, s.diagnosisDataPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	engine := inference.NewEngine(kb, catalog, s.policy)
	s.engine.Store(engine)

	stats := engine.Stats()
	log.Printf("📚 [ナレッジベース] ルール%d件 / 症状%d件 / 診断%d件を読み込みました", stats.Rules, stats.Symptoms, stats.Diagnoses)
	if stats.NonFiringRules > 0 {
		log.Printf("⚠️ [ナレッジベース] 未知の症状を参照しているルールが%d件あります（発火しません）", stats.NonFiringRules)
	}
	return engine, nil
}

// LoadKnowledgeBase はルールと症状カタログを読み込みます。形式は拡張子（.json / .yaml / .yml / .xlsx）で判定します。
func LoadKnowledgeBase(ctx context.Context, path string) (models.KnowledgeBase, error) {
	var kb models.KnowledgeBase
	if err := ctx.Err(); err != nil {
		return kb, err
	}

	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = decodeFile(path, func(b []byte) error { return json.Unmarshal(b, &kb) })
	case ".yaml", ".yml":
		err = decodeFile(path, func(b []byte) error { return yaml.Unmarshal(b, &kb) })
	case ".xlsx":
		kb, err = readKnowledgeBaseWorkbook(path)
	default:
		err = fmt.Errorf("unsupported knowledge base format %q", ext)
	}
	if err != nil {
		return kb, fmt.Errorf("failed to load knowledge base %s: %w", path, err)
	}

	if err := validateKnowledgeBase(&kb); err != nil {
		return kb, fmt.Errorf("invalid knowledge base %s: %w", path, err)
	}
	return kb, nil
}

// LoadDiagnosisCatalog は診断カタログを読み込みます。形式は拡張子で判定します。
func LoadDiagnosisCatalog(ctx context.Context, path string) (models.DiagnosisCatalog, error) {
	catalog := make(models.DiagnosisCatalog)
	if err := ctx.Err(); err != nil {
		return catalog, err
	}

	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = decodeFile(path, func(b []byte) error { return json.Unmarshal(b, &catalog) })
	case ".yaml", ".yml":
		err = decodeFile(path, func(b []byte) error { return yaml.Unmarshal(b, &catalog) })
	case ".xlsx":
		catalog, err = readDiagnosisWorkbook(path)
	default:
		err = fmt.Errorf("unsupported diagnosis catalog format %q", ext)
	}
	if err != nil {
		return catalog, fmt.Errorf("failed to load diagnosis catalog %s: %w", path, err)
	}

	for id, d := range catalog {
		if err := kbValidate.Struct(d); err != nil {
			return catalog, fmt.Errorf("invalid diagnosis catalog %s: diagnosis %s: %w", path, id, err)
		}
	}
	return catalog, nil
}

func decodeFile(path string, decode func([]byte) error) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return decode(b)
}

// validateKnowledgeBase は必須項目とCFの範囲、ルールIDの重複を検査します。
// 症状のIDはマップのキーから補完します。
func validateKnowledgeBase(kb *models.KnowledgeBase) error {
	if len(kb.Symptoms) == 0 {
		return fmt.Errorf("no symptoms defined")
	}
	for id, s := range kb.Symptoms {
		s.ID = id
		if err := kbValidate.Struct(s); err != nil {
			return fmt.Errorf("symptom %s: %w", id, err)
		}
		kb.Symptoms[id] = s
	}

	seen := make(map[string]bool, len(kb.Rules))
	for i, r := range kb.Rules {
		if err := kbValidate.Struct(r); err != nil {
			return fmt.Errorf("rule #%d (%s): %w", i+1, r.ID, err)
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate rule id %s", r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

// readKnowledgeBaseWorkbook は symptoms / rules シートからナレッジベースを組み立てます。
func readKnowledgeBaseWorkbook(path string) (models.KnowledgeBase, error) {
	kb := models.KnowledgeBase{Symptoms: make(map[string]models.Symptom)}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return kb, err
	}
	defer f.Close()

	rows, err := sheetRows(f, SheetSymptoms)
	if err != nil {
		return kb, err
	}
	header := rows[0]
	idCol, nameCol, cfCol := findColumn(header, "id"), findColumn(header, "name"), findColumn(header, "cf")
	if idCol == -1 || nameCol == -1 || cfCol == -1 {
		return kb, fmt.Errorf("sheet %s: required columns id, name, cf not found in header %v", SheetSymptoms, header)
	}
	for i, row := range rows[1:] {
		id := cell(row, idCol)
		if id == "" {
			continue
		}
		cf, err := strconv.ParseFloat(cell(row, cfCol), 64)
		if err != nil {
			return kb, fmt.Errorf("sheet %s row %d: invalid cf: %w", SheetSymptoms, i+2, err)
		}
		kb.Symptoms[id] = models.Symptom{ID: id, Name: cell(row, nameCol), CF: cf}
	}

	rows, err = sheetRows(f, SheetRules)
	if err != nil {
		return kb, err
	}
	header = rows[0]
	idCol, cfCol = findColumn(header, "id"), findColumn(header, "cf")
	descCol, ifCol, thenCol := findColumn(header, "description"), findColumn(header, "if"), findColumn(header, "then")
	if idCol == -1 || ifCol == -1 || thenCol == -1 || cfCol == -1 {
		return kb, fmt.Errorf("sheet %s: required columns id, if, then, cf not found in header %v", SheetRules, header)
	}
	for i, row := range rows[1:] {
		id := cell(row, idCol)
		if id == "" {
			continue
		}
		cf, err := strconv.ParseFloat(cell(row, cfCol), 64)
		if err != nil {
			return kb, fmt.Errorf("sheet %s row %d: invalid cf: %w", SheetRules, i+2, err)
		}
		kb.Rules = append(kb.Rules, models.Rule{
			ID:          id,
			Description: cell(row, descCol),
			If:          splitList(strings.ReplaceAll(cell(row, ifCol), ",", listSeparator)),
			Then:        cell(row, thenCol),
			CF:          cf,
		})
	}
	return kb, nil
}

// readDiagnosisWorkbook は diagnoses シートから診断カタログを組み立てます。
func readDiagnosisWorkbook(path string) (models.DiagnosisCatalog, error) {
	catalog := make(models.DiagnosisCatalog)

	f, err := excelize.OpenFile(path)
	if err != nil {
		return catalog, err
	}
	defer f.Close()

	rows, err := sheetRows(f, SheetDiagnoses)
	if err != nil {
		return catalog, err
	}
	header := rows[0]
	idCol := findColumn(header, "id")
	if idCol == -1 {
		return catalog, fmt.Errorf("sheet %s: id column not found in header %v", SheetDiagnoses, header)
	}
	for _, row := range rows[1:] {
		id := cell(row, idCol)
		if id == "" {
			continue
		}
		catalog[id] = models.Diagnosis{
			Name:            cell(row, findColumn(header, "name")),
			Description:     cell(row, findColumn(header, "description")),
			Causes:          splitList(cell(row, findColumn(header, "causes"))),
			Solutions:       splitList(cell(row, findColumn(header, "solutions"))),
			Severity:        cell(row, findColumn(header, "severity")),
			MaintenanceTime: cell(row, findColumn(header, "maintenance_time")),
			RiskLevel:       cell(row, findColumn(header, "risk_level")),
			ToolsRequired:   splitList(cell(row, findColumn(header, "tools_required"))),
		}
	}
	return catalog, nil
}

// sheetRows は大文字小文字を区別せずにシートを探し、ヘッダー行を含む全行を返します。
func sheetRows(f *excelize.File, name string) ([][]string, error) {
	for _, sheet := range f.GetSheetList() {
		if !strings.EqualFold(sheet, name) {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, err
		}
		if len(rows) < 1 {
			return nil, fmt.Errorf("sheet %s is empty", name)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("sheet %s not found", name)
}

// findColumn はヘッダーから列インデックスを探します。見つからなければ -1 です。
func findColumn(header []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, item := range header {
			if strings.EqualFold(strings.TrimSpace(item), candidate) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func splitList(s string) []string {
	list := make([]string, 0)
	for _, part := range strings.Split(s, listSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list
}
