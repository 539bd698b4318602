package inference

import (
	"errors"
	"fmt"
)

// ErrEmptyInput は症状が1つも指定されなかったことを示します。呼び出し側で修正可能なエラーです。
var ErrEmptyInput = errors.New("no symptoms selected")

// MissingDiagnosisRecordError は推論結果の診断IDが診断カタログに存在しないことを示します。
// ナレッジベースの不整合なので、その場では回復しません。
type MissingDiagnosisRecordError struct {
	DiagnosisID string
}

func (e *MissingDiagnosisRecordError) Error() string {
	return fmt.Sprintf("diagnosis %q has no record in the diagnosis catalog", e.DiagnosisID)
}
