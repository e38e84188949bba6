package answer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultVerdict はValidator出力が解釈できない場合のデフォルト（合格扱い）を返す
func DefaultVerdict() Verdict {
	return Verdict{OK: true, Issues: nil}
}

// DecodeVerdict はValidatorの生出力をVerdictに復号する。
// JSONとして不正な場合はエラーを返し、呼び出し側が DefaultVerdict を代入する。
// okキーが欠けている場合は合格扱いに倒す。
func DecodeVerdict(raw string) (Verdict, error) {
	var payload struct {
		OK     *bool    `json:"ok"`
		Issues []string `json:"issues"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
		return Verdict{}, fmt.Errorf("failed to decode verdict: %w", err)
	}

	verdict := Verdict{OK: true, Issues: payload.Issues}
	if payload.OK != nil {
		verdict.OK = *payload.OK
	}
	return verdict, nil
}

// ShouldRepair は修正パスを実行すべきかどうかを返す。
// 修正は質問ごとに最大1回という方針の判定点をここに隔離する。
func ShouldRepair(v Verdict) bool {
	return !v.OK
}
