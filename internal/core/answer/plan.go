package answer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultPlan はPlanner出力が解釈できない場合の安全側デフォルトを返す。
// 文書検索は有効、ベンダー照会と確認質問は無効。
func DefaultPlan() PlanDecision {
	return PlanDecision{
		NeedsClarification: false,
		ClarifyingQuestion: "",
		UseDocsRAG:         true,
		UseVendors:         false,
	}
}

// DecodePlan はPlannerの生出力をPlanDecisionに復号する。
// JSONとして不正な場合はエラーを返し、呼び出し側が DefaultPlan を代入する。
// キーが欠けている場合は use_docs_rag のみtrueに倒す。
func DecodePlan(raw string) (PlanDecision, error) {
	var payload struct {
		NeedsClarification *bool   `json:"needs_clarification"`
		ClarifyingQuestion *string `json:"clarifying_question"`
		UseDocsRAG         *bool   `json:"use_docs_rag"`
		UseVendors         *bool   `json:"use_vendors"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
		return PlanDecision{}, fmt.Errorf("failed to decode plan: %w", err)
	}

	decision := DefaultPlan()
	if payload.NeedsClarification != nil {
		decision.NeedsClarification = *payload.NeedsClarification
	}
	if payload.ClarifyingQuestion != nil {
		decision.ClarifyingQuestion = *payload.ClarifyingQuestion
	}
	if payload.UseDocsRAG != nil {
		decision.UseDocsRAG = *payload.UseDocsRAG
	}
	if payload.UseVendors != nil {
		decision.UseVendors = *payload.UseVendors
	}
	return decision, nil
}
