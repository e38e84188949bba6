package answer

import "strings"

// 固定キーワード集合によるインテント判定。
// Plannerの非決定性を避けたい既知フローは、ここで決定的に分類する。

var hardwareHubTerms = []string{"hardwarehub", "hardware hub"}

var schedulingTerms = []string{
	"meet", "meeting", "schedule", "book", "call", "intro", "chat", "calendar",
}

var servicesTerms = []string{
	"cad",
	"solidworks",
	"fea",
	"finite element",
	"cfd",
	"computational fluid",
	"prototype",
	"prototyping",
	"dfm",
	"mechanical engineering",
}

var vendorTriggerTerms = []string{
	"vendor", "vendors", "supplier", "suppliers", "manufacturer", "manufacturers",
	"machine shop", "fabrication", "fab", "who should i go to", "where do i buy",
}

var systemDocsOnlyTriggers = []string{
	"meai self-check",
	"system-docs-only",
	"use only meai system docs",
}

// Intents は質問文から検出したインテントフラグの組
type Intents struct {
	HardwareHub bool
	Scheduling  bool
	Services    bool
}

// DetectIntents は質問文を小文字化して固定キーワード集合と照合する
func DetectIntents(text string) Intents {
	q := strings.ToLower(text)
	return Intents{
		HardwareHub: containsAny(q, hardwareHubTerms),
		Scheduling:  containsAny(q, schedulingTerms),
		Services:    containsAny(q, servicesTerms),
	}
}

// WantsVendors はベンダー照会を明示するキーワードの有無を返す。
// Plannerのベンダー判定は不安定なため、このチェックがフラグをORで上書きする。
func WantsVendors(text string) bool {
	return containsAny(strings.ToLower(text), vendorTriggerTerms)
}

// WantsSystemDocsOnly は自己参照トリガーフレーズの有無を返す
func WantsSystemDocsOnly(text string) bool {
	return containsAny(strings.ToLower(text), systemDocsOnlyTriggers)
}

func containsAny(q string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(q, t) {
			return true
		}
	}
	return false
}
