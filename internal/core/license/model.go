package license

// Document は文書カタログのレコードを表す。
// SourceURL がチャンクの source_file と突合されるキーになる。
type Document struct {
	SourceURL  string
	Title      string
	LicenseKey string
}

// Policy はライセンスの利用条件を表す不変の参照データ。
// nil のフィールドは規定のデフォルト値に置換して解釈する。
type Policy struct {
	LicenseKey           string
	CommercialUseAllowed *bool
	DerivativesAllowed   *bool
	ShareAlikeRequired   *bool
	VerbatimAllowed      *bool
	VerbatimCharLimit    *int
	CitationRequired     *bool
	AttributionRequired  *bool
}
