package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jinford/meai/internal/core/conversation"
	"github.com/jinford/meai/internal/core/llm"
)

const (
	// retrieveK は通常時の類似検索件数
	retrieveK = 8

	// fallbackK はsystem-docs-onlyモードで再試行するときの検索件数
	fallbackK = 24

	// defaultTemperature は初回生成の温度。修正パスは常に0。
	defaultTemperature = 0.2

	// DefaultSchedulingURL は定型スケジューリング回答に埋め込むリンク
	DefaultSchedulingURL = "https://calendar.app.google/b9H7oKXC58tDX4ge9"

	// DefaultVendorTableName は [VENDOR_TABLE] 引用の出典名
	DefaultVendorTableName = "vendors_core"

	// RoutedSchedule は定型スケジューリング応答のルーティングタグ
	RoutedSchedule = "hardwarehub_schedule"

	// noContextAnswer はsystem-docs-onlyモードで文脈ゼロのときの確定回答
	noContextAnswer = "No ME AI system-doc context retrieved"

	// licenseBlockEmpty は文書検索を行わなかった場合のライセンスブロック
	licenseBlockEmpty = "LICENSE CONSTRAINTS (must follow):\n- No retrieved documents."

	// vendorBlockNotRequested はベンダー照会を行わない場合のプレースホルダ。
	// 生成プロンプトのセクション構造を常に安定させるため省略はしない。
	vendorBlockNotRequested = "VENDOR_TABLE_MATCHES:\n- Not requested."

	promptPlanner     = "planner"
	promptValidator   = "validator"
	promptPinnedFacts = "pinned_facts_hardwarehub"
)

// Service は質問応答パイプラインを提供する。
// 1質問の処理は単一の論理スレッドで逐次実行され、内部並行性を持たない。
type Service struct {
	prompts  PromptStore
	llm      llm.Client
	embedder llm.Embedder
	chunks   ChunkSearcher
	licenses LicenseDirectives
	vendors  VendorDirectives
	conv     conversation.Store
	logger   *slog.Logger

	schedulingURL   string
	vendorTableName string
}

// ServiceOption は Service 構築時のオプション
type ServiceOption func(*Service)

// WithLogger はロガーを差し替える
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithSchedulingURL は定型回答のスケジューリングリンクを上書きする
func WithSchedulingURL(url string) ServiceOption {
	return func(s *Service) {
		s.schedulingURL = url
	}
}

// WithVendorTableName は [VENDOR_TABLE] 引用の出典名を上書きする
func WithVendorTableName(name string) ServiceOption {
	return func(s *Service) {
		s.vendorTableName = name
	}
}

// NewService は新しい Service を作成する
func NewService(
	prompts PromptStore,
	llmClient llm.Client,
	embedder llm.Embedder,
	chunks ChunkSearcher,
	licenses LicenseDirectives,
	vendors VendorDirectives,
	conv conversation.Store,
	opts ...ServiceOption,
) *Service {
	svc := &Service{
		prompts:         prompts,
		llm:             llmClient,
		embedder:        embedder,
		chunks:          chunks,
		licenses:        licenses,
		vendors:         vendors,
		conv:            conv,
		logger:          slog.Default(),
		schedulingURL:   DefaultSchedulingURL,
		vendorTableName: DefaultVendorTableName,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Answer は質問に対してRAGベースで回答を生成する。
// 状態遷移: ROUTED(終端) → PLANNED → [CLARIFYING] → RETRIEVING → GENERATING →
// VALIDATING → {ACCEPTED | REPAIRING → FINAL}。全経路が終端する。
func (s *Service) Answer(ctx context.Context, params Params) (*Result, error) {
	if params.Mode == "" {
		return nil, fmt.Errorf("mode is required")
	}
	if strings.TrimSpace(params.Message) == "" {
		return nil, fmt.Errorf("message is required")
	}

	sid := params.SessionID.OrElse(uuid.New())

	var testerLabel *string
	if label, ok := params.TesterLabel.Get(); ok {
		testerLabel = &label
	}
	if err := s.conv.EnsureSession(ctx, sid, testerLabel); err != nil {
		return nil, fmt.Errorf("failed to ensure session: %w", err)
	}
	userMID, err := s.conv.InsertMessage(ctx, sid, conversation.RoleUser, params.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user message: %w", err)
	}

	systemPrompt, err := s.prompts.Load(params.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to load mode prompt: %w", err)
	}

	qtext := params.Message
	intent := DetectIntents(qtext)

	// 既知の高価値インテントは決定的にショートサーキットする。
	// このパスではPlannerも検索も一切呼ばない。
	if intent.HardwareHub && intent.Scheduling {
		return s.answerRouted(ctx, sid, params.Mode, userMID)
	}

	plan, err := s.plan(ctx, qtext, params.Mode)
	if err != nil {
		return nil, err
	}

	if clar, ok := params.Clarification.Get(); ok && plan.NeedsClarification && plan.ClarifyingQuestion != "" {
		qtext = qtext + "\n\nUser clarification: " + clar
		if _, err := s.conv.InsertMessage(ctx, sid, conversation.RoleUser, "User clarification: "+clar); err != nil {
			return nil, fmt.Errorf("failed to insert clarification: %w", err)
		}
	}

	useDocs := plan.UseDocsRAG

	// ユーザーが明示的にベンダーを求めた場合はPlannerの判定に関わらず有効化する
	useVendors := plan.UseVendors || WantsVendors(qtext)

	assembled := AssembledContext{}
	licenseBlock := licenseBlockEmpty
	systemDocsOnly := WantsSystemDocsOnly(qtext)
	if useDocs {
		queryVector, err := s.embedder.Embed(ctx, qtext)
		if err != nil {
			return nil, fmt.Errorf("failed to embed question: %w", err)
		}

		rows, err := s.chunks.Search(ctx, queryVector, retrieveK)
		if err != nil {
			return nil, fmt.Errorf("chunk search failed: %w", err)
		}
		if systemDocsOnly {
			rows = FilterSystemDocs(rows)
		}
		assembled = BuildContext(rows, MaxContextChunks)

		if systemDocsOnly && assembled.Empty() {
			rows, err = s.chunks.Search(ctx, queryVector, fallbackK)
			if err != nil {
				return nil, fmt.Errorf("chunk search failed: %w", err)
			}
			assembled = BuildContext(FilterSystemDocs(rows), MaxContextChunks)
			if assembled.Empty() {
				s.logger.Info("system-docs-only retrieval empty after retry", "sessionID", sid)
				return &Result{
					Answer:    noContextAnswer,
					Citations: []Citation{},
					Debug: Debug{
						SessionID:     sid,
						Mode:          params.Mode,
						UserMessageID: userMID.String(),
						UsedDocs:      useDocs,
						SourceFiles:   []string{},
					},
				}, nil
			}
		}
		licenseBlock = s.licenses.Directives(ctx, assembled.SourceFiles)
	}

	vendorBlock := vendorBlockNotRequested
	if useVendors {
		vendorBlock, err = s.vendors.Directives(ctx, qtext)
		if err != nil {
			return nil, fmt.Errorf("vendor lookup failed: %w", err)
		}
	}

	pinnedFacts, err := s.prompts.Load(promptPinnedFacts)
	if err != nil {
		return nil, fmt.Errorf("failed to load pinned facts: %w", err)
	}

	userPrompt := BuildUserPrompt(licenseBlock, vendorBlock, qtext)
	messages := BuildMessages(pinnedFacts, intent.Services, systemPrompt, assembled.Context, userPrompt)

	s.logger.Info("generating answer",
		"sessionID", sid,
		"mode", params.Mode,
		"usedDocs", useDocs,
		"usedVendors", useVendors,
		"contextChunks", len(assembled.Tags),
	)

	answerText, err := s.llm.Complete(ctx, messages, defaultTemperature)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	verdict, err := s.validate(ctx, answerText, params.Mode)
	if err != nil {
		return nil, err
	}
	fixed := false
	if ShouldRepair(verdict) {
		// 修正は決定的に1回だけ。2回目の検証は行わず結果をそのまま受け入れる。
		fixMsg := "Fix the answer to address these issues:\n" + issueList(verdict.Issues)
		repaired, err := s.llm.Complete(ctx, append(messages, llm.User(fixMsg)), 0)
		if err != nil {
			return nil, fmt.Errorf("failed to repair answer: %w", err)
		}
		answerText = repaired
		fixed = true
	}

	assistantMID, err := s.conv.InsertMessage(ctx, sid, conversation.RoleAssistant, answerText)
	if err != nil {
		return nil, fmt.Errorf("failed to insert assistant message: %w", err)
	}

	// ベンダー照会が有効なら [VENDOR_TABLE] を利用可能な引用タグとして公開する
	citations := BuildCitations(assembled.Tags, useVendors, s.vendorTableName)

	return &Result{
		Answer:    answerText,
		Citations: citations,
		Debug: Debug{
			SessionID:     sid,
			Mode:          params.Mode,
			MessageID:     assistantMID.String(),
			UserMessageID: userMID.String(),
			UsedDocs:      useDocs,
			UsedVendors:   useVendors,
			RetrievedK:    len(assembled.Tags),
			SourceFiles:   assembled.SourceFiles,
			Fixed:         fixed,
			PromptTokens:  CountPromptTokens(messages),
		},
	}, nil
}

// answerRouted は定型スケジューリング回答を永続化して返す
func (s *Service) answerRouted(ctx context.Context, sid uuid.UUID, mode string, userMID uuid.UUID) (*Result, error) {
	answerText := "HardwareHub provides mechanical engineering services and can help with your request. " +
		"Schedule here: " + s.schedulingURL + ". " +
		"If you want, share a couple of times you prefer and I can confirm."

	assistantMID, err := s.conv.InsertMessage(ctx, sid, conversation.RoleAssistant, answerText)
	if err != nil {
		return nil, fmt.Errorf("failed to insert assistant message: %w", err)
	}

	s.logger.Info("routed to canned scheduling answer", "sessionID", sid, "mode", mode)

	return &Result{
		Answer:    answerText,
		Citations: []Citation{},
		Debug: Debug{
			SessionID:     sid,
			Mode:          mode,
			MessageID:     assistantMID.String(),
			UserMessageID: userMID.String(),
			SourceFiles:   []string{},
			Routed:        RoutedSchedule,
		},
	}, nil
}

// plan はPlannerに検索戦略を問い合わせる。
// 出力が壊れている場合のみ安全側デフォルトに倒す。通信エラーは伝播する。
func (s *Service) plan(ctx context.Context, question, mode string) (PlanDecision, error) {
	system, err := s.prompts.Load(promptPlanner)
	if err != nil {
		return PlanDecision{}, fmt.Errorf("failed to load planner prompt: %w", err)
	}

	raw, err := s.llm.Complete(ctx, []llm.Message{
		llm.System(system),
		llm.User(fmt.Sprintf("mode=%s\nquestion=%s", mode, question)),
	}, 0)
	if err != nil {
		return PlanDecision{}, fmt.Errorf("planner call failed: %w", err)
	}

	decision, err := DecodePlan(raw)
	if err != nil {
		s.logger.Warn("planner output unparsable, using default plan", "error", err)
		return DefaultPlan(), nil
	}
	return decision, nil
}

// validate はValidatorに回答を判定させる。
// 出力が壊れている場合のみ合格扱いに倒す。通信エラーは伝播する。
func (s *Service) validate(ctx context.Context, answerText, mode string) (Verdict, error) {
	system, err := s.prompts.Load(promptValidator)
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to load validator prompt: %w", err)
	}

	raw, err := s.llm.Complete(ctx, []llm.Message{
		llm.System(system),
		llm.User(fmt.Sprintf("mode=%s\nanswer=%s", mode, answerText)),
	}, 0)
	if err != nil {
		return Verdict{}, fmt.Errorf("validator call failed: %w", err)
	}

	verdict, err := DecodeVerdict(raw)
	if err != nil {
		s.logger.Warn("validator output unparsable, accepting answer", "error", err)
		return DefaultVerdict(), nil
	}
	return verdict, nil
}

func issueList(issues []string) string {
	lines := make([]string, 0, len(issues))
	for _, issue := range issues {
		lines = append(lines, "- "+issue)
	}
	return strings.Join(lines, "\n")
}
