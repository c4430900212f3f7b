package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/sintrade/edubot/internal/domain"
)

const (
	defaultModel   = "gpt-4.1-mini"
	defaultTimeout = 20 * time.Second
	minTimeout     = 3 * time.Second
	maxTimeout     = 60 * time.Second
)

// Cool-off windows after a failed outbound call. The client refuses further
// attempts until the window passes so a broken backend cannot slow every
// command down to its timeout.
const (
	suspendTimeout   = 20 * time.Second
	suspendNetwork   = 60 * time.Second
	suspendAuth      = 5 * time.Minute
	suspendRateLimit = 2 * time.Minute
	suspendQuota     = 30 * time.Minute
)

// OpenAIConfig configures the chat-completions backend. Any endpoint speaking
// the OpenAI API works, including OpenRouter.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	SiteURL string
	AppName string
	Timeout time.Duration
}

// OpenAIClient generates content through a chat-completions API. Every call
// makes exactly one outbound attempt.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     *slog.Logger

	mu           sync.Mutex
	suspendUntil time.Time
	lastError    string

	now func() time.Time
}

// NewOpenAIClient creates a generation client for the configured endpoint.
func NewOpenAIClient(cfg OpenAIConfig, log *slog.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("generation API key is required")
	}
	if log == nil {
		log = slog.Default()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if isOpenRouter(clientConfig.BaseURL) {
		clientConfig.HTTPClient = &http.Client{
			Transport: &attributionTransport{
				siteURL: cfg.SiteURL,
				appName: cfg.AppName,
			},
		}
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		timeout: clampTimeout(cfg.Timeout),
		log:     log,
		now:     time.Now,
	}, nil
}

func clampTimeout(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return defaultTimeout
	case d < minTimeout:
		return minTimeout
	case d > maxTimeout:
		return maxTimeout
	}
	return d
}

func isOpenRouter(baseURL string) bool {
	return strings.Contains(baseURL, "openrouter.ai")
}

// attributionTransport adds the attribution headers OpenRouter expects.
type attributionTransport struct {
	siteURL string
	appName string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.siteURL != "" {
		req.Header.Set("HTTP-Referer", t.siteURL)
	}
	if t.appName != "" {
		req.Header.Set("X-Title", t.appName)
	}
	return http.DefaultTransport.RoundTrip(req)
}

// Suspended reports whether the client is inside a cool-off window.
func (c *OpenAIClient) Suspended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Before(c.suspendUntil)
}

// LastErrorCode returns the code of the most recent failure, empty after a
// successful call.
func (c *OpenAIClient) LastErrorCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// StatusLabel renders the backend availability line shown by /status.
func (c *OpenAIClient) StatusLabel(language string) string {
	c.mu.Lock()
	suspended := c.now().Before(c.suspendUntil) && c.lastError != ""
	lastError := c.lastError
	c.mu.Unlock()

	if promptLanguage(language) == "en" {
		if suspended {
			return fmt.Sprintf("❌ Dynamic AI content (temporarily unavailable: %s)", lastError)
		}
		return "✅ Dynamic AI content (unlimited)"
	}
	if suspended {
		return fmt.Sprintf("❌ محتوى AI ديناميكي (غير متاح مؤقتًا: %s)", lastError)
	}
	return "✅ محتوى AI ديناميكي (غير محدود)"
}

// Lesson generates one lesson for the given curriculum position.
func (c *OpenAIClient) Lesson(ctx context.Context, req LessonRequest) (*domain.Lesson, error) {
	lang := promptLanguage(req.Language)

	data, err := c.completeJSON(ctx, lessonPrompt(req, lang), 1.0, lang)
	if err != nil {
		return nil, err
	}

	return parseLesson(data, req.Level, lang), nil
}

// Quiz generates quiz questions for a lesson.
func (c *OpenAIClient) Quiz(ctx context.Context, req QuizRequest) ([]domain.QuizQuestion, error) {
	if req.Lesson == nil || req.Count <= 0 {
		return nil, ErrUnavailable
	}
	lang := promptLanguage(req.Language)

	data, err := c.completeJSON(ctx, quizPrompt(req, lang), 0.8, lang)
	if err != nil {
		return nil, err
	}

	questions := parseQuiz(data["quiz"], lang)
	if len(questions) == 0 {
		c.recordFailure("empty_content", 0)
		return nil, ErrEmptyContent
	}

	return ensureQuizCount(questions, req.Count, lang), nil
}

// Simulation generates one trade-planning scenario.
func (c *OpenAIClient) Simulation(ctx context.Context, req ScenarioRequest) (*domain.SimulationScenario, error) {
	lang := promptLanguage(req.Language)

	data, err := c.completeJSON(ctx, simulationPrompt(req, lang), 1.0, lang)
	if err != nil {
		return nil, err
	}

	scenario := parseSimulation(data)
	if scenario == nil {
		c.recordFailure("invalid_simulation", 0)
		return nil, ErrEmptyContent
	}

	return scenario, nil
}

// Challenge generates one daily analysis challenge.
func (c *OpenAIClient) Challenge(ctx context.Context, req ScenarioRequest) (*domain.Challenge, error) {
	lang := promptLanguage(req.Language)

	data, err := c.completeJSON(ctx, challengePrompt(req, lang), 1.0, lang)
	if err != nil {
		return nil, err
	}

	challenge := parseChallenge(data, lang)
	if challenge == nil {
		c.recordFailure("invalid_challenge", 0)
		return nil, ErrEmptyContent
	}

	return challenge, nil
}

// Answer replies to a free-form trading question in the question's language.
func (c *OpenAIClient) Answer(ctx context.Context, question, language string) (string, error) {
	// The reply language follows the question text, not the profile setting,
	// so a bilingual user gets answers in whichever language they typed.
	lang := promptLanguage(language)
	if looksArabic(question) {
		lang = "ar"
	} else if strings.ContainsFunc(question, func(r rune) bool { return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' }) {
		lang = "en"
	}

	userPrompt := fmt.Sprintf(
		"User asks: %s\n\n"+
			"Answer the user's question in clear, concise English. "+
			"Remember: Do not give direct financial advice, focus on education and risk management.",
		question)
	if lang == "ar" {
		userPrompt = fmt.Sprintf(
			"المستخدم يسأل: %s\n\n"+
				"أجب على سؤال المستخدم بلغة عربية واضحة ومختصرة. "+
				"تذكر: لا تعطي نصائح مالية مباشرة، ركز على التعليم وإدارة المخاطر.",
			question)
	}

	content, err := c.complete(ctx, userPrompt, 0.7, lang, false)
	if err != nil {
		return "", err
	}

	return content, nil
}

// complete makes a single chat-completion call and returns the raw content.
func (c *OpenAIClient) complete(ctx context.Context, userPrompt string, temperature float32, lang string, jsonMode bool) (string, error) {
	if c.Suspended() {
		return "", ErrSuspended
	}

	request := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompts[lang]},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: temperature,
	}
	if jsonMode {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(callCtx, request)
	if err != nil {
		code, window := classifyError(err)
		c.recordFailure(code, window)
		c.log.Warn("completion failed", "code", code, "suspend", window.String(), "error", err)
		return "", fmt.Errorf("%w: %s", ErrUnavailable, code)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		c.recordFailure("empty_content", 0)
		return "", ErrEmptyContent
	}

	c.recordSuccess()
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// completeJSON makes a single call and decodes the reply as a JSON object.
func (c *OpenAIClient) completeJSON(ctx context.Context, userPrompt string, temperature float32, lang string) (map[string]any, error) {
	content, err := c.complete(ctx, userPrompt, temperature, lang, true)
	if err != nil {
		return nil, err
	}

	raw := extractJSONBlock(content)

	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		c.recordFailure("invalid_json", 0)
		return nil, ErrInvalidJSON
	}

	switch value := parsed.(type) {
	case map[string]any:
		return value, nil
	case []any:
		return map[string]any{"quiz": value}, nil
	}

	c.recordFailure("invalid_json_shape", 0)
	return nil, ErrInvalidJSON
}

func (c *OpenAIClient) recordFailure(code string, window time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastError = code
	if window > 0 {
		c.suspendUntil = c.now().Add(window)
	}
}

func (c *OpenAIClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastError = ""
}

// classifyError maps a call failure to an error code and cool-off window.
func classifyError(err error) (string, time.Duration) {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout", suspendTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout", suspendTimeout
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := apiErrorCode(apiErr)

		switch {
		case apiErr.HTTPStatusCode == http.StatusUnauthorized,
			apiErr.HTTPStatusCode == http.StatusForbidden:
			return code, suspendAuth
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			if code == "insufficient_quota" {
				return code, suspendQuota
			}
			return code, suspendRateLimit
		default:
			return code, suspendNetwork
		}
	}

	return "network_error", suspendNetwork
}

func apiErrorCode(apiErr *openai.APIError) string {
	if code, ok := apiErr.Code.(string); ok && strings.TrimSpace(code) != "" {
		return strings.TrimSpace(code)
	}
	if apiErr.Type != "" {
		return strings.TrimSpace(apiErr.Type)
	}
	if apiErr.Message != "" {
		normalized := strings.ToLower(strings.TrimSpace(apiErr.Message))
		normalized = strings.ReplaceAll(normalized, " ", "_")
		if len(normalized) > 80 {
			normalized = normalized[:80]
		}
		return normalized
	}
	return fmt.Sprintf("http_%d", apiErr.HTTPStatusCode)
}

func looksArabic(text string) bool {
	arabic := 0
	total := 0
	for _, r := range text {
		total++
		if (r >= 0x0600 && r <= 0x06FF) || (r >= 0x0750 && r <= 0x077F) {
			arabic++
		}
	}
	return total > 0 && float64(arabic) > float64(total)*0.3
}

// extractJSONBlock pulls the outermost JSON object or array out of a reply
// that may be wrapped in prose or markdown fences.
func extractJSONBlock(text string) string {
	stripped := strings.TrimSpace(text)
	if strings.HasPrefix(stripped, "{") && strings.HasSuffix(stripped, "}") {
		return stripped
	}
	if strings.HasPrefix(stripped, "[") && strings.HasSuffix(stripped, "]") {
		return stripped
	}

	if start, end := strings.Index(stripped, "{"), strings.LastIndex(stripped, "}"); start != -1 && end > start {
		return stripped[start : end+1]
	}
	if start, end := strings.Index(stripped, "["), strings.LastIndex(stripped, "]"); start != -1 && end > start {
		return stripped[start : end+1]
	}
	return "{}"
}

var spaceRe = regexp.MustCompile(`\s+`)

func safeText(value any, fallback string) string {
	if text, ok := value.(string); ok {
		normalized := strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
		if normalized != "" {
			return normalized
		}
	}
	return fallback
}

func safeTextList(value any) []string {
	raw, ok := value.([]any)
	if !ok {
		return nil
	}

	var items []string
	for _, item := range raw {
		if text, ok := item.(string); ok {
			normalized := strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
			if normalized != "" {
				items = append(items, normalized)
			}
		}
	}
	return items
}

func safeFloat(value any) (float64, bool) {
	switch number := value.(type) {
	case float64:
		return number, true
	case string:
		var parsed float64
		if _, err := fmt.Sscanf(strings.TrimSpace(number), "%f", &parsed); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

func parseLesson(data map[string]any, level domain.Level, lang string) *domain.Lesson {
	titleDefault := "درس ذكاء اصطناعي"
	objectiveDefault := "بناء عملية تداول منضبطة تبدأ بإدارة المخاطر."
	exampleDefault := "خطط للصفقة قبل الدخول مع تحديد نقطة الإبطال."
	if lang == "en" {
		titleDefault = "AI Lesson"
		objectiveDefault = "Build a disciplined process that starts with risk management."
		exampleDefault = "Plan the trade before entry with clear invalidation."
	}

	bullets := safeTextList(data["bullet_points"])
	if len(bullets) < 4 {
		bullets = append(bullets, fallbackBullets(lang)...)
	}

	return &domain.Lesson{
		ID:           domain.DynamicLessonPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:10],
		Level:        level,
		Title:        safeText(data["title"], titleDefault),
		Objective:    safeText(data["objective"], objectiveDefault),
		BulletPoints: bullets[:4],
		Example:      safeText(data["example"], exampleDefault),
		Quiz:         parseQuiz(data["quiz"], lang),
	}
}

func parseQuiz(raw any, lang string) []domain.QuizQuestion {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}

	fallbackExplanation := "راجع منطق إدارة المخاطر أولًا."
	if lang == "en" {
		fallbackExplanation = "Review risk logic first."
	}

	var parsed []domain.QuizQuestion
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}

		prompt := safeText(firstOf(entry, "prompt", "question"), "")
		options := normalizeOptions(firstOf(entry, "options", "choices"))
		if prompt == "" || len(options) < 4 {
			continue
		}

		parsed = append(parsed, domain.QuizQuestion{
			Prompt:      prompt,
			Options:     options,
			Answer:      normalizeAnswer(firstOf(entry, "answer", "correct_answer", "correct"), options),
			Explanation: safeText(firstOf(entry, "explanation", "reasoning", "why"), fallbackExplanation),
		})
	}
	return parsed
}

func firstOf(entry map[string]any, keys ...string) any {
	for _, key := range keys {
		if value, ok := entry[key]; ok && value != nil {
			return value
		}
	}
	return nil
}

// normalizeOptions accepts either an A-D keyed object or a plain list and
// returns a complete A-D map, or nil when the options are unusable.
func normalizeOptions(raw any) map[string]string {
	if keyed, ok := raw.(map[string]any); ok {
		normalized := make(map[string]string, len(domain.OptionKeys))
		for _, key := range domain.OptionKeys {
			value := keyed[key]
			if value == nil {
				value = keyed[strings.ToLower(key)]
			}
			if text, ok := value.(string); ok && strings.TrimSpace(text) != "" {
				normalized[key] = strings.TrimSpace(text)
			}
		}
		if len(normalized) == len(domain.OptionKeys) {
			return normalized
		}
	}

	if listed, ok := raw.([]any); ok {
		var values []string
		for _, item := range listed {
			switch value := item.(type) {
			case map[string]any:
				if text := safeText(firstOf(value, "text", "option", "value"), ""); text != "" {
					values = append(values, text)
				}
			case string:
				if text := strings.TrimSpace(value); text != "" {
					values = append(values, text)
				}
			}
		}
		if len(values) >= len(domain.OptionKeys) {
			normalized := make(map[string]string, len(domain.OptionKeys))
			for i, key := range domain.OptionKeys {
				normalized[key] = values[i]
			}
			return normalized
		}
	}

	return nil
}

// normalizeAnswer resolves the answer to an option key, matching by key, by
// option text, or by 1-based position. Unresolvable answers default to A.
func normalizeAnswer(raw any, options map[string]string) string {
	switch answer := raw.(type) {
	case string:
		key := strings.ToUpper(strings.TrimSpace(answer))
		if _, ok := options[key]; ok {
			return key
		}
		for optionKey, optionText := range options {
			if strings.EqualFold(strings.TrimSpace(optionText), strings.TrimSpace(answer)) {
				return optionKey
			}
		}
	case float64:
		position := int(answer)
		if position >= 1 && position <= len(domain.OptionKeys) {
			return domain.OptionKeys[position-1]
		}
	}
	return "A"
}

func parseSimulation(data map[string]any) *domain.SimulationScenario {
	symbol := safeText(data["symbol"], "")
	entry, okEntry := safeFloat(data["entry"])
	support, okSupport := safeFloat(data["support"])
	resistance, okResistance := safeFloat(data["resistance"])
	if symbol == "" || !okEntry || !okSupport || !okResistance {
		return nil
	}

	return &domain.SimulationScenario{
		Symbol:     strings.ToUpper(symbol),
		Entry:      entry,
		Support:    support,
		Resistance: resistance,
		Context:    safeText(data["context"], ""),
	}
}

func parseChallenge(data map[string]any, lang string) *domain.Challenge {
	prompt := safeText(data["prompt"], "")
	if prompt == "" {
		return nil
	}

	keywords := safeTextList(data["expected_keywords"])
	if len(keywords) > 4 {
		keywords = keywords[:4]
	}
	if len(keywords) < 4 {
		keywords = fallbackKeywords(lang)
	}

	lower := strings.ToLower(prompt)
	if lang == "en" {
		if !strings.HasPrefix(lower, "daily challenge") {
			prompt = "Daily Challenge: " + prompt
		}
	} else if !strings.HasPrefix(prompt, "تحدي اليوم") && !strings.HasPrefix(lower, "daily challenge") {
		prompt = "تحدي اليوم: " + prompt
	}

	return &domain.Challenge{
		Prompt:           prompt,
		ExpectedKeywords: keywords,
	}
}

func fallbackBullets(lang string) []string {
	if lang == "en" {
		return []string{
			"Define invalidation before every entry.",
			"Use small, consistent risk per trade.",
			"Avoid emotional and revenge trading.",
			"Journal executions and review process quality.",
		}
	}
	return []string{
		"حدد نقطة الإبطال قبل دخول أي صفقة.",
		"خاطر بنسبة صغيرة وثابتة في كل صفقة.",
		"تجنب الدخول العاطفي وتداول الانتقام.",
		"سجل تنفيذك وراجع جودة العملية.",
	}
}

func fallbackKeywords(lang string) []string {
	if lang == "en" {
		return []string{"risk", "invalidation", "structure", "confirmation"}
	}
	return []string{"مخاطرة", "إبطال", "هيكل", "تأكيد"}
}

// ensureQuizCount trims or pads the question list to exactly count entries.
func ensureQuizCount(questions []domain.QuizQuestion, count int, lang string) []domain.QuizQuestion {
	if count <= 0 {
		return nil
	}
	if len(questions) >= count {
		return questions[:count]
	}

	padded := append([]domain.QuizQuestion(nil), questions...)
	seed := fallbackQuiz(lang)
	for i := 0; len(padded) < count; i++ {
		base := seed[i%len(seed)]
		base.Prompt = fmt.Sprintf("%s (%d)", base.Prompt, len(padded)+1)
		padded = append(padded, base)
	}
	return padded
}

func fallbackQuiz(lang string) []domain.QuizQuestion {
	if lang == "en" {
		return []domain.QuizQuestion{
			{
				Prompt: "What must be defined before any entry?",
				Options: map[string]string{
					"A": "Invalidation point and risk limit",
					"B": "Guaranteed outcome",
					"C": "Maximum leverage",
					"D": "A social media signal",
				},
				Answer:      "A",
				Explanation: "Every trade needs invalidation and controlled risk.",
			},
			{
				Prompt: "Which mindset is more professional?",
				Options: map[string]string{
					"A": "Win every trade",
					"B": "Process consistency over short-term outcomes",
					"C": "Double risk after a loss",
					"D": "Enter every opportunity",
				},
				Answer:      "B",
				Explanation: "Professional growth comes from repeatable process quality.",
			},
		}
	}
	return []domain.QuizQuestion{
		{
			Prompt: "ما الذي يجب تحديده قبل أي دخول؟",
			Options: map[string]string{
				"A": "نقطة الإبطال وحد المخاطرة",
				"B": "نتيجة مضمونة",
				"C": "أعلى رافعة ممكنة",
				"D": "إشارة من مواقع التواصل",
			},
			Answer:      "A",
			Explanation: "كل صفقة تحتاج نقطة إبطال ومخاطرة منضبطة.",
		},
		{
			Prompt: "أي عقلية هي الأكثر احترافية؟",
			Options: map[string]string{
				"A": "الربح في كل صفقة",
				"B": "ثبات العملية أهم من النتائج القصيرة",
				"C": "مضاعفة المخاطرة بعد الخسارة",
				"D": "الدخول في كل فرصة",
			},
			Answer:      "B",
			Explanation: "النمو الاحترافي يأتي من جودة عملية قابلة للتكرار.",
		},
	}
}
