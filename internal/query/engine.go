package query

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codesellers/backend/internal/dataset"
	"github.com/codesellers/backend/internal/metrics"
	"github.com/codesellers/backend/internal/ranking"
	"github.com/codesellers/backend/internal/region"
	"github.com/codesellers/backend/internal/sales"
	"github.com/codesellers/backend/internal/storage/models"
	"github.com/codesellers/backend/pkg/logger"
	"github.com/codesellers/backend/pkg/utils"
)

// Answerer is the natural-language collaborator fed with assembled context.
type Answerer interface {
	GenerateAnswer(ctx context.Context, contextBlock, question string) (string, error)
	StreamAnswer(ctx context.Context, contextBlock, question string, onDelta func(string) error) (string, error)
}

type AnswerCache interface {
	GetAnswer(ctx context.Context, key string, answer interface{}) (bool, error)
	SetAnswer(ctx context.Context, key string, answer interface{}, ttl time.Duration) error
}

type ChatStore interface {
	CreateChat(chat *models.Chat) error
	GetChat(id string) (*models.Chat, error)
	InsertMessage(msg *models.Message) error
}

type Options struct {
	DefaultK int
	CacheTTL time.Duration
}

type Engine struct {
	store    *dataset.Store
	ranker   *ranking.Ranker
	answerer Answerer
	chats    ChatStore
	cache    AnswerCache
	opts     Options
}

// NewEngine wires the query side. chats and cache may be nil.
func NewEngine(store *dataset.Store, ranker *ranking.Ranker, answerer Answerer, chats ChatStore, cache AnswerCache, opts Options) *Engine {
	if opts.DefaultK <= 0 {
		opts.DefaultK = 10
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	return &Engine{
		store:    store,
		ranker:   ranker,
		answerer: answerer,
		chats:    chats,
		cache:    cache,
		opts:     opts,
	}
}

func (e *Engine) Regions() []region.Tag {
	return region.Tags()
}

type RegionSales struct {
	Region  region.Tag     `json:"region"`
	Summary sales.Summary  `json:"summary"`
	Records []sales.Record `json:"records"`
}

// RegionSummary aggregates one region of the current corpus. name must be
// one of the region tags exactly as Regions lists them. Unknown regions and
// regions without records are both ErrRegionNotFound.
func (e *Engine) RegionSummary(name string) (*RegionSales, error) {
	tag := region.Tag(name)
	if !region.Valid(tag) {
		return nil, fmt.Errorf("%w: %q", sales.ErrRegionNotFound, name)
	}

	records := e.store.Snapshot().Region(tag)
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records for %s", sales.ErrRegionNotFound, tag)
	}

	return &RegionSales{
		Region:  tag,
		Summary: sales.Summarize(records),
		Records: records,
	}, nil
}

func (e *Engine) Rank(question string, k int) (*ranking.Ranking, error) {
	return e.ranker.Rank(e.store.Snapshot().Records, question, k)
}

// RankedContext ranks the corpus against question and assembles the context
// block. k must be positive.
func (e *Engine) RankedContext(question string, k int) (string, error) {
	rk, err := e.Rank(question, k)
	if err != nil {
		return "", err
	}
	return AssembleContext(rk.Results, question), nil
}

type AskRequest struct {
	ChatID  string
	Message string
	// K of zero selects the configured default.
	K int
}

type Source struct {
	SeqID   int        `json:"id"`
	Region  region.Tag `json:"region"`
	Product string     `json:"product"`
	Score   float64    `json:"score"`
}

type AskResponse struct {
	ID        string   `json:"id"`
	ChatID    string   `json:"chat_id"`
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Sources   []Source `json:"sources"`
	Fallback  bool     `json:"fallback"`
	Cached    bool     `json:"cached"`
	LatencyMS int      `json:"latency_ms"`
}

func (e *Engine) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	return e.ask(ctx, req, func(block, question string) (string, error) {
		return e.answerer.GenerateAnswer(ctx, block, question)
	}, nil)
}

// AskStream is Ask with the answer delivered through onDelta as it is
// generated. A cached answer is delivered as a single delta.
func (e *Engine) AskStream(ctx context.Context, req AskRequest, onDelta func(string) error) (*AskResponse, error) {
	return e.ask(ctx, req, func(block, question string) (string, error) {
		return e.answerer.StreamAnswer(ctx, block, question, onDelta)
	}, onDelta)
}

type generateFunc func(block, question string) (string, error)

func (e *Engine) ask(ctx context.Context, req AskRequest, generate generateFunc, onCached func(string) error) (*AskResponse, error) {
	startTime := time.Now()
	queryID := uuid.New().String()

	question := strings.TrimSpace(req.Message)
	if question == "" {
		return nil, fmt.Errorf("%w: message is empty", sales.ErrInvalidArgument)
	}

	k := req.K
	if k == 0 {
		k = e.opts.DefaultK
	}
	if k < 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", sales.ErrInvalidArgument, k)
	}

	if req.ChatID != "" && e.chats != nil {
		if _, err := e.chats.GetChat(req.ChatID); err != nil {
			return nil, err
		}
	}

	logger.Info("Processing question",
		zap.String("query_id", queryID),
		zap.String("chat_id", req.ChatID),
		zap.Int("k", k),
	)

	corpus := e.store.Snapshot()
	rk, err := e.ranker.Rank(corpus.Records, question, k)
	if err != nil {
		return nil, err
	}
	block := AssembleContext(rk.Results, question)

	cacheKey := utils.HashKey(corpus.Version, strconv.Itoa(k), strings.ToLower(question))
	answer, cached := e.cachedAnswer(ctx, cacheKey)

	if cached && onCached != nil {
		if err := onCached(answer); err != nil {
			return nil, err
		}
	}

	source := "cache"
	if !cached {
		source = "llm"
		answer, err = generate(block, question)
		if err != nil {
			metrics.QueryTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to generate answer: %w", err)
		}
		e.storeAnswer(ctx, cacheKey, answer)
	}

	chatID := e.persist(req.ChatID, question, answer, rk.Results)

	sources := make([]Source, len(rk.Results))
	for i, r := range rk.Results {
		sources[i] = Source{
			SeqID:   r.Record.SeqID,
			Region:  r.Record.Region,
			Product: r.Record.Product,
			Score:   r.Score,
		}
	}

	elapsed := time.Since(startTime)
	metrics.QueryDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	metrics.QueryTotal.WithLabelValues("success").Inc()

	logger.Info("Question answered",
		zap.String("query_id", queryID),
		zap.String("chat_id", chatID),
		zap.Int("sources", len(sources)),
		zap.Bool("fallback", rk.Fallback),
		zap.Bool("cached", cached),
		zap.Duration("latency", elapsed),
	)

	return &AskResponse{
		ID:        queryID,
		ChatID:    chatID,
		Question:  question,
		Answer:    answer,
		Sources:   sources,
		Fallback:  rk.Fallback,
		Cached:    cached,
		LatencyMS: int(elapsed.Milliseconds()),
	}, nil
}

func (e *Engine) cachedAnswer(ctx context.Context, key string) (string, bool) {
	if e.cache == nil {
		return "", false
	}

	var answer string
	found, err := e.cache.GetAnswer(ctx, key, &answer)
	if err != nil {
		logger.Warn("Answer cache lookup failed", zap.Error(err))
		return "", false
	}
	if !found {
		metrics.CacheMisses.WithLabelValues("answer").Inc()
		return "", false
	}

	metrics.CacheHits.WithLabelValues("answer").Inc()
	return answer, true
}

func (e *Engine) storeAnswer(ctx context.Context, key, answer string) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SetAnswer(ctx, key, answer, e.opts.CacheTTL); err != nil {
		logger.Warn("Failed to cache answer", zap.Error(err))
	}
}

// persist records the exchange, creating the chat when chatID is empty.
// Storage failures are logged and do not fail the question.
func (e *Engine) persist(chatID, question, answer string, results []ranking.Result) string {
	if e.chats == nil {
		return chatID
	}

	now := time.Now()
	if chatID == "" {
		chat := &models.Chat{
			ID:        uuid.New().String(),
			Title:     chatTitle(question),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := e.chats.CreateChat(chat); err != nil {
			logger.Warn("Failed to create chat", zap.Error(err))
			return ""
		}
		chatID = chat.ID
	}

	ids := make([]int, len(results))
	for i, r := range results {
		ids[i] = r.Record.SeqID
	}

	messages := []*models.Message{
		{ID: uuid.New().String(), ChatID: chatID, Role: models.RoleUser, Content: question, CreatedAt: now},
		{ID: uuid.New().String(), ChatID: chatID, Role: models.RoleAssistant, Content: answer, SourceIDs: ids, CreatedAt: now.Add(time.Microsecond)},
	}
	for _, m := range messages {
		if err := e.chats.InsertMessage(m); err != nil {
			logger.Warn("Failed to store message", zap.String("chat_id", chatID), zap.Error(err))
		}
	}

	return chatID
}

const maxTitleRunes = 60

func chatTitle(question string) string {
	if utf8.RuneCountInString(question) <= maxTitleRunes {
		return question
	}
	runes := []rune(question)
	return string(runes[:maxTitleRunes]) + "..."
}
