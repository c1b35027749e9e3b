// Package chat runs one conversational turn end to end: resolve the
// dataset, compile and execute the query, optionally enrich the top hit
// and synthesize a report, then persist the exchange.
package chat

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/datachat-io/datachat/internal/model"
	"github.com/datachat-io/datachat/internal/osint"
	"github.com/datachat-io/datachat/internal/query"
	"github.com/datachat-io/datachat/internal/registry"
	"github.com/datachat-io/datachat/internal/report"
	"github.com/datachat-io/datachat/internal/store"
)

// ErrEmptyMessage rejects blank chat input.
var ErrEmptyMessage = eris.New("empty message")

// maxTitleLen caps the conversation title taken from the first message.
const maxTitleLen = 50

// enrichRowWindow is how many of the matched rows accompany the
// enrichment of the top hit.
const enrichRowWindow = 5

// Request is one chat turn.
type Request struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	AIMode         bool   `json:"ai_mode,omitempty"`
}

// Service handles chat turns.
type Service struct {
	store    store.Store
	compiler *query.Compiler
	executor *query.Executor
	engine   *osint.Engine
	synth    *report.Synthesizer
}

// NewService wires the chat pipeline. engine and synth may be nil when
// enrichment is disabled; ai_mode requests then degrade to plain
// answers.
func NewService(st store.Store, compiler *query.Compiler, executor *query.Executor, engine *osint.Engine, synth *report.Synthesizer) *Service {
	return &Service{
		store:    st,
		compiler: compiler,
		executor: executor,
		engine:   engine,
		synth:    synth,
	}
}

// Handle runs one turn against the given registry snapshot.
func (s *Service) Handle(ctx context.Context, snap *registry.Snapshot, req Request) (*model.ChatResponse, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, ErrEmptyMessage
	}

	convID := req.ConversationID
	if convID == "" {
		convID = uuid.NewString()
		now := time.Now().UTC()
		conv := model.Conversation{
			ID:        convID,
			Title:     truncateRunes(msg, maxTitleLen),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.CreateConversation(ctx, conv); err != nil {
			return nil, eris.Wrap(err, "chat: create conversation")
		}
	}

	start := time.Now()

	datasetName, ok := snap.Resolve(msg)
	if !ok {
		return &model.ChatResponse{
			Response:       "Aucune base importée. Importez d'abord vos fichiers.",
			ConversationID: convID,
		}, nil
	}
	ds, _ := snap.Get(datasetName)

	compiled := s.compiler.Compile(msg, datasetName, ds.Columns)
	results, err := s.executor.Execute(ctx, snap, datasetName, compiled.SQL)
	if err != nil {
		zap.L().Warn("chat: query failed",
			zap.String("dataset", datasetName),
			zap.Error(err),
		)
		return &model.ChatResponse{
			Response:       fmt.Sprintf("Erreur SQL: %s", eris.Cause(err)),
			SQL:            compiled.SQL,
			ConversationID: convID,
		}, nil
	}

	elapsed := roundSeconds(time.Since(start), 3)

	var response string
	var profile *model.OsintProfile
	if req.AIMode && s.engine != nil {
		response, profile = s.enrich(ctx, datasetName, results, elapsed, start)
		if profile != nil {
			elapsed = roundSeconds(time.Since(start), 3)
		}
	} else {
		response = query.Render(results, datasetName, elapsed)
	}

	if err := s.persistTurn(ctx, convID, msg, response, compiled.SQL, results.Count); err != nil {
		// The user already has their answer; losing history is worth a
		// warning, not a failed request.
		zap.L().Warn("chat: persist turn failed", zap.Error(err))
	}

	return &model.ChatResponse{
		Response:       response,
		SQL:            compiled.SQL,
		Results:        results,
		Database:       datasetName,
		Time:           elapsed,
		ConversationID: convID,
		Osint:          profile,
	}, nil
}

// enrich runs the deep scan on the first matched row and formats the
// report response.
func (s *Service) enrich(ctx context.Context, datasetName string, results *model.ResultSet, elapsed float64, start time.Time) (string, *model.OsintProfile) {
	if results.Count == 0 {
		return fmt.Sprintf("Aucun résultat en base pour cette recherche dans **%s**. Essayez un autre nom.", datasetName), nil
	}

	window := results.Rows
	if len(window) > enrichRowWindow {
		window = window[:enrichRowWindow]
	}
	profile := s.engine.Enrich(ctx, results.Rows[0], len(window))
	if profile == nil {
		return query.Render(results, datasetName, elapsed), nil
	}

	summary := report.Fallback(profile, results.Count)
	if s.synth != nil {
		summary = s.synth.Summarize(ctx, results.Rows[0], profile, results.Count)
	}
	profile.Summary = summary

	total := roundSeconds(time.Since(start), 3)
	response := fmt.Sprintf("*%d entrée(s) en base • Scan OSINT: %gs • Total: %gs*\n\n%s",
		results.Count, profile.ScanTime, total, summary)
	return response, profile
}

func (s *Service) persistTurn(ctx context.Context, convID, userMsg, response, sqlText string, resultCount int) error {
	now := time.Now().UTC()
	if err := s.store.AppendMessage(ctx, model.Message{
		ConversationID: convID,
		Role:           "user",
		Content:        userMsg,
		CreatedAt:      now,
	}); err != nil {
		return err
	}
	if err := s.store.AppendMessage(ctx, model.Message{
		ConversationID: convID,
		Role:           "assistant",
		Content:        response,
		SQL:            sqlText,
		ResultsCount:   &resultCount,
		CreatedAt:      now,
	}); err != nil {
		return err
	}
	return s.store.TouchConversation(ctx, convID)
}

func roundSeconds(d time.Duration, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(d.Seconds()*factor) / factor
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
