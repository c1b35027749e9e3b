package report

import (
	"context"

	"go.uber.org/zap"

	"github.com/datachat-io/datachat/internal/model"
)

// Synthesizer turns an enriched profile into the final summary text.
type Synthesizer struct {
	gen Generator
}

// NewSynthesizer wires a synthesizer. gen may be nil, which forces the
// deterministic template.
func NewSynthesizer(gen Generator) *Synthesizer {
	return &Synthesizer{gen: gen}
}

// Summarize produces the report body. Generation failures degrade to
// the template; this function never fails.
func (s *Synthesizer) Summarize(ctx context.Context, person model.Row, profile *model.OsintProfile, dbCount int) string {
	if s.gen != nil {
		summary, err := s.gen.Generate(ctx, BuildPrompt(person, profile))
		if err != nil {
			zap.L().Warn("report: generation failed, using fallback", zap.Error(err))
		} else if summary != "" {
			return summary
		}
	}
	return Fallback(profile, dbCount)
}
