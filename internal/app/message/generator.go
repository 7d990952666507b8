// Package message turns a finished quiz into the proposal poem.
package message

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/PabloGalante/valentine-quest/internal/adapters/llm"
	"github.com/PabloGalante/valentine-quest/internal/domain"
	"github.com/PabloGalante/valentine-quest/internal/observability"
)

const (
	// FallbackOnError replaces the message when the generation call fails.
	FallbackOnError = "You are my heart's desire, the one I've been waiting for. I love you more than words can say!"
	// FallbackOnEmpty replaces the message when the model answered with no text.
	FallbackOnEmpty = "You are my everything, my sun and my moon. I love you forever!"
)

// Generator never fails: every error path resolves to a fixed fallback text.
type Generator struct {
	llm     domain.LLMClient
	sender  string
	timeout time.Duration
	log     *slog.Logger
	metrics *observability.Metrics
}

type Option func(*Generator)

func WithTimeout(d time.Duration) Option {
	return func(g *Generator) { g.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.log = l }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// NewGenerator builds a generator. sender is the person proposing, used in the prompt.
func NewGenerator(client domain.LLMClient, sender string, opts ...Option) *Generator {
	g := &Generator{
		llm:     client,
		sender:  sender,
		timeout: 30 * time.Second,
		log:     observability.Logger(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate returns the poem for answers, or a fallback. The result is never empty.
func (g *Generator) Generate(ctx context.Context, answers domain.QuizAnswers) string {
	ctx, span := observability.Tracer().Start(ctx, "message.generate")
	defer span.End()

	log := observability.FromContext(ctx, g.log)

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	prompt := llm.BuildProposalPrompt(answers, g.sender)
	text, err := g.llm.GenerateText(ctx, prompt)

	switch {
	case err != nil && domain.KindOf(err) == domain.KindEmpty:
		log.Warn("generation returned no text", "error", err)
		g.metrics.GenerationFallback(ctx, string(domain.KindEmpty))
		span.SetAttributes(attribute.String("fallback", string(domain.KindEmpty)))
		return FallbackOnEmpty
	case err != nil:
		kind := domain.KindOf(err)
		if ctx.Err() != nil {
			kind = domain.KindTimeout
		}
		log.Error("generation failed", "error", err, "kind", kind)
		g.metrics.GenerationFallback(ctx, string(kind))
		span.RecordError(err)
		span.SetAttributes(attribute.String("fallback", string(kind)))
		return FallbackOnError
	case strings.TrimSpace(text) == "":
		log.Warn("generation returned blank text")
		g.metrics.GenerationFallback(ctx, string(domain.KindEmpty))
		span.SetAttributes(attribute.String("fallback", string(domain.KindEmpty)))
		return FallbackOnEmpty
	}

	return text
}

// Lines splits a message on line breaks. Empty lines are kept as stanza breaks.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	out := strings.Split(text, "\n")
	for i, l := range out {
		out[i] = strings.TrimSuffix(l, "\r")
	}
	return out
}
