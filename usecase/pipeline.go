package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Modawn-AI/voice/domain"
	"github.com/Modawn-AI/voice/domain/repositories"
	"github.com/Modawn-AI/voice/internal/metrics"
)

// Pipeline stage names, used for logging, metrics and error mapping.
const (
	StageTranscription = "transcription"
	StageProsody       = "prosody"
	StageCompletion    = "completion"
	StageSynthesis     = "synthesis"
	StageStream        = "stream"
)

// FailurePolicy states what a stage failure does to the request.
type FailurePolicy string

const (
	// PolicyReject means the input itself was unusable; the client sent
	// something the pipeline cannot work with.
	PolicyReject FailurePolicy = "reject"
	// PolicyDegrade means the stage result is replaced with an empty value
	// and the request continues.
	PolicyDegrade FailurePolicy = "degrade"
	// PolicyAbort means the request stops with a server-side failure.
	PolicyAbort FailurePolicy = "abort"
)

// StageError is a pipeline failure resolved at the stage it occurred.
// The transport layer maps Policy to an HTTP status; the pipeline itself
// never produces a response.
type StageError struct {
	Stage   string
	Policy  FailurePolicy
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Exchange is the result of one successful pipeline run.
type Exchange struct {
	Transcript string
	Reply      string
	Audio      *repositories.Synthesis
}

// Pipeline sequences one conversation exchange: resolve the transcript,
// optionally score vocal emotion, complete the reply, synthesize speech.
// The four stages run strictly in order with single-attempt semantics;
// no stage is retried and no two stages overlap. Provider clients are
// long-lived and shared; everything else is request-scoped.
type Pipeline struct {
	transcriber repositories.Transcriber
	emotion     repositories.EmotionAnalyzer // nil when the variant is disabled
	completer   repositories.Completer
	synthesizer repositories.Synthesizer
	persona     string
	collector   *metrics.Collector
	logger      *zap.Logger
}

// NewPipeline creates the request orchestrator. emotion may be nil to run
// the variant without prosody scoring.
func NewPipeline(
	transcriber repositories.Transcriber,
	emotion repositories.EmotionAnalyzer,
	completer repositories.Completer,
	synthesizer repositories.Synthesizer,
	persona string,
	collector *metrics.Collector,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		transcriber: transcriber,
		emotion:     emotion,
		completer:   completer,
		synthesizer: synthesizer,
		persona:     persona,
		collector:   collector,
		logger:      logger,
	}
}

// Converse runs the full pipeline for one request. correlationID keys the
// paired stage start/finish log markers; pass "" to use the "local"
// placeholder. The returned error is always a *StageError.
func (p *Pipeline) Converse(ctx context.Context, correlationID string, input domain.Input, history []domain.Turn) (*Exchange, error) {
	if correlationID == "" {
		correlationID = "local"
	}
	log := p.logger.With(zap.String("requestID", correlationID))

	// Stage 1: resolve the transcript. Typed text passes through verbatim.
	var transcript string
	if input.IsText() {
		transcript = input.Text
	} else {
		done := p.startStage(log, StageTranscription)
		text, err := p.transcriber.Transcribe(ctx, *input.Recording)
		if err != nil {
			done(metrics.OutcomeError)
			return nil, &StageError{
				Stage:   StageTranscription,
				Policy:  PolicyReject,
				Message: "invalid audio",
				Err:     err,
			}
		}
		done(metrics.OutcomeOK)
		transcript = text
	}

	// Stage 2: score vocal emotion over the same recording. Any failure
	// here degrades to an empty reading; the request continues.
	reading := domain.EmotionReading{}
	if p.emotion != nil && !input.IsText() {
		done := p.startStage(log, StageProsody)
		r, err := p.emotion.Analyze(ctx, *input.Recording)
		if err != nil {
			done(metrics.OutcomeDegraded)
			log.Warn("prosody analysis degraded to empty reading", zap.Error(err))
		} else {
			done(metrics.OutcomeOK)
			reading = r
		}
	}

	// Stage 3: complete the reply.
	userTurn := domain.Turn{
		Role:    domain.RoleUser,
		Content: reading.Annotate(transcript),
	}

	done := p.startStage(log, StageCompletion)
	reply, err := p.completer.Complete(ctx, p.persona, history, userTurn)
	if err != nil {
		done(metrics.OutcomeError)
		return nil, &StageError{
			Stage:   StageCompletion,
			Policy:  PolicyAbort,
			Message: "text completion failed",
			Err:     err,
		}
	}
	done(metrics.OutcomeOK)

	// Stage 4: synthesize speech. The adapter has already resolved the
	// provider status when it returns, so an error here is final.
	done = p.startStage(log, StageSynthesis)
	audio, err := p.synthesizer.Synthesize(ctx, reply)
	if err != nil {
		done(metrics.OutcomeError)
		return nil, &StageError{
			Stage:   StageSynthesis,
			Policy:  PolicyAbort,
			Message: "voice synthesis failed",
			Err:     err,
		}
	}
	done(metrics.OutcomeOK)

	return &Exchange{
		Transcript: transcript,
		Reply:      reply,
		Audio:      audio,
	}, nil
}

// startStage emits the stage-start marker and returns the closer that
// emits the paired finish marker plus metrics.
func (p *Pipeline) startStage(log *zap.Logger, stage string) func(outcome string) {
	start := time.Now()
	log.Info("stage started", zap.String("stage", stage))

	return func(outcome string) {
		elapsed := time.Since(start)
		log.Info("stage finished",
			zap.String("stage", stage),
			zap.String("outcome", outcome),
			zap.Duration("elapsed", elapsed))
		p.collector.ObserveStage(stage, elapsed, outcome)
	}
}
