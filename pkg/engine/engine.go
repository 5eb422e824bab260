package engine

import (
	"context"

	"github.com/pmos-ai/pmosd/pkg/bridge"
	"github.com/pmos-ai/pmosd/pkg/intent"
	"github.com/pmos-ai/pmosd/pkg/logger"
)

// Engine is the single entry point for an utterance: local rules first,
// then the assistant bridge for anything the rules decline.
type Engine struct {
	classifier *intent.Classifier
	bridge     *bridge.Bridge
}

func New(classifier *intent.Classifier, br *bridge.Bridge) *Engine {
	return &Engine{
		classifier: classifier,
		bridge:     br,
	}
}

// Process resolves one utterance to a terminal result. The caller gets
// exactly one result per call, whether it came from a local rule or
// from the remote assistant.
func (e *Engine) Process(ctx context.Context, text string) intent.Result {
	result := e.classifier.Process(ctx, text)
	if !result.Delegated() {
		logger.DebugCF("engine", "Resolved locally", map[string]interface{}{
			"type":    string(result.Type),
			"success": result.Success,
		})
		return result
	}

	logger.DebugC("engine", "No local rule matched, delegating to assistant")
	return e.bridge.Stream(ctx, text)
}
