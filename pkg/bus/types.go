package bus

import "github.com/pmos-ai/pmosd/pkg/intent"

// Utterance is one user request arriving from a surface.
type Utterance struct {
	Surface       string `json:"surface"`
	ClientID      string `json:"client_id"`
	Text          string `json:"text"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Resolution is the terminal answer for one utterance.
type Resolution struct {
	Surface       string        `json:"surface"`
	ClientID      string        `json:"client_id"`
	CorrelationID string        `json:"correlation_id,omitempty"`
	Result        intent.Result `json:"result"`
}

type UtteranceHandler func(Utterance) Resolution
