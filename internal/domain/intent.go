package domain

import (
	"time"

	"github.com/google/uuid"
)

// IntentKind names a side effect requested by a core operation.
type IntentKind string

const (
	IntentPlanItemCompleted    IntentKind = "plan_item_completed"
	IntentRecoveryActivated    IntentKind = "recovery_activated"
	IntentRecoveryExited       IntentKind = "recovery_exited"
	IntentRecalibrationApplied IntentKind = "recalibration_applied"
	IntentBufferDebt           IntentKind = "buffer_debt"
	IntentCascadeTriggered     IntentKind = "cascade_triggered"
	IntentTopicDowngraded      IntentKind = "topic_downgraded"
)

// Intent is an outbox event. Operations return intents instead of
// publishing them; delivery is best-effort.
type Intent struct {
	Kind      IntentKind     `json:"kind"`
	LearnerID uuid.UUID      `json:"learner_id"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewIntent builds an intent stamped with now.
func NewIntent(kind IntentKind, learnerID uuid.UUID, now time.Time, payload map[string]any) Intent {
	return Intent{Kind: kind, LearnerID: learnerID, Payload: payload, CreatedAt: now}
}
