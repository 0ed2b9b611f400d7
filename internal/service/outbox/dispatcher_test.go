package outbox

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

type recordingPublisher struct {
	mu     sync.Mutex
	failOn domain.IntentKind
	got    []domain.Intent
}

func (p *recordingPublisher) Publish(_ context.Context, in domain.Intent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if in.Kind == p.failOn {
		return errors.New("broker unavailable")
	}
	p.got = append(p.got, in)
	return nil
}

func TestDispatch_SkipsFailedDeliveries(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{failOn: domain.IntentBufferDebt}
	d := NewDispatcher(slog.Default(), pub)
	learner := uuid.New()
	now := time.Now()

	n := d.Dispatch(context.Background(),
		domain.NewIntent(domain.IntentPlanItemCompleted, learner, now, nil),
		domain.NewIntent(domain.IntentBufferDebt, learner, now, nil),
		domain.NewIntent(domain.IntentRecoveryActivated, learner, now, map[string]any{"days": 7}),
	)

	assert.Equal(t, 2, n)
	require.Len(t, pub.got, 2)
	assert.Equal(t, domain.IntentPlanItemCompleted, pub.got[0].Kind)
	assert.Equal(t, domain.IntentRecoveryActivated, pub.got[1].Kind)
}

func TestDispatch_DefaultsToLogPublisher(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(slog.Default(), nil)

	assert.Equal(t, 1, d.Dispatch(context.Background(), domain.NewIntent(domain.IntentTopicDowngraded, uuid.New(), time.Now(), nil)))
	assert.Equal(t, 0, d.Dispatch(context.Background()))
}
