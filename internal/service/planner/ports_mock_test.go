package planner

import (
	"context"
	"github.com/google/uuid"
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"sync"
	"time"
)

var _ fatigueScorer = &fatigueScorerMock{}

type fatigueScorerMock struct {
	CalculateFatigueScoreFunc func(ctx context.Context, learnerID uuid.UUID, date time.Time) (int, error)

	calls struct {
		CalculateFatigueScore []struct {
			Ctx       context.Context
			LearnerID uuid.UUID
			Date      time.Time
		}
	}
	lockCalculateFatigueScore sync.RWMutex
}

func (mock *fatigueScorerMock) CalculateFatigueScore(ctx context.Context, learnerID uuid.UUID, date time.Time) (int, error) {
	if mock.CalculateFatigueScoreFunc == nil {
		panic("fatigueScorerMock.CalculateFatigueScoreFunc: method is nil but fatigueScorer.CalculateFatigueScore was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		LearnerID uuid.UUID
		Date      time.Time
	}{Ctx: ctx, LearnerID: learnerID, Date: date}
	mock.lockCalculateFatigueScore.Lock()
	mock.calls.CalculateFatigueScore = append(mock.calls.CalculateFatigueScore, callInfo)
	mock.lockCalculateFatigueScore.Unlock()
	return mock.CalculateFatigueScoreFunc(ctx, learnerID, date)
}

func (mock *fatigueScorerMock) CalculateFatigueScoreCalls() []struct {
	Ctx       context.Context
	LearnerID uuid.UUID
	Date      time.Time
} {
	mock.lockCalculateFatigueScore.RLock()
	calls := mock.calls.CalculateFatigueScore
	mock.lockCalculateFatigueScore.RUnlock()
	return calls
}

var _ cardEnsurer = &cardEnsurerMock{}

type cardEnsurerMock struct {
	EnsureCardFunc func(ctx context.Context, learnerID uuid.UUID, topicID uuid.UUID) (*domain.Card, error)

	calls struct {
		EnsureCard []struct {
			Ctx       context.Context
			LearnerID uuid.UUID
			TopicID   uuid.UUID
		}
	}
	lockEnsureCard sync.RWMutex
}

func (mock *cardEnsurerMock) EnsureCard(ctx context.Context, learnerID uuid.UUID, topicID uuid.UUID) (*domain.Card, error) {
	if mock.EnsureCardFunc == nil {
		panic("cardEnsurerMock.EnsureCardFunc: method is nil but cardEnsurer.EnsureCard was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		LearnerID uuid.UUID
		TopicID   uuid.UUID
	}{Ctx: ctx, LearnerID: learnerID, TopicID: topicID}
	mock.lockEnsureCard.Lock()
	mock.calls.EnsureCard = append(mock.calls.EnsureCard, callInfo)
	mock.lockEnsureCard.Unlock()
	return mock.EnsureCardFunc(ctx, learnerID, topicID)
}

func (mock *cardEnsurerMock) EnsureCardCalls() []struct {
	Ctx       context.Context
	LearnerID uuid.UUID
	TopicID   uuid.UUID
} {
	mock.lockEnsureCard.RLock()
	calls := mock.calls.EnsureCard
	mock.lockEnsureCard.RUnlock()
	return calls
}

var _ endOfDay = &endOfDayMock{}

type endOfDayMock struct {
	EndOfDayFunc func(ctx context.Context, learnerID uuid.UUID, date time.Time) error

	calls struct {
		EndOfDay []struct {
			Ctx       context.Context
			LearnerID uuid.UUID
			Date      time.Time
		}
	}
	lockEndOfDay sync.RWMutex
}

func (mock *endOfDayMock) EndOfDay(ctx context.Context, learnerID uuid.UUID, date time.Time) error {
	if mock.EndOfDayFunc == nil {
		panic("endOfDayMock.EndOfDayFunc: method is nil but endOfDay.EndOfDay was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		LearnerID uuid.UUID
		Date      time.Time
	}{Ctx: ctx, LearnerID: learnerID, Date: date}
	mock.lockEndOfDay.Lock()
	mock.calls.EndOfDay = append(mock.calls.EndOfDay, callInfo)
	mock.lockEndOfDay.Unlock()
	return mock.EndOfDayFunc(ctx, learnerID, date)
}

func (mock *endOfDayMock) EndOfDayCalls() []struct {
	Ctx       context.Context
	LearnerID uuid.UUID
	Date      time.Time
} {
	mock.lockEndOfDay.RLock()
	calls := mock.calls.EndOfDay
	mock.lockEndOfDay.RUnlock()
	return calls
}
