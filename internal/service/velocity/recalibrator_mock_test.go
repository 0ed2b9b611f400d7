package velocity

import (
	"context"
	"github.com/google/uuid"
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"sync"
)

var _ recalibrator = &recalibratorMock{}

type recalibratorMock struct {
	RunFunc func(ctx context.Context, learnerID uuid.UUID, trigger domain.RecalibrationTrigger) (*domain.RecalibrationResult, error)

	calls struct {
		Run []struct {
			Ctx       context.Context
			LearnerID uuid.UUID
			Trigger   domain.RecalibrationTrigger
		}
	}
	lockRun sync.RWMutex
}

func (mock *recalibratorMock) Run(ctx context.Context, learnerID uuid.UUID, trigger domain.RecalibrationTrigger) (*domain.RecalibrationResult, error) {
	if mock.RunFunc == nil {
		panic("recalibratorMock.RunFunc: method is nil but recalibrator.Run was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		LearnerID uuid.UUID
		Trigger   domain.RecalibrationTrigger
	}{Ctx: ctx, LearnerID: learnerID, Trigger: trigger}
	mock.lockRun.Lock()
	mock.calls.Run = append(mock.calls.Run, callInfo)
	mock.lockRun.Unlock()
	return mock.RunFunc(ctx, learnerID, trigger)
}

func (mock *recalibratorMock) RunCalls() []struct {
	Ctx       context.Context
	LearnerID uuid.UUID
	Trigger   domain.RecalibrationTrigger
} {
	mock.lockRun.RLock()
	calls := mock.calls.Run
	mock.lockRun.RUnlock()
	return calls
}
