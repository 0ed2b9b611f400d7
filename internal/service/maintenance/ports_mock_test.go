package maintenance

import (
	"context"
	"github.com/google/uuid"
	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"github.com/heartmarshall/studyplanner-backend/internal/service/confidence"
	"github.com/heartmarshall/studyplanner-backend/internal/service/fatigue"
	"github.com/heartmarshall/studyplanner-backend/internal/service/velocity"
	"sync"
	"time"
)

var _ decayEngine = &decayEngineMock{}

type decayEngineMock struct {
	RecalculateAllFunc func(ctx context.Context, learnerID uuid.UUID) (*confidence.RecalculateResult, error)

	calls struct {
		RecalculateAll []struct {
			Ctx       context.Context
			LearnerID uuid.UUID
		}
	}
	lockRecalculateAll sync.RWMutex
}

func (mock *decayEngineMock) RecalculateAll(ctx context.Context, learnerID uuid.UUID) (*confidence.RecalculateResult, error) {
	if mock.RecalculateAllFunc == nil {
		panic("decayEngineMock.RecalculateAllFunc: method is nil but decayEngine.RecalculateAll was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		LearnerID uuid.UUID
	}{Ctx: ctx, LearnerID: learnerID}
	mock.lockRecalculateAll.Lock()
	mock.calls.RecalculateAll = append(mock.calls.RecalculateAll, callInfo)
	mock.lockRecalculateAll.Unlock()
	return mock.RecalculateAllFunc(ctx, learnerID)
}

func (mock *decayEngineMock) RecalculateAllCalls() []struct {
	Ctx       context.Context
	LearnerID uuid.UUID
} {
	mock.lockRecalculateAll.RLock()
	calls := mock.calls.RecalculateAll
	mock.lockRecalculateAll.RUnlock()
	return calls
}

var _ healthEstimator = &healthEstimatorMock{}

type healthEstimatorMock struct {
	ActivateRecoveryFunc      func(ctx context.Context, input fatigue.ActivateRecoveryInput) (*fatigue.RecoveryResult, error)
	CalculateFatigueScoreFunc func(ctx context.Context, learnerID uuid.UUID, date time.Time) (int, error)
	CheckRecoveryTriggerFunc  func(ctx context.Context, learnerID uuid.UUID, date time.Time) (bool, int, error)
	ExpireRecoveryFunc        func(ctx context.Context, learnerID uuid.UUID, date time.Time) (*fatigue.RecoveryResult, error)
	SnapshotBurnoutFunc       func(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.BurnoutSnapshot, error)

	calls struct {
		ActivateRecovery []struct {
			Ctx   context.Context
			Input fatigue.ActivateRecoveryInput
		}
		CalculateFatigueScore []struct {
			Ctx       context.Context
			LearnerID uuid.UUID
			Date      time.Time
		}
		CheckRecoveryTrigger []struct {
			Ctx       context.Context
			LearnerID uuid.UUID
			Date      time.Time
		}
		ExpireRecovery []struct {
			Ctx       context.Context
			LearnerID uuid.UUID
			Date      time.Time
		}
		SnapshotBurnout []struct {
			Ctx       context.Context
			LearnerID uuid.UUID
			Date      time.Time
		}
	}
	lockActivateRecovery      sync.RWMutex
	lockCalculateFatigueScore sync.RWMutex
	lockCheckRecoveryTrigger  sync.RWMutex
	lockExpireRecovery        sync.RWMutex
	lockSnapshotBurnout       sync.RWMutex
}

func (mock *healthEstimatorMock) ActivateRecovery(ctx context.Context, input fatigue.ActivateRecoveryInput) (*fatigue.RecoveryResult, error) {
	if mock.ActivateRecoveryFunc == nil {
		panic("healthEstimatorMock.ActivateRecoveryFunc: method is nil but healthEstimator.ActivateRecovery was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input fatigue.ActivateRecoveryInput
	}{Ctx: ctx, Input: input}
	mock.lockActivateRecovery.Lock()
	mock.calls.ActivateRecovery = append(mock.calls.ActivateRecovery, callInfo)
	mock.lockActivateRecovery.Unlock()
	return mock.ActivateRecoveryFunc(ctx, input)
}

func (mock *healthEstimatorMock) ActivateRecoveryCalls() []struct {
	Ctx   context.Context
	Input fatigue.ActivateRecoveryInput
} {
	mock.lockActivateRecovery.RLock()
	calls := mock.calls.ActivateRecovery
	mock.lockActivateRecovery.RUnlock()
	return calls
}

func (mock *healthEstimatorMock) CalculateFatigueScore(ctx context.Context, learnerID uuid.UUID, date time.Time) (int, error) {
	if mock.CalculateFatigueScoreFunc == nil {
		panic("healthEstimatorMock.CalculateFatigueScoreFunc: method is nil but healthEstimator.CalculateFatigueScore was just called")
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

func (mock *healthEstimatorMock) CalculateFatigueScoreCalls() []struct {
	Ctx       context.Context
	LearnerID uuid.UUID
	Date      time.Time
} {
	mock.lockCalculateFatigueScore.RLock()
	calls := mock.calls.CalculateFatigueScore
	mock.lockCalculateFatigueScore.RUnlock()
	return calls
}

func (mock *healthEstimatorMock) CheckRecoveryTrigger(ctx context.Context, learnerID uuid.UUID, date time.Time) (bool, int, error) {
	if mock.CheckRecoveryTriggerFunc == nil {
		panic("healthEstimatorMock.CheckRecoveryTriggerFunc: method is nil but healthEstimator.CheckRecoveryTrigger was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		LearnerID uuid.UUID
		Date      time.Time
	}{Ctx: ctx, LearnerID: learnerID, Date: date}
	mock.lockCheckRecoveryTrigger.Lock()
	mock.calls.CheckRecoveryTrigger = append(mock.calls.CheckRecoveryTrigger, callInfo)
	mock.lockCheckRecoveryTrigger.Unlock()
	return mock.CheckRecoveryTriggerFunc(ctx, learnerID, date)
}

func (mock *healthEstimatorMock) CheckRecoveryTriggerCalls() []struct {
	Ctx       context.Context
	LearnerID uuid.UUID
	Date      time.Time
} {
	mock.lockCheckRecoveryTrigger.RLock()
	calls := mock.calls.CheckRecoveryTrigger
	mock.lockCheckRecoveryTrigger.RUnlock()
	return calls
}

func (mock *healthEstimatorMock) ExpireRecovery(ctx context.Context, learnerID uuid.UUID, date time.Time) (*fatigue.RecoveryResult, error) {
	if mock.ExpireRecoveryFunc == nil {
		panic("healthEstimatorMock.ExpireRecoveryFunc: method is nil but healthEstimator.ExpireRecovery was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		LearnerID uuid.UUID
		Date      time.Time
	}{Ctx: ctx, LearnerID: learnerID, Date: date}
	mock.lockExpireRecovery.Lock()
	mock.calls.ExpireRecovery = append(mock.calls.ExpireRecovery, callInfo)
	mock.lockExpireRecovery.Unlock()
	return mock.ExpireRecoveryFunc(ctx, learnerID, date)
}

func (mock *healthEstimatorMock) ExpireRecoveryCalls() []struct {
	Ctx       context.Context
	LearnerID uuid.UUID
	Date      time.Time
} {
	mock.lockExpireRecovery.RLock()
	calls := mock.calls.ExpireRecovery
	mock.lockExpireRecovery.RUnlock()
	return calls
}

func (mock *healthEstimatorMock) SnapshotBurnout(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.BurnoutSnapshot, error) {
	if mock.SnapshotBurnoutFunc == nil {
		panic("healthEstimatorMock.SnapshotBurnoutFunc: method is nil but healthEstimator.SnapshotBurnout was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		LearnerID uuid.UUID
		Date      time.Time
	}{Ctx: ctx, LearnerID: learnerID, Date: date}
	mock.lockSnapshotBurnout.Lock()
	mock.calls.SnapshotBurnout = append(mock.calls.SnapshotBurnout, callInfo)
	mock.lockSnapshotBurnout.Unlock()
	return mock.SnapshotBurnoutFunc(ctx, learnerID, date)
}

func (mock *healthEstimatorMock) SnapshotBurnoutCalls() []struct {
	Ctx       context.Context
	LearnerID uuid.UUID
	Date      time.Time
} {
	mock.lockSnapshotBurnout.RLock()
	calls := mock.calls.SnapshotBurnout
	mock.lockSnapshotBurnout.RUnlock()
	return calls
}

var _ ledger = &ledgerMock{}

type ledgerMock struct {
	CalculateVelocityFunc func(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.VelocitySnapshot, error)
	CheckCascadeFunc      func(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.CascadeResult, error)
	UpdateBufferFunc      func(ctx context.Context, learnerID uuid.UUID, date time.Time) (*velocity.BufferUpdate, error)

	calls struct {
		CalculateVelocity []struct {
			Ctx       context.Context
			LearnerID uuid.UUID
			Date      time.Time
		}
		CheckCascade []struct {
			Ctx       context.Context
			LearnerID uuid.UUID
			Date      time.Time
		}
		UpdateBuffer []struct {
			Ctx       context.Context
			LearnerID uuid.UUID
			Date      time.Time
		}
	}
	lockCalculateVelocity sync.RWMutex
	lockCheckCascade      sync.RWMutex
	lockUpdateBuffer      sync.RWMutex
}

func (mock *ledgerMock) CalculateVelocity(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.VelocitySnapshot, error) {
	if mock.CalculateVelocityFunc == nil {
		panic("ledgerMock.CalculateVelocityFunc: method is nil but ledger.CalculateVelocity was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		LearnerID uuid.UUID
		Date      time.Time
	}{Ctx: ctx, LearnerID: learnerID, Date: date}
	mock.lockCalculateVelocity.Lock()
	mock.calls.CalculateVelocity = append(mock.calls.CalculateVelocity, callInfo)
	mock.lockCalculateVelocity.Unlock()
	return mock.CalculateVelocityFunc(ctx, learnerID, date)
}

func (mock *ledgerMock) CalculateVelocityCalls() []struct {
	Ctx       context.Context
	LearnerID uuid.UUID
	Date      time.Time
} {
	mock.lockCalculateVelocity.RLock()
	calls := mock.calls.CalculateVelocity
	mock.lockCalculateVelocity.RUnlock()
	return calls
}

func (mock *ledgerMock) CheckCascade(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.CascadeResult, error) {
	if mock.CheckCascadeFunc == nil {
		panic("ledgerMock.CheckCascadeFunc: method is nil but ledger.CheckCascade was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		LearnerID uuid.UUID
		Date      time.Time
	}{Ctx: ctx, LearnerID: learnerID, Date: date}
	mock.lockCheckCascade.Lock()
	mock.calls.CheckCascade = append(mock.calls.CheckCascade, callInfo)
	mock.lockCheckCascade.Unlock()
	return mock.CheckCascadeFunc(ctx, learnerID, date)
}

func (mock *ledgerMock) CheckCascadeCalls() []struct {
	Ctx       context.Context
	LearnerID uuid.UUID
	Date      time.Time
} {
	mock.lockCheckCascade.RLock()
	calls := mock.calls.CheckCascade
	mock.lockCheckCascade.RUnlock()
	return calls
}

func (mock *ledgerMock) UpdateBuffer(ctx context.Context, learnerID uuid.UUID, date time.Time) (*velocity.BufferUpdate, error) {
	if mock.UpdateBufferFunc == nil {
		panic("ledgerMock.UpdateBufferFunc: method is nil but ledger.UpdateBuffer was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		LearnerID uuid.UUID
		Date      time.Time
	}{Ctx: ctx, LearnerID: learnerID, Date: date}
	mock.lockUpdateBuffer.Lock()
	mock.calls.UpdateBuffer = append(mock.calls.UpdateBuffer, callInfo)
	mock.lockUpdateBuffer.Unlock()
	return mock.UpdateBufferFunc(ctx, learnerID, date)
}

func (mock *ledgerMock) UpdateBufferCalls() []struct {
	Ctx       context.Context
	LearnerID uuid.UUID
	Date      time.Time
} {
	mock.lockUpdateBuffer.RLock()
	calls := mock.calls.UpdateBuffer
	mock.lockUpdateBuffer.RUnlock()
	return calls
}

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

var _ benchmarker = &benchmarkerMock{}

type benchmarkerMock struct {
	BenchmarkFunc func(ctx context.Context, learnerID uuid.UUID, date time.Time) error

	calls struct {
		Benchmark []struct {
			Ctx       context.Context
			LearnerID uuid.UUID
			Date      time.Time
		}
	}
	lockBenchmark sync.RWMutex
}

func (mock *benchmarkerMock) Benchmark(ctx context.Context, learnerID uuid.UUID, date time.Time) error {
	if mock.BenchmarkFunc == nil {
		panic("benchmarkerMock.BenchmarkFunc: method is nil but benchmarker.Benchmark was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		LearnerID uuid.UUID
		Date      time.Time
	}{Ctx: ctx, LearnerID: learnerID, Date: date}
	mock.lockBenchmark.Lock()
	mock.calls.Benchmark = append(mock.calls.Benchmark, callInfo)
	mock.lockBenchmark.Unlock()
	return mock.BenchmarkFunc(ctx, learnerID, date)
}

func (mock *benchmarkerMock) BenchmarkCalls() []struct {
	Ctx       context.Context
	LearnerID uuid.UUID
	Date      time.Time
} {
	mock.lockBenchmark.RLock()
	calls := mock.calls.Benchmark
	mock.lockBenchmark.RUnlock()
	return calls
}

var _ dispatcher = &dispatcherMock{}

type dispatcherMock struct {
	DispatchFunc func(ctx context.Context, intents ...domain.Intent) int

	calls struct {
		Dispatch []struct {
			Ctx     context.Context
			Intents []domain.Intent
		}
	}
	lockDispatch sync.RWMutex
}

func (mock *dispatcherMock) Dispatch(ctx context.Context, intents ...domain.Intent) int {
	if mock.DispatchFunc == nil {
		panic("dispatcherMock.DispatchFunc: method is nil but dispatcher.Dispatch was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		Intents []domain.Intent
	}{Ctx: ctx, Intents: intents}
	mock.lockDispatch.Lock()
	mock.calls.Dispatch = append(mock.calls.Dispatch, callInfo)
	mock.lockDispatch.Unlock()
	return mock.DispatchFunc(ctx, intents...)
}

func (mock *dispatcherMock) DispatchCalls() []struct {
	Ctx     context.Context
	Intents []domain.Intent
} {
	mock.lockDispatch.RLock()
	calls := mock.calls.Dispatch
	mock.lockDispatch.RUnlock()
	return calls
}
