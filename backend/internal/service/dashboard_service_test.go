package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chrissi82/Dashboard-IU/backend/internal/model"
	apperrors "github.com/chrissi82/Dashboard-IU/backend/pkg/errors"
	"github.com/chrissi82/Dashboard-IU/backend/pkg/period"
)

func TestCreateOrLoadSemester_UsesNthSegment(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		start, end string
	}{
		{"semester1", "2023-09-01", "2023-12-31"},
		{"semester2", "2024-01-01", "2024-06-30"},
		{"semester3", "2024-07-01", "2024-12-31"},
		{"semester5", "2025-07-01", "2025-08-31"},
	}
	for _, tt := range tests {
		sem := env.createSemester(t, tt.name)
		assert.Equal(t, tt.start, period.FormatDay(sem.StartDate), tt.name)
		assert.Equal(t, tt.end, period.FormatDay(sem.EndDate), tt.name)
		assert.Empty(t, sem.Modules)
	}
}

func TestCreateOrLoadSemester_BeyondProgram(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.dashboard.CreateOrLoadSemester(context.Background(), testUser, "semester6")
	assert.True(t, errors.Is(err, apperrors.ErrSegmentIndex), "实际: %v", err)

	_, statErr := os.Stat(filepath.Join(env.dir, testUser, "semester6.json"))
	assert.True(t, os.IsNotExist(statErr), "越界时不应写入记录")
}

func TestCreateOrLoadSemester_InvalidName(t *testing.T) {
	env := newTestEnv(t)

	for _, name := range []string{"sem1", "semester0", "../Data"} {
		_, _, err := env.dashboard.CreateOrLoadSemester(context.Background(), testUser, name)
		assert.True(t, errors.Is(err, apperrors.ErrValidation), name)
	}
}

func TestCreateOrLoadSemester_ExistingIgnoresProfileDates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createSemester(t, "semester1")

	profile, err := env.repo.Account.Get(ctx, testUser)
	require.NoError(t, err)
	profile.StartDate = period.Date(2030, 1, 1)
	profile.EndDate = period.Date(2032, 1, 1)
	require.NoError(t, env.repo.Account.Update(ctx, profile))

	sem, created, err := env.dashboard.CreateOrLoadSemester(ctx, testUser, "semester1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, period.Date(2023, 9, 1), sem.StartDate)
}

func TestNextSemester_FillsFirstGap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sem, err := env.dashboard.NextSemester(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, "semester1", sem.Name)

	env.createSemester(t, "semester3")
	sem, err = env.dashboard.NextSemester(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, "semester2", sem.Name)

	sem, err = env.dashboard.NextSemester(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, "semester4", sem.Name)
}

func TestDiscoverSemesters_SortedWithLabels(t *testing.T) {
	env := newTestEnv(t)
	env.createSemester(t, "semester2")
	env.createSemester(t, "semester1")

	semesters, err := env.dashboard.DiscoverSemesters(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, semesters, 2)
	assert.Equal(t, "1. Semester", semesters[0].Label())
	assert.Equal(t, "2. Semester", semesters[1].Label())
}

func TestDiscoverSemesters_UnknownAccount(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.dashboard.DiscoverSemesters(context.Background(), "ghost")
	assert.True(t, errors.Is(err, apperrors.ErrRecordNotFound), "实际: %v", err)
}

func TestAllGrades_OrderAndFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createSemester(t, "semester2")
	env.createSemester(t, "semester1")

	add := func(name string, m model.Module) {
		_, err := env.semester.AddModule(ctx, testUser, name, m)
		require.NoError(t, err)
	}
	add("semester2", module(t, "C", 5, graded(t, 3.0)))
	add("semester1", module(t, "A", 5, graded(t, 2.7)))
	add("semester1", module(t, "B", 5, model.InProgress()))
	add("semester1", module(t, "D", 5, graded(t, 5.0)))

	grades, err := env.dashboard.AllGrades(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.7, 5.0, 3.0}, grades)

	total, err := env.dashboard.TotalEarnedCredits(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
}

func TestTotalEarnedCredits_IndependentOfModuleOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createSemester(t, "semester1")
	for i, g := range []float64{1.0, 4.0, 4.3, 2.0} {
		_, err := env.semester.AddModule(ctx, testUser, "semester1", module(t, string(rune('A'+i)), 5+i, graded(t, g)))
		require.NoError(t, err)
	}
	before, err := env.dashboard.TotalEarnedCredits(ctx, testUser)
	require.NoError(t, err)

	_, err = env.repo.Semester.Update(ctx, testUser, "semester1", func(s *model.Semester) error {
		for i, j := 0, len(s.Modules)-1; i < j; i, j = i+1, j-1 {
			s.Modules[i], s.Modules[j] = s.Modules[j], s.Modules[i]
		}
		return nil
	})
	require.NoError(t, err)

	after, err := env.dashboard.TotalEarnedCredits(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 5+6+8, before)
	assert.Equal(t, before, after)
}

func TestTimingStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createSemester(t, "semester1") // 2023-09-01 ~ 2023-12-31
	env.createSemester(t, "semester2") // 2024-01-01 ~ 2024-06-30

	_, err := env.semester.AddModule(ctx, testUser, "semester1", module(t, "A", 5, graded(t, 1.7)))
	require.NoError(t, err)
	_, err = env.semester.AddModule(ctx, testUser, "semester2", module(t, "B", 5, graded(t, 2.0)))
	require.NoError(t, err)
	_, err = env.semester.AddModule(ctx, testUser, "semester2", module(t, "C", 5, model.InProgress()))
	require.NoError(t, err)
	env.createSemester(t, "semester3")

	tests := []struct {
		name     string
		semester string
		today    Clock
		want     model.TimingStatus
	}{
		{"无模块", "semester3", fixedClock(2024, 3, 1), model.TimingNoModules},
		{"未开始", "semester2", fixedClock(2023, 12, 31), model.TimingNotStarted},
		{"开始当天", "semester2", fixedClock(2024, 1, 1), model.TimingInProgress},
		{"结束当天", "semester2", fixedClock(2024, 6, 30), model.TimingInProgress},
		{"结束后仍有未完成模块", "semester2", fixedClock(2024, 7, 1), model.TimingCompletedLate},
		{"按时完成", "semester1", fixedClock(2024, 1, 15), model.TimingCompletedOnTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewDashboardService(env.repo, 180, tt.today, zap.NewNop())
			got, err := svc.TimingStatus(ctx, testUser, tt.semester)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOverview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	empty, err := env.dashboard.Overview(ctx, testUser)
	require.NoError(t, err)
	assert.Nil(t, empty.Average)
	assert.False(t, empty.BelowTarget)
	assert.Equal(t, 0.0, empty.Progress)
	assert.NotNil(t, empty.Semesters)

	env.createSemester(t, "semester1")
	for _, m := range []model.Module{
		module(t, "A", 10, graded(t, 1.7)),
		module(t, "B", 8, graded(t, 2.3)),
		module(t, "C", 5, graded(t, 4.7)),
	} {
		_, err := env.semester.AddModule(ctx, testUser, "semester1", m)
		require.NoError(t, err)
	}

	ov, err := env.dashboard.Overview(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, testUser, ov.Account.Username)
	assert.Equal(t, 18, ov.EarnedCredits)
	assert.Equal(t, 180, ov.RequiredCredits)
	assert.InDelta(t, 0.1, ov.Progress, 1e-9)
	require.NotNil(t, ov.Average)
	assert.Equal(t, 2.9, *ov.Average)
	assert.Equal(t, 2.0, ov.TargetGrade)
	assert.True(t, ov.BelowTarget)

	require.Len(t, ov.Semesters, 1)
	s := ov.Semesters[0]
	assert.Equal(t, "1. Semester", s.Label)
	assert.Equal(t, 23, s.TotalCredits)
	assert.Equal(t, 18, s.EarnedCredits)
	assert.Equal(t, string(model.TimingCompletedOnTime), s.Timing.Status)
}
