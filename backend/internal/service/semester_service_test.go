package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chrissi82/Dashboard-IU/backend/internal/model"
	"github.com/chrissi82/Dashboard-IU/backend/internal/repository"
	apperrors "github.com/chrissi82/Dashboard-IU/backend/pkg/errors"
	"github.com/chrissi82/Dashboard-IU/backend/pkg/period"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

const testUser = "anna"

type testEnv struct {
	dir       string
	repo      *repository.Repository
	semester  SemesterService
	dashboard DashboardService
}

func fixedClock(year int, month time.Month, day int) Clock {
	return func() time.Time { return time.Date(year, month, day, 12, 0, 0, 0, time.UTC) }
}

// newTestEnv 账户 anna，学习周期 2023-09-01 ~ 2025-08-31（5 个学期）
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	repo := repository.NewRepository(dir)
	err := repo.Account.Create(context.Background(), &model.Profile{
		Username:    testUser,
		Password:    "secret",
		TargetGrade: "2.0",
		StartDate:   period.Date(2023, 9, 1),
		EndDate:     period.Date(2025, 8, 31),
		Program:     "Informatik",
	})
	require.NoError(t, err)

	return &testEnv{
		dir:       dir,
		repo:      repo,
		semester:  NewSemesterService(repo, zap.NewNop()),
		dashboard: NewDashboardService(repo, 180, fixedClock(2024, 3, 1), zap.NewNop()),
	}
}

func (e *testEnv) createSemester(t *testing.T, name string) *model.Semester {
	t.Helper()
	sem, created, err := e.dashboard.CreateOrLoadSemester(context.Background(), testUser, name)
	require.NoError(t, err)
	require.True(t, created)
	return sem
}

func (e *testEnv) readRecord(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.dir, testUser, name+".json"))
	require.NoError(t, err)
	return data
}

func graded(t *testing.T, grade float64) model.ModuleStatus {
	t.Helper()
	s, err := model.Graded(grade)
	require.NoError(t, err)
	return s
}

func module(t *testing.T, name string, credits int, status model.ModuleStatus) model.Module {
	t.Helper()
	m, err := model.NewModule(name, credits, model.WrittenExam(90), status)
	require.NoError(t, err)
	return m
}

// ═══════════════════════════════════════════════════════════
// 端到端：状态变化决定已获学分
// ═══════════════════════════════════════════════════════════

func TestEarnedCreditsFollowModuleStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sem := env.createSemester(t, "semester1")
	assert.Equal(t, period.Date(2023, 9, 1), sem.StartDate)
	assert.Equal(t, period.Date(2023, 12, 31), sem.EndDate)

	failed := module(t, "Algorithms", 5, graded(t, 4.3))
	assert.Equal(t, model.StatusFailed, failed.Status.Kind)

	sem, err := env.semester.AddModule(ctx, testUser, "semester1", failed)
	require.NoError(t, err)
	require.Len(t, sem.Modules, 1)
	id := sem.Modules[0].ID

	total, err := env.dashboard.TotalEarnedCredits(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	passed := failed
	passed.Status = graded(t, 1.7)
	sem, err = env.semester.ReplaceModule(ctx, testUser, "semester1", id, passed)
	require.NoError(t, err)
	assert.Equal(t, id, sem.Modules[0].ID)

	total, err = env.dashboard.TotalEarnedCredits(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	grades, err := env.dashboard.AllGrades(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.7}, grades)
}

// ═══════════════════════════════════════════════════════════
// AddModule
// ═══════════════════════════════════════════════════════════

func TestAddModule_ReturnsWhatWasWritten(t *testing.T) {
	env := newTestEnv(t)
	env.createSemester(t, "semester1")

	sem, err := env.semester.AddModule(context.Background(), testUser, "semester1", module(t, "Mathe", 5, model.InProgress()))
	require.NoError(t, err)

	loaded, err := env.semester.Get(context.Background(), testUser, "semester1")
	require.NoError(t, err)
	assert.Equal(t, sem.Modules, loaded.Modules)
}

func TestAddModule_DuplicateIDGetsFreshID(t *testing.T) {
	env := newTestEnv(t)
	env.createSemester(t, "semester1")
	m := module(t, "Mathe", 5, model.Pending())

	_, err := env.semester.AddModule(context.Background(), testUser, "semester1", m)
	require.NoError(t, err)
	sem, err := env.semester.AddModule(context.Background(), testUser, "semester1", m)
	require.NoError(t, err)

	require.Len(t, sem.Modules, 2)
	assert.NotEqual(t, sem.Modules[0].ID, sem.Modules[1].ID)
}

func TestAddModule_InvalidModuleIsNotWritten(t *testing.T) {
	env := newTestEnv(t)
	env.createSemester(t, "semester1")
	before := env.readRecord(t, "semester1")

	bad := model.Module{Name: "Mathe", Credits: 0, ExamForm: model.WrittenExam(90), Status: model.Pending()}
	_, err := env.semester.AddModule(context.Background(), testUser, "semester1", bad)
	assert.True(t, errors.Is(err, apperrors.ErrValidation), "实际: %v", err)
	assert.Equal(t, before, env.readRecord(t, "semester1"))
}

func TestAddModule_UnknownSemester(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.semester.AddModule(context.Background(), testUser, "semester2", module(t, "Mathe", 5, model.Pending()))
	assert.True(t, errors.Is(err, apperrors.ErrRecordNotFound), "实际: %v", err)
}

// ═══════════════════════════════════════════════════════════
// ReplaceModule / RemoveModule
// ═══════════════════════════════════════════════════════════

func TestReplaceModule_IdenticalCopyKeepsRecordByteIdentical(t *testing.T) {
	env := newTestEnv(t)
	env.createSemester(t, "semester1")
	sem, err := env.semester.AddModule(context.Background(), testUser, "semester1", module(t, "Mathe", 5, graded(t, 2.3)))
	require.NoError(t, err)
	before := env.readRecord(t, "semester1")

	m := sem.Modules[0]
	_, err = env.semester.ReplaceModule(context.Background(), testUser, "semester1", m.ID, m)
	require.NoError(t, err)
	assert.Equal(t, before, env.readRecord(t, "semester1"))
}

func TestReplaceModule_KeepsPositionAndID(t *testing.T) {
	env := newTestEnv(t)
	env.createSemester(t, "semester1")
	ctx := context.Background()
	for _, name := range []string{"A", "B", "C"} {
		_, err := env.semester.AddModule(ctx, testUser, "semester1", module(t, name, 5, model.Pending()))
		require.NoError(t, err)
	}
	sem, err := env.semester.Get(ctx, testUser, "semester1")
	require.NoError(t, err)
	target := sem.Modules[1]

	replacement := module(t, "B2", 10, graded(t, 1.3))
	sem, err = env.semester.ReplaceModule(ctx, testUser, "semester1", target.ID, replacement)
	require.NoError(t, err)

	require.Len(t, sem.Modules, 3)
	assert.Equal(t, "A", sem.Modules[0].Name)
	assert.Equal(t, "B2", sem.Modules[1].Name)
	assert.Equal(t, target.ID, sem.Modules[1].ID)
	assert.Equal(t, "C", sem.Modules[2].Name)
}

func TestReplaceModule_UnknownID(t *testing.T) {
	env := newTestEnv(t)
	env.createSemester(t, "semester1")
	before := env.readRecord(t, "semester1")

	_, err := env.semester.ReplaceModule(context.Background(), testUser, "semester1", "missing", module(t, "X", 5, model.Pending()))
	assert.True(t, errors.Is(err, apperrors.ErrRecordNotFound), "实际: %v", err)
	assert.Equal(t, before, env.readRecord(t, "semester1"))
}

func TestRemoveModule(t *testing.T) {
	env := newTestEnv(t)
	env.createSemester(t, "semester1")
	ctx := context.Background()
	sem, err := env.semester.AddModule(ctx, testUser, "semester1", module(t, "A", 5, graded(t, 1.0)))
	require.NoError(t, err)
	_, err = env.semester.AddModule(ctx, testUser, "semester1", module(t, "B", 5, graded(t, 2.0)))
	require.NoError(t, err)

	sem, err = env.semester.RemoveModule(ctx, testUser, "semester1", sem.Modules[0].ID)
	require.NoError(t, err)
	require.Len(t, sem.Modules, 1)
	assert.Equal(t, "B", sem.Modules[0].Name)

	_, err = env.semester.RemoveModule(ctx, testUser, "semester1", "missing")
	assert.True(t, errors.Is(err, apperrors.ErrRecordNotFound))
}
