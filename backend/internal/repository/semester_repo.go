package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/chrissi82/Dashboard-IU/backend/internal/model"
	apperrors "github.com/chrissi82/Dashboard-IU/backend/pkg/errors"
	"github.com/chrissi82/Dashboard-IU/backend/pkg/period"
)

var semesterFilePattern = regexp.MustCompile(`^semester([1-9][0-9]*)\.json$`)

// legacyIDNamespace 旧记录没有模块 ID 时，用于派生确定性 ID 的命名空间
var legacyIDNamespace = uuid.MustParse("6f1d3c2e-8b4a-5e07-9c1d-2a7b0e4f5c93")

// SemesterRepository 学期数据访问接口
type SemesterRepository interface {
	Exists(ctx context.Context, username, name string) (bool, error)
	Get(ctx context.Context, username, name string) (*model.Semester, error)
	// List 按学期序号升序返回账户下全部学期
	List(ctx context.Context, username string) ([]*model.Semester, error)
	// GetOrCreate 记录存在时直接加载；否则调用 build 构造新学期并立即写入。
	// 第二个返回值表示是否新建。
	GetOrCreate(ctx context.Context, username, name string, build func() (*model.Semester, error)) (*model.Semester, bool, error)
	// Update 在账户锁内完成读-改-写，返回写入后的学期
	Update(ctx context.Context, username, name string, mutate func(*model.Semester) error) (*model.Semester, error)
}

// semesterRecord semester<N>.json 文件结构
type semesterRecord struct {
	Number    string         `json:"nummer"`
	StartDate string         `json:"startdatum"`
	EndDate   string         `json:"enddatum"`
	Modules   []moduleRecord `json:"module"`
}

// moduleRecord 指针字段用于区分"缺失"与"零值"
type moduleRecord struct {
	ID       string  `json:"id,omitempty"`
	Name     *string `json:"name"`
	Credits  *int    `json:"ects"`
	ExamForm *string `json:"pruefung"`
	Status   *string `json:"status"`
}

type semesterRepo struct {
	store *fileStore
}

// newSemesterRepo 创建 SemesterRepository 实例
func newSemesterRepo(store *fileStore) SemesterRepository {
	return &semesterRepo{store: store}
}

func (r *semesterRepo) path(username, name string) string {
	return filepath.Join(r.store.accountDir(username), name+".json")
}

func (r *semesterRepo) Exists(ctx context.Context, username, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := checkKeys(username, name); err != nil {
		return false, err
	}
	return fileExists(r.path(username, name))
}

func (r *semesterRepo) Get(ctx context.Context, username, name string) (*model.Semester, error) {
	if err := checkKeys(username, name); err != nil {
		return nil, err
	}
	return r.load(ctx, username, name)
}

func (r *semesterRepo) List(ctx context.Context, username string) ([]*model.Semester, error) {
	if !model.ValidUsername(username) {
		return nil, apperrors.Validation("用户名无效: %q", username)
	}
	dir := r.store.accountDir(username)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &apperrors.StorageError{Op: "list", Path: dir, Kind: apperrors.ErrRecordNotFound}
		}
		return nil, &apperrors.StorageError{Op: "list", Path: dir, Kind: apperrors.ErrCorruptRecord, Err: err}
	}

	type candidate struct {
		number int
		name   string
	}
	var found []candidate
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		m := semesterFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, candidate{number: n, name: strings.TrimSuffix(e.Name(), ".json")})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].number < found[j].number })

	semesters := make([]*model.Semester, 0, len(found))
	for _, c := range found {
		sem, err := r.load(ctx, username, c.name)
		if err != nil {
			return nil, err
		}
		semesters = append(semesters, sem)
	}
	return semesters, nil
}

func (r *semesterRepo) GetOrCreate(ctx context.Context, username, name string, build func() (*model.Semester, error)) (*model.Semester, bool, error) {
	if err := checkKeys(username, name); err != nil {
		return nil, false, err
	}
	unlock := r.store.lock(username)
	defer unlock()

	path := r.path(username, name)
	ok, err := fileExists(path)
	if err != nil {
		return nil, false, &apperrors.StorageError{Op: "create", Path: path, Kind: apperrors.ErrCorruptRecord, Err: err}
	}
	if ok {
		sem, err := r.load(ctx, username, name)
		return sem, false, err
	}

	dir := r.store.accountDir(username)
	if ok, err := dirExists(dir); err != nil || !ok {
		return nil, false, &apperrors.StorageError{Op: "create", Path: dir, Kind: apperrors.ErrRecordNotFound, Err: err}
	}

	sem, err := build()
	if err != nil {
		return nil, false, err
	}
	sem.Name = name
	if err := r.store.writeJSON(ctx, "create", path, toSemesterRecord(sem)); err != nil {
		return nil, false, err
	}
	return sem, true, nil
}

func (r *semesterRepo) Update(ctx context.Context, username, name string, mutate func(*model.Semester) error) (*model.Semester, error) {
	if err := checkKeys(username, name); err != nil {
		return nil, err
	}
	unlock := r.store.lock(username)
	defer unlock()

	sem, err := r.load(ctx, username, name)
	if err != nil {
		return nil, err
	}
	if err := mutate(sem); err != nil {
		return nil, err
	}
	if err := r.store.writeJSON(ctx, "update", r.path(username, name), toSemesterRecord(sem)); err != nil {
		return nil, err
	}
	return sem, nil
}

func (r *semesterRepo) load(ctx context.Context, username, name string) (*model.Semester, error) {
	number, err := model.ParseSemesterNumber(name)
	if err != nil {
		return nil, err
	}
	path := r.path(username, name)

	var rec semesterRecord
	if err := r.store.readJSON(ctx, "load", path, &rec); err != nil {
		return nil, err
	}
	sem, err := fromSemesterRecord(number, name, &rec)
	if err != nil {
		return nil, &apperrors.StorageError{Op: "load", Path: path, Kind: apperrors.ErrCorruptRecord, Err: err}
	}
	return sem, nil
}

func checkKeys(username, name string) error {
	if !model.ValidUsername(username) {
		return apperrors.Validation("用户名无效: %q", username)
	}
	_, err := model.ParseSemesterNumber(name)
	return err
}

// ── 记录 ↔ 模型 ──

func toSemesterRecord(sem *model.Semester) *semesterRecord {
	rec := &semesterRecord{
		Number:    strconv.Itoa(sem.Number),
		StartDate: period.FormatDay(sem.StartDate),
		EndDate:   period.FormatDay(sem.EndDate),
		Modules:   make([]moduleRecord, 0, len(sem.Modules)),
	}
	for _, m := range sem.Modules {
		name, exam, status, credits := m.Name, m.ExamForm.String(), m.Status.String(), m.Credits
		rec.Modules = append(rec.Modules, moduleRecord{
			ID:       m.ID,
			Name:     &name,
			Credits:  &credits,
			ExamForm: &exam,
			Status:   &status,
		})
	}
	return rec
}

func fromSemesterRecord(number int, name string, rec *semesterRecord) (*model.Semester, error) {
	if rec.StartDate == "" || rec.EndDate == "" {
		return nil, apperrors.Corrupt("缺少 startdatum 或 enddatum")
	}
	start, err := period.ParseDay(rec.StartDate)
	if err != nil {
		return nil, apperrors.Corrupt("startdatum 无效: %q", rec.StartDate)
	}
	end, err := period.ParseDay(rec.EndDate)
	if err != nil {
		return nil, apperrors.Corrupt("enddatum 无效: %q", rec.EndDate)
	}

	sem := &model.Semester{
		Number:    number,
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Modules:   make([]model.Module, 0, len(rec.Modules)),
	}
	seen := make(map[string]bool, len(rec.Modules))
	for i, mr := range rec.Modules {
		if mr.Name == nil || mr.Credits == nil || mr.ExamForm == nil || mr.Status == nil {
			return nil, apperrors.Corrupt("第 %d 个模块缺少必填字段", i+1)
		}
		status, err := model.ParseStatus(*mr.Status)
		if err != nil {
			return nil, fmt.Errorf("第 %d 个模块: %w", i+1, err)
		}
		id := mr.ID
		if id == "" {
			id = legacyModuleID(name, i, *mr.Name)
		}
		if seen[id] {
			return nil, apperrors.Corrupt("模块 ID 重复: %s", id)
		}
		seen[id] = true

		sem.Modules = append(sem.Modules, model.Module{
			ID:       id,
			Name:     *mr.Name,
			Credits:  *mr.Credits,
			ExamForm: model.ParseExamForm(*mr.ExamForm),
			Status:   status,
		})
	}
	return sem, nil
}

// legacyModuleID 为没有 ID 的旧记录派生确定性 ID，下一次写入时随记录持久化
func legacyModuleID(semester string, index int, name string) string {
	key := fmt.Sprintf("%s/%d/%s", semester, index, name)
	return uuid.NewSHA1(legacyIDNamespace, []byte(key)).String()
}
