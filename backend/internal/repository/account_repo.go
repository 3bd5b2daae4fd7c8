package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/chrissi82/Dashboard-IU/backend/internal/model"
	apperrors "github.com/chrissi82/Dashboard-IU/backend/pkg/errors"
	"github.com/chrissi82/Dashboard-IU/backend/pkg/period"
)

// profileFile 账户资料文件名（无扩展名）
const profileFile = "Data"

// AccountRepository 账户数据访问接口
type AccountRepository interface {
	Exists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, profile *model.Profile) error
	Get(ctx context.Context, username string) (*model.Profile, error)
	Update(ctx context.Context, profile *model.Profile) error
}

// profileRecord Data 文件结构
type profileRecord struct {
	Password    string `json:"pw"`
	TargetGrade string `json:"ziel_note"`
	StartDate   string `json:"startdatum"`
	EndDate     string `json:"enddatum"`
	Program     string `json:"studiengang"`
}

type accountRepo struct {
	store *fileStore
}

// newAccountRepo 创建 AccountRepository 实例
func newAccountRepo(store *fileStore) AccountRepository {
	return &accountRepo{store: store}
}

func (r *accountRepo) Exists(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !model.ValidUsername(username) {
		return false, nil
	}
	return dirExists(r.store.accountDir(username))
}

// Create 创建账户目录并写入 Data；目录已存在时返回 ErrNameTaken
func (r *accountRepo) Create(ctx context.Context, profile *model.Profile) error {
	if !model.ValidUsername(profile.Username) {
		return apperrors.Validation("用户名无效: %q", profile.Username)
	}
	unlock := r.store.lock(profile.Username)
	defer unlock()

	dir := r.store.accountDir(profile.Username)
	if err := os.MkdirAll(r.store.root, 0o755); err != nil {
		return &apperrors.StorageError{Op: "create", Path: r.store.root, Kind: apperrors.ErrStorageWrite, Err: err}
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return &apperrors.StorageError{Op: "create", Path: dir, Kind: apperrors.ErrNameTaken}
		}
		return &apperrors.StorageError{Op: "create", Path: dir, Kind: apperrors.ErrStorageWrite, Err: err}
	}

	if err := r.store.writeJSON(ctx, "create", filepath.Join(dir, profileFile), toProfileRecord(profile)); err != nil {
		// 未写成资料文件的目录不算注册成功
		_ = os.RemoveAll(dir)
		return err
	}
	return nil
}

func (r *accountRepo) Get(ctx context.Context, username string) (*model.Profile, error) {
	if !model.ValidUsername(username) {
		return nil, &apperrors.StorageError{Op: "load", Path: username, Kind: apperrors.ErrRecordNotFound}
	}
	path := filepath.Join(r.store.accountDir(username), profileFile)

	var rec profileRecord
	if err := r.store.readJSON(ctx, "load", path, &rec); err != nil {
		return nil, err
	}
	profile, err := fromProfileRecord(username, &rec)
	if err != nil {
		return nil, &apperrors.StorageError{Op: "load", Path: path, Kind: apperrors.ErrCorruptRecord, Err: err}
	}
	return profile, nil
}

// Update 覆盖写入账户资料，账户不存在时返回 ErrRecordNotFound
func (r *accountRepo) Update(ctx context.Context, profile *model.Profile) error {
	if !model.ValidUsername(profile.Username) {
		return apperrors.Validation("用户名无效: %q", profile.Username)
	}
	unlock := r.store.lock(profile.Username)
	defer unlock()

	path := filepath.Join(r.store.accountDir(profile.Username), profileFile)
	ok, err := fileExists(path)
	if err != nil {
		return &apperrors.StorageError{Op: "update", Path: path, Kind: apperrors.ErrStorageWrite, Err: err}
	}
	if !ok {
		return &apperrors.StorageError{Op: "update", Path: path, Kind: apperrors.ErrRecordNotFound}
	}
	return r.store.writeJSON(ctx, "update", path, toProfileRecord(profile))
}

func toProfileRecord(p *model.Profile) *profileRecord {
	return &profileRecord{
		Password:    p.Password,
		TargetGrade: p.TargetGrade,
		StartDate:   period.FormatDay(p.StartDate),
		EndDate:     period.FormatDay(p.EndDate),
		Program:     p.Program,
	}
}

func fromProfileRecord(username string, rec *profileRecord) (*model.Profile, error) {
	start, err := period.ParseDay(strings.TrimSpace(rec.StartDate))
	if err != nil {
		return nil, apperrors.Corrupt("startdatum 无效: %q", rec.StartDate)
	}
	end, err := period.ParseDay(strings.TrimSpace(rec.EndDate))
	if err != nil {
		return nil, apperrors.Corrupt("enddatum 无效: %q", rec.EndDate)
	}
	return &model.Profile{
		Username:    username,
		Password:    rec.Password,
		TargetGrade: rec.TargetGrade,
		StartDate:   start,
		EndDate:     end,
		Program:     rec.Program,
	}, nil
}
