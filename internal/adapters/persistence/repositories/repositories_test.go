package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cinefund/internal/adapters/persistence/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// KeyValueTestSuite runs the repository contract against one implementation
type KeyValueTestSuite struct {
	suite.Suite
	open func(t *testing.T) KeyValueRepository
	repo KeyValueRepository
	ctx  context.Context
}

func (s *KeyValueTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = s.open(s.T())
}

func (s *KeyValueTestSuite) TearDownTest() {
	if s.repo != nil {
		s.repo.Close()
	}
}

func (s *KeyValueTestSuite) TestMissingKey() {
	v, ok, err := s.repo.Get(s.ctx, "authToken")
	require.NoError(s.T(), err)
	assert.False(s.T(), ok)
	assert.Empty(s.T(), v)
}

func (s *KeyValueTestSuite) TestSetGetOverwrite() {
	require.NoError(s.T(), s.repo.Set(s.ctx, "authToken", "first"))
	require.NoError(s.T(), s.repo.Set(s.ctx, "authToken", "second"))

	v, ok, err := s.repo.Get(s.ctx, "authToken")
	require.NoError(s.T(), err)
	assert.True(s.T(), ok)
	assert.Equal(s.T(), "second", v)
}

func (s *KeyValueTestSuite) TestDeleteIsIdempotent() {
	require.NoError(s.T(), s.repo.Set(s.ctx, "currentUser", `{"id":1}`))
	require.NoError(s.T(), s.repo.Delete(s.ctx, "currentUser"))
	require.NoError(s.T(), s.repo.Delete(s.ctx, "currentUser"))

	_, ok, err := s.repo.Get(s.ctx, "currentUser")
	require.NoError(s.T(), err)
	assert.False(s.T(), ok)
}

func (s *KeyValueTestSuite) TestClosedStoreFails() {
	require.NoError(s.T(), s.repo.Close())

	_, _, err := s.repo.Get(s.ctx, "authToken")
	assert.ErrorIs(s.T(), err, ErrStoreClosed)
	assert.ErrorIs(s.T(), s.repo.Set(s.ctx, "authToken", "x"), ErrStoreClosed)
	s.repo = nil
}

func TestMemoryRepository(t *testing.T) {
	suite.Run(t, &KeyValueTestSuite{
		open: func(t *testing.T) KeyValueRepository { return NewMemoryRepository() },
	})
}

func TestBoltRepository(t *testing.T) {
	suite.Run(t, &KeyValueTestSuite{
		open: func(t *testing.T) KeyValueRepository {
			repo, err := NewBoltRepository(filepath.Join(t.TempDir(), "session.db"))
			require.NoError(t, err)
			return repo
		},
	})
}

func TestBoltRepository_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	repo, err := NewBoltRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, "authToken", "persisted"))
	require.NoError(t, repo.Close())

	repo, err = NewBoltRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	v, ok, err := repo.Get(ctx, "authToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", v)
}

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestGormRepository_Get(t *testing.T) {
	db, mock := newMockGorm(t)
	repo := NewGormRepository(db)

	rows := sqlmock.NewRows([]string{"entry_key", "entry_value", "updated_at"}).
		AddRow("authToken", "abc", time.Now())
	mock.ExpectQuery("SELECT \\* FROM `session_entries` WHERE entry_key = \\?").WillReturnRows(rows)

	v, ok, err := repo.Get(context.Background(), "authToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepository_GetMissing(t *testing.T) {
	db, mock := newMockGorm(t)
	repo := NewGormRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `session_entries`").
		WillReturnRows(sqlmock.NewRows([]string{"entry_key", "entry_value", "updated_at"}))

	_, ok, err := repo.Get(context.Background(), "authToken")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepository_SetUpserts(t *testing.T) {
	db, mock := newMockGorm(t)
	repo := NewGormRepository(db)

	mock.ExpectExec("INSERT INTO `session_entries` .* ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Set(context.Background(), "authToken", "abc"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepository_DeleteAndClose(t *testing.T) {
	db, mock := newMockGorm(t)
	repo := NewGormRepository(db)

	mock.ExpectExec("DELETE FROM `session_entries` WHERE entry_key = \\?").
		WithArgs("currentUser").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	require.NoError(t, repo.Delete(context.Background(), "currentUser"))
	require.NoError(t, repo.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionEntryTableName(t *testing.T) {
	assert.Equal(t, "session_entries", models.SessionEntry{}.TableName())
}
