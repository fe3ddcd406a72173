package repository

import (
	"fmt"
	"testing"

	"gobarber/cmd/internal/domain/entity"
	"gobarber/cmd/internal/domain/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := sqlite.Init(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user, err := repo.FindBySub("missing")
	require.NoError(t, err)
	assert.Nil(t, user)

	u := &entity.User{Sub: "sub-1", Name: "Ana", Email: "ana@example.com", CreatedAt: 1, UpdatedAt: 1}
	require.NoError(t, repo.Save(u))
	assert.NotZero(t, u.ID)

	found, err := repo.FindBySub("sub-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Ana", found.Name)

	found.Name = "Ana Maria"
	require.NoError(t, repo.Save(found))

	byID, err := repo.FindByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", byID.Name)

	none, err := repo.FindByID(999)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSessionRepository(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	sessions := NewSessionRepository(db)

	u := &entity.User{Sub: "sub-1", Name: "Ana", Email: "ana@example.com", CreatedAt: 1, UpdatedAt: 1}
	require.NoError(t, users.Save(u))

	require.NoError(t, sessions.Save(&entity.Session{ID: "live", UserID: u.ID, AccessToken: "a", ExpiresAt: 2000, CreatedAt: 1}))
	require.NoError(t, sessions.Save(&entity.Session{ID: "old", UserID: u.ID, AccessToken: "b", ExpiresAt: 500, CreatedAt: 1}))

	sess, err := sessions.FindByID("live")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "Ana", sess.User.Name)
	assert.False(t, sess.Expired(1000))
	assert.True(t, sess.Expired(2000))

	removed, err := sessions.DeleteExpired(1000)
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, removed)

	removed, err = sessions.DeleteExpired(1000)
	require.NoError(t, err)
	assert.Empty(t, removed)

	gone, err := sessions.FindByID("old")
	require.NoError(t, err)
	assert.Nil(t, gone)

	require.NoError(t, sessions.Delete("live"))
	gone, err = sessions.FindByID("live")
	require.NoError(t, err)
	assert.Nil(t, gone)
}
