package repository

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicsync/civic-dashboard/internal/models"
)

func userStoreFactories() map[string]func(t *testing.T) UserStore {
	return map[string]func(t *testing.T) UserStore{
		"memory": func(t *testing.T) UserStore { return NewMemoryUserRepository() },
		"gorm":   func(t *testing.T) UserStore { return NewUserRepository(setupTestDB(t)) },
	}
}

func TestUserStore_CreateGetList(t *testing.T) {
	for name, factory := range userStoreFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)

			require.NoError(t, store.Create(&models.User{
				ID: "2", Name: "Mike Chen", Points: 1890, Level: 6, Badges: []string{"reporter", "resolver"},
			}))
			require.NoError(t, store.Create(&models.User{ID: "1", Name: "Sarah Johnson", Points: 2350}))

			user, err := store.GetByID("2")
			require.NoError(t, err)
			assert.Equal(t, "Mike Chen", user.Name)
			assert.Equal(t, []string{"reporter", "resolver"}, user.Badges)

			// Level defaults to 1.
			user, err = store.GetByID("1")
			require.NoError(t, err)
			assert.Equal(t, 1, user.Level)

			users, err := store.List()
			require.NoError(t, err)
			require.Len(t, users, 2)
			assert.Equal(t, "2", users[0].ID)
			assert.Equal(t, "1", users[1].ID)

			_, err = store.GetByID("missing")
			assert.ErrorIs(t, err, models.ErrNotFound)
		})
	}
}

func TestUserRepository_ConcurrentCreatesGetDistinctSeq(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.Create(&models.User{ID: fmt.Sprint(i), Name: fmt.Sprintf("User %d", i)}))
		}(i)
	}
	wg.Wait()

	users, err := repo.List()
	require.NoError(t, err)
	require.Len(t, users, n)
	for i := 1; i < len(users); i++ {
		assert.Greater(t, users[i].Seq, users[i-1].Seq)
	}

	assert.Error(t, db.Create(&models.User{ID: "dup", Name: "Duplicate", Seq: users[0].Seq}).Error)
}

func TestMemoryUserRepository_BadgesAreCopied(t *testing.T) {
	repo := NewMemoryUserRepository()
	badges := []string{"reporter"}
	require.NoError(t, repo.Create(&models.User{ID: "1", Name: "Alex Rodriguez", Badges: badges}))

	badges[0] = "mutated"
	user, err := repo.GetByID("1")
	require.NoError(t, err)
	assert.Equal(t, []string{"reporter"}, user.Badges)

	assert.Error(t, repo.Create(&models.User{ID: "1", Name: "dup"}))
	assert.ErrorIs(t, repo.Create(&models.User{Name: "no id"}), models.ErrValidation)
}
