package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"bloodlink/store/storetest"
)

// staleCount always reports no existing documents, like a count that ran
// before a concurrent insert landed.
type staleCount struct {
	*storetest.Collection
}

func (staleCount) CountDocuments(context.Context, bson.M) (int64, error) {
	return 0, nil
}

func uniqueUsers(t *testing.T, docs ...bson.M) *storetest.Collection {
	t.Helper()
	users := storetest.New(docs...)
	require.NoError(t, users.EnsureUniqueIndex(context.Background(), "email"))
	return users
}

func TestRegister_UniqueIndexRejectsDuplicate(t *testing.T) {
	users := uniqueUsers(t, bson.M{"email": "taken@example.com"})
	uc := NewUserController(staleCount{users}, nil, nil, nil, 0)

	rec := httptest.NewRecorder()
	uc.Register(rec, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"email":"taken@example.com"}`)))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "User already exists")
	assert.Equal(t, 1, users.Len())
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	users := uniqueUsers(t)
	uc := NewUserController(users, nil, nil, nil, 0)

	const n = 20
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := httptest.NewRecorder()
			uc.Register(rec, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"email":"same@example.com"}`)))
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		if code == http.StatusCreated {
			created++
			continue
		}
		assert.Equal(t, http.StatusConflict, code)
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, users.Len())
}

func TestUpdateUser_EmailTaken(t *testing.T) {
	users := uniqueUsers(t, bson.M{"email": "a@example.com"}, bson.M{"email": "b@example.com"})
	uc := NewUserController(users, nil, nil, nil, 0)

	req := httptest.NewRequest(http.MethodPut, "/users/b@example.com", strings.NewReader(`{"email":"a@example.com"}`))
	req = mux.SetURLVars(req, map[string]string{"email": "b@example.com"})
	rec := httptest.NewRecorder()
	uc.UpdateUser(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	_, err := users.FindOne(context.Background(), bson.M{"email": "b@example.com"})
	assert.NoError(t, err)
}
