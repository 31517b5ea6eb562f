package listing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"bloodlink/store/storetest"
)

var statusSpec = Spec{
	DefaultLimit: 6,
	Fields: []Field{
		{Param: "status", Allowed: []string{"active", "pending", "blocked"}},
	},
}

func seedUsers(n int, status func(i int) string) *storetest.Collection {
	coll := storetest.New()
	for i := 0; i < n; i++ {
		_, _ = coll.InsertOne(context.Background(), bson.M{
			"email":  fmt.Sprintf("user%02d@example.com", i),
			"status": status(i),
		})
	}
	coll.Calls = 0
	return coll
}

func TestBuild_Defaults(t *testing.T) {
	q, err := statusSpec.Build(url.Values{}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), q.Page)
	assert.Equal(t, int64(6), q.Limit)
	assert.Equal(t, int64(0), q.Skip())
	assert.Empty(t, q.Filter)
	assert.False(t, q.NoMatch)
}

func TestBuild_ComposesFilters(t *testing.T) {
	spec := Spec{
		DefaultLimit: 5,
		Fields: []Field{
			{Param: "status", Column: "donationStatus", Normalize: strings.ToLower, Allowed: []string{"pending", "done"}},
			{Param: "district"},
		},
	}

	q, err := spec.Build(url.Values{"status": {"PENDING"}, "district": {""}, "page": {"3"}}, bson.M{"requesterEmail": "a@example.com"})
	require.NoError(t, err)

	assert.Equal(t, bson.M{"requesterEmail": "a@example.com", "donationStatus": "pending"}, q.Filter)
	assert.Equal(t, int64(10), q.Skip())
	assert.False(t, q.NoMatch)
}

func TestBuild_UnknownEnumValueMatchesNothing(t *testing.T) {
	q, err := statusSpec.Build(url.Values{"status": {"archived"}}, nil)
	require.NoError(t, err)
	assert.True(t, q.NoMatch)
}

func TestBuild_RejectsBadPagination(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		want   error
	}{
		{"zero page", url.Values{"page": {"0"}}, ErrInvalidPage},
		{"negative page", url.Values{"page": {"-2"}}, ErrInvalidPage},
		{"non numeric page", url.Values{"page": {"two"}}, ErrInvalidPage},
		{"zero limit", url.Values{"limit": {"0"}}, ErrInvalidLimit},
		{"negative limit", url.Values{"limit": {"-5"}}, ErrInvalidLimit},
		{"huge limit", url.Values{"limit": {"1000"}}, ErrInvalidLimit},
		{"non numeric limit", url.Values{"limit": {"x"}}, ErrInvalidLimit},
		{"overflowing offset", url.Values{"page": {"9223372036854775807"}, "limit": {"100"}}, ErrInvalidPage},
		{"page beyond int64", url.Values{"page": {"9223372036854775808"}}, ErrInvalidPage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := statusSpec.Build(tc.values, nil)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, int64(0), TotalPages(0, 6))
	assert.Equal(t, int64(1), TotalPages(1, 6))
	assert.Equal(t, int64(1), TotalPages(6, 6))
	assert.Equal(t, int64(3), TotalPages(13, 6))
}

func TestRun_SecondPageOfThirteen(t *testing.T) {
	coll := seedUsers(13, func(int) string { return "active" })

	q, err := statusSpec.Build(url.Values{"page": {"2"}, "limit": {"6"}}, nil)
	require.NoError(t, err)
	env, err := Run(context.Background(), coll, q)
	require.NoError(t, err)

	assert.Len(t, env.Items, 6)
	assert.Equal(t, int64(13), env.Total)
	assert.Equal(t, int64(3), env.TotalPages)
	assert.Equal(t, int64(2), env.CurrentPage)
	assert.Equal(t, "user06@example.com", env.Items[0]["email"])
}

func TestRun_ItemCountProperty(t *testing.T) {
	for total := 0; total <= 12; total++ {
		coll := seedUsers(total, func(int) string { return "active" })
		for limit := int64(1); limit <= 5; limit++ {
			for page := int64(1); page <= 6; page++ {
				env, err := Run(context.Background(), coll, Query{Filter: bson.M{}, Page: page, Limit: limit})
				require.NoError(t, err)

				want := int64(total) - (page-1)*limit
				if want < 0 {
					want = 0
				}
				if want > limit {
					want = limit
				}
				assert.Equal(t, want, int64(len(env.Items)), "total=%d limit=%d page=%d", total, limit, page)
				assert.Equal(t, TotalPages(int64(total), limit), env.TotalPages)
			}
		}
	}
}

func TestRun_FilterNarrowsCount(t *testing.T) {
	coll := seedUsers(10, func(i int) string {
		if i%3 == 0 {
			return "pending"
		}
		return "active"
	})
	ctx := context.Background()

	all, err := statusSpec.Build(url.Values{}, nil)
	require.NoError(t, err)
	pending, err := statusSpec.Build(url.Values{"status": {"pending"}}, nil)
	require.NoError(t, err)

	envAll, err := Run(ctx, coll, all)
	require.NoError(t, err)
	envPending, err := Run(ctx, coll, pending)
	require.NoError(t, err)

	assert.Equal(t, int64(10), envAll.Total)
	assert.Equal(t, int64(4), envPending.Total)
	assert.GreaterOrEqual(t, envAll.Total, envPending.Total)
}

func TestRun_NoMatchSkipsStore(t *testing.T) {
	coll := seedUsers(3, func(int) string { return "active" })

	q, err := statusSpec.Build(url.Values{"status": {"archived"}}, nil)
	require.NoError(t, err)
	env, err := Run(context.Background(), coll, q)
	require.NoError(t, err)

	assert.NotNil(t, env.Items)
	assert.Empty(t, env.Items)
	assert.Equal(t, int64(0), env.Total)
	assert.Equal(t, int64(0), env.TotalPages)
	assert.Equal(t, 0, coll.Calls)
}

func TestRun_RejectsUnnormalizedQuery(t *testing.T) {
	coll := storetest.New()

	_, err := Run(context.Background(), coll, Query{Page: 0, Limit: 5})
	assert.ErrorIs(t, err, ErrInvalidPage)
	_, err = Run(context.Background(), coll, Query{Page: 1, Limit: 0})
	assert.ErrorIs(t, err, ErrInvalidLimit)
	_, err = Run(context.Background(), coll, Query{Page: math.MaxInt64, Limit: 100})
	assert.ErrorIs(t, err, ErrInvalidPage)
	assert.Equal(t, 0, coll.Calls)
}

func TestRun_LargestPageIsEmpty(t *testing.T) {
	coll := seedUsers(3, func(int) string { return "active" })

	page := int64(math.MaxInt64/100 + 1)
	q, err := statusSpec.Build(url.Values{"page": {fmt.Sprint(page)}, "limit": {"100"}}, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, q.Skip(), int64(0))

	env, err := Run(context.Background(), coll, q)
	require.NoError(t, err)
	assert.Empty(t, env.Items)
	assert.Equal(t, int64(3), env.Total)
	assert.Equal(t, page, env.CurrentPage)
}

func TestRun_StoreFailure(t *testing.T) {
	coll := storetest.New()
	coll.Err = errors.New("connection refused")

	_, err := Run(context.Background(), coll, Query{Filter: bson.M{}, Page: 1, Limit: 5})
	assert.ErrorIs(t, err, coll.Err)
}
