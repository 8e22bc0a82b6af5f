package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

func TestCacheRepositoryWithoutClientMisses(t *testing.T) {
	repo := NewCacheRepository(nil, "timetable")

	var dest []string
	err := repo.Get(context.Background(), "slots:all", &dest)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "slots:all", []string{"a"}, time.Minute))
}

func TestCacheRepositoryKeyPrefix(t *testing.T) {
	assert.Equal(t, "timetable:slots:Monday", NewCacheRepository(nil, "timetable").Key("slots:Monday"))
	assert.Equal(t, "slots:Monday", NewCacheRepository(nil, "").Key("slots:Monday"))
}
