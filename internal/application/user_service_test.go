package application

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensus-health/sensus-api/internal/domain/entity"
	"github.com/sensus-health/sensus-api/internal/domain/repository"
)

// Export fakes embed the interfaces and override only what the export path
// touches.
type exportUserRepo struct {
	repository.UserRepository
	user *entity.User
}

func (f *exportUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	if f.user != nil && f.user.ID == id {
		u := *f.user
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

type exportDiaryRepo struct {
	repository.DiaryRepository
	entries []*entity.DiaryEntry
}

func (f *exportDiaryRepo) AllByUser(_ context.Context, userID string) ([]*entity.DiaryEntry, error) {
	var out []*entity.DiaryEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type exportEvalRepo struct {
	repository.EvaluationRepository
	evals []*entity.Evaluation
}

func (f *exportEvalRepo) AllByUser(_ context.Context, userID string) ([]*entity.Evaluation, error) {
	var out []*entity.Evaluation
	for _, e := range f.evals {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestExportContainsFullHistory(t *testing.T) {
	// Well past any list page size: the export must not be clamped.
	diary := &exportDiaryRepo{}
	for i := 0; i < 150; i++ {
		diary.entries = append(diary.entries, &entity.DiaryEntry{
			ID:        fmt.Sprintf("d-%d", i),
			UserID:    "u1",
			Content:   "día",
			Mood:      5,
			EntryDate: time.Now().AddDate(0, 0, -i),
		})
	}
	evals := &exportEvalRepo{}
	for i := 0; i < 30; i++ {
		evals.evals = append(evals.evals, &entity.Evaluation{
			ID:       fmt.Sprintf("e-%d", i),
			UserID:   "u1",
			TestType: "gad7",
		})
	}
	svc := &UserService{
		Users: &exportUserRepo{user: &entity.User{ID: "u1", Email: "u1@sensus.local", Password: "$2a$12$hash"}},
		Diary: diary,
		Evals: evals,
	}

	b, err := svc.exportDocument(context.Background(), "u1")
	require.NoError(t, err)

	var doc struct {
		User struct {
			Password string
		}
		Diary       []json.RawMessage
		Evaluations []json.RawMessage
	}
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Len(t, doc.Diary, 150)
	assert.Len(t, doc.Evaluations, 30)
	assert.Empty(t, doc.User.Password)
}

func TestExportUnknownUser(t *testing.T) {
	svc := &UserService{Users: &exportUserRepo{}, Diary: &exportDiaryRepo{}, Evals: &exportEvalRepo{}}
	_, err := svc.exportDocument(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCacheableProfileStripsHash(t *testing.T) {
	u := &entity.User{ID: "u1", Email: "u1@sensus.local", Password: "$2a$12$hash"}
	cp := cacheableProfile(u)
	assert.Empty(t, cp.Password)
	assert.Equal(t, "u1", cp.ID)
	// The caller's copy keeps the hash for credential checks.
	assert.Equal(t, "$2a$12$hash", u.Password)
}
