package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/sensus-health/sensus-api/internal/domain/entity"
	"github.com/sensus-health/sensus-api/internal/domain/repository"
	"github.com/sensus-health/sensus-api/internal/jobs"
	"github.com/sensus-health/sensus-api/pkg/helpers"
)

// DiaryService implements diary CRUD, aggregate stats and full-text search.
// Every read/mutation of a single entry enforces ownership.
type DiaryService struct {
	Repo    repository.DiaryRepository
	Logger  *logrus.Logger
	ES      *elasticsearch.Client
	ESIndex string
	Pub     *helpers.RabbitPublisher
}

type CreateEntryInput struct {
	Content   string
	Mood      int
	Tags      []string
	EntryDate time.Time
}

func (s *DiaryService) Create(ctx context.Context, userID string, in CreateEntryInput) (*entity.DiaryEntry, error) {
	e := &entity.DiaryEntry{
		UserID:    userID,
		Content:   in.Content,
		Mood:      in.Mood,
		Tags:      in.Tags,
		EntryDate: in.EntryDate,
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if e.EntryDate.IsZero() {
		e.EntryDate = time.Now()
	}
	if err := s.Repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.index(ctx, e)
	s.publish(ctx, jobs.Event{
		Type:       jobs.EventDiaryEntryCreated,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		EntryDate:  e.EntryDate.Format("2006-01-02"),
	})
	return e, nil
}

func (s *DiaryService) Get(ctx context.Context, userID, entryID string) (*entity.DiaryEntry, error) {
	e, err := s.Repo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if e.UserID != userID {
		return nil, ErrForbidden
	}
	return e, nil
}

func (s *DiaryService) List(ctx context.Context, userID string, f entity.DiaryFilter) ([]*entity.DiaryEntry, int, error) {
	entries, total, err := s.Repo.ListByUser(ctx, userID, f)
	if err != nil {
		return nil, 0, err
	}
	if entries == nil {
		entries = []*entity.DiaryEntry{}
	}
	return entries, total, nil
}

type UpdateEntryInput struct {
	Content   *string
	Mood      *int
	Tags      []string
	EntryDate *time.Time
}

func (s *DiaryService) Update(ctx context.Context, userID, entryID string, in UpdateEntryInput) (*entity.DiaryEntry, error) {
	e, err := s.Get(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	if in.Content != nil {
		e.Content = *in.Content
	}
	if in.Mood != nil {
		e.Mood = *in.Mood
	}
	if in.Tags != nil {
		e.Tags = in.Tags
	}
	if in.EntryDate != nil {
		e.EntryDate = *in.EntryDate
	}
	if err := s.Repo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.index(ctx, e)
	return e, nil
}

func (s *DiaryService) Delete(ctx context.Context, userID, entryID string) error {
	e, err := s.Get(ctx, userID, entryID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, e.ID); err != nil {
		return err
	}
	s.deindex(ctx, e.ID)
	return nil
}

// Stats aggregates the trailing-period mood statistics.
func (s *DiaryService) Stats(ctx context.Context, userID string, days int) (*entity.DiaryStats, error) {
	return s.Repo.Stats(ctx, userID, days)
}

// Search queries Elasticsearch over content and tags, optionally filtered by
// tags and mood. Returns an empty result set when ES is not configured or
// unreachable; search is best-effort, the database stays the source of truth.
func (s *DiaryService) Search(ctx context.Context, userID, q string, tags []string, mood *int, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 20
	}

	must := []map[string]any{
		{"term": map[string]any{"user_id": userID}},
	}
	if q != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"content^2", "tags"},
			},
		})
	}
	for _, t := range tags {
		must = append(must, map[string]any{"term": map[string]any{"tags": t}})
	}
	if mood != nil {
		must = append(must, map[string]any{"term": map[string]any{"mood": *mood}})
	}
	query := map[string]any{
		"query": map[string]any{"bool": map[string]any{"must": must}},
		"size":  size,
		"sort":  []map[string]any{{"entry_date": map[string]any{"order": "desc"}}},
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("diary search failed")
		}
		return []map[string]any{}, nil
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return []map[string]any{}, nil
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		doc := h.Source
		doc["id"] = h.ID
		out = append(out, doc)
	}
	return out, nil
}

// index pushes the entry document to Elasticsearch, best-effort.
func (s *DiaryService) index(ctx context.Context, e *entity.DiaryEntry) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"user_id":    e.UserID,
		"content":    e.Content,
		"mood":       e.Mood,
		"tags":       e.Tags,
		"entry_date": e.EntryDate.Format("2006-01-02"),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: e.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("entry_id", e.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("entry_id", e.ID).Warn("es index response error")
	}
}

func (s *DiaryService) deindex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if res, err := req.Do(c, s.ES); err == nil {
		_ = res.Body.Close()
	}
}

func (s *DiaryService) publish(ctx context.Context, ev jobs.Event) {
	if s.Pub == nil {
		return
	}
	if err := s.Pub.PublishJSON(ctx, ev); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("type", ev.Type).Warn("event publish failed")
	}
}
