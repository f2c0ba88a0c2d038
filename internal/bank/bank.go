package bank

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/unt-prep/backend/internal/models"
)

// Bank is the in-memory question catalog. It is loaded from the store at
// process start and replaced wholesale on import; readers see a consistent
// snapshot and individual questions are never mutated.
type Bank struct {
	store *Store

	mu        sync.RWMutex
	byID      map[int64]models.Question
	bySubject map[models.Subject][]models.Question
}

func New(store *Store) *Bank {
	return &Bank{
		store:     store,
		byID:      make(map[int64]models.Question),
		bySubject: make(map[models.Subject][]models.Question),
	}
}

// NewStatic builds a bank from a fixed question set with no backing store.
// Load must not be called on it.
func NewStatic(questions []models.Question) *Bank {
	b := New(nil)
	b.replace(questions)
	return b
}

// Load replaces the snapshot with the store's current contents.
func (b *Bank) Load(ctx context.Context) error {
	questions, err := b.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("bank load: %w", err)
	}
	b.replace(questions)
	return nil
}

func (b *Bank) replace(questions []models.Question) {
	byID := make(map[int64]models.Question, len(questions))
	bySubject := make(map[models.Subject][]models.Question)
	for _, q := range questions {
		byID[q.ID] = q
		bySubject[q.Subject] = append(bySubject[q.Subject], q)
	}

	b.mu.Lock()
	b.byID = byID
	b.bySubject = bySubject
	b.mu.Unlock()
}

// Get returns the question with the given id, if present.
func (b *Bank) Get(id int64) (models.Question, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.byID[id]
	return q, ok
}

// QuestionsByID resolves a set of ids against the snapshot. Unknown ids are
// simply absent from the returned map; callers treat them as a tolerated
// inconsistency, not an error.
func (b *Bank) QuestionsByID(ids []int64) map[int64]models.Question {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[int64]models.Question, len(ids))
	for _, id := range ids {
		if q, ok := b.byID[id]; ok {
			out[id] = q
		}
	}
	return out
}

// Subject returns up to limit questions for the subject in catalog order.
// limit <= 0 means all.
func (b *Bank) Subject(subject models.Subject, limit int) []models.Question {
	b.mu.RLock()
	defer b.mu.RUnlock()
	qs := b.bySubject[subject]
	if limit > 0 && len(qs) > limit {
		qs = qs[:limit]
	}
	out := make([]models.Question, len(qs))
	copy(out, qs)
	return out
}

// Subjects lists every subject present in the bank with question counts and
// topic coverage, sorted by subject tag.
func (b *Bank) Subjects() []models.SubjectInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()

	infos := make([]models.SubjectInfo, 0, len(b.bySubject))
	for subject, qs := range b.bySubject {
		topicSet := make(map[string]bool)
		for _, q := range qs {
			topicSet[q.Topic] = true
		}
		topics := make([]string, 0, len(topicSet))
		for t := range topicSet {
			topics = append(topics, t)
		}
		sort.Strings(topics)

		mandatory := false
		for _, m := range models.MandatorySubjects {
			if subject == m {
				mandatory = true
				break
			}
		}

		infos = append(infos, models.SubjectInfo{
			Subject:       subject,
			Mandatory:     mandatory,
			QuestionCount: len(qs),
			Topics:        topics,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Subject < infos[j].Subject })
	return infos
}

// Size returns the total number of questions in the snapshot.
func (b *Bank) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byID)
}
