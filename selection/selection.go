// Package selection keeps the most recently seen users, surveys and quiz
// submissions so that detail pages can render without another fetch.
//
// Entries are last-write-wins and never expire.
package selection

import (
	"sync"

	"github.com/mbolis/survey-admin/model"
)

type Cache struct {
	mu      sync.RWMutex
	users   map[string]model.Row
	surveys map[string]model.Row
	quizzes map[string]model.Row
}

func New() *Cache {
	return &Cache{
		users:   map[string]model.Row{},
		surveys: map[string]model.Row{},
		quizzes: map[string]model.Row{},
	}
}

// SetUser stores u under its sysId. Rows without a sysId are ignored.
func (c *Cache) SetUser(u model.Row) {
	key, ok := model.UserKey(u)
	if !ok {
		return
	}
	c.mu.Lock()
	c.users[key] = u
	c.mu.Unlock()
}

func (c *Cache) GetUser(sysId string) (model.Row, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[sysId]
	return u, ok
}

// SetSurvey stores s under its surveyId. Rows without a surveyId are ignored.
func (c *Cache) SetSurvey(s model.Row) {
	key, ok := model.SurveyKey(s)
	if !ok {
		return
	}
	c.mu.Lock()
	c.surveys[key] = s
	c.mu.Unlock()
}

func (c *Cache) GetSurvey(id string) (model.Row, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.surveys[id]
	return s, ok
}

// SetQuiz stores q under its composite "qrId|submittedAt" key.
func (c *Cache) SetQuiz(q model.Row) {
	c.SetQuizByCompositeKey(model.QuizKey(q), q)
}

func (c *Cache) SetQuizByCompositeKey(key string, q model.Row) {
	c.mu.Lock()
	c.quizzes[key] = q
	c.mu.Unlock()
}

func (c *Cache) GetQuizByCompositeKey(key string) (model.Row, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.quizzes[key]
	return q, ok
}

// PrimeFromArray files each row by shape. The shapes overlap, so one row
// may be stored in more than one sub-cache.
func (c *Cache) PrimeFromArray(rows []model.Row) {
	for _, r := range rows {
		if r == nil {
			continue
		}
		if IsUser(r) {
			c.SetUser(r)
		}
		if IsSurvey(r) {
			c.SetSurvey(r)
		}
		if IsQuiz(r) {
			c.SetQuiz(r)
		}
	}
}

func IsUser(r model.Row) bool {
	return model.Truthy(r["sysId"]) && model.Truthy(r["qrId"]) && r.Has("name")
}

func IsSurvey(r model.Row) bool {
	return model.Truthy(r["surveyId"])
}

func IsQuiz(r model.Row) bool {
	return model.Truthy(r["qrId"]) && model.Truthy(r["submittedAt"]) && r.Has("correctAnswers")
}

// Len reports the size of each sub-cache.
func (c *Cache) Len() (users, surveys, quizzes int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.users), len(c.surveys), len(c.quizzes)
}
