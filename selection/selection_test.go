package selection

import (
	"testing"

	"github.com/mbolis/survey-admin/model"
)

func TestUserLastWriteWins(t *testing.T) {
	c := New()
	c.SetUser(model.Row{"sysId": "U1", "name": "old"})
	c.SetUser(model.Row{"sysId": "U1", "name": "new"})
	c.SetUser(model.Row{"name": "no id"})

	u, ok := c.GetUser("U1")
	if !ok || u["name"] != "new" {
		t.Fatalf("GetUser = %v, %v", u, ok)
	}
	if users, _, _ := c.Len(); users != 1 {
		t.Fatalf("users = %d, want 1", users)
	}
}

func TestSurvey(t *testing.T) {
	c := New()
	c.SetSurvey(model.Row{"surveyId": "S1", "title": "Intro"})
	c.SetSurvey(model.Row{"surveyId": ""})

	if s, ok := c.GetSurvey("S1"); !ok || s["title"] != "Intro" {
		t.Fatalf("GetSurvey = %v, %v", s, ok)
	}
	if _, ok := c.GetSurvey("missing"); ok {
		t.Fatal("unexpected hit")
	}
}

func TestQuizCompositeKey(t *testing.T) {
	c := New()
	q := model.Row{"qrId": "QR9", "submittedAt": "2024-01-15T10:00:00Z", "correctAnswers": 3.0}
	c.SetQuiz(q)

	got, ok := c.GetQuizByCompositeKey("QR9|2024-01-15T10:00:00Z")
	if !ok || got["correctAnswers"] != 3.0 {
		t.Fatalf("GetQuizByCompositeKey = %v, %v", got, ok)
	}

	c.SetQuizByCompositeKey("custom", q)
	if _, ok := c.GetQuizByCompositeKey("custom"); !ok {
		t.Fatal("explicit key not stored")
	}
}

func TestPrimeFromArray(t *testing.T) {
	rows := []model.Row{
		// user: sysId + qrId + name present
		{"sysId": "U1", "qrId": "QR1", "name": nil},
		// survey only
		{"surveyId": "S1"},
		// quiz only
		{"qrId": "QR2", "submittedAt": "2024-01-15T10:00:00Z", "correctAnswers": 0.0},
		// sysId without qrId is not a user
		{"sysId": "U2", "name": "x"},
		// matches all three shapes
		{"sysId": "U3", "qrId": "QR3", "name": "n", "surveyId": "S3", "submittedAt": "2024-01-16T00:00:00Z", "correctAnswers": 1.0},
		nil,
	}

	c := New()
	c.PrimeFromArray(rows)

	if _, ok := c.GetUser("U1"); !ok {
		t.Error("U1 should be cached as a user")
	}
	if _, ok := c.GetUser("U2"); ok {
		t.Error("U2 lacks qrId and must not be cached")
	}
	if _, ok := c.GetSurvey("S1"); !ok {
		t.Error("S1 should be cached as a survey")
	}
	if _, ok := c.GetQuizByCompositeKey("QR2|2024-01-15T10:00:00Z"); !ok {
		t.Error("QR2 should be cached as a quiz")
	}

	_, userOK := c.GetUser("U3")
	_, surveyOK := c.GetSurvey("S3")
	_, quizOK := c.GetQuizByCompositeKey("QR3|2024-01-16T00:00:00Z")
	if !userOK || !surveyOK || !quizOK {
		t.Errorf("multi-shape row: user %v survey %v quiz %v", userOK, surveyOK, quizOK)
	}

	users, surveys, quizzes := c.Len()
	if users != 2 || surveys != 2 || quizzes != 2 {
		t.Errorf("sizes = %d %d %d, want 2 2 2", users, surveys, quizzes)
	}
}
