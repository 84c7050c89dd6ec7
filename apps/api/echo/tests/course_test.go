package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursebox/backend/core/coursecontent"
	"github.com/coursebox/backend/core/dashboard"
	"github.com/coursebox/backend/core/exam"
	"github.com/coursebox/backend/core/examresult"
	"github.com/coursebox/backend/core/examtopic"
	"github.com/coursebox/backend/core/lesson"
)

const examBody = `{
	"title": "Fractions",
	"topic": "Maths",
	"passing_score": 50,
	"questions": [
		{"question": "1/2 + 1/2?", "options": ["1", "2"], "correct_answer": 0},
		{"question": "1/4 + 1/4?", "options": ["1/2", "1/8", "2/4"], "correct_answer": 0}
	]
}`

func Test_lessonApi(t *testing.T) {
	e := setup(t)
	adminToken := getToken(t, e.conf, superAdmin)
	learnerToken := e.approvedToken(t, "ada@example.com")

	create := func(body string) lesson.Lesson {
		rec := e.do(http.MethodPost, "/api/lessons", adminToken, []byte(body))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var l lesson.Lesson
		unmarshal(t, rec, &l)
		return l
	}
	intro := create(`{"title": "Intro", "topic": "Basics", "order": 2}`)
	first := create(`{"title": "Welcome", "topic": "Basics", "order": 1, "attachments": [{"title": "Slides", "file_url": "https://cdn.example.com/s.pdf", "type": "pdf"}]}`)
	create(`{"title": "Algebra", "topic": "Advanced", "order": 1}`)
	assert.Equal(t, superAdmin, intro.CreatedBy)
	assert.Len(t, first.Attachments, 1)

	t.Run("list in display order", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/lessons", learnerToken)
		require.Equal(t, http.StatusOK, rec.Code)
		var lessons []lesson.Lesson
		unmarshal(t, rec, &lessons)
		titles := make([]string, 0, len(lessons))
		for _, l := range lessons {
			titles = append(titles, l.Title)
		}
		assert.Equal(t, []string{"Algebra", "Welcome", "Intro"}, titles)
	})

	t.Run("filter by topic with ordering", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/lessons?topic=Basics&ordering=-order", learnerToken)
		require.Equal(t, http.StatusOK, rec.Code)
		var lessons []lesson.Lesson
		unmarshal(t, rec, &lessons)
		require.Len(t, lessons, 2)
		assert.Equal(t, intro.ID, lessons[0].ID)
		assert.Equal(t, first.ID, lessons[1].ID)
	})

	t.Run("topics", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/lessons/topics", learnerToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `["Advanced", "Basics"]`, rec.Body.String())
	})

	runHTTPTests(t, e, []httpTest{
		{
			name:     "blank title",
			method:   http.MethodPost,
			path:     "/api/lessons",
			body:     []byte(`{"title": "  "}`),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"title": "this field cannot be blank"}`),
		},
		{
			name:     "wrong field type",
			method:   http.MethodPost,
			path:     "/api/lessons",
			body:     []byte(`{"title": "T", "order": "first"}`),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed body",
			method:   http.MethodPost,
			path:     "/api/lessons",
			body:     []byte(`{"title": `),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "malformed request body"}),
		},
		{
			name:     "learners cannot create",
			method:   http.MethodPost,
			path:     "/api/lessons",
			body:     []byte(`{"title": "Mine"}`),
			token:    learnerToken,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "get unknown",
			method:   http.MethodGet,
			path:     "/api/lessons/nope",
			token:    learnerToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "update unknown",
			method:   http.MethodPut,
			path:     "/api/lessons/nope",
			body:     []byte(`{"title": "X"}`),
			token:    adminToken,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "change id",
			method:   http.MethodPut,
			path:     "/api/lessons/" + intro.ID,
			body:     []byte(`{"id": "other"}`),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "empty patch",
			method:   http.MethodPut,
			path:     "/api/lessons/" + intro.ID,
			body:     []byte(`{}`),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "no fields to update"}),
		},
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		rec := e.do(http.MethodPut, "/api/lessons/"+first.ID, adminToken, []byte(`{"order": 5, "created_by": "mallory@example.com"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var l lesson.Lesson
		unmarshal(t, rec, &l)
		assert.Equal(t, 5, l.Order)
		assert.Equal(t, "Welcome", l.Title)
		assert.Len(t, l.Attachments, 1)
		assert.Equal(t, superAdmin, l.CreatedBy)
		assert.True(t, l.UpdatedDate.After(first.UpdatedDate))
	})

	t.Run("delete", func(t *testing.T) {
		rec := e.do(http.MethodDelete, "/api/lessons/"+intro.ID, adminToken)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		rec = e.do(http.MethodGet, "/api/lessons/"+intro.ID, adminToken)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_examApi_submit(t *testing.T) {
	e := setup(t)
	adminToken := getToken(t, e.conf, superAdmin)
	adaToken := e.approvedToken(t, "ada@example.com")
	bobToken := e.approvedToken(t, "bob@example.com")

	rec := e.do(http.MethodPost, "/api/exams", adminToken, []byte(examBody))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ex exam.Exam
	unmarshal(t, rec, &ex)

	runHTTPTests(t, e, []httpTest{
		{
			name:     "invalid correct answer",
			method:   http.MethodPost,
			path:     "/api/exams",
			body:     []byte(`{"title": "Bad", "questions": [{"question": "Q", "options": ["a", "b"], "correct_answer": 2}]}`),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"questions[0].correct_answer": "correct answer must be one of the options"}`),
		},
		{
			name:     "too few answers",
			method:   http.MethodPost,
			path:     "/api/exams/" + ex.ID + "/submit",
			body:     []byte(`{"answers": [0]}`),
			token:    adaToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"answers": "expected 2 answers, got 1"}`),
		},
		{
			name:     "unknown exam",
			method:   http.MethodPost,
			path:     "/api/exams/nope/submit",
			body:     []byte(`{"answers": [0, 0]}`),
			token:    adaToken,
			wantCode: http.StatusNotFound,
		},
	})

	submit := func(token, answers string) examresult.Submission {
		rec := e.do(http.MethodPost, "/api/exams/"+ex.ID+"/submit", token, []byte(`{"answers": `+answers+`}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var sub examresult.Submission
		unmarshal(t, rec, &sub)
		return sub
	}

	first := submit(adaToken, `[1, 1]`)
	assert.Equal(t, 0, first.Result.Score)
	assert.False(t, first.Passed)
	assert.Equal(t, "ada@example.com", first.Result.CreatedBy)

	retry := submit(adaToken, `[0, 1]`)
	assert.Equal(t, 50, retry.Result.Score)
	assert.True(t, retry.Passed)
	assert.Equal(t, first.Result.ID, retry.Result.ID)

	submit(bobToken, `[0, 0]`)

	t.Run("learners see their own results", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/exam-results", adaToken)
		require.Equal(t, http.StatusOK, rec.Code)
		var results []examresult.ExamResult
		unmarshal(t, rec, &results)
		require.Len(t, results, 1)
		assert.Equal(t, []int{0, 1}, results[0].Answers)

		// a created_by filter cannot widen the view
		rec = e.do(http.MethodGet, "/api/exam-results?created_by=bob@example.com", adaToken)
		unmarshal(t, rec, &results)
		assert.Len(t, results, 1)
	})

	t.Run("super-admin sees everyone", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/exam-results/latest", adminToken)
		require.Equal(t, http.StatusOK, rec.Code)
		var results []examresult.ExamResult
		unmarshal(t, rec, &results)
		assert.Len(t, results, 2)

		rec = e.do(http.MethodGet, "/api/exam-results?exam_id="+ex.ID+"&ordering=-score", adminToken)
		unmarshal(t, rec, &results)
		require.Len(t, results, 2)
		assert.Equal(t, 100, results[0].Score)

		rec = e.do(http.MethodGet, "/api/exam-results?created_by=%20Ada@Example.COM", adminToken)
		require.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &results)
		require.Len(t, results, 1)
		assert.Equal(t, "ada@example.com", results[0].CreatedBy)
	})

	t.Run("results can be corrected and removed", func(t *testing.T) {
		rec := e.do(http.MethodPut, "/api/exam-results/"+retry.Result.ID, adminToken, []byte(`{"score": 75}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		rec = e.do(http.MethodPut, "/api/exam-results/"+retry.Result.ID, adaToken, []byte(`{"score": 100}`))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = e.do(http.MethodDelete, "/api/exam-results/"+retry.Result.ID, adminToken)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		rec = e.do(http.MethodGet, "/api/exam-results/latest", adaToken)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func Test_courseContentApi(t *testing.T) {
	e := setup(t)
	adminToken := getToken(t, e.conf, superAdmin)
	learnerToken := e.approvedToken(t, "ada@example.com")

	rec := e.do(http.MethodGet, "/api/course-content", learnerToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(http.MethodPut, "/api/course-content", learnerToken, []byte(`{"title": "Mine"}`))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPut, "/api/course-content", adminToken, []byte(`{"title": "Intro to Go", "description": "Eight weeks"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = e.do(http.MethodPut, "/api/course-content", adminToken, []byte(`{"description": "Ten weeks"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(http.MethodGet, "/api/course-content", learnerToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var content coursecontent.CourseContent
	unmarshal(t, rec, &content)
	assert.Equal(t, "Intro to Go", content.Title)
	assert.Equal(t, "Ten weeks", content.Description)
	assert.Equal(t, superAdmin, content.UpdatedBy)
}

func Test_examTopicApi(t *testing.T) {
	e := setup(t)
	adminToken := getToken(t, e.conf, superAdmin)
	learnerToken := e.approvedToken(t, "ada@example.com")

	rec := e.do(http.MethodPost, "/api/exam-topics", adminToken, []byte(`{"label": "Maths"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var maths examtopic.Topic
	unmarshal(t, rec, &maths)

	runHTTPTests(t, e, []httpTest{
		{
			name:     "duplicate label",
			method:   http.MethodPost,
			path:     "/api/exam-topics",
			body:     []byte(`{"label": "MATHS"}`),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"label": examtopic.ErrLabelExists.Error()}),
		},
		{
			name:     "blank label",
			method:   http.MethodPost,
			path:     "/api/exam-topics",
			body:     []byte(`{"label": ""}`),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"label": "this field cannot be blank"}`),
		},
		{
			name:     "learners list",
			method:   http.MethodGet,
			path:     "/api/exam-topics",
			token:    learnerToken,
			wantCode: http.StatusOK,
		},
		{
			name:     "learners cannot delete",
			method:   http.MethodDelete,
			path:     "/api/exam-topics/" + maths.ID,
			token:    learnerToken,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "delete",
			method:   http.MethodDelete,
			path:     "/api/exam-topics/" + maths.ID,
			token:    adminToken,
			wantCode: http.StatusNoContent,
		},
		{
			name:     "delete unknown",
			method:   http.MethodDelete,
			path:     "/api/exam-topics/" + maths.ID,
			token:    adminToken,
			wantCode: http.StatusNotFound,
		},
	})
}

func Test_dashboardApi(t *testing.T) {
	e := setup(t)
	adminToken := getToken(t, e.conf, superAdmin)
	adaToken := e.approvedToken(t, "ada@example.com")

	rec := e.do(http.MethodPost, "/api/exams", adminToken, []byte(examBody))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ex exam.Exam
	unmarshal(t, rec, &ex)
	rec = e.do(http.MethodPost, "/api/lessons", adminToken, []byte(`{"title": "Welcome"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	t.Run("learner without results", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/dashboard", adaToken)
		require.Equal(t, http.StatusOK, rec.Code)
		var stats dashboard.LearnerStats
		unmarshal(t, rec, &stats)
		assert.Equal(t, 1, stats.TotalLessons)
		assert.Equal(t, 1, stats.AvailableExams)
		assert.Equal(t, 0, stats.ExamsTaken)
		assert.Nil(t, stats.AverageScore)
	})

	rec = e.do(http.MethodPost, "/api/exams/"+ex.ID+"/submit", adaToken, []byte(`{"answers": [0, 0]}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	t.Run("learner", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/dashboard", adaToken)
		var stats dashboard.LearnerStats
		unmarshal(t, rec, &stats)
		assert.Equal(t, 1, stats.ExamsTaken)
		assert.Equal(t, 1, stats.Passed)
		require.NotNil(t, stats.AverageScore)
		assert.Equal(t, 100.0, *stats.AverageScore)
	})

	t.Run("admin", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/api/dashboard", adminToken)
		require.Equal(t, http.StatusOK, rec.Code)
		var stats dashboard.AdminStats
		unmarshal(t, rec, &stats)
		assert.Equal(t, 1, stats.TotalUsers)
		assert.Equal(t, 1, stats.Results.ExamsTaken)
	})
}
