package examresult

import (
	"github.com/coursebox/backend/core"
	"github.com/coursebox/backend/core/exam"
)

func resultKey(r ExamResult) string {
	return r.ExamID + "_" + r.CreatedBy
}

// newer reports whether a should replace b as the current result of their (exam, user) pair.
// Equal timestamps favor a, the result encountered later.
func newer(a, b ExamResult) bool {
	ar, br := a.recency(), b.recency()
	if !ar.Equal(br) {
		return ar.After(br)
	}
	return !a.CreatedDate.Before(b.CreatedDate)
}

// Latest keeps one current result per (exam, user) pair: the most recent one. Groups come out in
// the order their first result appears in results.
func Latest(results []ExamResult) []ExamResult {
	latest := make([]ExamResult, 0, len(results))
	pos := make(map[string]int, len(results))
	for _, r := range results {
		key := resultKey(r)
		i, ok := pos[key]
		if !ok {
			pos[key] = len(latest)
			latest = append(latest, r)
			continue
		}
		if newer(r, latest[i]) {
			latest[i] = r
		}
	}
	return latest
}

// Available drops results whose exam no longer exists.
func Available(results []ExamResult, examIDs map[string]bool) []ExamResult {
	kept := make([]ExamResult, 0, len(results))
	for _, r := range results {
		if examIDs[r.ExamID] {
			kept = append(kept, r)
		}
	}
	return kept
}

// Stats computes the statistics of user over the current exams. An empty user aggregates the
// results of every user.
func Stats(exams []exam.Exam, results []ExamResult, user string) UserStats {
	byID := make(map[string]exam.Exam, len(exams))
	for _, e := range exams {
		byID[e.ID] = e
	}

	user = core.CleanString(user, true /* lower */)
	mine := make([]ExamResult, 0, len(results))
	for _, r := range results {
		if user == "" || r.CreatedBy == user {
			mine = append(mine, r)
		}
	}
	current := Latest(Available(mine, exam.IDSet(exams)))

	stats := UserStats{AvailableExams: len(exams), ExamsTaken: len(current)}
	if len(current) == 0 {
		return stats
	}
	var total int
	for _, r := range current {
		total += r.Score
		if exam.Passed(byID[r.ExamID], r.Score) {
			stats.Passed++
		}
	}
	avg := float64(total) / float64(len(current))
	stats.AverageScore = &avg
	return stats
}
