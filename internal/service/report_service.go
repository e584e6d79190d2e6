package service

import (
	"errors"
	"sort"
	"time"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"

	"gorm.io/gorm"
)

type ReportService struct {
	QuizRepo   *repository.QuizRepository
	ResultRepo *repository.ResultRepository
	UserRepo   *repository.UserRepository
}

func NewReportService(quizRepo *repository.QuizRepository, resultRepo *repository.ResultRepository, userRepo *repository.UserRepository) *ReportService {
	return &ReportService{
		QuizRepo:   quizRepo,
		ResultRepo: resultRepo,
		UserRepo:   userRepo,
	}
}

// TopParticipant 测验内最高分获得者；并列时先提交者胜出
type TopParticipant struct {
	UserID uint    `json:"userId"`
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
}

// QuizReport 单个测验的成绩面板
type QuizReport struct {
	QuizID         uint            `json:"quizId"`
	Title          string          `json:"title"`
	TotalAttempts  int             `json:"totalAttempts"`
	AverageScore   float64         `json:"averageScore"`
	PassRate       float64         `json:"passRate"`
	TopParticipant *TopParticipant `json:"topParticipant"`
	Attempts       []model.Result  `json:"attempts"`
}

// QuizReport builds the per-quiz dashboard. Only the creator and admins
// may see it; an attempt-free quiz reports zero averages and a null top
// participant rather than an error.
func (s *ReportService) QuizReport(quizID, requesterID uint, isAdmin bool) (*QuizReport, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if !isAdmin && quiz.CreatorID != requesterID {
		return nil, util.ErrPermissionDenied
	}

	results, err := s.ResultRepo.FindByQuiz(quizID)
	if err != nil {
		return nil, err
	}

	report := &QuizReport{
		QuizID:   quiz.ID,
		Title:    quiz.Title,
		Attempts: results,
	}
	report.AverageScore, report.PassRate, report.TopParticipant = summarizeAttempts(results)
	report.TotalAttempts = len(results)
	return report, nil
}

// summarizeAttempts 汇总一组成绩。输入按提交时间升序，
// 并列最高分时最早提交者胜出；没有成绩时 top 为 nil
func summarizeAttempts(results []model.Result) (averageScore, passRate float64, top *TopParticipant) {
	if len(results) == 0 {
		return 0, 0, nil
	}

	var sum float64
	var passed int
	for i := range results {
		r := &results[i]
		sum += r.Score
		if r.Passed() {
			passed++
		}
		if top == nil || r.Score > top.Score {
			name := ""
			if r.User != nil {
				name = r.User.Name
			}
			top = &TopParticipant{UserID: r.UserID, Name: name, Score: r.Score}
		}
	}

	averageScore = sum / float64(len(results))
	passRate = float64(passed) / float64(len(results)) * 100
	return averageScore, passRate, top
}

// WeeklyActivity 某一周的注册数与提交数
type WeeklyActivity struct {
	Week        time.Time `json:"week"`
	Signups     int64     `json:"signups"`
	Completions int64     `json:"completions"`
}

// AdminReport 平台总览面板
type AdminReport struct {
	TotalUsers     int64                           `json:"totalUsers"`
	TotalQuizzes   int64                           `json:"totalQuizzes"`
	TotalQuestions int64                           `json:"totalQuestions"`
	TotalAttempts  int64                           `json:"totalAttempts"`
	AverageScore   float64                         `json:"averageScore"`
	TopQuizzes     []repository.QuizScoreAggregate `json:"topQuizzes"`
	QuestionTypes  []repository.QuestionTypeCount  `json:"questionTypes"`
	WeeklyActivity []WeeklyActivity                `json:"weeklyActivity"`
	RecentAttempts []model.Result                  `json:"recentAttempts"`
}

func (s *ReportService) AdminReport() (*AdminReport, error) {
	report := &AdminReport{}

	var err error
	if report.TotalUsers, err = s.UserRepo.Count(); err != nil {
		return nil, err
	}
	if report.TotalQuizzes, err = s.QuizRepo.Count(); err != nil {
		return nil, err
	}
	if report.TotalQuestions, err = s.QuizRepo.CountQuestions(); err != nil {
		return nil, err
	}
	if report.TotalAttempts, err = s.ResultRepo.Count(); err != nil {
		return nil, err
	}
	if report.AverageScore, err = s.ResultRepo.AverageScore(); err != nil {
		return nil, err
	}
	if report.TopQuizzes, err = s.ResultRepo.TopQuizzesByAverageScore(5); err != nil {
		return nil, err
	}
	if report.QuestionTypes, err = s.QuizRepo.CountQuestionsByType(); err != nil {
		return nil, err
	}
	if report.RecentAttempts, err = s.ResultRepo.FindRecent(10); err != nil {
		return nil, err
	}

	signups, err := s.ResultRepo.CountSignupsByWeek()
	if err != nil {
		return nil, err
	}
	completions, err := s.ResultRepo.CountCompletionsByWeek()
	if err != nil {
		return nil, err
	}
	report.WeeklyActivity = mergeWeekly(signups, completions)

	return report, nil
}

// mergeWeekly 合并两路按周计数为一条时间线
func mergeWeekly(signups, completions []repository.WeeklyCount) []WeeklyActivity {
	byWeek := make(map[time.Time]*WeeklyActivity)
	for _, c := range signups {
		byWeek[c.Week] = &WeeklyActivity{Week: c.Week, Signups: c.Count}
	}
	for _, c := range completions {
		if w, ok := byWeek[c.Week]; ok {
			w.Completions = c.Count
		} else {
			byWeek[c.Week] = &WeeklyActivity{Week: c.Week, Completions: c.Count}
		}
	}

	weeks := make([]WeeklyActivity, 0, len(byWeek))
	for _, w := range byWeek {
		weeks = append(weeks, *w)
	}
	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].Week.Before(weeks[j].Week)
	})
	return weeks
}
