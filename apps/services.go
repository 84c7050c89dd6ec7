package apps

import (
	"github.com/coursebox/backend/core"
	"github.com/coursebox/backend/core/access"
	"github.com/coursebox/backend/core/coursecontent"
	"github.com/coursebox/backend/core/dashboard"
	"github.com/coursebox/backend/core/exam"
	"github.com/coursebox/backend/core/examresult"
	"github.com/coursebox/backend/core/examtopic"
	"github.com/coursebox/backend/core/lesson"
	"github.com/coursebox/backend/core/registereduser"
	"github.com/coursebox/backend/core/store"
)

// Services holds every domain service, built over one store.DB so they share its locks.
type Services struct {
	DB        *store.DB
	Access    *access.Controller
	Lessons   *lesson.Service
	Exams     *exam.Service
	Results   *examresult.Service
	Users     *registereduser.Service
	Content   *coursecontent.Service
	Topics    *examtopic.Service
	Dashboard *dashboard.Service
}

func NewServices(conf *core.Config, docs store.DocumentStore, mailSvc core.EmailService, logger core.Logger) *Services {
	db := store.NewDB(docs)
	svcs := &Services{
		DB:      db,
		Lessons: lesson.NewService(db),
		Exams:   exam.NewService(db),
		Users:   registereduser.NewService(db),
		Content: coursecontent.NewService(db),
		Topics:  examtopic.NewService(db),
	}
	svcs.Results = examresult.NewService(db, svcs.Exams)
	svcs.Access = access.NewController(svcs.Users, mailSvc, logger, conf.SuperAdminEmail)
	svcs.Dashboard = dashboard.NewService(svcs.Lessons, svcs.Exams, svcs.Results, svcs.Users, svcs.Content)
	return svcs
}
