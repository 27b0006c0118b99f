package console

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-console/internal/models"
	"github.com/noah-isme/campus-admin-console/pkg/storage"
)

// Shared carries the collaborators every controller uses.
type Shared struct {
	Validate *validator.Validate
	Logger   *zap.Logger
}

func (s Shared) withDefaults() Shared {
	if s.Validate == nil {
		s.Validate = NewValidator()
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	return s
}

func (s Shared) logger() *zap.Logger { return s.withDefaults().Logger }

// Stores groups the data stores of every table.
type Stores struct {
	Students      Store[models.Student, models.StudentDraft]
	Instructors   Store[models.Instructor, models.InstructorDraft]
	Staff         Store[models.Staff, models.StaffDraft]
	Courses       Store[models.Course, models.CourseDraft]
	Classes       Store[models.Class, models.ClassDraft]
	Gallery       Store[models.GalleryItem, models.GalleryDraft]
	Announcements Store[models.Announcement, models.AnnouncementDraft]
	KidsCamp      Store[models.KidsCamp, models.KidsCampDraft]
	Settings      Store[models.Setting, models.SettingDraft]
	Functions     Store[models.Function, models.FunctionDraft]
	Participants  ParticipantStore
	SocialService Store[models.SocialService, models.SocialServiceDraft]
	ServiceMedia  ServiceMediaStore
	Security      SecurityStore
	Stats         StatsSource
	Prober        TableProber
}

// Options configures a Console.
type Options struct {
	Auth           AuthProvider
	AdminEmail     string
	Stores         Stores
	Objects        storage.ObjectStore
	UploadObserver UploadObserver
	Feed           ChangeFeed
	Cache          StatsCache
	CacheTTL       time.Duration
	Validate       *validator.Validate
	Logger         *zap.Logger
}

// Console is the state of the administration console for the single admin.
type Console struct {
	Gate *SessionGate

	Students      *Controller[models.Student, models.StudentDraft]
	Instructors   *Controller[models.Instructor, models.InstructorDraft]
	Staff         *Controller[models.Staff, models.StaffDraft]
	Courses       *Controller[models.Course, models.CourseDraft]
	Classes       *Controller[models.Class, models.ClassDraft]
	Gallery       *Controller[models.GalleryItem, models.GalleryDraft]
	Announcements *Controller[models.Announcement, models.AnnouncementDraft]
	KidsCamp      *Controller[models.KidsCamp, models.KidsCampDraft]
	Settings      *Controller[models.Setting, models.SettingDraft]

	Functions     *FunctionBoard
	SocialService *SocialServiceBoard
	Security      *SecurityPanel
	Dashboard     *Dashboard

	feed    ChangeFeed
	prober  TableProber
	logger  *zap.Logger
	bridges []*Bridge
}

// New builds a console from its stores and collaborators.
func New(opts Options) (*Console, error) {
	if opts.Auth == nil {
		return nil, fmt.Errorf("console: auth provider is required")
	}
	shared := Shared{Validate: opts.Validate, Logger: opts.Logger}.withDefaults()
	s := opts.Stores
	uploader := NewUploader(opts.Objects, opts.UploadObserver, shared.Logger)

	return &Console{
		Gate:          NewSessionGate(opts.Auth, opts.AdminEmail, shared.Logger),
		Students:      NewController(StudentDefinition(), s.Students, uploader, shared.Validate, shared.Logger),
		Instructors:   NewController(InstructorDefinition(), s.Instructors, uploader, shared.Validate, shared.Logger),
		Staff:         NewController(StaffDefinition(), s.Staff, uploader, shared.Validate, shared.Logger),
		Courses:       NewController(CourseDefinition(), s.Courses, uploader, shared.Validate, shared.Logger),
		Classes:       NewController(ClassDefinition(), s.Classes, uploader, shared.Validate, shared.Logger),
		Gallery:       NewController(GalleryDefinition(), s.Gallery, uploader, shared.Validate, shared.Logger),
		Announcements: NewController(AnnouncementDefinition(), s.Announcements, uploader, shared.Validate, shared.Logger),
		KidsCamp:      NewController(KidsCampDefinition(), s.KidsCamp, uploader, shared.Validate, shared.Logger),
		Settings:      NewController(SettingDefinition(), s.Settings, uploader, shared.Validate, shared.Logger),
		Functions:     NewFunctionBoard(s.Functions, s.Participants, uploader, shared),
		SocialService: NewSocialServiceBoard(s.SocialService, s.ServiceMedia, uploader, shared),
		Security:      NewSecurityPanel(s.Security, shared.Logger),
		Dashboard:     NewDashboard(s.Stats, opts.Cache, opts.CacheTTL, shared.Logger),
		feed:          opts.Feed,
		prober:        s.Prober,
		logger:        shared.Logger,
	}, nil
}

// watchable is a list that may follow realtime changes.
type watchable interface {
	Refresher
	Table() string
	Realtime() bool
}

func (c *Console) lists() []watchable {
	return []watchable{
		c.Students, c.Instructors, c.Staff, c.Courses, c.Classes, c.Gallery,
		c.Announcements, c.KidsCamp, c.Settings,
		c.Functions.Functions, c.Functions.Participants,
		c.SocialService.Services, c.SocialService.Media,
	}
}

// Start restores the session, loads every list and subscribes to changes.
func (c *Console) Start(ctx context.Context) error {
	c.Gate.Load(ctx)

	for _, l := range c.lists() {
		if err := l.Refresh(ctx); err != nil {
			c.logger.Warn("initial load failed", zap.String("table", l.Table()), zap.Error(err))
		}
	}
	if _, err := c.Dashboard.Load(ctx); err != nil {
		c.logger.Warn("initial dashboard load failed", zap.Error(err))
	}

	if c.feed == nil {
		return nil
	}
	for _, l := range c.lists() {
		if !l.Realtime() {
			continue
		}
		if err := c.watch(l, l.Table()); err != nil {
			return err
		}
	}
	if err := c.watch(c.Dashboard, DashboardTables...); err != nil {
		return err
	}
	return c.watch(c.Security, SecurityTable)
}

func (c *Console) watch(r Refresher, tables ...string) error {
	bridge, err := Watch(c.feed, r, tables...)
	if err != nil {
		return err
	}
	c.bridges = append(c.bridges, bridge)
	return nil
}

// SelfTest probes the expected tables.
func (c *Console) SelfTest(ctx context.Context) []models.TableProbe {
	return RunSelfTest(ctx, c.prober)
}

// Close releases every subscription.
func (c *Console) Close() {
	for _, b := range c.bridges {
		b.Close()
	}
	c.bridges = nil
	c.Gate.Close()
}
