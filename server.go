package main

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Harikaran1729/portfolio/internal/content"
	"github.com/Harikaran1729/portfolio/internal/notify"
	"github.com/Harikaran1729/portfolio/internal/reveal"
	"github.com/Harikaran1729/portfolio/internal/store"
	"github.com/Harikaran1729/portfolio/internal/telemetry"
	"github.com/Harikaran1729/portfolio/internal/typewriter"
	"github.com/Harikaran1729/portfolio/web"
)

type server struct {
	cfg      Config
	log      *slog.Logger
	content  *content.Source
	store    *store.Store
	notifier notify.Notifier
	tel      *telemetry.Provider
	admin    *adminAuth
	now      func() time.Time

	// background visitor writes; drained on shutdown
	bg sync.WaitGroup

	// streams ends every open typing stream once the server shuts down.
	streams      context.Context
	closeStreams context.CancelFunc
}

type serverDeps struct {
	Content   *content.Source
	Store     *store.Store
	Notifier  notify.Notifier
	Telemetry *telemetry.Provider
	Logger    *slog.Logger
}

func newServer(cfg Config, deps serverDeps) *server {
	tel := deps.Telemetry
	if tel == nil {
		tel = telemetry.Noop()
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	streams, closeStreams := context.WithCancel(context.Background())
	return &server{
		cfg:      cfg,
		log:      log,
		content:  deps.Content,
		store:    deps.Store,
		notifier: deps.Notifier,
		tel:      tel,
		admin:    newAdminAuth(cfg, log),
		now:      time.Now,

		streams:      streams,
		closeStreams: closeStreams,
	}
}

// newNotifier picks the contact delivery path from the config.
func newNotifier(cfg Config) notify.Notifier {
	if cfg.ContactMode == contactSMTP {
		return &notify.SMTP{
			Host:    cfg.SMTPHost,
			Port:    cfg.SMTPPort,
			User:    cfg.SMTPUser,
			Pass:    cfg.SMTPPass,
			To:      cfg.ToEmail,
			Timeout: 10 * time.Second,
			Retry:   notify.Retry{Attempts: 3, Backoff: 500 * time.Millisecond},
		}
	}
	return notify.Simulated{Delay: cfg.ContactDelay}
}

// typingConfig merges the live hero phrases into the configured timing.
func (s *server) typingConfig() typewriter.Config {
	cfg := s.cfg.Typing
	cfg.Phrases = s.content.Get().Hero.Phrases
	return cfg
}

func templateFuncs() template.FuncMap {
	funcs := reveal.FuncMap()
	funcs["icon"] = icon
	funcs["join"] = strings.Join
	return funcs
}

func loadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs()).ParseFS(web.Templates, "templates/*.html")
}

func (s *server) routes() (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), s.tel.Middleware())

	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, err
	}
	r.StaticFS("/static", http.FS(static))
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.FileFromFS("images/favicon.svg", http.FS(static))
	})

	r.Use(s.visitorTracking())

	r.GET("/", s.index)
	r.GET("/hero/typing", s.typingStream)
	r.GET("/contact-form", s.contactForm)
	r.POST("/contact", s.submitContact)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.setupAdminRoutes(r)
	return r, nil
}

// Home page route
func (s *server) index(c *gin.Context) {
	p := s.content.Get()
	c.HTML(http.StatusOK, "index.html", gin.H{
		"p":       p,
		"longest": p.Hero.Longest(),
		"year":    s.now().Year(),
		"form":    contactFormData{},
	})
}

// HTMX contact form endpoint - returns just the form HTML
func (s *server) contactForm(c *gin.Context) {
	c.HTML(http.StatusOK, "contact-form.html", gin.H{
		"p":    s.content.Get(),
		"form": contactFormData{},
	})
}

// goBackground runs fn detached from the request, bounded by a timeout.
func (s *server) goBackground(fn func(ctx context.Context)) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		fn(ctx)
	}()
}

// wait blocks until background work has finished.
func (s *server) wait() { s.bg.Wait() }
