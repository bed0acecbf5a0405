// admin.go - privacy-conscious visitor tracking and the admin area
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Harikaran1729/portfolio/internal/store"
)

const (
	adminCookie      = "admin_token"
	visitorRetention = 12 * 30 * 24 * time.Hour
)

// adminAuth holds the per-process session token and the salt used to hash
// visitor IPs. Both are regenerated on every start, so restarting the server
// logs the admin out and makes old hashes unlinkable to new ones.
type adminAuth struct {
	token    string
	salt     string
	username string
	password string
}

func newAdminAuth(cfg Config, log *slog.Logger) *adminAuth {
	a := &adminAuth{
		token:    generateToken(),
		salt:     generateToken(),
		username: cfg.AdminUsername,
		password: cfg.AdminPassword,
	}

	// Default credentials for development only.
	if gin.Mode() == gin.DebugMode {
		if a.username == "" {
			a.username = "admin"
			log.Warn("admin.default_username", "hint", "set ADMIN_USERNAME")
		}
		if a.password == "" {
			a.password = "admin123"
			log.Warn("admin.default_password", "hint", "set ADMIN_PASSWORD")
		}
		log.Debug("admin.token", "token", a.token)
	}
	return a
}

// enabled reports whether logging in is possible at all.
func (a *adminAuth) enabled() bool {
	return a.username != "" && a.password != ""
}

func (a *adminAuth) check(username, password string) bool {
	if !a.enabled() {
		return false
	}
	u := subtle.ConstantTimeCompare([]byte(username), []byte(a.username))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(a.password))
	return u&p == 1
}

func generateToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("generate admin token: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// Hash IP address for privacy compliance (consistent per IP within a run)
func (a *adminAuth) hashIP(ip string) string {
	h := sha256.New()
	h.Write([]byte(ip + a.salt))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Middleware to check admin authentication
func (a *adminAuth) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			if strings.HasPrefix(c.Request.URL.Path, "/admin/api/") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

var untrackedPrefixes = []string{
	"/static/",
	"/admin/",
	"/favicon",
	"/privacy",
	"/hero/typing",
	"/healthz",
}

// Privacy-conscious visitor tracking middleware
func (s *server) visitorTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		path := c.Request.URL.Path
		for _, p := range untrackedPrefixes {
			if strings.HasPrefix(path, p) {
				c.Next()
				return
			}
		}

		// Respect Do Not Track header
		if c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		v := store.Visit{
			HashedIP:  s.admin.hashIP(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
			Timestamp: s.now(),
		}
		s.goBackground(func(ctx context.Context) {
			if err := s.store.RecordVisit(ctx, v); err != nil {
				s.log.Warn("visitor.record_failed", "error", err)
			}
		})
		c.Next()
	}
}

// cleanupOldVisitors deletes visitor data past the retention window.
func (s *server) cleanupOldVisitors(ctx context.Context) {
	n, err := s.store.CleanupVisitors(ctx, s.now().Add(-visitorRetention))
	if err != nil {
		s.log.Error("visitor.cleanup_failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info("visitor.cleanup", "removed", n, "older_than", visitorRetention.String())
	}
}

// Setup all admin routes
func (s *server) setupAdminRoutes(r *gin.Engine) {
	// Privacy policy route
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title":     "Privacy Policy",
			"p":         s.content.Get(),
			"retention": "12 months",
		})
	})

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title":    "Admin Login",
			"disabled": !s.admin.enabled(),
		})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		if !s.admin.enabled() {
			c.HTML(http.StatusServiceUnavailable, "admin-login.html", gin.H{
				"title":    "Admin Login",
				"disabled": true,
			})
			return
		}
		if !s.admin.check(c.PostForm("username"), c.PostForm("password")) {
			s.log.Warn("admin.login_failed", "client", s.admin.hashIP(c.ClientIP()))
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"title": "Admin Login",
				"error": "Invalid credentials",
			})
			return
		}

		// Secure cookie (24 hours)
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(adminCookie, s.admin.token, 3600*24, "/admin", "", gin.Mode() == gin.ReleaseMode, true)
		s.log.Info("admin.login", "client", s.admin.hashIP(c.ClientIP()))
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", gin.Mode() == gin.ReleaseMode, true)
		s.log.Info("admin.logout", "client", s.admin.hashIP(c.ClientIP()))
		c.Redirect(http.StatusFound, "/admin/login")
	})

	// Protected admin routes group
	admin := r.Group("/admin")
	admin.Use(s.admin.middleware())

	admin.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context(), s.now())
		if err != nil {
			s.log.Error("admin.stats_failed", "error", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats": stats,
		})
	})

	admin.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context(), s.now())
		if err != nil {
			s.log.Error("admin.stats_failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	admin.GET("/messages", func(c *gin.Context) {
		messages, err := s.store.ListMessages(c.Request.Context(), 200)
		if err != nil {
			s.log.Error("admin.messages_failed", "error", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load messages",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-messages.html", gin.H{
			"messages": messages,
		})
	})

	admin.GET("/visitors", func(c *gin.Context) {
		visitors, err := s.store.RecentVisitors(c.Request.Context(), 200)
		if err != nil {
			s.log.Error("admin.visitors_failed", "error", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load visitors",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{
			"visitors": visitors,
		})
	})

	admin.DELETE("/messages/:ref", func(c *gin.Context) {
		ref := c.Param("ref")
		err := s.store.DeleteMessage(c.Request.Context(), ref)
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			return
		case err != nil:
			s.log.Error("admin.delete_failed", "reference", ref, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete message"})
			return
		}
		s.log.Info("admin.message_deleted", "reference", ref, "client", s.admin.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
	})

	admin.POST("/privacy/cleanup", func(c *gin.Context) {
		s.goBackground(s.cleanupOldVisitors)
		c.JSON(http.StatusAccepted, gin.H{"message": "Privacy cleanup initiated"})
	})

	admin.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context(), s.now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		s.log.Info("admin.stats_exported", "client", s.admin.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, stats)
	})
}
