package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Harikaran1729/portfolio/internal/content"
	"github.com/Harikaran1729/portfolio/internal/notify"
	"github.com/Harikaran1729/portfolio/internal/store"
)

// Limits in runes; the binding tags below repeat them.
const (
	maxNameLen    = 100
	maxMessageLen = 5000
)

// contactFormData is the submitted form, re-rendered on validation errors so
// the visitor does not lose what they typed.
type contactFormData struct {
	Name    string `binding:"required,max=100"`
	Email   string `binding:"required,email"`
	Subject string `binding:"required"`
	Message string `binding:"required,max=5000"`
	Errors  map[string]string
}

// fieldErrors maps "<field>.<failed tag>" to what the visitor sees.
var fieldErrors = map[string]string{
	"name.required":    "Please tell me your name.",
	"name.max":         "That name is a bit long.",
	"email.required":   "An email address is required.",
	"email.email":      "That does not look like an email address.",
	"subject.required": "Please pick a topic.",
	"message.required": "A message is required.",
	"message.max":      "Please keep the message under 5000 characters.",
}

func bindContactForm(c *gin.Context) contactFormData {
	return contactFormData{
		Name:    strings.TrimSpace(c.PostForm("name")),
		Email:   strings.TrimSpace(c.PostForm("email")),
		Subject: strings.TrimSpace(c.PostForm("subject")),
		Message: strings.TrimSpace(c.PostForm("message")),
	}
}

// validate fills f.Errors keyed by field name and reports whether the form is
// acceptable. Topics are checked against the live content, the rest through
// gin's validator.
func (f *contactFormData) validate(cc content.Contact) bool {
	errs := map[string]string{}

	var ve validator.ValidationErrors
	if errors.As(binding.Validator.ValidateStruct(f), &ve) {
		for _, fe := range ve {
			field := strings.ToLower(fe.Field())
			errs[field] = fieldErrors[field+"."+fe.Tag()]
		}
	}

	if _, ok := errs["subject"]; !ok && !cc.HasTopic(f.Subject) {
		errs["subject"] = "Please pick one of the listed topics."
	}

	if len(errs) > 0 {
		f.Errors = errs
		return false
	}
	return true
}

// Handle contact form submission with HTMX
func (s *server) submitContact(c *gin.Context) {
	ctx, span := s.tel.Tracer().Start(c.Request.Context(), "contact.submit")
	defer span.End()

	p := s.content.Get()
	form := bindContactForm(c)
	if !form.validate(p.Contact) {
		span.SetAttributes(attribute.Int("contact.invalid_fields", len(form.Errors)))
		c.HTML(http.StatusUnprocessableEntity, "contact-form.html", gin.H{
			"p":    p,
			"form": form,
		})
		return
	}

	msg := &store.Message{
		Name:     form.Name,
		Email:    form.Email,
		Subject:  form.Subject,
		Body:     form.Message,
		HashedIP: s.admin.hashIP(c.ClientIP()),
	}
	if err := s.store.SaveMessage(ctx, msg); err != nil {
		s.log.Error("contact.save_failed", "error", err)
		span.SetStatus(codes.Error, "save failed")
		c.HTML(http.StatusInternalServerError, "contact-error.html", gin.H{
			"error": "Sorry, there was an error sending your message. Please try again later.",
		})
		return
	}
	span.SetAttributes(attribute.String("contact.reference", msg.Reference))

	err := s.notifier.Notify(ctx, notify.Message{
		Reference: msg.Reference,
		Name:      msg.Name,
		Email:     msg.Email,
		Subject:   p.Contact.TopicLabel(msg.Subject),
		Body:      msg.Body,
	})
	if err != nil {
		// The message stays stored as undelivered and shows up in the admin area.
		s.log.Warn("contact.delivery_failed", "reference", msg.Reference, "error", err)
		span.RecordError(err)
		c.HTML(http.StatusOK, "contact-error.html", gin.H{
			"error": "Sorry, there was an error sending your message. Please try again later.",
		})
		return
	}

	if err := s.store.MarkDelivered(ctx, msg.Reference); err != nil {
		s.log.Warn("contact.mark_delivered_failed", "reference", msg.Reference, "error", err)
	}
	s.log.Info("contact.received", "reference", msg.Reference, "subject", msg.Subject)

	c.HTML(http.StatusOK, "contact-success.html", gin.H{
		"success":   "Message sent successfully! I'll get back to you soon.",
		"reference": msg.Reference,
	})
}
