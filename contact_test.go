package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harikaran1729/portfolio/internal/content"
	"github.com/Harikaran1729/portfolio/internal/notify"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, m notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, m)
	return r.err
}

func validForm() url.Values {
	return url.Values{
		"name":    {"Ada Lovelace"},
		"email":   {"ada@example.com"},
		"subject": {"circuit-design"},
		"message": {"I'd like to talk about an FPGA project."},
	}
}

func TestSubmitContact_Success(t *testing.T) {
	n := &recordingNotifier{}
	ts := newTestServer(t, withNotifier(n))

	w := ts.postForm("/contact", validForm())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Message sent successfully!")
	// The empty form comes back on its own a few seconds later.
	assert.Contains(t, w.Body.String(), `hx-get="/contact-form" hx-trigger="load delay:3s" hx-swap="outerHTML"`)

	msgs, err := ts.db.ListMessages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	m := msgs[0]
	assert.Equal(t, "Ada Lovelace", m.Name)
	assert.Equal(t, "circuit-design", m.Subject)
	assert.True(t, m.Delivered)
	assert.Len(t, m.HashedIP, 16)
	assert.NotContains(t, m.HashedIP, "192.0.2.1")
	assert.Contains(t, w.Body.String(), m.Reference)

	require.Len(t, n.sent, 1)
	assert.Equal(t, "Circuit Design", n.sent[0].Subject, "topic label is sent, not the value")
	assert.Equal(t, m.Reference, n.sent[0].Reference)
}

func TestSubmitContact_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(url.Values)
		field string
	}{
		{"missing name", func(v url.Values) { v.Set("name", "  ") }, "name"},
		{"long name", func(v url.Values) { v.Set("name", strings.Repeat("x", maxNameLen+1)) }, "name"},
		{"bad email", func(v url.Values) { v.Set("email", "not-an-email") }, "email"},
		{"display name email", func(v url.Values) { v.Set("email", "Ada <ada@example.com>") }, "email"},
		{"unknown topic", func(v url.Values) { v.Set("subject", "crypto") }, "subject"},
		{"missing topic", func(v url.Values) { v.Del("subject") }, "subject"},
		{"missing message", func(v url.Values) { v.Set("message", "") }, "message"},
		{"long message", func(v url.Values) { v.Set("message", strings.Repeat("é", maxMessageLen+1)) }, "message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &recordingNotifier{}
			ts := newTestServer(t, withNotifier(n))

			form := validForm()
			tt.edit(form)
			w := ts.postForm("/contact", form)

			require.Equal(t, http.StatusUnprocessableEntity, w.Code)
			body := w.Body.String()
			assert.Contains(t, body, `data-error="`+tt.field+`"`)
			assert.Contains(t, body, `<form id="contact-form"`)

			msgs, err := ts.db.ListMessages(context.Background(), 10)
			require.NoError(t, err)
			assert.Empty(t, msgs)
			assert.Empty(t, n.sent)
		})
	}
}

func TestSubmitContact_KeepsInputOnError(t *testing.T) {
	ts := newTestServer(t)

	form := validForm()
	form.Set("email", "nope")
	w := ts.postForm("/contact", form)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `value="Ada Lovelace"`)
	assert.Contains(t, body, `<option value="circuit-design" selected>`)
	assert.Contains(t, body, "FPGA project.</textarea>")
}

func TestSubmitContact_DeliveryFailureKeepsMessage(t *testing.T) {
	n := &recordingNotifier{err: errors.New("smtp down")}
	ts := newTestServer(t, withNotifier(n))

	w := ts.postForm("/contact", validForm())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "there was an error sending your message")
	assert.NotContains(t, w.Body.String(), "smtp down")

	msgs, err := ts.db.ListMessages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.False(t, msgs[0].Delivered)
}

func TestContactFormData_Validate(t *testing.T) {
	cc := content.Default().Contact

	f := contactFormData{Name: "Grace", Email: "grace@example.com", Subject: "other", Message: "hi"}
	assert.True(t, f.validate(cc))
	assert.Nil(t, f.Errors)

	f = contactFormData{}
	assert.False(t, f.validate(cc))
	assert.Equal(t, map[string]string{
		"name":    "Please tell me your name.",
		"email":   "An email address is required.",
		"subject": "Please pick a topic.",
		"message": "A message is required.",
	}, f.Errors)

	// Lengths count runes, not bytes.
	f = contactFormData{Name: strings.Repeat("ü", maxNameLen), Email: "grace@example.com", Subject: "other", Message: strings.Repeat("é", maxMessageLen)}
	assert.True(t, f.validate(cc), f.Errors)

	f = contactFormData{Name: "Grace", Email: "grace@example.com", Subject: "other", Message: strings.Repeat("é", maxMessageLen+1)}
	assert.False(t, f.validate(cc))
	assert.Equal(t, "Please keep the message under 5000 characters.", f.Errors["message"])
}
