package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Harikaran1729/portfolio/internal/typewriter"
)

// typingStream serves the hero typing animation as Server-Sent Events.
//
// Each connection owns one animator. It stops when the browser goes away or
// the server shuts down, and no frame is written after that. With ?once=1 the
// stream closes after every phrase has been typed and deleted once.
func (s *server) typingStream(c *gin.Context) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	// Shutdown does not cancel running requests.
	stop := context.AfterFunc(s.streams, cancel)
	defer stop()
	cfg := s.typingConfig()
	once := c.Query("once") == "1"
	id := uuid.NewString()

	_, span := s.tel.Tracer().Start(ctx, "typing.stream")
	span.SetAttributes(
		attribute.String("stream.id", id),
		attribute.Int("typing.phrases", len(cfg.Phrases)),
	)
	defer span.End()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	if len(cfg.Phrases) == 0 {
		// Nothing to animate: report the idle frame and let the client close.
		c.SSEvent("frame", typewriter.Frame{Phase: typewriter.Idle})
		c.Writer.Flush()
		return
	}

	frames := make(chan typewriter.Frame)
	anim := typewriter.New(cfg, func(f typewriter.Frame) {
		select {
		case frames <- f:
		case <-ctx.Done():
		}
	})
	anim.Start(ctx)
	defer func() {
		// Unblock a sink waiting on frames before waiting for the loop.
		cancel()
		anim.Stop()
	}()

	s.log.Debug("typing.stream_open", "id", id, "phrases", len(cfg.Phrases))
	defer s.log.Debug("typing.stream_closed", "id", id)

	// Push headers before the start delay so the client sees the stream open.
	c.Writer.Flush()

	last := len(cfg.Phrases) - 1
	ticks := 0
	for {
		select {
		case <-ctx.Done():
			span.SetAttributes(attribute.Int("typing.ticks", ticks))
			return
		case f := <-frames:
			ticks++
			c.SSEvent("frame", f)
			c.Writer.Flush()
			if once && f.Phase == typewriter.PausedEmpty && f.Index == last {
				span.SetAttributes(attribute.Int("typing.ticks", ticks))
				return
			}
		}
	}
}
