package bml

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// XRSystem is the host's immersive-session facility.
type XRSystem interface {
	IsSessionSupported(ctx context.Context, mode string) (bool, error)
	RequestSession(ctx context.Context, mode, reference string) (XRSession, error)
}

// XRSession is an active immersive session.
type XRSession interface {
	Mode() string
	End() error
}

// xrSchema parses the scene's xr attribute.
var xrSchema = Fields(map[string]Property{
	"mode":      {Type: TypeString, Default: "immersive-vr"},
	"reference": {Type: TypeString, Default: "local-floor"},
})

// requestXR checks support for mode and then requests a session.
func requestXR(ctx context.Context, sys XRSystem, mode, reference string) (XRSession, error) {
	ok, err := sys.IsSessionSupported(ctx, mode)
	if err != nil {
		return nil, fmt.Errorf("check %s support: %w", mode, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", mode, ErrXRUnsupported)
	}
	sess, err := sys.RequestSession(ctx, mode, reference)
	if err != nil {
		return nil, fmt.Errorf("request %s session: %w", mode, err)
	}
	return sess, nil
}

// bootstrapXR runs on the frame after initialization. The support check and
// session request run on their own goroutine; the result is applied on a
// later frame.
func (s *Scene) bootstrapXR() {
	if !s.ready || s.xrCancel != nil || s.xrSession != nil {
		return
	}
	cfg := ParseComponent(s.el.Attr("xr").Value, xrSchema, s.log)
	mode, reference := cfg.String("mode"), cfg.String("reference")
	if s.opts.xr == nil {
		s.log.Warn("continuing without immersive session", zap.String("mode", mode), zap.Error(ErrXRUnavailable))
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.xrCancel = cancel
	sys := s.opts.xr
	go func() {
		sess, err := requestXR(ctx, sys, mode, reference)
		if s.tasks.push(func() { s.finishXR(ctx, sess, err) }) {
			return
		}
		// The scene was torn down while the request was in flight.
		if sess != nil {
			_ = sess.End()
		}
	}()
}

func (s *Scene) finishXR(ctx context.Context, sess XRSession, err error) {
	if ctx.Err() != nil || !s.ready {
		if sess != nil {
			_ = sess.End()
		}
		return
	}
	if s.xrCancel != nil {
		s.xrCancel()
		s.xrCancel = nil
	}
	if err != nil {
		s.log.Warn("continuing without immersive session", zap.Error(err))
		return
	}
	s.xrSession = sess
	s.log.Info("immersive session started", zap.String("mode", sess.Mode()))
}

// endXR cancels a pending bootstrap and ends any active session.
func (s *Scene) endXR() {
	if s.xrCancel != nil {
		s.xrCancel()
		s.xrCancel = nil
	}
	if s.xrSession != nil {
		if err := s.xrSession.End(); err != nil {
			s.log.Warn("ending immersive session", zap.Error(err))
		}
		s.xrSession = nil
	}
}
