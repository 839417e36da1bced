package visitk

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Context shared between sessions, visits and engines
type Context struct {
	Ctx         context.Context
	Log         *zerolog.Logger
	CtxComplete func()
}

// NewContext wraps ctx, logging with the global logger
func NewContext(ctx context.Context, cancelFn func()) *Context {
	logger := log.With().Logger()
	return &Context{
		Ctx:         ctx,
		Log:         &logger,
		CtxComplete: cancelFn,
	}
}

// Copy the context with a sub logger carrying the location
func (c *Context) Copy(location string) *Context {
	logger := c.Log.With().Str("location", location).Logger()
	return &Context{
		Ctx:         c.Ctx,
		Log:         &logger,
		CtxComplete: c.CtxComplete,
	}
}
