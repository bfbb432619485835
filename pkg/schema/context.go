package schema

// ErrorHandler observes every engine-reported failure that passes through
// a processing context. Handlers are for reporting only; the error is
// still returned to the caller unchanged.
type ErrorHandler func(error)

// Context is the processing context a schema is bound to. It carries the
// storage engine used for create/load and funnels engine-reported
// failures through a user-supplied error handler instead of swallowing
// them. No error state is retained on the context itself.
type Context struct {
	engine  Engine
	handler ErrorHandler
}

// NewContext returns a processing context bound to the given engine.
// The engine may be nil for schemas that are only built and inspected
// in memory; Create and Load then fail with an EngineError.
func NewContext(engine Engine) *Context {
	return &Context{engine: engine}
}

// SetErrorHandler installs the handler invoked for every failure routed
// through this context. A nil handler disables reporting.
func (c *Context) SetErrorHandler(h ErrorHandler) {
	c.handler = h
}

// Engine returns the storage engine this context is bound to.
func (c *Context) Engine() Engine {
	return c.engine
}

// handleError dispatches the error to the installed handler and returns
// it unchanged.
func (c *Context) handleError(err error) error {
	if err != nil && c.handler != nil {
		c.handler(err)
	}
	return err
}
