package executor

import (
	"time"

	"github.com/rs/zerolog"

	"graphd/core"
	"graphd/core/plan"
)

// Context is the scheduler's annotation-hook interface, grounded on the
// teacher's executor/context.go Context (QueryBegin/ExecutePhase/...),
// generalized from Datalog-phase hooks to plan-operator hooks: every
// node's execution is wrapped by NodeBegin/NodeComplete instead of one
// hook per relation-algebra operation, since this runtime has a single
// Node shape rather than the teacher's many relation-transform call
// sites.
type Context interface {
	QueryBegin(statementSummary string)
	QueryComplete(rowCount int, err error)
	NodeBegin(n *plan.Node)
	NodeComplete(n *plan.Node, out *core.DataSet, err error)
}

// BaseContext is a zero-overhead no-op implementation, the default when
// no instrumentation is requested (mirrors the teacher's BaseContext).
type BaseContext struct{}

func (BaseContext) QueryBegin(string)                             {}
func (BaseContext) QueryComplete(int, error)                      {}
func (BaseContext) NodeBegin(*plan.Node)                          {}
func (BaseContext) NodeComplete(*plan.Node, *core.DataSet, error) {}

// ZerologContext logs query and per-node lifecycle events through a
// zerolog.Logger, the instrumented counterpart to BaseContext — grounded
// on the teacher's AnnotatedContext wrapping an annotations.Collector,
// generalized to structured log events instead of a custom annotation
// tree.
type ZerologContext struct {
	log      zerolog.Logger
	start    time.Time
	nodeTime map[plan.NodeRef]time.Time
}

// NewZerologContext builds an instrumented Context logging through log.
func NewZerologContext(log zerolog.Logger) *ZerologContext {
	return &ZerologContext{log: log, nodeTime: make(map[plan.NodeRef]time.Time)}
}

func (c *ZerologContext) QueryBegin(statementSummary string) {
	c.start = time.Now()
	c.log.Debug().Str("statement", statementSummary).Msg("query begin")
}

func (c *ZerologContext) QueryComplete(rowCount int, err error) {
	ev := c.log.Debug()
	if err != nil {
		ev = c.log.Error().Err(err)
	}
	ev.Int("rows", rowCount).Dur("elapsed", time.Since(c.start)).Msg("query complete")
}

func (c *ZerologContext) NodeBegin(n *plan.Node) {
	c.nodeTime[n.ID] = time.Now()
}

func (c *ZerologContext) NodeComplete(n *plan.Node, out *core.DataSet, err error) {
	elapsed := time.Since(c.nodeTime[n.ID])
	rows := 0
	if out != nil {
		rows = out.Size()
	}
	ev := c.log.Debug()
	if err != nil {
		ev = c.log.Warn().Err(err)
	}
	ev.Uint64("node", uint64(n.ID)).Str("kind", n.Kind.String()).Int("rows", rows).
		Dur("elapsed", elapsed).Msg("node complete")
}
