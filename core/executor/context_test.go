package executor

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"graphd/core"
	"graphd/core/plan"
)

func TestBaseContextIsNoOp(t *testing.T) {
	var c Context = BaseContext{}
	c.QueryBegin("stmt")
	c.QueryComplete(0, nil)
	c.NodeBegin(&plan.Node{})
	c.NodeComplete(&plan.Node{}, nil, nil)
}

func TestZerologContextLogsQueryLifecycle(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	c := NewZerologContext(log)

	c.QueryBegin("MATCH ...")
	c.QueryComplete(3, nil)
	assert.Contains(t, buf.String(), "query begin")
	assert.Contains(t, buf.String(), "query complete")
	assert.Contains(t, buf.String(), `"rows":3`)
}

func TestZerologContextLogsQueryError(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	c := NewZerologContext(log)

	c.QueryBegin("MATCH ...")
	c.QueryComplete(0, errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
}

func TestZerologContextLogsNodeLifecycle(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	c := NewZerologContext(log)

	n := &plan.Node{ID: 1, Kind: plan.KindFilter}
	c.NodeBegin(n)
	ds := core.NewDataSet([]string{"x"})
	ds.Append(core.Row{core.Int(1)})
	c.NodeComplete(n, ds, nil)
	assert.Contains(t, buf.String(), "node complete")
	assert.Contains(t, buf.String(), "Filter")
}
