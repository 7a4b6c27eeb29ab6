package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"graphd/core/executor"
	"graphd/core/plan"
)

func TestEveryNonStateMachineKindIsRegistered(t *testing.T) {
	// Loop/Select/MultiOutputs are handled directly by the scheduler, not
	// through the operator registry, so they're excluded here.
	skip := map[plan.Kind]bool{plan.KindLoop: true, plan.KindSelect: true, plan.KindMultiOutputs: true}
	for k := plan.KindStart; k <= plan.KindShowX; k++ {
		if skip[k] {
			continue
		}
		_, ok := executor.DefaultRegistry.Lookup(k)
		assert.True(t, ok, "kind %s not registered", k)
	}
}
