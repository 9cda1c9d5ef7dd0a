package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmsis-rte/rtecore/internal/item"
	"github.com/cmsis-rte/rtecore/internal/types"
)

func newTestFactory() *item.Factory {
	return item.NewFactory(nil)
}

func buildCondition(t *testing.T, factory *item.Factory, id string, build func(cond *item.Item)) *Condition {
	t.Helper()
	cond := item.New("condition", factory)
	cond.AddAttribute("id", id, true)
	build(cond)
	cond.Construct()
	return NewCondition(cond)
}

func addExpr(t *testing.T, parent *item.Item, tag string, attrs map[string]string) {
	t.Helper()
	child := parent.CreateChild(tag)
	for k, v := range attrs {
		child.AddAttribute(k, v, true)
	}
	parent.AddChild(child)
}

func targetAttrs(kv map[string]string) *types.AttributeMap {
	m := types.NewAttributeMap()
	for k, v := range kv {
		m.Set(k, v, true)
	}
	return m
}

func TestEvaluateCondition_AcceptOnlyFulfilled(t *testing.T) {
	factory := newTestFactory()
	cond := buildCondition(t, factory, "c1", func(c *item.Item) {
		addExpr(t, c, "accept", map[string]string{"Dname": "STM32F4"})
	})
	ctx := NewContext(ModeFilter, targetAttrs(map[string]string{"Dname": "STM32F4"}), nil, nil, nil)
	assert.Equal(t, Fulfilled, EvaluateCondition(cond, ctx))
}

func TestEvaluateCondition_RequireFailingNoAccept(t *testing.T) {
	factory := newTestFactory()
	cond := buildCondition(t, factory, "c2", func(c *item.Item) {
		addExpr(t, c, "require", map[string]string{"Dname": "STM32F4"})
	})
	ctx := NewContext(ModeFilter, targetAttrs(map[string]string{"Dname": "STM32H7"}), nil, nil, nil)
	assert.Equal(t, Failed, EvaluateCondition(cond, ctx))
}

func TestEvaluateCondition_RequireFailingAcceptFulfilledRescues(t *testing.T) {
	factory := newTestFactory()
	cond := buildCondition(t, factory, "c3", func(c *item.Item) {
		addExpr(t, c, "require", map[string]string{"Dname": "STM32F4"})
		addExpr(t, c, "accept", map[string]string{"Dfamily": "STM32H7 Series"})
	})
	ctx := NewContext(ModeFilter, targetAttrs(map[string]string{
		"Dname":   "STM32H743",
		"Dfamily": "STM32H7 Series",
	}), nil, nil, nil)
	assert.Equal(t, Fulfilled, EvaluateCondition(cond, ctx))
}

func TestEvaluateCondition_DenyMatchIncompatibleInDependencyMode(t *testing.T) {
	factory := newTestFactory()
	cond := buildCondition(t, factory, "c4", func(c *item.Item) {
		addExpr(t, c, "deny", map[string]string{"Tcompiler": "GCC"})
	})
	target := targetAttrs(map[string]string{"Tcompiler": "GCC"})

	filterCtx := NewContext(ModeFilter, target, nil, nil, nil)
	assert.Equal(t, Failed, EvaluateCondition(cond, filterCtx))

	depCtx := NewContext(ModeDependency, target, nil, nil, nil)
	assert.Equal(t, Incompatible, EvaluateCondition(cond, depCtx))
}

func TestEvaluateCondition_MissingTargetAttrIsFailed(t *testing.T) {
	factory := newTestFactory()
	cond := buildCondition(t, factory, "c5", func(c *item.Item) {
		addExpr(t, c, "require", map[string]string{"Dname": "STM32F4"})
	})
	ctx := NewContext(ModeFilter, targetAttrs(nil), nil, nil, nil)
	assert.Equal(t, Failed, EvaluateCondition(cond, ctx))
}

type fakeRegistry struct {
	conds map[string]*Condition
}

func (r *fakeRegistry) Condition(id string) (*Condition, bool) {
	c, ok := r.conds[id]
	return c, ok
}

func TestEvaluateCondition_ConditionRefDenyNegatesFulfilled(t *testing.T) {
	factory := newTestFactory()
	inner := buildCondition(t, factory, "inner", func(c *item.Item) {
		addExpr(t, c, "accept", map[string]string{"Dname": "STM32F4"})
	})
	registry := &fakeRegistry{conds: map[string]*Condition{"inner": inner}}

	outer := buildCondition(t, factory, "outer", func(c *item.Item) {
		addExpr(t, c, "deny", map[string]string{"condition": "inner"})
	})

	ctx := NewContext(ModeFilter, targetAttrs(map[string]string{"Dname": "STM32F4"}), registry, nil, nil)
	require.NotNil(t, ctx.Registry)
	assert.Equal(t, Failed, EvaluateCondition(outer, ctx))
}

func TestEvaluateCondition_RecursionDetected(t *testing.T) {
	factory := newTestFactory()
	self := item.New("condition", factory)
	self.AddAttribute("id", "recursive", true)
	ref := self.CreateChild("require")
	ref.AddAttribute("condition", "recursive", true)
	self.AddChild(ref)
	self.Construct()
	cond := NewCondition(self)

	registry := &fakeRegistry{conds: map[string]*Condition{"recursive": cond}}
	ctx := NewContext(ModeFilter, targetAttrs(nil), registry, nil, nil)

	assert.Equal(t, RError, EvaluateCondition(cond, ctx))
	assert.False(t, self.IsValid())
}

func TestEvaluateCondition_DependencyShortCircuitOnFilterFailed(t *testing.T) {
	factory := newTestFactory()
	cond := buildCondition(t, factory, "c6", func(c *item.Item) {
		addExpr(t, c, "require", map[string]string{"Dname": "STM32F4"})
	})
	target := targetAttrs(map[string]string{"Dname": "STM32H7"})

	filterCtx := NewContext(ModeFilter, target, nil, nil, nil)
	depCtx := NewContext(ModeDependency, target, nil, nil, nil).WithFilterContext(filterCtx)

	assert.Equal(t, Ignored, EvaluateCondition(cond, depCtx))
}

func TestEvaluateCondition_NoExpressionsIsIgnored(t *testing.T) {
	factory := newTestFactory()
	cond := buildCondition(t, factory, "c7", func(c *item.Item) {})
	ctx := NewContext(ModeFilter, targetAttrs(nil), nil, nil, nil)
	assert.Equal(t, Ignored, EvaluateCondition(cond, ctx))
}

type fakeComponentResolver struct {
	result Result
}

func (f *fakeComponentResolver) EvaluateComponentExpr(expr *Expression, kind ExprKind) Result {
	return f.result
}

func TestEvaluateCondition_ComponentDomainIgnoredInFilterMode(t *testing.T) {
	factory := newTestFactory()
	cond := buildCondition(t, factory, "c8", func(c *item.Item) {
		addExpr(t, c, "require", map[string]string{"Cvendor": "ARM", "Cclass": "CMSIS", "Cgroup": "RTOS2"})
	})
	resolver := &fakeComponentResolver{result: Fulfilled}
	filterCtx := NewContext(ModeFilter, targetAttrs(nil), nil, resolver, nil)
	assert.Equal(t, Ignored, EvaluateCondition(cond, filterCtx))

	depCtx := NewContext(ModeDependency, targetAttrs(nil), nil, resolver, nil)
	assert.Equal(t, Fulfilled, EvaluateCondition(cond, depCtx))
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "FULFILLED", Fulfilled.String())
	assert.Equal(t, "R_ERROR", RError.String())
	assert.Equal(t, "UNDEFINED", Result(999).String())
}
