package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUsageMeter(t *testing.T) {
	t.Run("Under Limit", func(t *testing.T) {
		m := NewUsageMeter("Templates", 2, 5)
		assert.InDelta(t, 40.0, m.Percent, 0.001)
		assert.False(t, m.NearLimit)
		assert.False(t, m.Reached)
	})

	t.Run("Near Limit", func(t *testing.T) {
		m := NewUsageMeter("Templates", 4, 5)
		assert.True(t, m.NearLimit)
		assert.False(t, m.Reached)
	})

	t.Run("Reached", func(t *testing.T) {
		m := NewUsageMeter("API Keys", 2, 2)
		assert.True(t, m.NearLimit)
		assert.True(t, m.Reached)
	})

	t.Run("Over Limit Is Capped", func(t *testing.T) {
		m := NewUsageMeter("API Keys", 7, 2)
		assert.Equal(t, 100.0, m.Percent)
		assert.True(t, m.Reached)
	})

	t.Run("Unbounded", func(t *testing.T) {
		m := NewUsageMeter("SMTP Configs", 40, 0)
		assert.Zero(t, m.Percent)
		assert.False(t, m.NearLimit)
		assert.False(t, m.Reached)
	})
}

func TestPlanUsage(t *testing.T) {
	assert.Nil(t, PlanUsage(nil, LogStats{}))

	meters := PlanUsage(&Plan{TemplateLimit: 5, SMTPLimit: 1, APIKeyLimit: 2}, LogStats{TemplateCount: 1, SMTPCount: 1, APIKeyCount: 0})
	assert.Len(t, meters, 3)
	assert.Equal(t, "SMTP Configs", meters[1].Label)
	assert.True(t, meters[1].Reached)
}

func TestPlanName(t *testing.T) {
	assert.Equal(t, "Free", PlanName(nil))
	assert.Equal(t, "Free", PlanName(&Plan{}))
	assert.Equal(t, "Pro", PlanName(&Plan{Name: "Pro"}))
}

func TestResultOf(t *testing.T) {
	ok := ResultOf(3, nil)
	assert.True(t, ok.OK)
	assert.Equal(t, 3, ok.Value)

	limited := ResultOf(0, &Failure{Kind: KindPlanLimit, Status: 400, Message: "upgrade"})
	assert.False(t, limited.OK)
	assert.Equal(t, KindPlanLimit, limited.Kind)
	assert.Equal(t, "upgrade", limited.Message)

	other := ResultOf(0, errors.New("boom"))
	assert.Equal(t, KindUpstream, other.Kind)
}

func TestUserClone(t *testing.T) {
	u := &User{ID: "1", Plan: &Plan{Name: "Pro"}}
	c := u.Clone()
	c.Plan.Name = "Free"
	assert.Equal(t, "Pro", u.Plan.Name)
	assert.Nil(t, (*User)(nil).Clone())
}
