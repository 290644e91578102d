package nav

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigate(t *testing.T) {
	n := New()
	assert.Equal(t, PageHome, n.Active())

	assert.True(t, n.Navigate(PageJobs))
	assert.True(t, n.IsActive(PageJobs))

	links := n.Links()
	activeCount := 0
	for _, l := range links {
		if l.Active {
			activeCount++
			assert.Equal(t, PageJobs, l.ID)
		}
	}
	assert.Equal(t, 1, activeCount)
}

func TestNavigate_UnknownIsNoop(t *testing.T) {
	n := New()
	n.Navigate(PageSkills)
	assert.False(t, n.Navigate("settings"))
	assert.Equal(t, PageSkills, n.Active())
}

func TestApply_OnlyIfInactive(t *testing.T) {
	n := New()
	n.Navigate(PageResearch)

	assert.False(t, n.Apply(Directive{Page: PageResearch, OnlyIfInactive: true}))
	assert.Equal(t, PageResearch, n.Active())

	n.Navigate(PageJobs)
	assert.True(t, n.Apply(Directive{Page: PageResearch, OnlyIfInactive: true}))
	assert.Equal(t, PageResearch, n.Active())
}

func TestApply_Delayed(t *testing.T) {
	n := New()
	require.True(t, n.Apply(Directive{Page: PageJobs, Delay: 500 * time.Millisecond}))
	assert.Equal(t, PageHome, n.Active(), "delayed directives do not switch immediately")

	d := n.TakePending()
	require.NotNil(t, d)
	assert.Equal(t, PageJobs, d.Page)
	assert.Nil(t, n.TakePending())
}
