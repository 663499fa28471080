package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchedulesValidJobs(t *testing.T) {
	c, err := New(
		Job{Name: "sweep", Spec: "0 */30 * * * *", Run: func() {}},
		Job{Name: "cleanup", Spec: "0 15 3 * * *", Run: func() {}},
		Job{Name: "off", Spec: "-", Run: func() {}},
	)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 2)
}

func TestNewRejectsBadSpec(t *testing.T) {
	// five fields are not enough once seconds are enabled
	_, err := New(Job{Name: "bad", Spec: "*/5 * * * *", Run: func() {}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "schedule bad")
}
