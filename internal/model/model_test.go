package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProject(t *testing.T) {
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	p, err := NewProject("Thesis", "Write it", "alice", true, CategoryEducation, date, 10)
	require.NoError(t, err)

	assert.Len(t, p.ID, 36)
	assert.Equal(t, "Thesis", p.Title)
	assert.Equal(t, "alice", p.CreatedBy)
	assert.Equal(t, date, p.Date)
	assert.Equal(t, p.ID[:8], p.ShortID())

	q, err := NewProject("Thesis", "Write it", "alice", true, CategoryEducation, date, 10)
	require.NoError(t, err)
	assert.NotEqual(t, p.ID, q.ID, "same fields still get distinct ids")
}

func TestValidateProgress(t *testing.T) {
	tests := []struct {
		progress float64
		ok       bool
	}{
		{0, true},
		{55.5, true},
		{100, true},
		{-0.1, false},
		{100.1, false},
		{math.NaN(), false},
	}
	for _, tt := range tests {
		err := ValidateProgress(tt.progress)
		if tt.ok {
			assert.NoError(t, err, "progress %v", tt.progress)
			continue
		}
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, "progress %v", tt.progress)
	}

	_, err := NewProject("x", "", "alice", true, "", time.Now(), 150)
	assert.Error(t, err)
}

func TestValidateRequiresID(t *testing.T) {
	p := Project{Title: "x"}
	assert.Error(t, p.Validate())
}

func TestWithDefaults(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	p := Project{ID: "a", Progress: math.NaN()}.WithDefaults(now)
	assert.Equal(t, now, p.Date)
	assert.Equal(t, 0.0, p.Progress)

	date := now.AddDate(0, 1, 0)
	p = Project{ID: "a", Date: date, Progress: 40}.WithDefaults(now)
	assert.Equal(t, date, p.Date)
	assert.Equal(t, 40.0, p.Progress)
}

func TestAuthorize(t *testing.T) {
	p := Project{ID: "a", CreatedBy: "alice", IsEditable: true}

	assert.NoError(t, Authorize("alice", p))
	assert.ErrorIs(t, Authorize("bob", p), ErrForbidden)
	assert.ErrorIs(t, Authorize("", p), ErrForbidden)
	assert.ErrorIs(t, Authorize("Alice", p), ErrForbidden)

	p.IsEditable = false
	assert.ErrorIs(t, Authorize("alice", p), ErrForbidden)
	assert.False(t, CanModify("alice", p))

	// a project with no creator belongs to nobody
	assert.False(t, CanModify("", Project{ID: "b", IsEditable: true}))
}

func TestCategories(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 10)
	assert.Equal(t, CategoryEducation, cats[0].Key)

	cats[0].Key = "changed"
	assert.Equal(t, CategoryEducation, Categories()[0].Key)

	assert.True(t, IsKnownCategory(CategoryHumanRights))
	assert.False(t, IsKnownCategory("sports"))
	assert.Equal(t, "Health & Wellness", CategoryLabel(CategoryHealthWellness))
	assert.Equal(t, "sports", CategoryLabel("sports"))
}

func TestNewProjectNormalizesDate(t *testing.T) {
	zone := time.FixedZone("UTC-5", -5*60*60)
	date := time.Now().In(zone)

	p, err := NewProject("x", "", "alice", true, "", date, 0)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, p.Date.Location())
	assert.True(t, date.Equal(p.Date))
	assert.True(t, p.Date == p.Date.Round(0), "no monotonic reading")
}
