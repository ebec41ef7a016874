package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(id string, at time.Time) *Report {
	return &Report{
		ID:              id,
		SessionID:       "sess-1",
		Diagnosis:       "Major Depressive Disorder",
		Details:         "Patient reports low mood. Contact jane@example.com or 555-123-4567.",
		Symptoms:        []string{"low mood", "insomnia"},
		Recommendations: []string{"Weekly CBT sessions"},
		CreatedAt:       at,
		LLMAnalysis:     "PHQ-9 total 16 indicates moderately severe depression.",
	}
}

func TestMemoryStoreScopesByPatient(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := store.StoreReport(ctx, "p1", sampleReport("", base))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := store.GetReport(ctx, "p1", id)
	require.NoError(t, err)
	assert.Equal(t, "p1", got.PatientID)
	assert.Equal(t, "Major Depressive Disorder", got.Diagnosis)

	_, err = store.GetReport(ctx, "p2", id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	r := sampleReport("rep-1", time.Now())

	for i := 0; i < 2; i++ {
		id, err := store.StoreReport(ctx, "p1", r)
		require.NoError(t, err)
		assert.Equal(t, "rep-1", id)
	}
	list, err := store.ListReports(ctx, "p1", 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = store.StoreReport(ctx, "p2", r)
	assert.ErrorIs(t, err, ErrIDConflict)
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		_, err := store.StoreReport(ctx, "p1", sampleReport(id, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	list, err := store.ListReports(ctx, "p1", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
}

func TestMemoryStoreRejectsMissingPatient(t *testing.T) {
	_, err := NewMemoryStore().StoreReport(context.Background(), " ", sampleReport("x", time.Now()))
	assert.Error(t, err)
}

func TestReportCloneIsDeep(t *testing.T) {
	r := sampleReport("x", time.Now())
	cp := r.Clone()
	cp.Symptoms[0] = "changed"
	assert.Equal(t, "low mood", r.Symptoms[0])
	assert.Nil(t, (*Report)(nil).Clone())
}

func TestRenderMarkdownSections(t *testing.T) {
	md := RenderMarkdown(sampleReport("rep-9", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))

	for _, want := range []string{"## Diagnosis", "## Details", "## Symptoms", "## Recommendations", "## Additional Analysis", "- insomnia", "rep-9"} {
		assert.Contains(t, md, want)
	}

	empty := RenderMarkdown(&Report{ID: "e"})
	assert.Contains(t, empty, "_None recorded._")
	assert.NotContains(t, empty, "Additional Analysis")
}

func TestRenderHTMLDropsRawHTML(t *testing.T) {
	r := sampleReport("rep-9", time.Now())
	r.Details = "Fine.\n\n<script>alert(1)</script>"

	page, err := RenderHTML(r)
	require.NoError(t, err)
	assert.Contains(t, page, "<h2>Diagnosis</h2>")
	assert.Contains(t, page, "<li>insomnia</li>")
	assert.NotContains(t, page, "<script>")
}
