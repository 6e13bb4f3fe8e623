package panel

import (
	"io"
	"log/slog"
	"testing"

	"github.com/couchcryptid/co2-zone-map/internal/domain"
	"github.com/couchcryptid/co2-zone-map/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSelection struct {
	place *domain.Place
}

func (s *stubSelection) Current() (domain.Place, bool) {
	if s.place == nil {
		return domain.Place{}, false
	}
	return *s.place, true
}

func newTestService(t *testing.T, sel *stubSelection) (*Service, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	return NewService(testRenderer(t), sel, metrics, slog.New(slog.NewTextHandler(io.Discard, nil))), metrics
}

func TestService_ShowLegendWithoutSelection(t *testing.T) {
	svc, metrics := newTestService(t, &stubSelection{})

	state, err := svc.ShowLegend()
	require.NoError(t, err)

	assert.True(t, state.Visible)
	assert.Equal(t, PanelLegend, state.Panel)
	assert.Contains(t, state.HTML, "CO₂ Levels")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.PanelRenders.WithLabelValues(PanelLegend)), 0)
}

func TestService_HistoryBeforeSearch(t *testing.T) {
	svc, _ := newTestService(t, &stubSelection{})

	assert.NotPanics(t, func() {
		state, err := svc.ShowHistory()
		require.ErrorIs(t, err, domain.ErrNoSelection)
		assert.False(t, state.Visible)
		assert.Empty(t, state.HTML)
	})
}

func TestService_InstructionsBeforeSearchKeepsOverlay(t *testing.T) {
	svc, _ := newTestService(t, &stubSelection{})
	_, err := svc.ShowLegend()
	require.NoError(t, err)

	state, err := svc.ShowInstructions()
	require.ErrorIs(t, err, domain.ErrNoSelection)
	assert.Equal(t, PanelLegend, state.Panel, "failed action leaves the previous panel in place")
	assert.True(t, state.Visible)
}

func TestService_ShowInstructionsAndHistory(t *testing.T) {
	sel := &stubSelection{place: placeWith(48.85, 410, 380)}
	svc, _ := newTestService(t, sel)

	state, err := svc.ShowInstructions()
	require.NoError(t, err)
	assert.Equal(t, PanelInstructions, state.Panel)
	assert.Contains(t, state.HTML, helplineLine)

	state, err = svc.ShowHistory()
	require.NoError(t, err)
	assert.Equal(t, PanelHistory, state.Panel)
	assert.Contains(t, state.HTML, "<p><b>Lowest:</b> 380 ppm (day B)</p>")
}

func TestService_CloseKeepsSelection(t *testing.T) {
	sel := &stubSelection{place: placeWith(48.85, 410)}
	svc, metrics := newTestService(t, sel)
	_, err := svc.ShowHistory()
	require.NoError(t, err)

	state := svc.Close()

	assert.False(t, state.Visible)
	assert.Equal(t, state, svc.Overlay())
	_, ok := sel.Current()
	assert.True(t, ok)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.PanelRenders.WithLabelValues(PanelClose)), 0)

	// Reopening still works after close.
	state, err = svc.ShowInstructions()
	require.NoError(t, err)
	assert.True(t, state.Visible)
}
