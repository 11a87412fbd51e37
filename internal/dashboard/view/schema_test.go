package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swasthya/healthlog-platform/pkg/logging"
)

func TestSchemaResolve(t *testing.T) {
	logger := logging.New("error")

	t.Run("all bindings present", func(t *testing.T) {
		cap := SchemaSymptomList.Resolve(map[string]bool{
			"symptom_list": true,
			"symptom_form": true,
		}, logger)
		assert.True(t, cap.Enabled)
		assert.True(t, cap.Has("symptom_form"))
		assert.Empty(t, cap.Missing)
	})

	t.Run("missing optional binding keeps feature enabled", func(t *testing.T) {
		cap := SchemaSymptomList.Resolve(map[string]bool{"symptom_list": true}, logger)
		assert.True(t, cap.Enabled)
		assert.False(t, cap.Has("symptom_form"))
	})

	t.Run("missing required binding disables only this feature", func(t *testing.T) {
		cap := SchemaRiskList.Resolve(map[string]bool{"predict_button": true}, logger)
		assert.False(t, cap.Enabled)
		assert.Equal(t, []string{"risk_panel"}, cap.Missing)
	})

	t.Run("features resolve independently", func(t *testing.T) {
		available := map[string]bool{"summary_panel": true}
		assert.True(t, SchemaSummary.Resolve(available, logger).Enabled)
		assert.False(t, SchemaMetricCharts.Resolve(available, logger).Enabled)
		assert.False(t, SchemaDeviceList.Resolve(available, logger).Enabled)
	})
}

func TestDisplayClassForNeverFails(t *testing.T) {
	assert.Equal(t, ClassDark, DisplayClassFor("critical"))
	assert.Equal(t, ClassDanger, DisplayClassFor("high"))
	assert.Equal(t, ClassWarning, DisplayClassFor("moderate"))
	assert.Equal(t, ClassSuccess, DisplayClassFor("low"))
	assert.Equal(t, ClassSecondary, DisplayClassFor(""))
	assert.Equal(t, ClassSecondary, DisplayClassFor("unheard-of"))
}
