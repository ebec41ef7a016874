package questionnaire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGetNormalizesID(t *testing.T) {
	for _, id := range []string{"DASS21", "dass-21", " Dass 21 ", "DASS_21"} {
		def, err := Default().Get(id)
		require.NoError(t, err, id)
		assert.Equal(t, DASS21, def.ID)
		assert.Equal(t, 21, def.ItemCount())
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	_, err := Default().Get("BDI-II")
	assert.ErrorIs(t, err, ErrUnknownQuestionnaire)

	_, err = Default().Score("BDI-II", nil)
	assert.ErrorIs(t, err, ErrUnknownQuestionnaire)
}

func TestRegistryListOmitsScoringAndKeepsOrder(t *testing.T) {
	list := Default().List()
	require.Len(t, list, 4)
	ids := []string{list[0].ID, list[1].ID, list[2].ID, list[3].ID}
	assert.Equal(t, []string{DASS21, GAD7, PHQ9, PCL5}, ids)
	assert.Equal(t, 20, list[3].ItemCount)
	assert.Len(t, list[3].Options, 5)
}

func TestRegistryReturnsCopies(t *testing.T) {
	def, err := Default().Get(GAD7)
	require.NoError(t, err)
	def.Items[0] = "mutated"
	def.Scoring.Bands[0].Label = "mutated"

	again, err := Default().Get(GAD7)
	require.NoError(t, err)
	assert.Equal(t, "Feeling nervous, anxious, or on edge", again.Items[0])
	assert.Equal(t, "Minimal", again.Scoring.Bands[0].Label)
}

func TestDefinitionValidateResponse(t *testing.T) {
	def, err := Default().Get(PCL5)
	require.NoError(t, err)
	assert.NoError(t, def.ValidateResponse(4))
	assert.ErrorIs(t, def.ValidateResponse(5), ErrInvalidResponseValue)
}
