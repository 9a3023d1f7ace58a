package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaBookingService/pkg/types"
)

func TestDefaultSlotSchedule_Labels(t *testing.T) {
	labels, err := DefaultSlotSchedule().Labels()
	require.NoError(t, err)

	require.Len(t, labels, 18)
	assert.Equal(t, types.TimeString("09:00"), labels[0])
	assert.Equal(t, types.TimeString("17:30"), labels[len(labels)-1])

	for i := 1; i < len(labels); i++ {
		assert.True(t, labels[i-1].IsBefore(labels[i]), "labels must be strictly ascending at %d", i)
	}
}

func TestSlotSchedule_Labels_CustomWidth(t *testing.T) {
	tests := []struct {
		name     string
		schedule SlotSchedule
		want     int
	}{
		{name: "hourly", schedule: SlotSchedule{OpenTime: "09:00", CloseTime: "18:00", SlotDurationMinutes: 60}, want: 9},
		{name: "75 minutes drops partial tail", schedule: SlotSchedule{OpenTime: "09:00", CloseTime: "18:00", SlotDurationMinutes: 75}, want: 7},
		{name: "short day", schedule: SlotSchedule{OpenTime: "10:00", CloseTime: "12:00", SlotDurationMinutes: 30}, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels, err := tt.schedule.Labels()
			require.NoError(t, err)
			assert.Len(t, labels, tt.want)
		})
	}
}

func TestSlotSchedule_Validate(t *testing.T) {
	assert.NoError(t, DefaultSlotSchedule().Validate())
	assert.Error(t, SlotSchedule{OpenTime: "18:00", CloseTime: "09:00", SlotDurationMinutes: 30}.Validate())
	assert.Error(t, SlotSchedule{OpenTime: "09:00", CloseTime: "18:00", SlotDurationMinutes: 0}.Validate())
	assert.Error(t, SlotSchedule{OpenTime: "9", CloseTime: "18:00", SlotDurationMinutes: 30}.Validate())
}

func TestSlotSchedule_Contains(t *testing.T) {
	s := DefaultSlotSchedule()
	assert.True(t, s.Contains("09:00"))
	assert.True(t, s.Contains("17:30"))
	assert.False(t, s.Contains("18:00"))
	assert.False(t, s.Contains("09:15"))
}
