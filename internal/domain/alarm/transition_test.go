package alarm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// expectation describes the expected write for one table cell; fires=false means no write.
type expectation struct {
	to    AlarmStatus
	fires bool
}

// TestNext_EveryCombination spells out the expected result for each
// (trigger, arming, current) cell of the transition table.
func TestNext_EveryCombination(t *testing.T) {
	t.Parallel()

	var (
		allAlarms  = []AlarmStatus{NoAlarm, PendingAlarm, Alarm}
		allArmings = []ArmingStatus{Disarmed, ArmedHome, ArmedAway}
	)

	expect := func(trigger Trigger, arming ArmingStatus, current AlarmStatus) expectation {
		switch trigger {
		case TriggerArmingChanged:
			if arming == Disarmed {
				return expectation{NoAlarm, true}
			}

			return expectation{Alarm, true}
		case TriggerSensorActivated:
			if arming == Disarmed {
				return expectation{}
			}

			switch current {
			case NoAlarm:
				return expectation{PendingAlarm, true}
			case PendingAlarm:
				return expectation{Alarm, true}
			default:
				return expectation{}
			}
		case TriggerLastSensorDeactivated:
			if arming != Disarmed && current == PendingAlarm {
				return expectation{NoAlarm, true}
			}

			return expectation{}
		case TriggerCatDetected:
			switch arming {
			case ArmedHome:
				return expectation{Alarm, true}
			case Disarmed:
				return expectation{NoAlarm, true}
			default:
				return expectation{}
			}
		case TriggerCatAbsentIdle:
			return expectation{NoAlarm, true}
		default:
			return expectation{}
		}
	}

	for trigger := TriggerArmingChanged; trigger <= TriggerCatAbsentIdle; trigger++ {
		for _, arming := range allArmings {
			for _, current := range allAlarms {
				name := fmt.Sprintf("%s/%s/%s", trigger, arming, current)
				want := expect(trigger, arming, current)

				got, fires := Next(current, trigger, arming)
				require.Equal(t, want.fires, fires, name)

				if want.fires {
					require.Equal(t, want.to, got, name)
				} else {
					require.Equal(t, current, got, name)
				}
			}
		}
	}
}

// TestNext_InvalidInputs ensures out-of-range values never cause a write.
func TestNext_InvalidInputs(t *testing.T) {
	t.Parallel()

	_, fires := Next(AlarmStatus(5), TriggerArmingChanged, ArmedHome)
	require.False(t, fires)

	_, fires = Next(NoAlarm, TriggerArmingChanged, ArmingStatus(-1))
	require.False(t, fires)

	_, fires = Next(NoAlarm, Trigger(42), ArmedHome)
	require.False(t, fires)

	require.Equal(t, "Trigger(42)", Trigger(42).String())
}
