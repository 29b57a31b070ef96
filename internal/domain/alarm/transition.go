package alarm

// Trigger is the kind of event that may move the alarm status.
type Trigger int

// Trigger values.
const (
	// TriggerArmingChanged fires when the operator selects a new arming status.
	// The arming status passed to Next is the new one.
	TriggerArmingChanged Trigger = iota
	// TriggerSensorActivated fires when an inactive sensor becomes active.
	TriggerSensorActivated
	// TriggerSensorDeactivated fires when an active sensor becomes inactive
	// while another sensor is still active.
	TriggerSensorDeactivated
	// TriggerLastSensorDeactivated fires when an active sensor becomes inactive
	// and no other sensor remains active.
	TriggerLastSensorDeactivated
	// TriggerCatDetected fires when the camera image contains a cat.
	TriggerCatDetected
	// TriggerCatAbsent fires when the image has no cat but a sensor is active.
	TriggerCatAbsent
	// TriggerCatAbsentIdle fires when the image has no cat and every sensor is idle.
	TriggerCatAbsentIdle
)

//nolint:gochecknoglobals // Enum names.
var triggerNames = [...]string{
	TriggerArmingChanged:         "ARMING_CHANGED",
	TriggerSensorActivated:       "SENSOR_ACTIVATED",
	TriggerSensorDeactivated:     "SENSOR_DEACTIVATED",
	TriggerLastSensorDeactivated: "LAST_SENSOR_DEACTIVATED",
	TriggerCatDetected:           "CAT_DETECTED",
	TriggerCatAbsent:             "CAT_ABSENT",
	TriggerCatAbsentIdle:         "CAT_ABSENT_IDLE",
}

// String returns the trigger name.
func (t Trigger) String() string {
	return enumName(triggerNames[:], int(t), "Trigger")
}

// outcome is one cell of the transition table.
type outcome struct {
	to    AlarmStatus
	fires bool
}

// stay leaves the alarm status untouched and skips the write.
//
//nolint:gochecknoglobals // Table helper.
var stay = outcome{}

// moveTo writes the given status, even when it equals the current one.
func moveTo(status AlarmStatus) outcome {
	return outcome{to: status, fires: true}
}

// row lists outcomes indexed by the current alarm status.
type row [alarmStatusCount]outcome

// all returns a row with the same outcome for every current status.
func all(o outcome) row {
	return row{o, o, o}
}

// transitions is indexed by trigger, then arming status, then current alarm status.
//
//nolint:gochecknoglobals // Static rule table.
var transitions = map[Trigger][armingStatusCount]row{
	TriggerArmingChanged: {
		Disarmed:  all(moveTo(NoAlarm)),
		ArmedHome: all(moveTo(Alarm)),
		ArmedAway: all(moveTo(Alarm)),
	},
	TriggerSensorActivated: {
		Disarmed:  all(stay),
		ArmedHome: {NoAlarm: moveTo(PendingAlarm), PendingAlarm: moveTo(Alarm), Alarm: stay},
		ArmedAway: {NoAlarm: moveTo(PendingAlarm), PendingAlarm: moveTo(Alarm), Alarm: stay},
	},
	TriggerSensorDeactivated: {
		Disarmed:  all(stay),
		ArmedHome: all(stay),
		ArmedAway: all(stay),
	},
	TriggerLastSensorDeactivated: {
		Disarmed:  all(stay),
		ArmedHome: {NoAlarm: stay, PendingAlarm: moveTo(NoAlarm), Alarm: stay},
		ArmedAway: {NoAlarm: stay, PendingAlarm: moveTo(NoAlarm), Alarm: stay},
	},
	TriggerCatDetected: {
		Disarmed:  all(moveTo(NoAlarm)),
		ArmedHome: all(moveTo(Alarm)),
		ArmedAway: all(stay),
	},
	TriggerCatAbsent: {
		Disarmed:  all(stay),
		ArmedHome: all(stay),
		ArmedAway: all(stay),
	},
	TriggerCatAbsentIdle: {
		Disarmed:  all(moveTo(NoAlarm)),
		ArmedHome: all(moveTo(NoAlarm)),
		ArmedAway: all(moveTo(NoAlarm)),
	},
}

// Next returns the alarm status that the trigger leads to and whether it must
// be written. Unknown triggers or out-of-range statuses never fire.
func Next(current AlarmStatus, trigger Trigger, arming ArmingStatus) (AlarmStatus, bool) {
	rows, found := transitions[trigger]
	if !found || !current.Valid() || !arming.Valid() {
		return current, false
	}

	cell := rows[arming][current]
	if !cell.fires {
		return current, false
	}

	return cell.to, true
}
