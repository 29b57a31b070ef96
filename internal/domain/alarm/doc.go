// Package alarm contains core domain types for the alarm business logic.
//
// It defines the alarm and arming status enumerations, sensors and their set
// semantics (Snapshot), the StatusListener capability notified on every
// transition, and the explicit transition table (Next) that decides how the
// alarm status reacts to sensor, camera and arming events.
package alarm
