// Package client implements the catpoint-ctl operations: reading the status,
// arming, managing sensors, submitting camera images and watching events.
package client
