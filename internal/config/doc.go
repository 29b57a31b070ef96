// Package config defines the settings used by catpoint binaries and provides
// helpers to load, validate and save them in YAML format.
//
// Values from the YAML file can be overridden with CATPOINT_* environment
// variables, e.g. CATPOINT_STORE_BACKEND or CATPOINT_KAFKA_BROKERS.
package config
