// SPDX-License-Identifier: MPL-2.0

// Package config handles launcher configuration using Viper with CUE as the file format.
//
// Configuration is read from the --config path, else ConfigDir()/config.cue,
// else ./config.cue, else defaults. Files are validated against the embedded
// #Config schema (config_schema.cue). Any key can be overridden through a
// LAUNCHGATE_* environment variable, with nested keys joined by "_"
// (LAUNCHGATE_LOG_LEVEL, LAUNCHGATE_SIM_CAPS_TICK_RATE_HZ).
package config
