// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the slurdle
// bot.
//
// Configuration is loaded from a single file specified by either the
// SLURDLE_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery,
// and no automatic file search. This ensures deterministic, auditable
// configuration with no hidden overrides.
//
// The only values read from the process environment are the platform
// credentials: SLURDLE_TOKEN and SLURDLE_USER override their file
// counterparts, so tokens never need to live on disk.
//
// Key exports:
//
//   - [Config] -- master struct with Platform, Game, Data sections
//   - [Default] -- returns a Config with the standard game defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other slurdle packages.
package config
