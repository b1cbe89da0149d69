// race_test.go: reports whether the race detector is enabled
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

//go:build race

package rcuht

const raceEnabled = true
