// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the model for panel placement on the host canvas.
//
// Why model placement?
//
// The sandbox never interprets placement; it belongs to the host layout. It is
// still carried on every entry because the authoring pipeline emits it with
// each update and UI clients need it back with each snapshot. Keeping it as a
// structured pass-through field (rather than an opaque blob) lets the gateway
// serialize it without a second decode step.
package model

// Position is the top-left corner of a panel on the canvas, in canvas units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the rendered extent of a panel, in canvas units.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Placement combines position and size. The zero value is valid and means
// "let the host layout decide".
type Placement struct {
	Position Position `json:"position"`
	Size     Size     `json:"size"`
}
