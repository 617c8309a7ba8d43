// Package model defines the data types shared across the hot-load sandbox:
// inbound panel updates from the authoring pipeline, the registry's tracked
// entry for each panel, and the structured error taxonomy.
//
// The types here are deliberately free of behavior. All mutation of entries
// happens inside the registry, and all interpretation of panel source happens
// inside the compiler; model is the vocabulary both sides agree on.
package model
