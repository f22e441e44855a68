// Package form defines the canonical configuration of a salon booking form.
//
// A Config is the single normalized representation that the normalizer
// produces and the compiler consumes. It is pure data: every field is
// always present, slices are never nil, and times use the 24h "HH:MM"
// form. The only behavior here is lookup, defaulting, and the canonical
// JSON encoding used for content identity.
//
// Key design constraints:
//   - A Config is never mutated in place once produced; callers copy.
//   - Prices are integer yen and durations integer minutes (no floats).
//   - A Menu carries either SubMenuItems or Options, never both.
//   - UISettings.ThemeColor always equals BasicInfo.ThemeColor.
package form
