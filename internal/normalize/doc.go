// Package normalize reconciles stored booking-form records into the
// canonical form.Config.
//
// Records written over the product's lifetime come in three shapes: the
// canonical one, a flat "simple form" shape with top-level toggles, and a
// partially nested shape that keeps fragments under alternate keys. Real
// records mix them, so resolution runs per field rather than per section:
// every field walks the same ordered list of tagged Sources and takes the
// first candidate that coerces to a usable value, falling back to the
// defaults in package form.
//
// Normalize is pure and total. It never panics on JSON-compatible input and
// normalizing its own output is a no-op.
package normalize
