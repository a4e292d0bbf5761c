// Package domain models NASA FIRMS wildfire detection data.
//
// # Data Source
//
// Detections originate from NASA's Fire Information for Resource Management
// System (FIRMS), which publishes active-fire records derived from the MODIS
// (Terra/Aqua) and VIIRS (Suomi NPP, NOAA-20/21) instruments. Records reach
// this service either as the JSON envelope served by the fires API
// ({"fires": [...]}) or as rows decoded from the FIRMS area CSV export. The
// two shapes carry the same fields under slightly different names and are
// normalized by [ValidatePoint].
//
// # FIRMS Data Conventions
//
// Coordinates:
//
//	"latitude" / "longitude" in WGS-84 decimal degrees. Records outside
//	[-90, 90] x [-180, 180] are malformed and rejected.
//
// Brightness:
//
//	Brightness temperature in Kelvin ("brightness" for MODIS; the CSV export
//	carries "bright_ti4" for VIIRS). Always non-negative; negative or
//	non-finite values are rejected.
//
// Timestamps:
//
//	JSON records carry an ISO-8601 "date". CSV rows split the instant into
//	"acq_date" (YYYY-MM-DD) and "acq_time" (HHMM in 24-hour UTC notation,
//	three-digit values zero-padded: "930" → "0930"). The two are recombined
//	into a single instant. A record with no usable date is stamped with the
//	validation time rather than dropped.
//
// Confidence encoding (varies by instrument, normalized to three tiers):
//
//	MODIS:  integer 0-100. Mapped through [ConfidenceMapping]: values at or
//	        above HighMin (default 80) → high, at or below LowMax (default
//	        30) → low, else medium. The cutoffs are configurable because
//	        FIRMS documents no canonical thresholds.
//	VIIRS:  letter codes "l" / "n" / "h" (low / nominal / high) → low /
//	        medium / high.
//	Plain strings "high" / "medium" / "low" pass through unchanged.
//	Anything unrecognized is coerced to medium, never rejected.
//
// Auxiliary metadata:
//
//	"frp" (fire radiative power, MW), "scan" and "track" (pixel geometry),
//	"version" (detection algorithm revision) and "satellite" are optional
//	pass-through fields. A missing or non-string satellite becomes the
//	"unknown" sentinel so downstream counts stay well-defined.
//
// # ID Synthesis
//
// Upstream records usually arrive without identifiers. Missing IDs are
// synthesized as "fire-<index>-<unix-millis>" from the record's position in
// the batch and the package clock, unique within one validation pass. See
// [ValidatePoint].
package domain
