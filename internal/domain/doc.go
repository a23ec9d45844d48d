// Package domain models the site-forecast dataset consumed by the map views.
//
// # Data Source
//
// The dataset comes from the forecast REST API as a single JSON document: a
// list of candidate sites, each with a geographic position and an
// ordered-by-date list of predictions. The API resolves the document once per
// request; there are no partial or streaming responses. The service fetches
// it at most once per cache lifetime (see the resource package) and treats it
// as immutable afterwards.
//
// # Metric Catalog
//
// Every prediction carries a fixed-length score vector whose positions map
// onto [Metrics], the process-wide metric catalog. The catalog is a ladder of
// increasing quality thresholds:
//
//	Metrics[0] "usable"       site is workable on that date
//	Metrics[1] "good"         comfortable conditions
//	Metrics[2] "great"        high-confidence recommendation
//	Metrics[3] "exceptional"  rare top-tier conditions
//
// Scores[i] always corresponds to Metrics[i]. A score the upstream model did
// not produce is an explicit absent marker (JSON null), never a shortened
// vector — consumers index by position and rely on the alignment.
//
// # Dates
//
// Prediction dates are calendar days in ISO form ("2024-06-01"), UTC, and
// appear in ascending order within a site.
//
// # Versioning
//
// Dataset.Version is the SHA-256 hash of the raw API payload. Derived
// structures (the view index cache) key on it, so two fetches of identical
// content share cached derivations while any upstream change invalidates
// them. See the forecast adapter.
package domain
