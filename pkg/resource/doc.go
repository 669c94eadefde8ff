// Package resource decodes watch payloads into PrometheusCluster objects.
//
// Decoding is strict: a payload either yields a fully populated
// PrometheusCluster or a *DecodeError naming the offending field. Partially
// populated objects are never returned.
package resource
