// Package category partitions reconciled sessions into Both / A-only /
// B-only and computes the aggregate statistics the presentation layer
// consumes: counts, purchase rates, dimension profiles, a daily
// timeseries, and chi-square contingency tests against the Both
// baseline.
//
// Categorize is a pure function over its three inputs. Category labels
// are derived from Assignment membership, never stored on the session.
package category
