// Package matrix implements the build-matrix expansion: computing the
// Cartesian product of the configured axes and filtering it through the
// exclusion rules. Expansion is pure and deterministic (the same axes
// always enumerate the same combinations in the same order), so the final
// runnable set is reproducible even though the scheduler dispatches it
// concurrently.
package matrix
