// Package dedupe provides an identity set with atomic insert-if-absent,
// used to guarantee at most one supervision loop per bot identity.
package dedupe
