// Package domain contains the core business entities, value objects, and
// domain logic of the application: the tracked assessment Task, its open
// data bag, the snapshot-merge policy, and the good-lead classification.
// It is independent of any specific infrastructure or delivery mechanism.
package domain
