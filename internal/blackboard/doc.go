// Package blackboard implements the shared, access-controlled key-value store
// used by behaviours to communicate.
//
// # Store
//
// A [Store] holds the stored values, per-key metadata recording which clients
// may read, write or exclusively write each key, a registry of client names,
// and an optional bounded [ActivityStream]. A process-wide store is available
// via [Default]; tests and embedders that want isolation create their own
// with [NewStore].
//
// Store level operations ([Store.Get], [Store.Set], [Store.Keys] and friends)
// bypass access checks and exist for tooling, rendering and initialisation.
// Behaviours always go through a [Client].
//
// # Clients
//
// A [Client] is a namespaced handle. Keys are registered against it with an
// [Access] level:
//
//	c := store.NewClient("Planner", "/nav")
//	if err := c.RegisterKey("goal", blackboard.Write); err != nil {
//		return err
//	}
//	if _, err := c.Set("goal", Pose{X: 1}, true); err != nil {
//		return err
//	}
//
// Relative keys are resolved against the client namespace, absolute keys
// (leading "/") are taken as-is. A variable name may carry a nested path after
// the first ".", e.g. "battery.percentage", addressing a map entry or struct
// field inside the stored value.
//
// Conflicting registrations ([ExclusiveWrite] against any other writer, or
// [Write] against another exclusive writer) fail at registration time.
// Subsequent access is checked only against the client's own key sets.
//
// # Errors
//
// Failures are returned as [*KeyError] values wrapping one of the sentinel
// errors ([ErrAccessDenied], [ErrKeyNotFound], [ErrNestedPathMissing],
// [ErrExclusiveWriteConflict], [ErrNotInNamespace], [ErrNotRegistered]), so
// callers branch with [errors.Is]. Declined overwrites and unsetting an absent
// key are reported through boolean results, not errors.
package blackboard
