// Package behaviours is a library of ready made leaves: fixed and scripted
// statuses for demos and tests, blackboard readers and writers, expression
// checks and JavaScript actions.
//
// Behaviours that touch the blackboard own a client named after the
// behaviour, on [blackboard.Default] unless [WithStore] or [WithClient] is
// given.
package behaviours
