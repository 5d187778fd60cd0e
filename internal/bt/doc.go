// Package bt implements behaviour trees: leaves, decorators and the
// sequence, selector and parallel composites, ticked synchronously from a
// root by a [BehaviourTree].
//
// Every behaviour follows the same lifecycle on each tick. If it was not
// [Running] it is initialised, then updated; a result other than [Running]
// stops it with that status. Stopping a behaviour with [Invalid] interrupts
// it, and any running descendants, from the outside.
//
// Structural errors (adding a parented child, cycles, changes mid tick) are
// returned as [*StructuralError]. The constructors taking children panic on
// them instead, as the trees they build are static.
package bt
