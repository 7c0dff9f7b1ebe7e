package reconcile

import "github.com/delaneyj/sinew/cell"

// Target is the render-target contract the reconciler drives. The reconciler
// never assumes a concrete rendering technology; anything that can create,
// insert, and remove ordered nodes is a valid target.
//
// InsertBefore receives a pointer to a node the target already owns, or nil
// to place nodes at the end of the reconciled range. EndMarker returns the
// reference for "end of range" and may be nil when the range simply appends.
type Target[T, N any] interface {
	RenderItem(item *cell.WriteableSignal[T], index int) (nodes []N, dispose func())
	InsertBefore(nodes []N, ref *N)
	RemoveNodes(nodes []N)
	EndMarker() *N
}
