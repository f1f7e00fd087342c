package testutil

import (
	"fmt"

	"github.com/calvinalkan/slots/pkg/slots"
)

// Operation is a single public-API call applied to the model and to every
// real collection.
//
// Ref fields index into Harness.Minted: the n-th successful Store.
type Operation interface {
	Name() string
	String() string
}

// OpStore stores Value.
type OpStore struct {
	Value int64
}

// Name returns the operation name.
func (OpStore) Name() string { return "Store" }
func (operation OpStore) String() string {
	return fmt.Sprintf("Store(%d)", operation.Value)
}

// OpGet reads the value behind a previously minted key.
type OpGet struct {
	Ref int
}

// Name returns the operation name.
func (OpGet) Name() string { return "Get" }
func (operation OpGet) String() string {
	return fmt.Sprintf("Get(ref=%d)", operation.Ref)
}

// OpModify adds Delta to the value behind a previously minted key.
type OpModify struct {
	Ref   int
	Delta int64
}

// Name returns the operation name.
func (OpModify) Name() string { return "Modify" }
func (operation OpModify) String() string {
	return fmt.Sprintf("Modify(ref=%d,%+d)", operation.Ref, operation.Delta)
}

// OpTake removes the value behind a previously minted key.
type OpTake struct {
	Ref int
}

// Name returns the operation name.
func (OpTake) Name() string { return "Take" }
func (operation OpTake) String() string {
	return fmt.Sprintf("Take(ref=%d)", operation.Ref)
}

// OpPeek reads a raw index, which may be empty or out of range.
type OpPeek struct {
	Index slots.Index
}

// Name returns the operation name.
func (OpPeek) Name() string { return "Peek" }
func (operation OpPeek) String() string {
	return fmt.Sprintf("Peek(%d)", operation.Index)
}

// OpIter collects every occupied slot.
type OpIter struct{}

// Name returns the operation name.
func (OpIter) Name() string   { return "Iter" }
func (OpIter) String() string { return "Iter()" }
