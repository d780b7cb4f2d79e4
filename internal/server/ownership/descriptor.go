// Package ownership walks the parent chain of a resource up to the user who
// owns it and checks that user against the caller.
//
// The chain shape is declarative: a Descriptor maps each Kind to a Step that
// loads one node and names its parent. DefaultSteps wires
// Part -> BuildList -> Car -> User from the repositories.
package ownership

import (
	"context"

	"github.com/dmitrijs2005/carmodpicker/internal/dbx"
	"github.com/dmitrijs2005/carmodpicker/internal/server/repositories/repomanager"
)

// Kind names a resource type that has an owner chain.
type Kind string

const (
	KindCar       Kind = "car"
	KindBuildList Kind = "build_list"
	KindPart      Kind = "part"
)

// Label is the human-readable name used in client messages.
func (k Kind) Label() string {
	switch k {
	case KindCar:
		return "Car"
	case KindBuildList:
		return "Build List"
	case KindPart:
		return "Part"
	default:
		return string(k)
	}
}

// Node is one loaded hop of a chain. When ParentKind is empty the parent is
// the owning user and ParentID is that user's id.
type Node struct {
	Value      any
	ParentKind Kind
	ParentID   int64
}

// Step loads the resource of one kind by id. It returns common.ErrorNotFound
// when the row does not exist.
type Step func(ctx context.Context, db dbx.DBTX, id int64) (Node, error)

// Descriptor is the chain definition, one Step per Kind.
type Descriptor map[Kind]Step

// DefaultSteps builds the Part -> BuildList -> Car -> User descriptor.
func DefaultSteps(rm repomanager.RepositoryManager) Descriptor {
	return Descriptor{
		KindCar: func(ctx context.Context, db dbx.DBTX, id int64) (Node, error) {
			c, err := rm.Cars(db).GetByID(ctx, id)
			if err != nil {
				return Node{}, err
			}
			return Node{Value: c, ParentID: c.UserID}, nil
		},
		KindBuildList: func(ctx context.Context, db dbx.DBTX, id int64) (Node, error) {
			bl, err := rm.BuildLists(db).GetByID(ctx, id)
			if err != nil {
				return Node{}, err
			}
			return Node{Value: bl, ParentKind: KindCar, ParentID: bl.CarID}, nil
		},
		KindPart: func(ctx context.Context, db dbx.DBTX, id int64) (Node, error) {
			p, err := rm.Parts(db).GetByID(ctx, id)
			if err != nil {
				return Node{}, err
			}
			return Node{Value: p, ParentKind: KindBuildList, ParentID: p.BuildListID}, nil
		},
	}
}
