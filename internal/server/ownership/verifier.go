package ownership

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"github.com/dmitrijs2005/carmodpicker/internal/dbx"
	"github.com/dmitrijs2005/carmodpicker/internal/logging"
	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
)

// Chain is a fully loaded owner chain, leaf first.
type Chain struct {
	Leaf Kind
	// ParentKind and ParentID are the leaf's direct parent. ParentKind is
	// empty when the leaf is owned directly by a user.
	ParentKind Kind
	ParentID   int64
	OwnerID    int64
	nodes      map[Kind]any
}

func (c *Chain) Car() *models.Car {
	v, _ := c.nodes[KindCar].(*models.Car)
	return v
}

func (c *Chain) BuildList() *models.BuildList {
	v, _ := c.nodes[KindBuildList].(*models.BuildList)
	return v
}

func (c *Chain) Part() *models.Part {
	v, _ := c.nodes[KindPart].(*models.Part)
	return v
}

type options struct {
	notFound  string
	forbidden string
}

// Option customises the client messages of a single check.
type Option func(*options)

// WithNotFound sets the message returned when the resource is missing.
func WithNotFound(msg string) Option {
	return func(o *options) { o.notFound = msg }
}

// WithForbidden sets the message returned when the caller is not the owner.
func WithForbidden(msg string) Option {
	return func(o *options) { o.forbidden = msg }
}

// Verifier checks ownership along a Descriptor.
type Verifier struct {
	steps Descriptor
	log   logging.Logger
}

func NewVerifier(steps Descriptor, log logging.Logger) *Verifier {
	return &Verifier{steps: steps, log: log.With("module", "ownership")}
}

// Resolve loads the chain of kind/id without checking the caller.
//
// A missing leaf yields common.ErrorNotFound. A missing or zero parent
// reference further up yields common.ErrorInconsistent: stored data is
// broken, which is a server fault and not the caller's.
func (v *Verifier) Resolve(ctx context.Context, db dbx.DBTX, kind Kind, id int64) (*Chain, error) {
	chain := &Chain{Leaf: kind, nodes: make(map[Kind]any, len(v.steps))}

	cur, curID := kind, id
	for depth := 0; depth <= len(v.steps); depth++ {
		step, ok := v.steps[cur]
		if !ok {
			return nil, fmt.Errorf("no ownership step for %q", cur)
		}

		node, err := step(ctx, db, curID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				if cur == kind {
					return nil, common.ErrorNotFound
				}
				return nil, fmt.Errorf("%s %d references missing %s %d: %w", kind, id, cur, curID, common.ErrorInconsistent)
			}
			return nil, err
		}
		chain.nodes[cur] = node.Value
		if cur == kind {
			chain.ParentKind, chain.ParentID = node.ParentKind, node.ParentID
		}

		if node.ParentID == 0 {
			return nil, fmt.Errorf("%s %d has no parent: %w", cur, curID, common.ErrorInconsistent)
		}
		if node.ParentKind == "" {
			chain.OwnerID = node.ParentID
			return chain, nil
		}
		cur, curID = node.ParentKind, node.ParentID
	}

	return nil, fmt.Errorf("ownership chain of %s %d does not terminate: %w", kind, id, common.ErrorInconsistent)
}

// Verify loads the chain of kind/id and checks that actorID owns it.
//
// Failures: common.ErrorNotFound if the resource does not exist,
// common.ErrorInconsistent if the chain is broken, common.ErrorForbidden if
// another user owns it. NotFound and Forbidden carry client messages, which
// opts can override.
func (v *Verifier) Verify(ctx context.Context, db dbx.DBTX, kind Kind, id, actorID int64, opts ...Option) (*Chain, error) {
	o := options{
		notFound:  kind.Label() + " not found",
		forbidden: "Not authorized to perform this action on this " + strings.ToLower(kind.Label()),
	}
	for _, opt := range opts {
		opt(&o)
	}

	chain, err := v.Resolve(ctx, db, kind, id)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrorNotFound):
		v.log.Warn(ctx, "ownership verification failed", "reason", o.notFound, "kind", kind, "id", id, "user_id", actorID)
		return nil, common.WithDetail(common.ErrorNotFound, o.notFound)
	case errors.Is(err, common.ErrorInconsistent):
		v.log.Error(ctx, "ownership chain is inconsistent", "error", err, "kind", kind, "id", id, "user_id", actorID)
		return nil, err
	default:
		return nil, err
	}

	if chain.OwnerID != actorID {
		v.log.Warn(ctx, "ownership verification failed", "reason", o.forbidden, "kind", kind, "id", id, "user_id", actorID, "owner_id", chain.OwnerID)
		return nil, common.WithDetail(common.ErrorForbidden, o.forbidden)
	}

	return chain, nil
}

// ReparentOptions holds the messages for the two checks of VerifyReparent.
type ReparentOptions struct {
	Current []Option
	Target  []Option
}

// VerifyReparent authorises moving kind/id under newParentID. The current
// chain is checked first; if newParentID differs from the current parent,
// the new parent's chain is checked too. The first failure is returned.
// A zero newParentID means "not moving".
func (v *Verifier) VerifyReparent(ctx context.Context, db dbx.DBTX, kind Kind, id, newParentID, actorID int64, opts ReparentOptions) (*Chain, error) {
	chain, err := v.Verify(ctx, db, kind, id, actorID, opts.Current...)
	if err != nil {
		return nil, err
	}

	if chain.ParentKind == "" || newParentID == 0 || newParentID == chain.ParentID {
		return chain, nil
	}

	if _, err := v.Verify(ctx, db, chain.ParentKind, newParentID, actorID, opts.Target...); err != nil {
		return nil, err
	}
	return chain, nil
}
