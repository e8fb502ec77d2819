package tree

import "errors"

// SkipDir can be returned from a WalkFunc to skip the children of a
// directory item.
var SkipDir = errors.New("skip this directory")

// WalkFunc is called for every item visited by Walk. The root has depth 0.
type WalkFunc func(item Item, depth int) error

// Walk visits item and its descendants depth first in listing order. A
// negative maxDepth means no limit.
func Walk(item Item, maxDepth int, fn WalkFunc) error {
	err := walk(item, 0, maxDepth, fn)
	if errors.Is(err, SkipDir) {
		return nil
	}
	return err
}

func walk(item Item, depth, maxDepth int, fn WalkFunc) error {
	if err := fn(item, depth); err != nil {
		return err
	}
	if !item.IsDirectory() || (maxDepth >= 0 && depth >= maxDepth) {
		return nil
	}
	children, err := item.Children(false)
	if err != nil {
		return err
	}
	for _, child := range children {
		err := walk(child, depth+1, maxDepth, fn)
		if errors.Is(err, SkipDir) {
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
