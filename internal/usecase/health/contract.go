package health

import "context"

// StorePinger checks blob and index store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// IndexLister reports the vector indexes currently present.
type IndexLister interface {
	ListNames(ctx context.Context) ([]string, error)
}
