package stage

import (
	"context"

	"shoebox/internal/catalog"
)

// Handler describes the contract the ingest manager needs from each stage.
type Handler interface {
	Prepare(context.Context, *catalog.Item) error
	Execute(context.Context, *catalog.Item) error
}
