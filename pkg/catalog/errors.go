package catalog

import (
	"errors"
	"fmt"
)

// ErrMalformedCatalog reports a payload without a usable "fields" list.
var ErrMalformedCatalog = errors.New("catalog: malformed master field payload")

// FetchOp identifies which stage of a catalog load failed.
type FetchOp string

const (
	FetchOpTransport FetchOp = "transport"
	FetchOpDecode    FetchOp = "decode"
)

// FetchError is returned by Catalog.Load. The catalog keeps its previous
// contents whenever a FetchError is reported.
type FetchError struct {
	Op     FetchOp
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	if e == nil {
		return ""
	}
	if e.Source == "" {
		return fmt.Sprintf("catalog: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("catalog: %s %s: %v", e.Op, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
