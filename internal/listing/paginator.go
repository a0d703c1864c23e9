package listing

import (
	"context"
	"fmt"
	"time"

	"Ossctl/internal/logger"
)

// PageSize is the number of keys requested per store call.
const PageSize = 30

// MaxPages bounds Paginator.All against a store that never stops returning tokens.
const MaxPages = 100000

type ListInput struct {
	Prefix            string
	MaxKeys           int32
	ContinuationToken string
}

type ListOutput struct {
	Entries []ObjectEntry
	// NextToken is empty on the last page.
	NextToken string
}

// Lister is the listing capability of an object store.
type Lister interface {
	ListObjects(ctx context.Context, in ListInput) (ListOutput, error)
}

// PaginationState is the cursor after a page. IsLastPage is terminal.
type PaginationState struct {
	NextToken  string
	IsLastPage bool
}

// Paginator fetches and classifies one page per call. It keeps no cursor of its
// own: the caller passes back the token from the previous PaginationState.
type Paginator struct {
	lister   Lister
	pageSize int32
}

func NewPaginator(l Lister) *Paginator {
	return &Paginator{lister: l, pageSize: PageSize}
}

// ListPage fetches the page that starts at token (empty for the first page).
// Store errors are returned as-is, wrapped; nothing is retried.
func (p *Paginator) ListPage(ctx context.Context, prefix, token string) (ClassifiedPage, PaginationState, error) {
	start := time.Now()
	out, err := p.lister.ListObjects(ctx, ListInput{
		Prefix:            prefix,
		MaxKeys:           p.pageSize,
		ContinuationToken: token,
	})
	if err != nil {
		return ClassifiedPage{}, PaginationState{}, fmt.Errorf("list page: %w", err)
	}

	page := Classify(out.Entries, prefix)
	if err := page.Err(); err != nil {
		logger.Log.Warn().Err(err).Strs("keys", page.Skipped()).Msg("skipped keys outside prefix")
	}
	logger.Log.Debug().
		Str("prefix", prefix).
		Int("keys", len(out.Entries)).
		Bool("last", out.NextToken == "").
		Dur("took", time.Since(start)).
		Msg("listed page")

	state := PaginationState{NextToken: out.NextToken, IsLastPage: out.NextToken == ""}
	return page, state, nil
}

// All walks every page under prefix in order and returns their union with the
// number of pages fetched.
func (p *Paginator) All(ctx context.Context, prefix string) (ClassifiedPage, int, error) {
	merged := Classify(nil, prefix)
	token := ""
	for pages := 1; pages <= MaxPages; pages++ {
		page, state, err := p.ListPage(ctx, prefix, token)
		if err != nil {
			return ClassifiedPage{}, pages - 1, err
		}
		merged = merged.Merge(page)
		if state.IsLastPage {
			return merged, pages, nil
		}
		if state.NextToken == token {
			return ClassifiedPage{}, pages, fmt.Errorf("list page: store repeated continuation token %q", token)
		}
		token = state.NextToken
	}
	return ClassifiedPage{}, MaxPages, fmt.Errorf("list page: more than %d pages", MaxPages)
}
