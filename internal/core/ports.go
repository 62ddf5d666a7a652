package core

import (
	"context"
)

// ReasoningClient defines the interface for the LLM-backed reasoning stages.
// Classify and Extract are independent; both see the same request.
type ReasoningClient interface {
	// Classify assigns the email to the request taxonomy
	Classify(ctx context.Context, req *ReasoningRequest) (*ClassificationResult, error)

	// Extract pulls structured loan-servicing fields from the email text
	Extract(ctx context.Context, req *ReasoningRequest) (*ExtractionResult, error)

	// ReviewDuplicates produces a duplicate verdict from the retrieved
	// candidates; optional, gated by configuration
	ReviewDuplicates(ctx context.Context, req *ReasoningRequest) (*DuplicateCheckResult, error)
}

// Embedder maps text to a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding dimension size
	Dimensions() int
}

// DuplicateFinder retrieves previously seen texts similar to the given one.
// Check must be called before Remember for the same email, otherwise the
// email would match itself.
type DuplicateFinder interface {
	// Check returns prior texts within the distance threshold, closest first
	Check(ctx context.Context, text string) ([]string, error)

	// Remember adds the text to the session's comparison set
	Remember(ctx context.Context, text string) error
}

// DocumentExtractor turns an attachment file into plain text.
type DocumentExtractor interface {
	ExtractText(path string) (string, error)
}

// EmailSource lists and fetches inbox email.
type EmailSource interface {
	// ListIDs returns up to max message IDs in mailbox listing order
	ListIDs(ctx context.Context, max int) ([]string, error)

	// Fetch retrieves one message's metadata, body and attachments
	Fetch(ctx context.Context, id string) (*EmailRecord, error)
}

// ProcessedStore durably records which email IDs have been handled. It is
// the sole guard against reprocessing across runs.
type ProcessedStore interface {
	Contains(ctx context.Context, id string) (bool, error)
	Add(ctx context.Context, id string) error
	SetLastProcessed(ctx context.Context, id string) error
	LastProcessed(ctx context.Context) (string, error)
	Close() error
}

// ResultSink receives each successfully processed email, in order.
type ResultSink interface {
	Publish(email *EmailRecord, result *ProcessedEmailResult)
}
