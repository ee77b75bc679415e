package transport

import (
	"time"

	"memscope/internal/memory"
	"memscope/internal/merge"
)

// SummaryPayload is the wire form of a merged summary.
type SummaryPayload struct {
	Text       string         `json:"text"`
	Struct     map[string]any `json:"struct"`
	Confidence float64        `json:"confidence"`
}

func summaryPayload(s merge.Summary) SummaryPayload {
	return SummaryPayload{
		Text:       s.Text,
		Struct:     s.Struct,
		Confidence: s.Confidence,
	}
}

// WriteMemoryResponse is returned by POST /memory.
type WriteMemoryResponse struct {
	MemoryID string `json:"memory_id"`
}

// ReadMemoryResponse is returned by POST /memory/read. Token is the only
// handle the caller ever receives; the digest stays server side.
type ReadMemoryResponse struct {
	GrantID      string         `json:"grant_id"`
	Token        string         `json:"token"`
	ExpiresAt    time.Time      `json:"expires_at"`
	PurposeClass string         `json:"purpose_class"`
	Summary      SummaryPayload `json:"summary"`
	MemoryCount  int            `json:"memory_count"`
}

func readResponse(res *memory.ReadResult) ReadMemoryResponse {
	return ReadMemoryResponse{
		GrantID:      res.GrantID.String(),
		Token:        res.Token,
		ExpiresAt:    res.ExpiresAt.UTC(),
		PurposeClass: string(res.PurposeClass),
		Summary:      summaryPayload(res.Summary),
		MemoryCount:  res.MemoryCount,
	}
}

// ContinueReadResponse is returned by POST /memory/read/continue.
type ContinueReadResponse struct {
	GrantID      string         `json:"grant_id"`
	ExpiresAt    time.Time      `json:"expires_at"`
	PurposeClass string         `json:"purpose_class"`
	Summary      SummaryPayload `json:"summary"`
	MemoryCount  int            `json:"memory_count"`
}

func continueResponse(res *memory.ContinueResult) ContinueReadResponse {
	return ContinueReadResponse{
		GrantID:      res.GrantID.String(),
		ExpiresAt:    res.ExpiresAt.UTC(),
		PurposeClass: string(res.PurposeClass),
		Summary:      summaryPayload(res.Summary),
		MemoryCount:  res.MemoryCount,
	}
}

// RevokeGrantResponse is returned by POST /memory/revoke. Revocation is
// idempotent, so the response never distinguishes repeat calls.
type RevokeGrantResponse struct {
	Revoked bool `json:"revoked"`
}
