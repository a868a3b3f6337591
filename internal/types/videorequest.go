package types

// VideoRequestStatus is the finite state machine of a video-generation request.
// The batch orchestrator only ever writes VideoRequestStatusQueued; every later
// transition is driven by callbacks from the external automation system.
type VideoRequestStatus string

const (
	VideoRequestStatusQueued            VideoRequestStatus = "QUEUED"
	VideoRequestStatusIdeation          VideoRequestStatus = "IDEATION"
	VideoRequestStatusPreReviewPending  VideoRequestStatus = "PRE_REVIEW_PENDING"
	VideoRequestStatusPreApproved       VideoRequestStatus = "PRE_APPROVED"
	VideoRequestStatusGenerating        VideoRequestStatus = "GENERATING"
	VideoRequestStatusEditing           VideoRequestStatus = "EDITING"
	VideoRequestStatusPostReviewPending VideoRequestStatus = "POST_REVIEW_PENDING"
	VideoRequestStatusPostApproved      VideoRequestStatus = "POST_APPROVED"
	VideoRequestStatusReady             VideoRequestStatus = "READY"
	VideoRequestStatusExported          VideoRequestStatus = "EXPORTED"
	VideoRequestStatusFailed            VideoRequestStatus = "FAILED"
)

var videoRequestStatusOrder = map[VideoRequestStatus]int{
	VideoRequestStatusQueued:            0,
	VideoRequestStatusIdeation:          1,
	VideoRequestStatusPreReviewPending:  2,
	VideoRequestStatusPreApproved:       3,
	VideoRequestStatusGenerating:        4,
	VideoRequestStatusEditing:           5,
	VideoRequestStatusPostReviewPending: 6,
	VideoRequestStatusPostApproved:      7,
	VideoRequestStatusReady:             8,
	VideoRequestStatusExported:          9,
}

// IsTerminal reports whether no further transitions are allowed.
func (s VideoRequestStatus) IsTerminal() bool {
	return s == VideoRequestStatusExported || s == VideoRequestStatusFailed
}

// CanTransitionTo reports whether a transition from s to next is legal:
// strictly forward along the pipeline, or to FAILED from any non-terminal state.
func (s VideoRequestStatus) CanTransitionTo(next VideoRequestStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == VideoRequestStatusFailed {
		return true
	}
	cur, ok := videoRequestStatusOrder[s]
	if !ok {
		return false
	}
	n, ok := videoRequestStatusOrder[next]
	if !ok {
		return false
	}
	return n == cur+1
}
