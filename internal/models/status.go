package models

// StatusKind styles a status message.
type StatusKind string

const (
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// StatusMessage is the transient per-form message state.
type StatusMessage struct {
	Text    string     `json:"text"`
	Kind    StatusKind `json:"kind"`
	Visible bool       `json:"visible"`
}
