// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gate implements the release modal: every successful artifact is
// held here until the user enters credentials that pass the ReleasePolicy,
// then released through a Releaser to the download banner.
//
// Phases: Hidden -> Collecting -> Validated -> Releasing -> Hidden. Dismiss
// returns to Hidden from any phase and drops the pending artifact. A failed
// release returns to Validated.
package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pdiddy/pdfdesk/internal/errinfo"
	"github.com/pdiddy/pdfdesk/pkg/types"
)

// Phase is the modal state.
type Phase string

const (
	PhaseHidden     Phase = "hidden"
	PhaseCollecting Phase = "collecting"
	PhaseValidated  Phase = "validated"
	PhaseReleasing  Phase = "releasing"
)

// Control names the control that holds input focus.
type Control string

const (
	FocusNone     Control = ""
	FocusEmail    Control = "email"
	FocusDownload Control = "download"
)

// MsgValidated is shown once the credentials pass the policy.
const MsgValidated = "Authentication successful! Click Download to get your file."

var (
	// ErrNoArtifact is returned when an action needs a pending artifact and
	// there is none.
	ErrNoArtifact = errors.New("no file prepared for download")
	// ErrNotValidated is returned by ConfirmDownload outside the Validated phase.
	ErrNotValidated = errors.New("credentials have not been validated")
)

// Surface is the part of the message channel the modal drives.
type Surface interface {
	ShowModal()
	HideModal()
	ShowDownload(fileName, ref string)
	OnModalEvicted(fn func())
}

// Releaser turns an artifact into a reference the user can retrieve it from:
// a file path for the CLI, a signed download URL for the server.
type Releaser interface {
	Release(ctx context.Context, a types.PendingArtifact) (ref string, err error)
}

// Observer is notified of modal transitions. Embed NopObserver to implement
// only some of the methods.
type Observer interface {
	Opened(a types.PendingArtifact)
	Submitted(tool types.ToolID, ok bool)
	Released(a types.PendingArtifact, ref string)
	Dismissed(tool types.ToolID, phase Phase)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) Opened(types.PendingArtifact)           {}
func (NopObserver) Submitted(types.ToolID, bool)           {}
func (NopObserver) Released(types.PendingArtifact, string) {}
func (NopObserver) Dismissed(types.ToolID, Phase)          {}

// session is the transient state that lives while the modal is visible.
type session struct {
	email    string
	password string
	phase    Phase
}

// View is a snapshot of the modal for rendering.
type View struct {
	Visible         bool         `json:"visible"`
	Phase           Phase        `json:"phase"`
	Title           string       `json:"title,omitempty"`
	Tool            types.ToolID `json:"tool,omitempty"`
	FileName        string       `json:"file_name,omitempty"`
	Note            string       `json:"note,omitempty"`
	Email           string       `json:"email"`
	SubmitEnabled   bool         `json:"submit_enabled"`
	SubmitVisible   bool         `json:"submit_visible"`
	DownloadVisible bool         `json:"download_visible"`
	Message         string       `json:"message,omitempty"`
	MessageIsError  bool         `json:"message_is_error,omitempty"`
	Focus           Control      `json:"focus,omitempty"`
}

// Modal is the release gate. It owns the pending artifact exclusively; no
// reference to it survives a release or a dismissal. Safe for concurrent use.
type Modal struct {
	mu       sync.Mutex
	surface  Surface
	releaser Releaser
	policy   ReleasePolicy
	observer Observer

	artifact *types.PendingArtifact
	// releasing is the artifact handed to the Releaser. It is cleared by
	// Open and Dismiss, which is how a finishing release learns it was
	// superseded.
	releasing *types.PendingArtifact
	sess      session

	submitEnabled   bool
	submitVisible   bool
	downloadVisible bool
	message         string
	messageIsError  bool
	focus           Control
}

// Option configures a Modal.
type Option func(*Modal)

// WithPolicy replaces the default FormatPolicy.
func WithPolicy(p ReleasePolicy) Option {
	return func(m *Modal) { m.policy = p }
}

// WithObserver registers an observer for modal transitions.
func WithObserver(o Observer) Option {
	return func(m *Modal) { m.observer = o }
}

// NewModal creates a hidden modal that releases through r.
func NewModal(surface Surface, r Releaser, opts ...Option) *Modal {
	m := &Modal{
		surface:  surface,
		releaser: r,
		policy:   FormatPolicy{},
		observer: NopObserver{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.resetLocked()
	surface.OnModalEvicted(m.Dismiss)
	return m
}

// resetLocked restores the Collecting defaults of the controls and clears
// the session. The phase is set by the caller.
func (m *Modal) resetLocked() {
	m.sess = session{phase: PhaseHidden}
	m.releasing = nil
	m.submitEnabled = false
	m.submitVisible = true
	m.downloadVisible = false
	m.message = ""
	m.messageIsError = false
	m.focus = FocusNone
}

// Open stores a as the pending artifact, replacing any unconsumed one, and
// shows the modal with empty fields in the Collecting phase.
func (m *Modal) Open(a types.PendingArtifact) {
	m.mu.Lock()
	m.resetLocked()
	m.artifact = &a
	m.sess.phase = PhaseCollecting
	m.focus = FocusEmail
	m.mu.Unlock()

	m.surface.ShowModal()
	m.observer.Opened(a)
}

// SetEmail updates the email field and re-validates.
func (m *Modal) SetEmail(v string) error {
	return m.edit(func(s *session) { s.email = v })
}

// SetPassword updates the password field and re-validates.
func (m *Modal) SetPassword(v string) error {
	return m.edit(func(s *session) { s.password = v })
}

func (m *Modal) edit(apply func(*session)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess.phase != PhaseCollecting {
		return errinfo.Validation("The download dialog is not collecting credentials.")
	}
	apply(&m.sess)
	m.submitEnabled = m.policy.CheckEmail(m.sess.email) == nil &&
		m.policy.CheckPassword(m.sess.password) == nil
	m.message = ""
	m.messageIsError = false
	return nil
}

// Submit re-validates both fields. On failure the field-level message is
// shown and the modal stays in Collecting. On success it moves to Validated:
// the submit control is hidden and the download control is shown and focused.
func (m *Modal) Submit() error {
	m.mu.Lock()
	if m.sess.phase != PhaseCollecting {
		m.mu.Unlock()
		return errinfo.Validation("The download dialog is not collecting credentials.")
	}
	tool := m.toolLocked()

	err := m.policy.CheckEmail(m.sess.email)
	fallback := MsgInvalidEmail
	if err == nil {
		err = m.policy.CheckPassword(m.sess.password)
		fallback = MsgInvalidPassword
	}
	if err != nil {
		m.message = errinfo.Message(err, fallback)
		m.messageIsError = true
		m.mu.Unlock()
		m.observer.Submitted(tool, false)
		return err
	}

	m.sess.phase = PhaseValidated
	m.message = MsgValidated
	m.messageIsError = false
	m.submitVisible = false
	m.downloadVisible = true
	m.focus = FocusDownload
	m.mu.Unlock()

	m.observer.Submitted(tool, true)
	return nil
}

// ConfirmDownload releases the pending artifact. It is valid only in the
// Validated phase; otherwise nothing is released and ErrNotValidated is
// returned. The artifact leaves the modal before the Releaser runs, so a
// concurrent confirm finds nothing to release. On success the download banner
// is shown, the modal is hidden, and the session is discarded. If the modal
// was dismissed or reopened while the release ran, ErrNoArtifact is returned
// and no banner is shown. If the Releaser fails the artifact is put back and
// the modal returns to Validated with an error message so the user can try
// again.
func (m *Modal) ConfirmDownload(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.sess.phase != PhaseValidated {
		m.mu.Unlock()
		return "", errinfo.Conflict("Please validate your details before downloading.", ErrNotValidated)
	}
	if m.artifact == nil {
		m.mu.Unlock()
		return "", errinfo.Conflict("Error: No file prepared for download.", ErrNoArtifact)
	}
	held := m.artifact
	m.artifact = nil
	m.releasing = held
	m.sess.phase = PhaseReleasing
	m.downloadVisible = false
	m.mu.Unlock()

	ref, err := m.releaser.Release(ctx, *held)

	m.mu.Lock()
	if m.releasing != held {
		m.mu.Unlock()
		return "", errinfo.Conflict("The download was cancelled.", ErrNoArtifact)
	}
	if err != nil {
		msg := fmt.Sprintf("Error preparing %s for download: %v", held.FileName, err)
		m.artifact = held
		m.releasing = nil
		m.sess.phase = PhaseValidated
		m.downloadVisible = true
		m.message = msg
		m.messageIsError = true
		m.mu.Unlock()
		return "", errinfo.Transformation(msg, err)
	}
	m.resetLocked()
	m.mu.Unlock()

	m.surface.HideModal()
	m.surface.ShowDownload(held.FileName, ref)
	m.observer.Released(*held, ref)
	return ref, nil
}

// Dismiss hides the modal from any phase, drops the pending artifact and the
// session, and restores the control defaults so the next Open starts clean.
// Dismissing a hidden modal does nothing.
func (m *Modal) Dismiss() {
	m.mu.Lock()
	if m.sess.phase == PhaseHidden && m.artifact == nil && m.releasing == nil {
		m.mu.Unlock()
		return
	}
	phase := m.sess.phase
	tool := m.toolLocked()
	m.artifact = nil
	m.resetLocked()
	m.mu.Unlock()

	m.surface.HideModal()
	m.observer.Dismissed(tool, phase)
}

// Phase returns the current phase.
func (m *Modal) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.phase
}

// Pending reports whether an artifact is held awaiting release.
func (m *Modal) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.artifact != nil
}

// View returns a snapshot for rendering. The password is never included.
func (m *Modal) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{
		Visible:         m.sess.phase != PhaseHidden,
		Phase:           m.sess.phase,
		Email:           m.sess.email,
		SubmitEnabled:   m.submitEnabled,
		SubmitVisible:   m.submitVisible,
		DownloadVisible: m.downloadVisible,
		Message:         m.message,
		MessageIsError:  m.messageIsError,
		Focus:           m.focus,
	}
	if a := m.currentLocked(); a != nil {
		v.Tool = a.ToolID
		v.Title = Title(a.ToolID)
		v.FileName = a.FileName
		v.Note = a.Note
	}
	return v
}

// currentLocked returns the artifact the modal shows: the pending one, or the
// one being released.
func (m *Modal) currentLocked() *types.PendingArtifact {
	if m.artifact != nil {
		return m.artifact
	}
	return m.releasing
}

func (m *Modal) toolLocked() types.ToolID {
	if a := m.currentLocked(); a != nil {
		return a.ToolID
	}
	return ""
}

// Title returns the modal heading for artifacts of the given tool.
func Title(id types.ToolID) string {
	return strings.Join([]string{"Download Your", id.Past(), "PDF"}, " ")
}
