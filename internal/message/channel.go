// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package message implements the desk-wide notification surface: an
// informational or error banner, a download-ready banner, and the visibility
// slot shared with the release modal. At most one of the three is visible.
package message

import "sync"

// Kind distinguishes informational banners from errors.
type Kind string

const (
	KindInfo  Kind = "info"
	KindError Kind = "error"
)

// Visible names the element currently occupying the surface.
type Visible string

const (
	VisibleNone     Visible = "none"
	VisibleBanner   Visible = "banner"
	VisibleDownload Visible = "download"
	VisibleModal    Visible = "modal"
)

// Banner is a message shown to the user.
type Banner struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Download is the download-ready banner: the suggested file name and a
// reference the user can retrieve the payload from.
type Download struct {
	FileName string `json:"file_name"`
	Ref      string `json:"ref"`
}

// State is a snapshot of the surface.
type State struct {
	Visible  Visible   `json:"visible"`
	Banner   *Banner   `json:"banner,omitempty"`
	Download *Download `json:"download,omitempty"`
}

// Channel is the notification surface. It is safe for concurrent use.
type Channel struct {
	mu       sync.Mutex
	visible  Visible
	banner   Banner
	download Download
	evict    func()
}

// NewChannel returns a channel with nothing visible.
func NewChannel() *Channel {
	return &Channel{visible: VisibleNone}
}

// OnModalEvicted registers fn to run when a banner replaces the visible
// modal. fn is called without the channel lock held.
func (c *Channel) OnModalEvicted(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evict = fn
}

// Show displays text as a banner of the given kind, hiding the download
// banner and the modal.
func (c *Channel) Show(text string, kind Kind) {
	c.mu.Lock()
	evicted := c.visible == VisibleModal
	c.banner = Banner{Kind: kind, Text: text}
	c.visible = VisibleBanner
	evict := c.evict
	c.mu.Unlock()

	if evicted && evict != nil {
		evict()
	}
}

// ShowInfo displays an informational banner.
func (c *Channel) ShowInfo(text string) { c.Show(text, KindInfo) }

// ShowError displays an error banner.
func (c *Channel) ShowError(text string) { c.Show(text, KindError) }

// ShowDownload displays the download-ready banner.
func (c *Channel) ShowDownload(fileName, ref string) {
	c.mu.Lock()
	evicted := c.visible == VisibleModal
	c.download = Download{FileName: fileName, Ref: ref}
	c.visible = VisibleDownload
	evict := c.evict
	c.mu.Unlock()

	if evicted && evict != nil {
		evict()
	}
}

// ShowModal marks the modal as the visible element, hiding both banners.
func (c *Channel) ShowModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = VisibleModal
}

// HideModal clears the surface if the modal currently occupies it.
func (c *Channel) HideModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.visible == VisibleModal {
		c.visible = VisibleNone
	}
}

// HideAll hides both banners. The modal is left alone.
func (c *Channel) HideAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.visible != VisibleModal {
		c.visible = VisibleNone
	}
}

// State returns a snapshot of what is visible.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := State{Visible: c.visible}
	switch c.visible {
	case VisibleBanner:
		b := c.banner
		s.Banner = &b
	case VisibleDownload:
		d := c.download
		s.Download = &d
	}
	return s
}
